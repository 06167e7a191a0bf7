/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package serverest

import (
	"fmt"
	"net/url"
	"strings"
)

// Route templates, as they appear in the API description. Metrics and
// contract validation are keyed on these rather than on concrete paths.
const (
	RouteLogin            = "/login"
	RouteUsers            = "/usuarios"
	RouteUser             = "/usuarios/{id}"
	RouteProducts         = "/produtos"
	RouteProduct          = "/produtos/{id}"
	RouteCarts            = "/carrinhos"
	RouteCart             = "/carrinhos/{id}"
	RouteCompletePurchase = "/carrinhos/concluir-compra"
	RouteCancelPurchase   = "/carrinhos/cancelar-compra"

	// RouteUnknown labels paths outside the API description.
	RouteUnknown = "unknown"
)

// routeTemplates lists fixed routes before the parameterised ones they
// would otherwise match.
//
//nolint:gochecknoglobals
var routeTemplates = []string{
	RouteLogin,
	RouteUsers,
	RouteProducts,
	RouteCarts,
	RouteCompletePurchase,
	RouteCancelPurchase,
	RouteUser,
	RouteProduct,
	RouteCart,
}

// RouteOf maps a concrete path, with or without a query, back to its
// route template so labels stay bounded whatever identifiers are used.
func RouteOf(path string) string {
	path, _, _ = strings.Cut(path, "?")
	segments := strings.Split(strings.Trim(path, "/"), "/")

	for _, template := range routeTemplates {
		if routeMatches(strings.Split(strings.Trim(template, "/"), "/"), segments) {
			return template
		}
	}

	return RouteUnknown
}

func routeMatches(template, segments []string) bool {
	if len(template) != len(segments) {
		return false
	}

	for i, part := range template {
		if strings.HasPrefix(part, "{") {
			if segments[i] == "" {
				return false
			}

			continue
		}

		if part != segments[i] {
			return false
		}
	}

	return true
}

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Authentication endpoints.
func (e *Endpoints) Login() string {
	return RouteLogin
}

// User endpoints.
func (e *Endpoints) ListUsers() string {
	return RouteUsers
}

func (e *Endpoints) CreateUser() string {
	return RouteUsers
}

func (e *Endpoints) GetUser(userID string) string {
	return fmt.Sprintf("/usuarios/%s", url.PathEscape(userID))
}

func (e *Endpoints) DeleteUser(userID string) string {
	return fmt.Sprintf("/usuarios/%s", url.PathEscape(userID))
}

// Product endpoints.
func (e *Endpoints) ListProducts() string {
	return RouteProducts
}

func (e *Endpoints) CreateProduct() string {
	return RouteProducts
}

func (e *Endpoints) GetProduct(productID string) string {
	return fmt.Sprintf("/produtos/%s", url.PathEscape(productID))
}

func (e *Endpoints) DeleteProduct(productID string) string {
	return fmt.Sprintf("/produtos/%s", url.PathEscape(productID))
}

// Cart endpoints.
func (e *Endpoints) ListCarts() string {
	return RouteCarts
}

func (e *Endpoints) CreateCart() string {
	return RouteCarts
}

func (e *Endpoints) GetCart(cartID string) string {
	return fmt.Sprintf("/carrinhos/%s", url.PathEscape(cartID))
}

// CompletePurchase removes the caller's cart without restocking.
func (e *Endpoints) CompletePurchase() string {
	return RouteCompletePurchase
}

// CancelPurchase removes the caller's cart and returns its items to stock.
func (e *Endpoints) CancelPurchase() string {
	return RouteCancelPurchase
}

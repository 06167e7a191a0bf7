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
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// The service encodes the administrator role as a string, not a boolean.
const (
	AdministratorTrue  = "true"
	AdministratorFalse = "false"
)

// User is the payload accepted by user registration.
type User struct {
	Name          string              `json:"nome"`
	Email         openapi_types.Email `json:"email"`
	Password      string              `json:"password"`
	Administrator string              `json:"administrador"`
}

// IsAdministrator reports whether the payload requests the administrator role.
func (u User) IsAdministrator() bool {
	return u.Administrator == AdministratorTrue
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials returns the login payload for the user.
func (u User) Credentials() Credentials {
	return Credentials{
		Email:    string(u.Email),
		Password: u.Password,
	}
}

// UserRead is a user as returned by the service.
type UserRead struct {
	Name          string `json:"nome"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Administrator string `json:"administrador"`
	ID            string `json:"_id"`
}

// UserList is the body of GET /usuarios.
type UserList struct {
	Quantity int        `json:"quantidade"`
	Users    []UserRead `json:"usuarios"`
}

// Product is the payload accepted by product registration.
type Product struct {
	Name        string `json:"nome"`
	Price       int    `json:"preco"`
	Description string `json:"descricao"`
	Quantity    int    `json:"quantidade"`
}

// ProductRead is a product as returned by the service.
type ProductRead struct {
	Name        string `json:"nome"`
	Price       int    `json:"preco"`
	Description string `json:"descricao"`
	Quantity    int    `json:"quantidade"`
	ID          string `json:"_id"`
}

// ProductList is the body of GET /produtos.
type ProductList struct {
	Quantity int           `json:"quantidade"`
	Products []ProductRead `json:"produtos"`
}

// CartItem references a product and the quantity requested.
type CartItem struct {
	ProductID string `json:"idProduto"`
	Quantity  int    `json:"quantidade"`
}

// Cart is the payload accepted by cart creation.
type Cart struct {
	Products []CartItem `json:"produtos"`
}

// CartItemRead is a cart line with the unit price captured at creation time.
type CartItemRead struct {
	ProductID string `json:"idProduto"`
	Quantity  int    `json:"quantidade"`
	UnitPrice int    `json:"precoUnitario"`
}

// CartRead is a cart as returned by the service.
type CartRead struct {
	Products      []CartItemRead `json:"produtos"`
	TotalPrice    int            `json:"precoTotal"`
	TotalQuantity int            `json:"quantidadeTotal"`
	UserID        string         `json:"idUsuario"`
	ID            string         `json:"_id"`
}

// CartList is the body of GET /carrinhos.
type CartList struct {
	Quantity int        `json:"quantidade"`
	Carts    []CartRead `json:"carrinhos"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// CreatedResponse acknowledges a registration.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      ID     `json:"_id"`
}

// LoginResponse carries the bearer credential.
type LoginResponse struct {
	Message       string `json:"message"`
	Authorization string `json:"authorization"`
}

// UserFilter narrows GET /usuarios. Nil fields are not sent.
type UserFilter struct {
	ID            *string
	Name          *string
	Email         *string
	Administrator *string
}

// ProductFilter narrows GET /produtos. Nil fields are not sent.
type ProductFilter struct {
	ID          *string
	Name        *string
	Price       *int
	Description *string
	Quantity    *int
}

// CartFilter narrows GET /carrinhos. Nil fields are not sent.
type CartFilter struct {
	ID            *string
	TotalPrice    *int
	TotalQuantity *int
	UserID        *string
}

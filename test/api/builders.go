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

package api

import (
	"github.com/nscaledev/serverest-e2e/pkg/datagen"
)

// PayloadBuilder builds raw request bodies, starting from a valid one.
// Typed payloads cannot express missing or mistyped fields, so negative
// cases are built here and sent with Client.Do.
type PayloadBuilder struct {
	payload map[string]any
}

// NewUserPayload creates a valid user registration body.
func NewUserPayload(admin bool) *PayloadBuilder {
	user := datagen.ValidUser(admin)

	return &PayloadBuilder{
		payload: map[string]any{
			"nome":          user.Name,
			"email":         string(user.Email),
			"password":      user.Password,
			"administrador": user.Administrator,
		},
	}
}

// NewProductPayload creates a valid product registration body.
func NewProductPayload() *PayloadBuilder {
	product := datagen.ValidProduct()

	return &PayloadBuilder{
		payload: map[string]any{
			"nome":       product.Name,
			"preco":      product.Price,
			"descricao":  product.Description,
			"quantidade": product.Quantity,
		},
	}
}

// NewLoginPayload creates a login body.
func NewLoginPayload(email, password string) *PayloadBuilder {
	return &PayloadBuilder{
		payload: map[string]any{
			"email":    email,
			"password": password,
		},
	}
}

// NewCartPayload creates a cart body with a single item.
func NewCartPayload(productID string, quantity int) *PayloadBuilder {
	return &PayloadBuilder{
		payload: map[string]any{
			"produtos": []map[string]any{
				{
					"idProduto":  productID,
					"quantidade": quantity,
				},
			},
		},
	}
}

// With sets a field to any value, including ones of the wrong type.
func (b *PayloadBuilder) With(field string, value any) *PayloadBuilder {
	b.payload[field] = value

	return b
}

// Without removes a field.
func (b *PayloadBuilder) Without(field string) *PayloadBuilder {
	delete(b.payload, field)

	return b
}

// Get returns a field's current value.
func (b *PayloadBuilder) Get(field string) any {
	return b.payload[field]
}

// Build returns the completed payload.
func (b *PayloadBuilder) Build() map[string]any {
	return b.payload
}

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

package fake

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

const (
	// messageMalformedBody is returned when the body is not a JSON object.
	messageMalformedBody = "Adicione aspas em todos os valores. Para mais informações acesse a issue https://github.com/ServeRest/ServeRest/issues/225"

	// messageEmptyCart is returned for a cart without items.
	messageEmptyCart = "produtos deve conter pelo menos 1 item"
)

// decodeBody reads a JSON object, keeping numbers exact so integers can be
// told apart from fractions.
func decodeBody(r io.Reader) (map[string]any, *apiError) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, badRequest(messageMalformedBody)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var body map[string]any

	if err := decoder.Decode(&body); err != nil {
		return nil, badRequest(messageMalformedBody)
	}

	if body == nil {
		body = map[string]any{}
	}

	return body, nil
}

// validator accumulates field errors, keeping the first per field.
type validator struct {
	errors map[string]string
}

func newValidator() *validator {
	return &validator{
		errors: map[string]string{},
	}
}

func (v *validator) fail(field, format string, args ...any) {
	if _, ok := v.errors[field]; ok {
		return
	}

	v.errors[field] = field + " " + fmt.Sprintf(format, args...)
}

func (v *validator) err() *apiError {
	if len(v.errors) == 0 {
		return nil
	}

	return fieldErrors(v.errors)
}

// allow rejects any key not named.
func (v *validator) allow(body map[string]any, prefix string, fields ...string) {
	allowed := make(map[string]bool, len(fields))

	for _, field := range fields {
		allowed[field] = true
	}

	for key := range body {
		if !allowed[key] {
			v.fail(prefix+key, "não é permitido")
		}
	}
}

func (v *validator) str(body map[string]any, field, label string) string {
	value, ok := body[field]
	if !ok {
		v.fail(label, "é obrigatório")
		return ""
	}

	s, ok := value.(string)
	if !ok {
		v.fail(label, "deve ser uma string")
		return ""
	}

	if s == "" {
		v.fail(label, "não pode ficar em branco")
		return ""
	}

	return s
}

func (v *validator) email(body map[string]any, field string) string {
	s := v.str(body, field, field)
	if s == "" {
		return ""
	}

	data, err := json.Marshal(s)
	if err != nil {
		v.fail(field, "deve ser um email válido")
		return ""
	}

	var email openapi_types.Email

	if err := email.UnmarshalJSON(data); err != nil {
		v.fail(field, "deve ser um email válido")
		return ""
	}

	return s
}

func (v *validator) administrator(body map[string]any, field string) string {
	value, ok := body[field]
	if !ok {
		v.fail(field, "é obrigatório")
		return ""
	}

	s, ok := value.(string)
	if !ok || (s != serverest.AdministratorTrue && s != serverest.AdministratorFalse) {
		v.fail(field, "deve ser 'true' ou 'false'")
		return ""
	}

	return s
}

// integer checks for a whole number no smaller than minimum, which is
// either 0 or 1.
func (v *validator) integer(body map[string]any, field, label string, minimum int64) int {
	value, ok := body[field]
	if !ok {
		v.fail(label, "é obrigatório")
		return 0
	}

	number, ok := value.(json.Number)
	if !ok {
		v.fail(label, "deve ser um número")
		return 0
	}

	i, err := number.Int64()
	if err != nil {
		v.fail(label, "deve ser um inteiro")
		return 0
	}

	if i < minimum {
		if minimum > 0 {
			v.fail(label, "deve ser um número positivo")
		} else {
			v.fail(label, "deve ser maior ou igual a %d", minimum)
		}

		return 0
	}

	return int(i)
}

func validateUser(body map[string]any) (serverest.User, *apiError) {
	v := newValidator()
	v.allow(body, "", "nome", "email", "password", "administrador")

	user := serverest.User{
		Name:          v.str(body, "nome", "nome"),
		Email:         openapi_types.Email(v.email(body, "email")),
		Password:      v.str(body, "password", "password"),
		Administrator: v.administrator(body, "administrador"),
	}

	return user, v.err()
}

func validateCredentials(body map[string]any) (serverest.Credentials, *apiError) {
	v := newValidator()
	v.allow(body, "", "email", "password")

	credentials := serverest.Credentials{
		Email:    v.email(body, "email"),
		Password: v.str(body, "password", "password"),
	}

	return credentials, v.err()
}

func validateProduct(body map[string]any) (serverest.Product, *apiError) {
	v := newValidator()
	v.allow(body, "", "nome", "preco", "descricao", "quantidade")

	product := serverest.Product{
		Name:        v.str(body, "nome", "nome"),
		Price:       v.integer(body, "preco", "preco", 1),
		Description: v.str(body, "descricao", "descricao"),
		Quantity:    v.integer(body, "quantidade", "quantidade", 0),
	}

	return product, v.err()
}

func validateCart(body map[string]any) (serverest.Cart, *apiError) {
	v := newValidator()
	v.allow(body, "", "produtos")

	value, ok := body["produtos"]
	if !ok {
		v.fail("produtos", "é obrigatório")
		return serverest.Cart{}, v.err()
	}

	items, ok := value.([]any)
	if !ok {
		v.fail("produtos", "deve ser um array")
		return serverest.Cart{}, v.err()
	}

	if len(items) == 0 {
		return serverest.Cart{}, badRequest(messageEmptyCart)
	}

	cart := serverest.Cart{
		Products: make([]serverest.CartItem, 0, len(items)),
	}

	for i, value := range items {
		prefix := fmt.Sprintf("produtos[%d]", i)

		item, ok := value.(map[string]any)
		if !ok {
			v.fail(prefix, "deve ser um objeto")
			continue
		}

		v.allow(item, prefix+".", "idProduto", "quantidade")

		cart.Products = append(cart.Products, serverest.CartItem{
			ProductID: v.str(item, "idProduto", prefix+".idProduto"),
			Quantity:  v.integer(item, "quantidade", prefix+".quantidade", 1),
		})
	}

	return cart, v.err()
}

func validateID(id string) *apiError {
	if !serverest.IsValidID(id) {
		return fieldErrors(map[string]string{
			"id": serverest.MessageIDFormat,
		})
	}

	return nil
}

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
	"strings"

	"github.com/oapi-codegen/runtime"
)

type queryParam struct {
	name  string
	value any
}

// encodeQuery renders parameters with form style, as the service's
// description declares for every list filter.
func encodeQuery(params []queryParam) (string, error) {
	if len(params) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(params))

	for _, param := range params {
		part, err := runtime.StyleParamWithLocation("form", true, param.name, runtime.ParamLocationQuery, param.value)
		if err != nil {
			return "", fmt.Errorf("encoding query parameter %s: %w", param.name, err)
		}

		parts = append(parts, part)
	}

	return "?" + strings.Join(parts, "&"), nil
}

func (f *UserFilter) params() []queryParam {
	if f == nil {
		return nil
	}

	var params []queryParam

	if f.ID != nil {
		params = append(params, queryParam{"_id", *f.ID})
	}

	if f.Name != nil {
		params = append(params, queryParam{"nome", *f.Name})
	}

	if f.Email != nil {
		params = append(params, queryParam{"email", *f.Email})
	}

	if f.Administrator != nil {
		params = append(params, queryParam{"administrador", *f.Administrator})
	}

	return params
}

func (f *ProductFilter) params() []queryParam {
	if f == nil {
		return nil
	}

	var params []queryParam

	if f.ID != nil {
		params = append(params, queryParam{"_id", *f.ID})
	}

	if f.Name != nil {
		params = append(params, queryParam{"nome", *f.Name})
	}

	if f.Price != nil {
		params = append(params, queryParam{"preco", *f.Price})
	}

	if f.Description != nil {
		params = append(params, queryParam{"descricao", *f.Description})
	}

	if f.Quantity != nil {
		params = append(params, queryParam{"quantidade", *f.Quantity})
	}

	return params
}

func (f *CartFilter) params() []queryParam {
	if f == nil {
		return nil
	}

	var params []queryParam

	if f.ID != nil {
		params = append(params, queryParam{"_id", *f.ID})
	}

	if f.TotalPrice != nil {
		params = append(params, queryParam{"precoTotal", *f.TotalPrice})
	}

	if f.TotalQuantity != nil {
		params = append(params, queryParam{"quantidadeTotal", *f.TotalQuantity})
	}

	if f.UserID != nil {
		params = append(params, queryParam{"idUsuario", *f.UserID})
	}

	return params
}

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
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

var (
	ErrUndocumentedRoute     = errors.New("route is not described by the API document")
	ErrUndocumentedOperation = errors.New("operation is not described by the API document")
)

//go:embed openapi.yaml
var apiDocument []byte

// ContractValidator checks responses against the embedded API description.
// It is independent of the typed models so a drift in either is caught.
type ContractValidator struct {
	doc *openapi3.T
}

// NewContractValidator loads and validates the embedded API description.
func NewContractValidator(ctx context.Context) (*ContractValidator, error) {
	doc, err := openapi3.NewLoader().LoadFromData(apiDocument)
	if err != nil {
		return nil, fmt.Errorf("loading api description: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating api description: %w", err)
	}

	return &ContractValidator{
		doc: doc,
	}, nil
}

// Validate checks the status code, content type and body of a response.
// Undocumented status codes are violations.
func (v *ContractValidator) Validate(ctx context.Context, resp *Response) error {
	pathItem := v.doc.Paths.Value(resp.Route)
	if pathItem == nil {
		return fmt.Errorf("%w: %s", ErrUndocumentedRoute, resp.Route)
	}

	operation := pathItem.GetOperation(resp.Method)
	if operation == nil {
		return fmt.Errorf("%w: %s %s", ErrUndocumentedOperation, resp.Method, resp.Route)
	}

	req, err := http.NewRequestWithContext(ctx, resp.Method, resp.Path, nil)
	if err != nil {
		return fmt.Errorf("creating validation request: %w", err)
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request: req,
			Route: &routers.Route{
				Spec:      v.doc,
				Path:      resp.Route,
				PathItem:  pathItem,
				Method:    resp.Method,
				Operation: operation,
			},
		},
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   io.NopCloser(bytes.NewReader(resp.Body)),
		Options: &openapi3filter.Options{
			IncludeResponseStatus: true,
		},
	}

	if err := openapi3filter.ValidateResponse(ctx, input); err != nil {
		return fmt.Errorf("%s %s status %d violates the api description: %w", resp.Method, resp.Route, resp.StatusCode, err)
	}

	return nil
}

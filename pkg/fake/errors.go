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
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// apiError is a failure rendered verbatim as the response body.
type apiError struct {
	status int
	body   map[string]any
}

func (e *apiError) Error() string {
	keys := make([]string, 0, len(e.body))

	for key := range e.body {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))

	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, e.body[key]))
	}

	return fmt.Sprintf("status %d: %s", e.status, strings.Join(parts, " "))
}

// with attaches extra context to the body.
func (e *apiError) with(key string, value any) *apiError {
	e.body[key] = value

	return e
}

func newError(status int, message string) *apiError {
	return &apiError{
		status: status,
		body: map[string]any{
			"message": message,
		},
	}
}

func badRequest(message string) *apiError {
	return newError(http.StatusBadRequest, message)
}

func unauthorized(message string) *apiError {
	return newError(http.StatusUnauthorized, message)
}

func forbidden(message string) *apiError {
	return newError(http.StatusForbidden, message)
}

// fieldErrors is a validation failure keyed by the offending fields.
func fieldErrors(fields map[string]string) *apiError {
	body := make(map[string]any, len(fields))

	for field, message := range fields {
		body[field] = message
	}

	return &apiError{
		status: http.StatusBadRequest,
		body:   body,
	}
}

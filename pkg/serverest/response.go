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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrEmptyBody = errors.New("response body is empty")

// Response is an unmodified service response. The client never interprets
// status codes, callers assert on them.
type Response struct {
	// Method and Route identify the operation, Route being the template.
	Method string
	Route  string
	// Path is the concrete request path including any query string.
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	// TraceID correlates the request with server side logs.
	TraceID  string
	Duration time.Duration
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return ErrEmptyBody
	}

	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unmarshaling %s %s response: %w", r.Method, r.Route, err)
	}

	return nil
}

// Fields decodes the body as a generic JSON object.
func (r *Response) Fields() (map[string]any, error) {
	var fields map[string]any
	if err := r.Decode(&fields); err != nil {
		return nil, err
	}

	return fields, nil
}

// Message returns the "message" field, or an empty string when absent.
func (r *Response) Message() string {
	var body MessageResponse

	_ = r.Decode(&body)

	return body.Message
}

func (r *Response) String() string {
	return fmt.Sprintf("%s %s status=%d duration=%s trace=%s body=%s", r.Method, r.Path, r.StatusCode, r.Duration, r.TraceID, string(r.Body))
}

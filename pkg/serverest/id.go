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
	"errors"
	"regexp"
)

var ErrInvalidID = errors.New("invalid id: must be exactly 16 alphanumeric characters")

var idValidationRegex = regexp.MustCompile("^[A-Za-z0-9]{16}$")

// IsValidID reports whether id has the shape of a service-assigned identifier.
func IsValidID(id string) bool {
	return idValidationRegex.MatchString(id)
}

// ID is a service-assigned identifier that validates on decode.
type ID struct {
	Value string
}

func (i *ID) UnmarshalText(text []byte) error {
	if !idValidationRegex.Match(text) {
		return ErrInvalidID
	}

	*i = ID{
		Value: string(text),
	}

	return nil
}

func (i ID) MarshalText() ([]byte, error) {
	return []byte(i.Value), nil
}

func (i ID) String() string {
	return i.Value
}

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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTokenLifetime matches the service's token expiry.
	DefaultTokenLifetime = 600 * time.Second

	bearerPrefix = "Bearer "
)

var (
	ErrMissingToken    = errors.New("authorization header missing")
	ErrSigningMethod   = errors.New("unexpected signing method")
	ErrMalformedClaims = errors.New("token claims malformed")
)

// tokenClaims is what the service embeds in its tokens: the credentials
// themselves, resolved against the user store on every request.
type tokenClaims struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// issue returns a signed token with the bearer prefix applied.
func (t *tokenIssuer) issue(email, password string) (string, error) {
	now := t.now()

	claims := tokenClaims{
		Email:    email,
		Password: password,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return bearerPrefix + signed, nil
}

// parse validates an Authorization header value and returns its claims.
func (t *tokenIssuer) parse(header string) (*tokenClaims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}

	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSigningMethod
		}

		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	if !token.Valid || claims.Email == "" {
		return nil, ErrMalformedClaims
	}

	return claims, nil
}

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

// Package datagen produces valid-by-construction payloads for the service.
//
// Uniqueness comes from a millisecond timestamp embedded in every generated
// email and name, so values stay distinct across test retries and runs
// without any shared state. Stamps are monotonic within a process: a call in
// the same millisecond as the previous one is stamped one millisecond later.
// Separate processes generating in the same millisecond may still collide.
// The same stamp lets the sweeper recover when a leaked resource was made.
package datagen

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"sync"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

const (
	// DefaultEmailPrefix is used by ValidUser.
	DefaultEmailPrefix = "user"

	// Password is shared by every generated user, which is what allows
	// the sweeper to log in as a leaked user and cancel its cart.
	Password = "senha123"

	// ProductDescription marks generated products.
	ProductDescription = "Produto de teste automatizado"

	usernamePrefix    = "User"
	productNamePrefix = "Produto Teste"

	minPrice    = 100
	priceSpread = 1000
	minStock    = 10
	stockSpread = 100
)

var stampRegex = regexp.MustCompile(`^(?:[^_@\s]+_(\d{13})@test\.com|User (\d{13})|Produto Teste (\d{13}))$`)

// Generator creates payloads. The zero value is not usable, use New.
type Generator struct {
	lock sync.Mutex
	now  func() time.Time
	rand *rand.Rand
	last int64
}

// Option customises a Generator.
type Option func(*Generator)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithRand replaces the pseudo-random source.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) {
		g.rand = r
	}
}

// New returns a generator reading the wall clock and a randomly seeded source.
func New(opts ...Option) *Generator {
	g := &Generator{
		now:  time.Now,
		rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // test data, not secrets
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// stamp returns epoch milliseconds, strictly increasing per generator.
func (g *Generator) stamp() int64 {
	g.lock.Lock()
	defer g.lock.Unlock()

	stamp := g.now().UnixMilli()
	if stamp <= g.last {
		stamp = g.last + 1
	}

	g.last = stamp

	return stamp
}

func (g *Generator) intN(n int) int {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.rand.IntN(n)
}

// Email returns "{prefix}_{epochMillis}@test.com".
func (g *Generator) Email(prefix string) string {
	return fmt.Sprintf("%s_%d@test.com", prefix, g.stamp())
}

// Username returns "User {epochMillis}".
func (g *Generator) Username() string {
	return fmt.Sprintf("%s %d", usernamePrefix, g.stamp())
}

// ProductName returns "Produto Teste {epochMillis}".
func (g *Generator) ProductName() string {
	return fmt.Sprintf("%s %d", productNamePrefix, g.stamp())
}

// ValidUser returns a complete registration payload.
func (g *Generator) ValidUser(admin bool) serverest.User {
	administrator := serverest.AdministratorFalse
	if admin {
		administrator = serverest.AdministratorTrue
	}

	return serverest.User{
		Name:          g.Username(),
		Email:         openapi_types.Email(g.Email(DefaultEmailPrefix)),
		Password:      Password,
		Administrator: administrator,
	}
}

// ValidProduct returns a product priced in [100, 1099] with [10, 109] in stock.
func (g *Generator) ValidProduct() serverest.Product {
	return serverest.Product{
		Name:        g.ProductName(),
		Price:       minPrice + g.intN(priceSpread),
		Description: ProductDescription,
		Quantity:    minStock + g.intN(stockSpread),
	}
}

// ValidCart returns a single item cart holding one unit, or quantity units
// when given. The quantity is passed through as is, the service decides
// whether it is acceptable.
func ValidCart(productID string, quantity ...int) serverest.Cart {
	units := 1
	if len(quantity) > 0 {
		units = quantity[0]
	}

	return serverest.Cart{
		Products: []serverest.CartItem{
			{
				ProductID: productID,
				Quantity:  units,
			},
		},
	}
}

// ParseStamp recovers the generation time from a generated email, username
// or product name.
func ParseStamp(value string) (time.Time, bool) {
	matches := stampRegex.FindStringSubmatch(value)
	if matches == nil {
		return time.Time{}, false
	}

	for _, match := range matches[1:] {
		if match == "" {
			continue
		}

		millis, err := strconv.ParseInt(match, 10, 64)
		if err != nil {
			return time.Time{}, false
		}

		return time.UnixMilli(millis), true
	}

	return time.Time{}, false
}

//nolint:gochecknoglobals
var defaultGenerator = New()

// Email generates an email with the package generator.
func Email(prefix string) string {
	return defaultGenerator.Email(prefix)
}

// Username generates a username with the package generator.
func Username() string {
	return defaultGenerator.Username()
}

// ProductName generates a product name with the package generator.
func ProductName() string {
	return defaultGenerator.ProductName()
}

// ValidUser generates a user with the package generator.
func ValidUser(admin bool) serverest.User {
	return defaultGenerator.ValidUser(admin)
}

// ValidProduct generates a product with the package generator.
func ValidProduct() serverest.Product {
	return defaultGenerator.ValidProduct()
}

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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/serverest-e2e/pkg/datagen"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

// Account is a registered user with a live token.
type Account struct {
	User  serverest.User
	ID    string
	Token string
}

// ExpectStatus asserts the status code, printing the response and its
// trace context when it differs.
func ExpectStatus(resp *serverest.Response, expected int) {
	GinkgoHelper()

	Expect(resp).NotTo(BeNil())

	if resp.StatusCode != expected {
		GinkgoWriter.Printf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request\n", resp.TraceID)
	}

	Expect(resp.StatusCode).To(Equal(expected), "unexpected status for %s", resp)
}

// cleanupContext bounds a cleanup independently of the spec, which may
// already have timed out.
func cleanupContext(config *TestConfig) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), config.RequestTimeout)
}

// ReportCleanup logs, and otherwise ignores, a failed cleanup.
func ReportCleanup(what, id string, resp *serverest.Response, err error) {
	switch {
	case err != nil:
		GinkgoWriter.Printf("Warning: Failed to delete %s %s: %v\n", what, id, err)
	case resp.StatusCode != http.StatusOK:
		GinkgoWriter.Printf("Warning: Failed to delete %s %s: %s\n", what, id, resp)
	default:
		GinkgoWriter.Printf("Successfully deleted %s: %s\n", what, id)
	}
}

// CreateUserWithCleanup registers a user and schedules its deletion.
func CreateUserWithCleanup(ctx context.Context, client *serverest.Client, config *TestConfig, user serverest.User) string {
	GinkgoHelper()

	resp, userID, err := client.CreateUser(ctx, user)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(resp, http.StatusCreated)

	GinkgoWriter.Printf("Created user with ID: %s\n", userID)
	CreatedResources.RecordUser(userID)

	// Schedule cleanup - this runs whether the test passes or fails so we don't need to clean up manually
	DeferCleanup(func() {
		ctx, cancel := cleanupContext(config)
		defer cancel()

		resp, err := client.DeleteUser(ctx, userID)
		ReportCleanup("user", userID, resp, err)
	})

	return userID
}

// LoginAs logs in and returns the bearer token.
func LoginAs(ctx context.Context, client *serverest.Client, user serverest.User) string {
	GinkgoHelper()

	resp, token, err := client.Login(ctx, user.Credentials())
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(resp, http.StatusOK)
	Expect(token).NotTo(BeEmpty())

	return token
}

// CreateAccount registers a fresh user, scheduling its deletion, and logs in.
func CreateAccount(ctx context.Context, client *serverest.Client, config *TestConfig, admin bool) Account {
	GinkgoHelper()

	user := datagen.ValidUser(admin)
	userID := CreateUserWithCleanup(ctx, client, config, user)

	return Account{
		User:  user,
		ID:    userID,
		Token: LoginAs(ctx, client, user),
	}
}

// CreateProductWithCleanup registers a product and schedules its deletion.
// The token must remain valid until cleanup, so the owning account must be
// created before, and therefore deleted after, the product.
func CreateProductWithCleanup(ctx context.Context, client *serverest.Client, config *TestConfig, token string, product serverest.Product) string {
	GinkgoHelper()

	resp, productID, err := client.CreateProduct(ctx, product, token)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(resp, http.StatusCreated)

	GinkgoWriter.Printf("Created product with ID: %s\n", productID)
	CreatedResources.RecordProduct(productID)

	DeferCleanup(func() {
		ctx, cancel := cleanupContext(config)
		defer cancel()

		resp, err := client.DeleteProduct(ctx, productID, token)
		ReportCleanup("product", productID, resp, err)
	})

	return productID
}

// CreateCartWithCleanup opens a cart and schedules its cancellation, which
// restocks the products and frees the user for deletion.
func CreateCartWithCleanup(ctx context.Context, client *serverest.Client, config *TestConfig, token string, cart serverest.Cart) string {
	GinkgoHelper()

	resp, cartID, err := client.CreateCart(ctx, cart, token)
	Expect(err).NotTo(HaveOccurred())
	ExpectStatus(resp, http.StatusCreated)

	GinkgoWriter.Printf("Created cart with ID: %s\n", cartID)

	DeferCleanup(func() {
		ctx, cancel := cleanupContext(config)
		defer cancel()

		resp, err := client.DeleteCart(ctx, token)
		ReportCleanup("cart", cartID, resp, err)
	})

	return cartID
}

// SuiteFixture is a value created once for an Ordered container and read
// by every spec in it. Specs receive copies, so they cannot interfere with
// each other through it.
type SuiteFixture[T any] struct {
	name  string
	value T
	set   bool
}

func NewSuiteFixture[T any](name string) *SuiteFixture[T] {
	return &SuiteFixture[T]{
		name: name,
	}
}

// Set stores the value. It must be called from a BeforeAll; the value is
// discarded when the container completes.
func (f *SuiteFixture[T]) Set(value T) {
	GinkgoHelper()

	Expect(f.set).To(BeFalse(), "suite fixture %s is already set", f.name)

	f.value = value
	f.set = true

	DeferCleanup(func() {
		var zero T

		f.value = zero
		f.set = false
	})
}

// Get returns a copy of the value.
func (f *SuiteFixture[T]) Get() T {
	GinkgoHelper()

	Expect(f.set).To(BeTrue(), "suite fixture %s read before being set", f.name)

	return f.value
}

// Catalog is the shared suite state: an administrator and one product.
type Catalog struct {
	Admin     Account
	Product   serverest.Product
	ProductID string
}

// CreateCatalog registers an administrator and a product, both cleaned up
// when the calling container completes.
func CreateCatalog(ctx context.Context, client *serverest.Client, config *TestConfig) Catalog {
	GinkgoHelper()

	admin := CreateAccount(ctx, client, config, true)
	product := datagen.ValidProduct()

	return Catalog{
		Admin:     admin,
		Product:   product,
		ProductID: CreateProductWithCleanup(ctx, client, config, admin.Token, product),
	}
}

// ExpectConformsToContract validates the response against the API
// description when enabled.
func ExpectConformsToContract(ctx context.Context, validator *serverest.ContractValidator, resp *serverest.Response) {
	GinkgoHelper()

	if validator == nil {
		return
	}

	Expect(validator.Validate(ctx, resp)).To(Succeed())
}

// ExpectMessage asserts the literal message of a response.
func ExpectMessage(resp *serverest.Response, message string) {
	GinkgoHelper()

	Expect(resp.Message()).To(Equal(message), "unexpected message for %s", resp)
}

// ExpectFieldError asserts a field keyed validation message.
func ExpectFieldError(resp *serverest.Response, field, message string) {
	GinkgoHelper()

	fields, err := resp.Fields()
	Expect(err).NotTo(HaveOccurred())
	Expect(fields).To(HaveKeyWithValue(field, message), "unexpected body for %s", resp)
}

// PerSpecTimeout bounds a single spec, cleanup excluded. Decorators are
// evaluated while the spec tree is built, before any setup node runs, so
// the configuration is read directly.
func PerSpecTimeout() time.Duration {
	config, err := LoadTestConfig()
	if err != nil || config.TestTimeout <= 0 {
		return 30 * time.Second
	}

	return config.TestTimeout
}

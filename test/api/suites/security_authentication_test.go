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

//nolint:testpackage,revive // test package in suites is standard for these tests, dot imports standard for Ginkgo
package suites

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/serverest-e2e/pkg/datagen"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"
	"github.com/nscaledev/serverest-e2e/test/api"
)

// authenticatedCall issues one mutating request with the given token.
type authenticatedCall func(ctx context.Context, catalog api.Catalog, token string) (*serverest.Response, error)

func registerProduct(ctx context.Context, _ api.Catalog, token string) (*serverest.Response, error) {
	resp, _, err := client.CreateProduct(ctx, datagen.ValidProduct(), token)

	return resp, err
}

func deleteProduct(ctx context.Context, catalog api.Catalog, token string) (*serverest.Response, error) {
	return client.DeleteProduct(ctx, catalog.ProductID, token)
}

func openCart(ctx context.Context, catalog api.Catalog, token string) (*serverest.Response, error) {
	resp, _, err := client.CreateCart(ctx, datagen.ValidCart(catalog.ProductID, 1), token)

	return resp, err
}

func completePurchase(ctx context.Context, _ api.Catalog, token string) (*serverest.Response, error) {
	return client.CompletePurchase(ctx, token)
}

func cancelPurchase(ctx context.Context, _ api.Catalog, token string) (*serverest.Response, error) {
	return client.DeleteCart(ctx, token)
}

var _ = Describe("Security and Authentication", Ordered, func() {
	catalog := api.NewSuiteFixture[api.Catalog]("catalog")

	BeforeAll(func(ctx SpecContext) {
		catalog.Set(api.CreateCatalog(ctx, client, config))
	})

	expectRejected := func(ctx SpecContext, call authenticatedCall, token string) {
		GinkgoHelper()

		fixture := catalog.Get()

		resp, err := call(ctx, fixture, token)
		Expect(err).NotTo(HaveOccurred())

		api.ExpectStatus(resp, http.StatusUnauthorized)
		api.ExpectMessage(resp, serverest.MessageTokenInvalid)
		api.ExpectConformsToContract(ctx, validator, resp)

		// Nothing may have changed on the shared product.
		resp, err = client.GetProduct(ctx, fixture.ProductID)
		Expect(err).NotTo(HaveOccurred())
		api.ExpectStatus(resp, http.StatusOK)
	}

	mutations := []TableEntry{
		Entry("registering a product", authenticatedCall(registerProduct), SpecTimeout(api.PerSpecTimeout())),
		Entry("deleting a product", authenticatedCall(deleteProduct), SpecTimeout(api.PerSpecTimeout())),
		Entry("opening a cart", authenticatedCall(openCart), SpecTimeout(api.PerSpecTimeout())),
		Entry("completing a purchase", authenticatedCall(completePurchase), SpecTimeout(api.PerSpecTimeout())),
		Entry("cancelling a purchase", authenticatedCall(cancelPurchase), SpecTimeout(api.PerSpecTimeout())),
	}

	Context("When authenticating API requests", func() {
		Describe("Given no authorization header", func() {
			DescribeTable("should reject the request",
				func(ctx SpecContext, call authenticatedCall) {
					expectRejected(ctx, call, "")
				},
				mutations,
			)
		})

		Describe("Given a token that is not a signed JWT", func() {
			DescribeTable("should reject the request",
				func(ctx SpecContext, call authenticatedCall) {
					expectRejected(ctx, call, "Bearer not.a.token")
				},
				mutations,
			)
		})

		Describe("Given a token whose user no longer exists", func() {
			It("should reject the request", func(ctx SpecContext) {
				user := datagen.ValidUser(true)
				userID := api.CreateUserWithCleanup(ctx, client, config, user)
				token := api.LoginAs(ctx, client, user)

				resp, err := client.DeleteUser(ctx, userID)
				Expect(err).NotTo(HaveOccurred())
				api.ExpectStatus(resp, http.StatusOK)

				expectRejected(ctx, registerProduct, token)
			}, SpecTimeout(api.PerSpecTimeout()))
		})
	})

	Context("When authorizing API requests", func() {
		Describe("Given a regular user", func() {
			It("should allow opening a cart", func(ctx SpecContext) {
				buyer := api.CreateAccount(ctx, client, config, false)
				api.CreateCartWithCleanup(ctx, client, config, buyer.Token, datagen.ValidCart(catalog.Get().ProductID, 1))
			}, SpecTimeout(api.PerSpecTimeout()))

			It("should restrict product routes to administrators", func(ctx SpecContext) {
				buyer := api.CreateAccount(ctx, client, config, false)

				for _, call := range []authenticatedCall{registerProduct, deleteProduct} {
					resp, err := call(ctx, catalog.Get(), buyer.Token)
					Expect(err).NotTo(HaveOccurred())

					api.ExpectStatus(resp, http.StatusForbidden)
					api.ExpectMessage(resp, serverest.MessageAdminOnly)
				}
			}, SpecTimeout(api.PerSpecTimeout()))
		})
	})
})

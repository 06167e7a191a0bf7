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
	. "github.com/onsi/gomega/gstruct"

	"github.com/nscaledev/serverest-e2e/pkg/datagen"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"
	"github.com/nscaledev/serverest-e2e/test/api"

	"k8s.io/utils/ptr"
)

// getCart fetches and decodes a cart.
func getCart(ctx context.Context, cartID string) serverest.CartRead {
	GinkgoHelper()

	resp, err := client.GetCart(ctx, cartID)
	Expect(err).NotTo(HaveOccurred())

	api.ExpectStatus(resp, http.StatusOK)
	api.ExpectConformsToContract(ctx, validator, resp)

	var cart serverest.CartRead

	Expect(resp.Decode(&cart)).To(Succeed())

	return cart
}

// stockOf returns the quantity in stock of a product.
func stockOf(ctx context.Context, productID string) int {
	GinkgoHelper()

	resp, err := client.GetProduct(ctx, productID)
	Expect(err).NotTo(HaveOccurred())
	api.ExpectStatus(resp, http.StatusOK)

	var product serverest.ProductRead

	Expect(resp.Decode(&product)).To(Succeed())

	return product.Quantity
}

var _ = Describe("Cart Management", Ordered, func() {
	catalog := api.NewSuiteFixture[api.Catalog]("catalog")

	BeforeAll(func(ctx SpecContext) {
		catalog.Set(api.CreateCatalog(ctx, client, config))
	})

	Context("When a user opens a cart", func() {
		Describe("Given a product in stock", func() {
			It("should total the price and quantity of its items", func(ctx SpecContext) {
				fixture := catalog.Get()
				buyer := api.CreateAccount(ctx, client, config, false)

				before := stockOf(ctx, fixture.ProductID)

				cartID := api.CreateCartWithCleanup(ctx, client, config, buyer.Token, datagen.ValidCart(fixture.ProductID, 2))

				cart := getCart(ctx, cartID)
				Expect(cart).To(MatchAllFields(Fields{
					"Products": ConsistOf(MatchAllFields(Fields{
						"ProductID": Equal(fixture.ProductID),
						"Quantity":  Equal(2),
						"UnitPrice": Equal(fixture.Product.Price),
					})),
					"TotalPrice":    Equal(fixture.Product.Price * 2),
					"TotalQuantity": Equal(2),
					"UserID":        Equal(buyer.ID),
					"ID":            Equal(cartID),
				}))

				Expect(stockOf(ctx, fixture.ProductID)).To(Equal(before - 2))
			}, SpecTimeout(api.PerSpecTimeout()))

			It("should be listed for its owner", func(ctx SpecContext) {
				buyer := api.CreateAccount(ctx, client, config, false)
				cartID := api.CreateCartWithCleanup(ctx, client, config, buyer.Token, datagen.ValidCart(catalog.Get().ProductID, 1))

				resp, err := client.ListCarts(ctx, &serverest.CartFilter{
					UserID: ptr.To(buyer.ID),
				})
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusOK)
				api.ExpectConformsToContract(ctx, validator, resp)

				var list serverest.CartList

				Expect(resp.Decode(&list)).To(Succeed())
				Expect(list.Quantity).To(Equal(1))
				Expect(list.Carts).To(ConsistOf(HaveField("ID", cartID)))
			}, SpecTimeout(api.PerSpecTimeout()))
		})

		Describe("Given the user already has a cart", func() {
			It("should refuse a second cart", func(ctx SpecContext) {
				buyer := api.CreateAccount(ctx, client, config, false)
				api.CreateCartWithCleanup(ctx, client, config, buyer.Token, datagen.ValidCart(catalog.Get().ProductID, 1))

				resp, cartID, err := client.CreateCart(ctx, datagen.ValidCart(catalog.Get().ProductID, 1), buyer.Token)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusBadRequest)
				api.ExpectMessage(resp, serverest.MessageSingleCart)
				api.ExpectConformsToContract(ctx, validator, resp)

				Expect(cartID).To(BeEmpty())
			}, SpecTimeout(api.PerSpecTimeout()))
		})

		Describe("Given an unusable item list", func() {
			It("should refuse an unknown product", func(ctx SpecContext) {
				buyer := api.CreateAccount(ctx, client, config, false)

				resp, _, err := client.CreateCart(ctx, datagen.ValidCart("AAAAAAAAAAAAAAAA", 1), buyer.Token)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusBadRequest)
				api.ExpectMessage(resp, serverest.MessageProductNotFound)
			}, SpecTimeout(api.PerSpecTimeout()))

			It("should refuse more than is in stock", func(ctx SpecContext) {
				fixture := catalog.Get()
				buyer := api.CreateAccount(ctx, client, config, false)

				before := stockOf(ctx, fixture.ProductID)

				resp, _, err := client.CreateCart(ctx, datagen.ValidCart(fixture.ProductID, before+1), buyer.Token)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusBadRequest)
				api.ExpectMessage(resp, serverest.MessageInsufficientStock)

				Expect(stockOf(ctx, fixture.ProductID)).To(Equal(before))
			}, SpecTimeout(api.PerSpecTimeout()))

			It("should refuse the same product twice", func(ctx SpecContext) {
				productID := catalog.Get().ProductID
				buyer := api.CreateAccount(ctx, client, config, false)

				resp, _, err := client.CreateCart(ctx, serverest.Cart{
					Products: []serverest.CartItem{
						{ProductID: productID, Quantity: 1},
						{ProductID: productID, Quantity: 1},
					},
				}, buyer.Token)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusBadRequest)
				api.ExpectMessage(resp, serverest.MessageDuplicateProduct)
			}, SpecTimeout(api.PerSpecTimeout()))

			It("should refuse a zero quantity", func(ctx SpecContext) {
				buyer := api.CreateAccount(ctx, client, config, false)

				resp, _, err := client.CreateCart(ctx, datagen.ValidCart(catalog.Get().ProductID, 0), buyer.Token)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusBadRequest)
				api.ExpectFieldError(resp, "produtos[0].quantidade", "produtos[0].quantidade deve ser um número positivo")
			}, SpecTimeout(api.PerSpecTimeout()))

			DescribeTable("should refuse a malformed cart body",
				func(ctx SpecContext, mutate func(*api.PayloadBuilder) *api.PayloadBuilder, field, message string) {
					buyer := api.CreateAccount(ctx, client, config, false)

					resp, err := client.Do(ctx, http.MethodPost, "/carrinhos", mutate(api.NewCartPayload(catalog.Get().ProductID, 1)).Build(), buyer.Token)
					Expect(err).NotTo(HaveOccurred())

					api.ExpectStatus(resp, http.StatusBadRequest)
					api.ExpectFieldError(resp, field, message)
				},
				Entry("without a product list", func(b *api.PayloadBuilder) *api.PayloadBuilder {
					return b.Without("produtos")
				}, "produtos", serverest.MessageProductsRequired, SpecTimeout(api.PerSpecTimeout())),
				Entry("with a product list that is not an array", func(b *api.PayloadBuilder) *api.PayloadBuilder {
					return b.With("produtos", "BeeJh5lz3k6kSIzA")
				}, "produtos", "produtos deve ser um array", SpecTimeout(api.PerSpecTimeout())),
			)
		})
	})

	Context("When a user closes a cart", func() {
		It("should restock the products on cancellation", func(ctx SpecContext) {
			productID := catalog.Get().ProductID
			buyer := api.CreateAccount(ctx, client, config, false)

			before := stockOf(ctx, productID)

			api.CreateCartWithCleanup(ctx, client, config, buyer.Token, datagen.ValidCart(productID, 3))

			Expect(stockOf(ctx, productID)).To(Equal(before - 3))

			resp, err := client.DeleteCart(ctx, buyer.Token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusOK)
			api.ExpectMessage(resp, serverest.MessageCartCancelled)
			api.ExpectConformsToContract(ctx, validator, resp)

			Expect(stockOf(ctx, productID)).To(Equal(before))
		}, SpecTimeout(api.PerSpecTimeout()))

		It("should report when there is no cart to close", func(ctx SpecContext) {
			buyer := api.CreateAccount(ctx, client, config, false)

			resp, err := client.CompletePurchase(ctx, buyer.Token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusOK)
			api.ExpectMessage(resp, serverest.MessageNoCartForUser)
		}, SpecTimeout(api.PerSpecTimeout()))
	})

	Context("When an administrator completes a purchase end to end", func() {
		It("should register, log in, stock a product and buy three", func(ctx SpecContext) {
			admin := api.CreateAccount(ctx, client, config, true)

			product := datagen.ValidProduct()
			productID := api.CreateProductWithCleanup(ctx, client, config, admin.Token, product)

			cartID := api.CreateCartWithCleanup(ctx, client, config, admin.Token, datagen.ValidCart(productID, 3))

			cart := getCart(ctx, cartID)
			Expect(cart.TotalPrice).To(Equal(product.Price * 3))
			Expect(cart.TotalQuantity).To(Equal(3))
			Expect(cart.UserID).To(Equal(admin.ID))

			resp, err := client.CompletePurchase(ctx, admin.Token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusOK)
			api.ExpectMessage(resp, serverest.MessageDeleted)
			api.ExpectConformsToContract(ctx, validator, resp)

			// Completed purchases keep their stock.
			Expect(stockOf(ctx, productID)).To(Equal(product.Quantity - 3))

			resp, err = client.GetCart(ctx, cartID)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusBadRequest)
			api.ExpectMessage(resp, serverest.MessageCartNotFound)
		}, SpecTimeout(api.PerSpecTimeout()))
	})
})

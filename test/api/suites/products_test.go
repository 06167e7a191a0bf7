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
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/onsi/gomega/gstruct"

	"github.com/nscaledev/serverest-e2e/pkg/datagen"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"
	"github.com/nscaledev/serverest-e2e/test/api"

	"k8s.io/utils/ptr"
)

var _ = Describe("Product Management", Ordered, func() {
	catalog := api.NewSuiteFixture[api.Catalog]("catalog")

	BeforeAll(func(ctx SpecContext) {
		catalog.Set(api.CreateCatalog(ctx, client, config))
	})

	Context("When an administrator registers a product", func() {
		Describe("Given a valid payload", func() {
			It("should register the product and return its details", func(ctx SpecContext) {
				product := datagen.ValidProduct()
				productID := api.CreateProductWithCleanup(ctx, client, config, catalog.Get().Admin.Token, product)

				resp, err := client.GetProduct(ctx, productID)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusOK)
				api.ExpectConformsToContract(ctx, validator, resp)

				var read serverest.ProductRead

				Expect(resp.Decode(&read)).To(Succeed())
				Expect(read).To(MatchAllFields(Fields{
					"Name":        Equal(product.Name),
					"Price":       Equal(product.Price),
					"Description": Equal(product.Description),
					"Quantity":    Equal(product.Quantity),
					"ID":          Equal(productID),
				}))
			}, SpecTimeout(api.PerSpecTimeout()))
		})

		Describe("Given a name that is already registered", func() {
			It("should reject the duplicate", func(ctx SpecContext) {
				duplicate := datagen.ValidProduct()
				duplicate.Name = catalog.Get().Product.Name

				resp, productID, err := client.CreateProduct(ctx, duplicate, catalog.Get().Admin.Token)
				Expect(err).NotTo(HaveOccurred())

				api.ExpectStatus(resp, http.StatusBadRequest)
				api.ExpectMessage(resp, serverest.MessageProductNameInUse)
				api.ExpectConformsToContract(ctx, validator, resp)

				Expect(productID).To(BeEmpty())
			}, SpecTimeout(api.PerSpecTimeout()))
		})

		Describe("Given an invalid payload", func() {
			DescribeTable("should reject the payload with a field error",
				func(ctx SpecContext, mutate func(*api.PayloadBuilder) *api.PayloadBuilder, field, message string) {
					resp, err := client.Do(ctx, http.MethodPost, "/produtos", mutate(api.NewProductPayload()).Build(), catalog.Get().Admin.Token)
					Expect(err).NotTo(HaveOccurred())

					api.ExpectStatus(resp, http.StatusBadRequest)
					api.ExpectFieldError(resp, field, message)
					api.ExpectConformsToContract(ctx, validator, resp)
				},
				Entry("missing name",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.Without("nome") },
					"nome", serverest.MessageNameRequired, SpecTimeout(api.PerSpecTimeout())),
				Entry("missing price",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.Without("preco") },
					"preco", serverest.MessagePriceRequired, SpecTimeout(api.PerSpecTimeout())),
				Entry("zero price",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.With("preco", 0) },
					"preco", serverest.MessagePricePositive, SpecTimeout(api.PerSpecTimeout())),
				Entry("negative price",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.With("preco", -10) },
					"preco", serverest.MessagePricePositive, SpecTimeout(api.PerSpecTimeout())),
				Entry("missing description",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.Without("descricao") },
					"descricao", serverest.MessageDescriptionRequired, SpecTimeout(api.PerSpecTimeout())),
				Entry("missing quantity",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.Without("quantidade") },
					"quantidade", serverest.MessageQuantityRequired, SpecTimeout(api.PerSpecTimeout())),
				Entry("negative quantity",
					func(b *api.PayloadBuilder) *api.PayloadBuilder { return b.With("quantidade", -1) },
					"quantidade", serverest.MessageQuantityNonNegative, SpecTimeout(api.PerSpecTimeout())),
			)
		})
	})

	Context("When a regular user manages products", func() {
		It("should forbid registration", func(ctx SpecContext) {
			user := api.CreateAccount(ctx, client, config, false)

			resp, productID, err := client.CreateProduct(ctx, datagen.ValidProduct(), user.Token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusForbidden)
			api.ExpectMessage(resp, serverest.MessageAdminOnly)
			api.ExpectConformsToContract(ctx, validator, resp)

			Expect(productID).To(BeEmpty())
		}, SpecTimeout(api.PerSpecTimeout()))

		It("should forbid deletion", func(ctx SpecContext) {
			user := api.CreateAccount(ctx, client, config, false)

			resp, err := client.DeleteProduct(ctx, catalog.Get().ProductID, user.Token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusForbidden)
			api.ExpectMessage(resp, serverest.MessageAdminOnly)

			resp, err = client.GetProduct(ctx, catalog.Get().ProductID)
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(resp, http.StatusOK)
		}, SpecTimeout(api.PerSpecTimeout()))
	})

	Context("When listing products", func() {
		It("should find a product by name", func(ctx SpecContext) {
			product := catalog.Get().Product

			resp, err := client.ListProducts(ctx, &serverest.ProductFilter{
				Name: ptr.To(product.Name),
			})
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusOK)
			api.ExpectConformsToContract(ctx, validator, resp)

			var list serverest.ProductList

			Expect(resp.Decode(&list)).To(Succeed())
			Expect(list.Quantity).To(Equal(1))
			Expect(list.Products).To(ConsistOf(MatchFields(IgnoreExtras, Fields{
				"ID":    Equal(catalog.Get().ProductID),
				"Price": Equal(product.Price),
			})))
		}, SpecTimeout(api.PerSpecTimeout()))
	})

	Context("When deleting a product", func() {
		It("should no longer be retrievable", func(ctx SpecContext) {
			token := catalog.Get().Admin.Token
			productID := api.CreateProductWithCleanup(ctx, client, config, token, datagen.ValidProduct())

			resp, err := client.DeleteProduct(ctx, productID, token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusOK)
			api.ExpectMessage(resp, serverest.MessageDeleted)
			api.ExpectConformsToContract(ctx, validator, resp)

			resp, err = client.GetProduct(ctx, productID)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusBadRequest)
			api.ExpectMessage(resp, serverest.MessageProductNotFound)
		}, SpecTimeout(api.PerSpecTimeout()))

		It("should refuse while the product is in a cart", func(ctx SpecContext) {
			buyer := api.CreateAccount(ctx, client, config, false)
			cartID := api.CreateCartWithCleanup(ctx, client, config, buyer.Token, datagen.ValidCart(catalog.Get().ProductID, 1))

			resp, err := client.DeleteProduct(ctx, catalog.Get().ProductID, catalog.Get().Admin.Token)
			Expect(err).NotTo(HaveOccurred())

			api.ExpectStatus(resp, http.StatusBadRequest)
			api.ExpectMessage(resp, serverest.MessageProductInCart)
			api.ExpectConformsToContract(ctx, validator, resp)

			fields, err := resp.Fields()
			Expect(err).NotTo(HaveOccurred())
			Expect(fields).To(HaveKeyWithValue("idCarrinhos", ContainElement(cartID)))
		}, SpecTimeout(api.PerSpecTimeout()))
	})
})

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

//nolint:revive // dot imports are standard for Ginkgo/Gomega test code
package api_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/nscaledev/serverest-e2e/pkg/datagen"
	"github.com/nscaledev/serverest-e2e/pkg/fake"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"
	"github.com/nscaledev/serverest-e2e/test/api"
)

// startFake serves a fresh in-memory service until the calling node's
// cleanup runs.
func startFake() (*serverest.Client, *api.TestConfig) {
	GinkgoHelper()

	service, err := fake.New(fake.WithLogger(GinkgoLogr.WithName("fake")))
	Expect(err).NotTo(HaveOccurred())

	server := httptest.NewServer(service.Handler())
	DeferCleanup(server.Close)

	config := &api.TestConfig{
		BaseURL:        server.URL,
		RequestTimeout: 5 * time.Second,
	}

	return serverest.New(server.URL), config
}

var _ = Describe("Cleanup", Ordered, func() {
	var (
		client  *serverest.Client
		config  *api.TestConfig
		catalog api.Catalog
		buyer   api.Account
	)

	BeforeAll(func(ctx SpecContext) {
		client, config = startFake()
		catalog = api.CreateCatalog(ctx, client, config)
	})

	Context("When the service refuses a deletion", func() {
		It("should not fail the spec", func(ctx SpecContext) {
			buyer = api.CreateAccount(ctx, client, config, false)

			// No cancellation is scheduled, so the user cannot be deleted.
			resp, _, err := client.CreateCart(ctx, datagen.ValidCart(catalog.ProductID), buyer.Token)
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(resp, http.StatusCreated)
		})

		It("should leave the resource behind", func(ctx SpecContext) {
			resp, err := client.GetUser(ctx, buyer.ID)
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(resp, http.StatusOK)

			resp, err = client.DeleteCart(ctx, buyer.Token)
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(resp, http.StatusOK)

			resp, err = client.DeleteUser(ctx, buyer.ID)
			Expect(err).NotTo(HaveOccurred())
			api.ExpectStatus(resp, http.StatusOK)
			api.ExpectMessage(resp, serverest.MessageDeleted)
		})
	})

	Context("When the service is unreachable", func() {
		It("should not fail the spec", func(ctx SpecContext) {
			service, err := fake.New()
			Expect(err).NotTo(HaveOccurred())

			server := httptest.NewServer(service.Handler())
			unreachable := serverest.New(server.URL)

			api.CreateUserWithCleanup(ctx, unreachable, config, datagen.ValidUser(false))

			// Cleanups run last in, first out: the server is gone before the
			// user deletion is attempted.
			DeferCleanup(server.Close)
		})
	})
})

var _ = Describe("SuiteFixture", func() {
	Context("When read before being set", func() {
		It("should fail", func() {
			fixture := api.NewSuiteFixture[int]("answer")

			Expect(InterceptGomegaFailure(func() {
				fixture.Get()
			})).To(MatchError(ContainSubstring("suite fixture answer read before being set")))
		})
	})

	Context("When set by BeforeAll", Ordered, func() {
		fixture := api.NewSuiteFixture[int]("answer")

		BeforeAll(func() {
			fixture.Set(42)
		})

		It("should be readable by every spec", func() {
			Expect(fixture.Get()).To(Equal(42))
		})

		It("should refuse a second value", func() {
			Expect(InterceptGomegaFailure(func() {
				fixture.Set(7)
			})).To(MatchError(ContainSubstring("suite fixture answer is already set")))

			Expect(fixture.Get()).To(Equal(42))
		})
	})

	Context("When the setting node completes", Ordered, func() {
		fixture := api.NewSuiteFixture[string]("name")

		It("should hold the value until then", func() {
			fixture.Set("first")
			Expect(fixture.Get()).To(Equal("first"))
		})

		It("should be reset", func() {
			Expect(InterceptGomegaFailure(func() {
				fixture.Get()
			})).To(MatchError(ContainSubstring("read before being set")))

			fixture.Set("second")
			Expect(fixture.Get()).To(Equal("second"))
		})
	})
})

var _ = Describe("Ledger", func() {
	It("should restrict a sweep to what was recorded", func() {
		ledger := api.NewLedger()
		Expect(ledger.Empty()).To(BeTrue())

		ledger.RecordUser("0uxuPY0cbmQhpEz1")
		ledger.RecordProduct("BeeJh5lz3k6kSIzA")
		Expect(ledger.Empty()).To(BeFalse())

		now := time.Now()

		options := ledger.SweepOptions(now.Add(-time.Minute), now)
		Expect(options.From).To(Equal(now.Add(-time.Minute)))
		Expect(options.To).To(Equal(now))
		Expect(options.Users.Contains("0uxuPY0cbmQhpEz1")).To(BeTrue())
		Expect(options.Products.Contains("BeeJh5lz3k6kSIzA")).To(BeTrue())
		Expect(options.Users.Len()).To(Equal(1))

		// Later records do not leak into options already handed out.
		ledger.RecordUser("K6leHdftCeOJj8BJ")
		Expect(options.Users.Contains("K6leHdftCeOJj8BJ")).To(BeFalse())
	})
})

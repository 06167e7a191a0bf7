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

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spjmurray/go-util/pkg/set"

	"github.com/nscaledev/serverest-e2e/pkg/options"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"
	"github.com/nscaledev/serverest-e2e/pkg/sweep"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

type sweepOptions struct {
	baseURL           string
	olderThan         time.Duration
	maxAge            time.Duration
	users             []string
	products          []string
	keep              []string
	dryRun            bool
	concurrency       int
	requestsPerSecond float64
	requestTimeout    time.Duration
}

func (o *sweepOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.baseURL, "base-url", serverest.DefaultBaseURL, "Service to sweep.")
	f.DurationVar(&o.olderThan, "older-than", time.Hour, "Only sweep resources generated at least this long ago, so running suites are left alone.")
	f.DurationVar(&o.maxAge, "max-age", 0, "Only sweep resources generated at most this long ago, 0 for no limit.")
	f.StringSliceVar(&o.users, "users", nil, "Only consider these user identifiers, as recorded by a suite run.")
	f.StringSliceVar(&o.products, "products", nil, "Only consider these product identifiers, as recorded by a suite run.")
	f.StringSliceVar(&o.keep, "keep", nil, "Identifiers that must never be deleted.")
	f.BoolVar(&o.dryRun, "dry-run", false, "Report what would be deleted without deleting.")
	f.IntVar(&o.concurrency, "concurrency", sweep.DefaultConcurrency, "Maximum parallel deletions.")
	f.Float64Var(&o.requestsPerSecond, "requests-per-second", 5, "Request rate cap, 0 for unlimited.")
	f.DurationVar(&o.requestTimeout, "request-timeout", serverest.DefaultRequestTimeout, "Per request timeout.")
}

// window converts the relative age flags into absolute bounds.
func (o *sweepOptions) window(now time.Time) (time.Time, time.Time) {
	from := time.UnixMilli(0)

	if o.maxAge > 0 {
		from = now.Add(-o.maxAge)
	}

	return from, now.Add(-o.olderThan)
}

// candidates turns an optional identifier list into a restriction.
func candidates(ids []string) set.Set[string] {
	if len(ids) == 0 {
		return nil
	}

	return set.New[string](ids...)
}

func run(ctx context.Context, o *sweepOptions) error {
	logger := log.FromContext(ctx)

	client := serverest.New(o.baseURL,
		serverest.WithLogger(logger.WithName("client")),
		serverest.WithTimeout(o.requestTimeout),
		serverest.WithRateLimit(o.requestsPerSecond),
		serverest.WithAgent("serverest-sweep"),
	)

	from, to := o.window(time.Now())

	sweeper := sweep.New(client, &sweep.Options{
		From:        from,
		To:          to,
		Users:       candidates(o.users),
		Products:    candidates(o.products),
		Keep:        set.New[string](o.keep...),
		DryRun:      o.dryRun,
		Concurrency: o.concurrency,
	})

	report, err := sweeper.Sweep(ctx)
	if report != nil {
		logger.Info("sweep report", "dryRun", o.dryRun, "cartsCancelled", report.CartsCancelled, "productsDeleted", report.ProductsDeleted, "usersDeleted", report.UsersDeleted)
	}

	return err
}

func main() {
	var (
		logging options.LoggingOptions
		o       sweepOptions
	)

	cmd := &cobra.Command{
		Use:          "serverest-sweep",
		Short:        "Delete users, products and carts leaked by end-to-end suite runs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.SetupLogging()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := log.IntoContext(cmd.Context(), log.Log.WithName("sweep"))

			return run(ctx, &o)
		},
	}

	logging.AddFlags(cmd.PersistentFlags())
	o.AddFlags(cmd.Flags())

	if err := cmd.ExecuteContext(cr.SetupSignalHandler()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

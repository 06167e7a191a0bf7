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
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/nscaledev/serverest-e2e/pkg/fake"
	"github.com/nscaledev/serverest-e2e/pkg/options"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var (
		logging       options.LoggingOptions
		listenAddress string
		seed          bool
		tokenLifetime time.Duration
	)

	logging.AddFlags(pflag.CommandLine)

	pflag.StringVar(&listenAddress, "listen-address", ":3000", "Address to serve the API on.")
	pflag.BoolVar(&seed, "seed", true, "Preload the demo user and products.")
	pflag.DurationVar(&tokenLifetime, "token-lifetime", fake.DefaultTokenLifetime, "Lifetime of issued tokens.")

	pflag.Parse()

	logging.SetupLogging()

	logger := log.Log.WithName("init")
	logger.Info("service starting", "application", "serverest-fake", "listenAddress", listenAddress)

	opts := []fake.Option{
		fake.WithLogger(log.Log.WithName("fake")),
		fake.WithTokenLifetime(tokenLifetime),
	}

	if seed {
		opts = append(opts, fake.WithSeedData())
	}

	server, err := fake.New(opts...)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              listenAddress,
		Handler:           server.Handler(),
		ReadHeaderTimeout: time.Second,
	}

	ctx := cr.SetupSignalHandler()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "server shutdown failed")
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fmt.Println(err)
		os.Exit(1)
	}
}

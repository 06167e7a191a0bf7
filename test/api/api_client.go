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

package api

import (
	"context"
	"fmt"

	"github.com/onsi/ginkgo/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

// Telemetry carries the per-process tracing and metrics state shared by
// every client the suites construct.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	Registry       *prometheus.Registry
	Metrics        *serverest.Metrics
}

// NewTelemetry creates a tracer provider, exporting spans to the Ginkgo
// output when configured, and a private metrics registry.
func NewTelemetry(config *TestConfig) (*Telemetry, error) {
	var opts []sdktrace.TracerProviderOption

	if config.TraceExport {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(ginkgo.GinkgoWriter), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("creating trace exporter: %w", err)
		}

		opts = append(opts, sdktrace.WithSyncer(exporter))
	}

	registry := prometheus.NewRegistry()

	metrics, err := serverest.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(opts...),
		Registry:       registry,
		Metrics:        metrics,
	}, nil
}

// Shutdown flushes any pending spans.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.TracerProvider.Shutdown(ctx)
}

// Report writes request counts per operation and status to the Ginkgo output.
func (t *Telemetry) Report() {
	families, err := t.Registry.Gather()
	if err != nil {
		ginkgo.GinkgoWriter.Printf("Warning: Failed to gather client metrics: %v\n", err)
		return
	}

	for _, family := range families {
		if family.GetName() != "serverest_client_requests_total" {
			continue
		}

		for _, metric := range family.GetMetric() {
			labels := map[string]string{}

			for _, label := range metric.GetLabel() {
				labels[label.GetName()] = label.GetValue()
			}

			ginkgo.GinkgoWriter.Printf("%s %s status=%s requests=%.0f\n", labels["method"], labels["route"], labels["code"], metric.GetCounter().GetValue())
		}
	}
}

// NewAPIClientWithConfig returns a service client wired to the suite's
// logger, telemetry and politeness settings.
func NewAPIClientWithConfig(config *TestConfig, telemetry *Telemetry) *serverest.Client {
	opts := []serverest.Option{
		serverest.WithLogger(ginkgo.GinkgoLogr.WithName("serverest")),
		serverest.WithTimeout(config.RequestTimeout),
		serverest.WithRateLimit(config.RequestsPerSecond),
		serverest.WithRequestLogging(config.LogRequests, config.LogResponses),
	}

	if telemetry != nil {
		opts = append(opts,
			serverest.WithTracerProvider(telemetry.TracerProvider),
			serverest.WithMetrics(telemetry.Metrics),
		)
	}

	return serverest.New(config.BaseURL, opts...)
}

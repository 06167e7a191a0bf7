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
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

var ErrInvalidBaseURL = errors.New("API_BASE_URL must be an absolute http(s) URL")

type TestConfig struct {
	BaseURL           string
	RequestTimeout    time.Duration
	TestTimeout       time.Duration
	RequestsPerSecond float64
	UseFakeServer     bool
	SkipIntegration   bool
	DebugLogging      bool
	LogRequests       bool
	LogResponses      bool
	TraceExport       bool
	ValidateSchema    bool
	SweepAfterSuite   bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if a configured value is unusable.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{
		BaseURL:           getStringWithDefault("API_BASE_URL", serverest.DefaultBaseURL),
		RequestTimeout:    getDurationWithDefault("REQUEST_TIMEOUT", serverest.DefaultRequestTimeout),
		TestTimeout:       getDurationWithDefault("TEST_TIMEOUT", 30*time.Second),
		RequestsPerSecond: getFloatWithDefault("REQUESTS_PER_SECOND", 0),
		UseFakeServer:     getBoolWithDefault("USE_FAKE_SERVER", false),
		SkipIntegration:   getBoolWithDefault("SKIP_INTEGRATION", false),
		DebugLogging:      getBoolWithDefault("DEBUG_LOGGING", false),
		LogRequests:       getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:      getBoolWithDefault("LOG_RESPONSES", false),
		TraceExport:       getBoolWithDefault("TRACE_EXPORT", false),
		ValidateSchema:    getBoolWithDefault("VALIDATE_SCHEMA", true),
		SweepAfterSuite:   getBoolWithDefault("SWEEP_AFTER_SUITE", false),
	}

	if config.DebugLogging {
		config.LogRequests = true
		config.LogResponses = true
	}

	if err := validateBaseURL(config.BaseURL); err != nil {
		return nil, err
	}

	return config, nil
}

func getStringWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

func loadEnvFile() {
	envPaths := []string{
		"../../.env",    // From test/api/suites directory
		"../../../.env", // From test/contracts/consumer/serverest directory
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

func validateBaseURL(baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	return nil
}

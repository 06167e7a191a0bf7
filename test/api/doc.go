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

// Package api provides end-to-end test utilities for the ServeRest API.
//
// # Separate Client Implementation
//
// The suites drive the service through pkg/serverest, a hand written client,
// and independently check responses against the embedded API description.
// Any legitimate change to the service must have a compensating change in
// both, making API evolution explicit and reviewable. Conversely, a change
// to the service that needs no update here may indicate a problem with it.
//
// The client includes features tailored for testing:
//   - W3C trace context propagation for request correlation
//   - Error logging with trace IDs for debugging
//   - Direct access to HTTP status codes and response bodies
//   - No retries and no error translation, every response is asserted as is
//
// # Fixtures
//
// Per-spec state is created inside the spec. State shared by a container is
// created once in a BeforeAll of an Ordered container and held in a
// SuiteFixture. Everything created registers a DeferCleanup that deletes it
// on a best-effort basis: failures are logged and otherwise ignored.
//
// Generated identifiers embed the millisecond they were created at, so they
// stay unique when specs are retried with --flake-attempts, and anything a
// crashed run leaks can be swept later (see pkg/sweep).
package api

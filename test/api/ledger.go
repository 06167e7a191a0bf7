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
	"slices"
	"sync"
	"time"

	"github.com/spjmurray/go-util/pkg/set"

	"github.com/nscaledev/serverest-e2e/pkg/sweep"
)

// Ledger records the users and products a test process created, so a sweep
// can be limited to them and leave concurrent runs alone.
type Ledger struct {
	lock     sync.Mutex
	users    set.Set[string]
	products set.Set[string]
}

func NewLedger() *Ledger {
	return &Ledger{
		users:    set.New[string](),
		products: set.New[string](),
	}
}

// CreatedResources is the ledger the fixtures record into.
//
//nolint:gochecknoglobals
var CreatedResources = NewLedger()

func (l *Ledger) RecordUser(id string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.users.Add(id)
}

func (l *Ledger) RecordProduct(id string) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.products.Add(id)
}

// Empty reports whether nothing was recorded.
func (l *Ledger) Empty() bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.users.Len() == 0 && l.products.Len() == 0
}

// SweepOptions returns options restricted to the recorded identifiers and
// to resources generated between from and to.
func (l *Ledger) SweepOptions(from, to time.Time) *sweep.Options {
	l.lock.Lock()
	defer l.lock.Unlock()

	return &sweep.Options{
		From:     from,
		To:       to,
		Users:    set.New[string](slices.Collect(l.users.All())...),
		Products: set.New[string](slices.Collect(l.products.All())...),
	}
}

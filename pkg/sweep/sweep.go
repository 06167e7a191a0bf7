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

// Package sweep removes resources leaked by interrupted suite runs.
//
// Suites clean up after themselves on a best-effort basis, so an aborted
// run can leave users, products and carts behind. Every generated value
// carries the millisecond it was generated at, which lets the sweeper pick
// out the generated resources made inside a time window. A window alone
// cannot tell runs apart: it matches every generated record in it, including
// those of a concurrent run against the same deployment. Callers that know
// what they created restrict the sweep to those identifiers.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/spjmurray/go-util/pkg/set"
	"golang.org/x/sync/errgroup"

	"github.com/nscaledev/serverest-e2e/pkg/datagen"
	"github.com/nscaledev/serverest-e2e/pkg/serverest"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	// DefaultConcurrency bounds in flight deletions.
	DefaultConcurrency = 4
)

var (
	ErrInvalidWindow = errors.New("sweep window is empty")
	ErrUnexpected    = errors.New("unexpected response")
)

// Options control what is swept.
type Options struct {
	// From and To bound the generation time of candidates, From inclusive.
	From time.Time
	To   time.Time

	// Users and Products, when not nil, restrict candidates to these
	// identifiers.
	Users    set.Set[string]
	Products set.Set[string]

	// Keep holds identifiers that are never deleted.
	Keep set.Set[string]

	// DryRun reports candidates without deleting anything.
	DryRun bool

	// Concurrency bounds parallel requests, DefaultConcurrency when unset.
	Concurrency int
}

// Report lists what was, or in a dry run would have been, removed.
type Report struct {
	CartsCancelled  []string
	ProductsDeleted []string
	UsersDeleted    []string
}

// Sweeper deletes generated resources through the service API.
type Sweeper struct {
	client  *serverest.Client
	options *Options
}

// New returns a sweeper using client for all requests.
func New(client *serverest.Client, options *Options) *Sweeper {
	return &Sweeper{
		client:  client,
		options: options,
	}
}

// inWindow reports whether a generated value was stamped inside the window.
func (s *Sweeper) inWindow(value string) bool {
	stamp, ok := datagen.ParseStamp(value)
	if !ok {
		return false
	}

	return !stamp.Before(s.options.From) && stamp.Before(s.options.To)
}

// restricted reports whether id falls outside an explicit candidate list.
func restricted(candidates set.Set[string], id string) bool {
	return candidates != nil && !candidates.Contains(id)
}

func (s *Sweeper) concurrency() int {
	if s.options.Concurrency <= 0 {
		return DefaultConcurrency
	}

	return s.options.Concurrency
}

// inventory is the state of the service at the start of a sweep.
type inventory struct {
	users    map[string]serverest.UserRead
	products map[string]serverest.ProductRead
	carts    []serverest.CartRead
}

func decodeList[T any](resp *serverest.Response, err error, out *T) error {
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnexpected, resp)
	}

	return resp.Decode(out)
}

func (s *Sweeper) inventory(ctx context.Context) (*inventory, error) {
	var users serverest.UserList

	resp, err := s.client.ListUsers(ctx, nil)
	if err := decodeList(resp, err, &users); err != nil {
		return nil, err
	}

	var products serverest.ProductList

	resp, err = s.client.ListProducts(ctx, nil)
	if err := decodeList(resp, err, &products); err != nil {
		return nil, err
	}

	var carts serverest.CartList

	resp, err = s.client.ListCarts(ctx, nil)
	if err := decodeList(resp, err, &carts); err != nil {
		return nil, err
	}

	inv := &inventory{
		users:    map[string]serverest.UserRead{},
		products: map[string]serverest.ProductRead{},
		carts:    carts.Carts,
	}

	// Only users with the generated password can be logged into, and
	// therefore only they can have their carts cancelled.
	for _, user := range users.Users {
		if restricted(s.options.Users, user.ID) {
			continue
		}

		if user.Password == datagen.Password && s.inWindow(user.Email) {
			inv.users[user.ID] = user
		}
	}

	for _, product := range products.Products {
		if restricted(s.options.Products, product.ID) {
			continue
		}

		if s.inWindow(product.Name) {
			inv.products[product.ID] = product
		}
	}

	return inv, nil
}

// plan is what a sweep will remove, sorted for stable reporting.
type plan struct {
	cartOwners []string
	products   []string
	users      []string
}

func sorted(s set.Set[string]) []string {
	out := slices.Collect(s.All())
	slices.Sort(out)

	return out
}

// schedule determines what needs to be cancelled and deleted. Products
// referenced by a cart the sweep cannot cancel are left alone, the service
// would refuse to delete them.
func (s *Sweeper) schedule(ctx context.Context, inv *inventory) *plan {
	log := log.FromContext(ctx)

	keep := s.options.Keep
	if keep == nil {
		keep = set.New[string]()
	}

	users := set.New[string](slices.Collect(maps.Keys(inv.users))...).Difference(keep)

	owners := make([]string, 0, len(inv.carts))

	for _, cart := range inv.carts {
		owners = append(owners, cart.UserID)
	}

	cartOwners := sorted(set.New[string](owners...).Intersection(users))

	var blocked []string

	for _, cart := range inv.carts {
		if slices.Contains(cartOwners, cart.UserID) {
			continue
		}

		for _, item := range cart.Products {
			blocked = append(blocked, item.ProductID)
		}
	}

	products := set.New[string](slices.Collect(maps.Keys(inv.products))...)
	blockedProducts := set.New[string](blocked...)

	for id := range products.Intersection(blockedProducts).All() {
		log.Info("product referenced by a foreign cart, skipping", "id", id, "name", inv.products[id].Name)
	}

	return &plan{
		cartOwners: cartOwners,
		products:   sorted(products.Difference(keep).Difference(blockedProducts)),
		users:      sorted(users),
	}
}

// collector gathers results from concurrent workers.
type collector struct {
	lock   sync.Mutex
	done   []string
	errors []error
}

func (c *collector) success(id string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.done = append(c.done, id)
}

func (c *collector) failure(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.errors = append(c.errors, err)
}

// forEach runs fn over the set with bounded concurrency. Failures are
// collected rather than aborting the remaining work.
func (s *Sweeper) forEach(ctx context.Context, ids []string, fn func(context.Context, string) error) ([]string, []error) {
	c := &collector{}

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency())

	for _, id := range ids {
		group.Go(func() error {
			if err := fn(ctx, id); err != nil {
				c.failure(err)
				return nil
			}

			c.success(id)

			return nil
		})
	}

	_ = group.Wait()

	return c.done, c.errors
}

// expect checks a deletion response, tolerating resources that are already gone.
func expect(resp *serverest.Response, err error, what, id string) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w", what, id, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s %s: %s", ErrUnexpected, what, id, resp)
	}

	return nil
}

func (s *Sweeper) cancelCart(inv *inventory) func(context.Context, string) error {
	return func(ctx context.Context, userID string) error {
		user := inv.users[userID]

		resp, token, err := s.client.Login(ctx, serverest.Credentials{Email: user.Email, Password: user.Password})
		if err != nil {
			return fmt.Errorf("logging in as %s: %w", user.Email, err)
		}

		if token == "" {
			return fmt.Errorf("%w: logging in as %s: %s", ErrUnexpected, user.Email, resp)
		}

		resp, err = s.client.DeleteCart(ctx, token)

		return expect(resp, err, "cancelling cart of", userID)
	}
}

// administrator registers a throwaway administrator for product deletion.
// The returned function removes it again.
func (s *Sweeper) administrator(ctx context.Context) (string, func(context.Context), error) {
	admin := datagen.ValidUser(true)

	resp, adminID, err := s.client.CreateUser(ctx, admin)
	if err != nil {
		return "", nil, fmt.Errorf("creating sweep administrator: %w", err)
	}

	if adminID == "" {
		return "", nil, fmt.Errorf("%w: creating sweep administrator: %s", ErrUnexpected, resp)
	}

	cleanup := func(ctx context.Context) {
		if _, err := s.client.DeleteUser(ctx, adminID); err != nil {
			log.FromContext(ctx).Error(err, "failed to delete sweep administrator", "id", adminID)
		}
	}

	resp, token, err := s.client.Login(ctx, admin.Credentials())
	if err != nil {
		cleanup(ctx)

		return "", nil, fmt.Errorf("logging in as sweep administrator: %w", err)
	}

	if token == "" {
		cleanup(ctx)

		return "", nil, fmt.Errorf("%w: logging in as sweep administrator: %s", ErrUnexpected, resp)
	}

	return token, cleanup, nil
}

// Sweep removes, in dependency order, the carts of leaked users, leaked
// products and finally the leaked users themselves.
func (s *Sweeper) Sweep(ctx context.Context) (*Report, error) {
	log := log.FromContext(ctx)

	if !s.options.From.Before(s.options.To) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidWindow, s.options.From, s.options.To)
	}

	inv, err := s.inventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("taking inventory: %w", err)
	}

	plan := s.schedule(ctx, inv)

	log.Info("sweep scheduled", "from", s.options.From, "to", s.options.To, "carts", len(plan.cartOwners), "products", len(plan.products), "users", len(plan.users), "dryRun", s.options.DryRun)

	if s.options.DryRun {
		return &Report{
			CartsCancelled:  plan.cartOwners,
			ProductsDeleted: plan.products,
			UsersDeleted:    plan.users,
		}, nil
	}

	report := &Report{}

	var (
		errs   []error
		failed []error
	)

	report.CartsCancelled, failed = s.forEach(ctx, plan.cartOwners, s.cancelCart(inv))
	errs = append(errs, failed...)

	if len(plan.products) > 0 {
		token, cleanup, err := s.administrator(ctx)
		if err != nil {
			errs = append(errs, err)
		} else {
			report.ProductsDeleted, failed = s.forEach(ctx, plan.products, func(ctx context.Context, id string) error {
				resp, err := s.client.DeleteProduct(ctx, id, token)

				return expect(resp, err, "deleting product", id)
			})
			errs = append(errs, failed...)

			cleanup(ctx)
		}
	}

	report.UsersDeleted, failed = s.forEach(ctx, plan.users, func(ctx context.Context, id string) error {
		resp, err := s.client.DeleteUser(ctx, id)

		return expect(resp, err, "deleting user", id)
	})
	errs = append(errs, failed...)

	log.Info("sweep complete", "carts", len(report.CartsCancelled), "products", len(report.ProductsDeleted), "users", len(report.UsersDeleted), "errors", len(errs))

	return report, utilerrors.NewAggregate(errs)
}

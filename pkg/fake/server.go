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

// Package fake is an in-memory implementation of the service, used to run
// the suites and package tests hermetically. It reproduces the status codes,
// literal messages and business rules of the public deployment: field level
// validation, unique emails and product names, administrator only product
// routes, a single cart per user with stock reservation, and refusal to
// delete users or products a cart still references.
package fake

import (
	cryptorand "crypto/rand"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"

	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

type options struct {
	secret        []byte
	tokenLifetime time.Duration
	now           func() time.Time
	rand          *rand.Rand
	logger        logr.Logger
	seed          bool
}

// Option customises a Server.
type Option func(*options)

// WithSecret sets the token signing key, random by default.
func WithSecret(secret []byte) Option {
	return func(o *options) {
		o.secret = secret
	}
}

func WithTokenLifetime(lifetime time.Duration) Option {
	return func(o *options) {
		o.tokenLifetime = lifetime
	}
}

// WithClock replaces the wall clock used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithRand makes identifier generation deterministic.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

func WithLogger(logger logr.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSeedData preloads the demo user and products of a fresh deployment.
func WithSeedData() Option {
	return func(o *options) {
		o.seed = true
	}
}

// Server serves the fake API.
type Server struct {
	store  *store
	tokens *tokenIssuer
	logger logr.Logger
}

// New returns an empty service.
func New(opts ...Option) (*Server, error) {
	o := &options{
		tokenLifetime: DefaultTokenLifetime,
		now:           time.Now,
		logger:        logr.Discard(),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.secret == nil {
		o.secret = make([]byte, 32)

		if _, err := cryptorand.Read(o.secret); err != nil {
			return nil, fmt.Errorf("generating token secret: %w", err)
		}
	}

	if o.rand == nil {
		o.rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // identifiers, not secrets
	}

	s := &Server{
		store: newStore(o.rand),
		tokens: &tokenIssuer{
			secret:   o.secret,
			lifetime: o.tokenLifetime,
			now:      o.now,
		},
		logger: o.logger,
	}

	if o.seed {
		s.store.seed()
	}

	return s, nil
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(s.logRequests)
	router.NotFound(s.unknownRoute)
	router.MethodNotAllowed(s.unknownRoute)

	router.Post(serverest.RouteLogin, s.login)

	router.Get(serverest.RouteUsers, s.listUsers)
	router.Post(serverest.RouteUsers, s.createUser)
	router.Get(serverest.RouteUser, s.getUser)
	router.Delete(serverest.RouteUser, s.deleteUser)

	router.Get(serverest.RouteProducts, s.listProducts)
	router.Post(serverest.RouteProducts, s.createProduct)
	router.Get(serverest.RouteProduct, s.getProduct)
	router.Delete(serverest.RouteProduct, s.deleteProduct)

	router.Get(serverest.RouteCarts, s.listCarts)
	router.Post(serverest.RouteCarts, s.createCart)
	router.Delete(serverest.RouteCompletePurchase, s.completePurchase)
	router.Delete(serverest.RouteCancelPurchase, s.cancelPurchase)
	router.Get(serverest.RouteCart, s.getCart)

	return router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.V(1).Info("request", "method", r.Method, "path", r.URL.RequestURI(), "status", ww.Status(), "duration", time.Since(start), "traceparent", r.Header.Get("Traceparent"))
	})
}

func setUncacheable(w http.ResponseWriter) {
	w.Header().Add("Cache-Control", "no-cache")
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, status int, body any) {
	setUncacheable(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error(err, "writing response")
	}
}

func (s *Server) handleError(w http.ResponseWriter, err *apiError) {
	s.writeJSONResponse(w, err.status, err.body)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSONResponse(w, status, serverest.MessageResponse{
		Message: message,
	})
}

func (s *Server) unknownRoute(w http.ResponseWriter, r *http.Request) {
	s.writeMessage(w, http.StatusMethodNotAllowed, fmt.Sprintf("Não é possível realizar %s em %s. Acesse https://serverest.dev para ver as rotas disponíveis e como utilizá-las.", r.Method, r.URL.Path))
}

// authenticate resolves the bearer token to a live user. A token whose user
// was deleted, or whose password changed, is as invalid as a forged one.
func (s *Server) authenticate(r *http.Request) (serverest.UserRead, *apiError) {
	claims, err := s.tokens.parse(r.Header.Get("Authorization"))
	if err != nil {
		s.logger.V(1).Info("token rejected", "error", err.Error())

		return serverest.UserRead{}, unauthorized(serverest.MessageTokenInvalid)
	}

	user, ok := s.store.authenticate(claims.Email, claims.Password)
	if !ok {
		return serverest.UserRead{}, unauthorized(serverest.MessageTokenInvalid)
	}

	return user, nil
}

func (s *Server) authenticateAdministrator(r *http.Request) *apiError {
	user, err := s.authenticate(r)
	if err != nil {
		return err
	}

	if user.Administrator != serverest.AdministratorTrue {
		return forbidden(serverest.MessageAdminOnly)
	}

	return nil
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r.Body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	credentials, apiErr := validateCredentials(body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	if _, ok := s.store.authenticate(credentials.Email, credentials.Password); !ok {
		s.handleError(w, unauthorized(serverest.MessageLoginInvalid))
		return
	}

	token, err := s.tokens.issue(credentials.Email, credentials.Password)
	if err != nil {
		s.logger.Error(err, "issuing token")
		s.writeMessage(w, http.StatusInternalServerError, err.Error())

		return
	}

	s.writeJSONResponse(w, http.StatusOK, serverest.LoginResponse{
		Message:       serverest.MessageLoginSuccess,
		Authorization: token,
	})
}

func (s *Server) created(w http.ResponseWriter, id string) {
	s.writeJSONResponse(w, http.StatusCreated, serverest.CreatedResponse{
		Message: serverest.MessageCreated,
		ID:      serverest.ID{Value: id},
	})
}

func (s *Server) deleted(w http.ResponseWriter, removed bool) {
	if !removed {
		s.writeMessage(w, http.StatusOK, serverest.MessageNothingDeleted)
		return
	}

	s.writeMessage(w, http.StatusOK, serverest.MessageDeleted)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if unknown := unknownParameters(query, "_id", "nome", "email", "password", "administrador"); len(unknown) > 0 {
		s.handleError(w, fieldErrors(unknown))
		return
	}

	users := s.store.listUsers(query)

	s.writeJSONResponse(w, http.StatusOK, serverest.UserList{
		Quantity: len(users),
		Users:    users,
	})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r.Body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	user, apiErr := validateUser(body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	id, apiErr := s.store.createUser(user)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.created(w, id)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if apiErr := validateID(id); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	user, apiErr := s.store.getUser(id)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, user)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if apiErr := validateID(id); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	removed, apiErr := s.store.deleteUser(id)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.deleted(w, removed)
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if unknown := unknownParameters(query, "_id", "nome", "preco", "descricao", "quantidade"); len(unknown) > 0 {
		s.handleError(w, fieldErrors(unknown))
		return
	}

	products := s.store.listProducts(query)

	s.writeJSONResponse(w, http.StatusOK, serverest.ProductList{
		Quantity: len(products),
		Products: products,
	})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r.Body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	product, apiErr := validateProduct(body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	if apiErr := s.authenticateAdministrator(r); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	id, apiErr := s.store.createProduct(product)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.created(w, id)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if apiErr := validateID(id); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	product, apiErr := s.store.getProduct(id)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, product)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if apiErr := validateID(id); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	if apiErr := s.authenticateAdministrator(r); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	removed, apiErr := s.store.deleteProduct(id)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.deleted(w, removed)
}

func (s *Server) listCarts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if unknown := unknownParameters(query, "_id", "precoTotal", "quantidadeTotal", "idUsuario"); len(unknown) > 0 {
		s.handleError(w, fieldErrors(unknown))
		return
	}

	carts := s.store.listCarts(query)

	s.writeJSONResponse(w, http.StatusOK, serverest.CartList{
		Quantity: len(carts),
		Carts:    carts,
	})
}

func (s *Server) createCart(w http.ResponseWriter, r *http.Request) {
	body, apiErr := decodeBody(r.Body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	cart, apiErr := validateCart(body)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	user, apiErr := s.authenticate(r)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	id, apiErr := s.store.createCart(user.ID, cart)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.created(w, id)
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if apiErr := validateID(id); apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	cart, apiErr := s.store.getCart(id)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, cart)
}

func (s *Server) closeCart(w http.ResponseWriter, r *http.Request, restock bool, message string) {
	user, apiErr := s.authenticate(r)
	if apiErr != nil {
		s.handleError(w, apiErr)
		return
	}

	if !s.store.closeCart(user.ID, restock) {
		s.writeMessage(w, http.StatusOK, serverest.MessageNoCartForUser)
		return
	}

	s.writeMessage(w, http.StatusOK, message)
}

func (s *Server) completePurchase(w http.ResponseWriter, r *http.Request) {
	s.closeCart(w, r, false, serverest.MessageDeleted)
}

func (s *Server) cancelPurchase(w http.ResponseWriter, r *http.Request) {
	s.closeCart(w, r, true, serverest.MessageCartCancelled)
}

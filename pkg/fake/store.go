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

package fake

import (
	"math/rand/v2"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/nscaledev/serverest-e2e/pkg/serverest"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// store holds the in-memory data and enforces the business rules.
// Collections keep insertion order, as the service lists them.
type store struct {
	lock     sync.Mutex
	rand     *rand.Rand
	users    []serverest.UserRead
	products []serverest.ProductRead
	carts    []serverest.CartRead
}

func newStore(r *rand.Rand) *store {
	return &store{
		rand: r,
	}
}

// seed loads the demo records every fresh deployment of the service carries.
func (s *store) seed() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.users = append(s.users, serverest.UserRead{
		Name:          "Fulano da Silva",
		Email:         "fulano@qa.com",
		Password:      "teste",
		Administrator: serverest.AdministratorTrue,
		ID:            "0uxuPY0cbmQhpEz1",
	})

	s.products = append(s.products,
		serverest.ProductRead{
			Name:        "Logitech MX Vertical",
			Price:       470,
			Description: "Mouse",
			Quantity:    382,
			ID:          "BeeJh5lz3k6kSIzA",
		},
		serverest.ProductRead{
			Name:        "Samsung 60 polegadas",
			Price:       5240,
			Description: "TV",
			Quantity:    49,
			ID:          "K6leHdftCeOJj8BJ",
		},
	)
}

// newID must be called with the lock held.
func (s *store) newID() string {
	id := make([]byte, 16)

	for i := range id {
		id[i] = idAlphabet[s.rand.IntN(len(idAlphabet))]
	}

	return string(id)
}

func (s *store) userIndex(match func(serverest.UserRead) bool) int {
	return slices.IndexFunc(s.users, match)
}

func (s *store) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p serverest.ProductRead) bool {
		return p.ID == id
	})
}

func (s *store) cartIndexForUser(userID string) int {
	return slices.IndexFunc(s.carts, func(c serverest.CartRead) bool {
		return c.UserID == userID
	})
}

func (s *store) createUser(user serverest.User) (string, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.userIndex(func(u serverest.UserRead) bool { return u.Email == string(user.Email) }) >= 0 {
		return "", badRequest(serverest.MessageEmailInUse)
	}

	id := s.newID()

	s.users = append(s.users, serverest.UserRead{
		Name:          user.Name,
		Email:         string(user.Email),
		Password:      user.Password,
		Administrator: user.Administrator,
		ID:            id,
	})

	return id, nil
}

func (s *store) getUser(id string) (serverest.UserRead, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	i := s.userIndex(func(u serverest.UserRead) bool { return u.ID == id })
	if i < 0 {
		return serverest.UserRead{}, badRequest(serverest.MessageUserNotFound)
	}

	return s.users[i], nil
}

// authenticate resolves credentials to a user, the token lookup and the
// login check being the same operation.
func (s *store) authenticate(email, password string) (serverest.UserRead, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	i := s.userIndex(func(u serverest.UserRead) bool {
		return u.Email == email && u.Password == password
	})
	if i < 0 {
		return serverest.UserRead{}, false
	}

	return s.users[i], true
}

// deleteUser reports whether anything was removed.
func (s *store) deleteUser(id string) (bool, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if i := s.cartIndexForUser(id); i >= 0 {
		return false, badRequest(serverest.MessageUserHasCart).with("idCarrinho", s.carts[i].ID)
	}

	i := s.userIndex(func(u serverest.UserRead) bool { return u.ID == id })
	if i < 0 {
		return false, nil
	}

	s.users = slices.Delete(s.users, i, i+1)

	return true, nil
}

func (s *store) listUsers(query url.Values) []serverest.UserRead {
	s.lock.Lock()
	defer s.lock.Unlock()

	result := []serverest.UserRead{}

	for _, u := range s.users {
		if matches(query, map[string]string{
			"_id":           u.ID,
			"nome":          u.Name,
			"email":         u.Email,
			"password":      u.Password,
			"administrador": u.Administrator,
		}) {
			result = append(result, u)
		}
	}

	return result
}

func (s *store) createProduct(product serverest.Product) (string, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if slices.ContainsFunc(s.products, func(p serverest.ProductRead) bool { return p.Name == product.Name }) {
		return "", badRequest(serverest.MessageProductNameInUse)
	}

	id := s.newID()

	s.products = append(s.products, serverest.ProductRead{
		Name:        product.Name,
		Price:       product.Price,
		Description: product.Description,
		Quantity:    product.Quantity,
		ID:          id,
	})

	return id, nil
}

func (s *store) getProduct(id string) (serverest.ProductRead, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return serverest.ProductRead{}, badRequest(serverest.MessageProductNotFound)
	}

	return s.products[i], nil
}

func (s *store) deleteProduct(id string) (bool, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var cartIDs []string

	for _, cart := range s.carts {
		if slices.ContainsFunc(cart.Products, func(item serverest.CartItemRead) bool { return item.ProductID == id }) {
			cartIDs = append(cartIDs, cart.ID)
		}
	}

	if len(cartIDs) > 0 {
		return false, badRequest(serverest.MessageProductInCart).with("idCarrinhos", cartIDs)
	}

	i := s.productIndex(id)
	if i < 0 {
		return false, nil
	}

	s.products = slices.Delete(s.products, i, i+1)

	return true, nil
}

func (s *store) listProducts(query url.Values) []serverest.ProductRead {
	s.lock.Lock()
	defer s.lock.Unlock()

	result := []serverest.ProductRead{}

	for _, p := range s.products {
		if matches(query, map[string]string{
			"_id":        p.ID,
			"nome":       p.Name,
			"preco":      strconv.Itoa(p.Price),
			"descricao":  p.Description,
			"quantidade": strconv.Itoa(p.Quantity),
		}) {
			result = append(result, p)
		}
	}

	return result
}

// createCart checks every item before reserving any stock, so a refused
// cart leaves the catalogue untouched.
func (s *store) createCart(userID string, cart serverest.Cart) (string, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.cartIndexForUser(userID) >= 0 {
		return "", badRequest(serverest.MessageSingleCart)
	}

	seen := map[string]bool{}

	for _, item := range cart.Products {
		if seen[item.ProductID] {
			return "", badRequest(serverest.MessageDuplicateProduct).with("item", item)
		}

		seen[item.ProductID] = true
	}

	read := serverest.CartRead{
		Products: make([]serverest.CartItemRead, 0, len(cart.Products)),
		UserID:   userID,
	}

	indices := make([]int, 0, len(cart.Products))

	for _, item := range cart.Products {
		i := s.productIndex(item.ProductID)
		if i < 0 {
			return "", badRequest(serverest.MessageProductNotFound).with("item", item)
		}

		if s.products[i].Quantity < item.Quantity {
			return "", badRequest(serverest.MessageInsufficientStock).with("item", item)
		}

		indices = append(indices, i)

		read.Products = append(read.Products, serverest.CartItemRead{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: s.products[i].Price,
		})

		read.TotalPrice += s.products[i].Price * item.Quantity
		read.TotalQuantity += item.Quantity
	}

	for n, i := range indices {
		s.products[i].Quantity -= cart.Products[n].Quantity
	}

	read.ID = s.newID()

	s.carts = append(s.carts, read)

	return read.ID, nil
}

func (s *store) getCart(id string) (serverest.CartRead, *apiError) {
	s.lock.Lock()
	defer s.lock.Unlock()

	i := slices.IndexFunc(s.carts, func(c serverest.CartRead) bool { return c.ID == id })
	if i < 0 {
		return serverest.CartRead{}, badRequest(serverest.MessageCartNotFound)
	}

	return s.carts[i], nil
}

// closeCart removes the user's cart, optionally returning its items to
// stock. It reports whether there was a cart to close.
func (s *store) closeCart(userID string, restock bool) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	i := s.cartIndexForUser(userID)
	if i < 0 {
		return false
	}

	if restock {
		for _, item := range s.carts[i].Products {
			if j := s.productIndex(item.ProductID); j >= 0 {
				s.products[j].Quantity += item.Quantity
			}
		}
	}

	s.carts = slices.Delete(s.carts, i, i+1)

	return true
}

func (s *store) listCarts(query url.Values) []serverest.CartRead {
	s.lock.Lock()
	defer s.lock.Unlock()

	result := []serverest.CartRead{}

	for _, c := range s.carts {
		if matches(query, map[string]string{
			"_id":             c.ID,
			"precoTotal":      strconv.Itoa(c.TotalPrice),
			"quantidadeTotal": strconv.Itoa(c.TotalQuantity),
			"idUsuario":       c.UserID,
		}) {
			result = append(result, c)
		}
	}

	return result
}

// matches reports whether every query parameter equals the named field.
func matches(query url.Values, fields map[string]string) bool {
	for key := range query {
		if fields[key] != query.Get(key) {
			return false
		}
	}

	return true
}

// unknownParameters returns query parameters the listing cannot filter on.
func unknownParameters(query url.Values, allowed ...string) map[string]string {
	unknown := map[string]string{}

	for key := range query {
		if !slices.Contains(allowed, key) {
			unknown[key] = key + " não é permitido"
		}
	}

	return unknown
}

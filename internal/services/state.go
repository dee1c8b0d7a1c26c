package services

import (
	"sync"

	"ecofinds/internal/models"
)

// State holds the in-memory snapshots the view layer renders from. Services
// are the only writers; readers get copies. This replaces what used to be a
// pile of shared mutable globals with one accessor-guarded object.
type State struct {
	mu         sync.RWMutex
	products   []models.Product
	myListings []models.Product
	cart       []models.CartItem
	purchases  []models.Purchase
}

// NewState creates an empty state holder.
func NewState() *State {
	return &State{}
}

func (st *State) SetProducts(products []models.Product) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.products = append([]models.Product(nil), products...)
}

// Products returns the last loaded catalog snapshot.
func (st *State) Products() []models.Product {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]models.Product(nil), st.products...)
}

func (st *State) SetMyListings(products []models.Product) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.myListings = append([]models.Product(nil), products...)
}

// MyListings returns the current user's last loaded listings.
func (st *State) MyListings() []models.Product {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]models.Product(nil), st.myListings...)
}

func (st *State) SetCart(items []models.CartItem) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cart = append([]models.CartItem(nil), items...)
}

// Cart returns the last loaded cart snapshot. Totals are computed from this
// snapshot's embedded prices, never from a fresh fetch.
func (st *State) Cart() []models.CartItem {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]models.CartItem(nil), st.cart...)
}

func (st *State) SetPurchases(purchases []models.Purchase) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.purchases = append([]models.Purchase(nil), purchases...)
}

// Purchases returns the current user's last loaded purchases.
func (st *State) Purchases() []models.Purchase {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]models.Purchase(nil), st.purchases...)
}

// Reset drops every per-user snapshot, used on sign-out.
func (st *State) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.myListings = nil
	st.cart = nil
	st.purchases = nil
}

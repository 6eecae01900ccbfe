// Package cart holds the shopping cart of one profile. The durable snapshot
// under the "cart" key is the source of truth on load and is rewritten on
// every mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/storage"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

type ChangeType string

const (
	ChangeAdded   ChangeType = "add_cart_items"
	ChangeRemoved ChangeType = "cart_item_deleted"
	ChangeUpdated ChangeType = "cart_quantity_updated"
	ChangeCleared ChangeType = "cart_cleared"
	ChangeOrdered ChangeType = "cart_items_ordered"
)

type Change struct {
	Type      ChangeType `json:"type"`
	ProductID string     `json:"productID,omitempty"`
	Quantity  int        `json:"quantity,omitempty"`
	Count     int        `json:"count"`
}

// Listener runs after a mutation has been persisted.
type Listener func(ctx context.Context, ch Change)

type Store struct {
	mu        sync.Mutex
	storage   storage.Storage
	items     []models.CartLineItem
	listeners []Listener
}

func New(ctx context.Context, s storage.Storage) *Store {
	st := &Store{storage: s}

	var items []models.CartLineItem
	if _, err := storage.Load(ctx, s, storage.KeyCart, &items); err != nil {
		logging.FromContext(ctx).Warn("cart_load_error", "reason", "snapshot unreadable, starting empty", "error", err)
		items = nil
	}
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		st.items = append(st.items, it)
	}
	return st
}

func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) AddItem(ctx context.Context, p models.Product, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("add %s: %w", p.ID, ErrInvalidQuantity)
	}

	s.mu.Lock()
	prev := slices.Clone(s.items)
	newQty := quantity
	if i := s.index(p.ID); i >= 0 {
		s.items[i].Quantity += quantity
		newQty = s.items[i].Quantity
	} else {
		s.items = append(s.items, models.NewLineItem(p, quantity))
	}
	ch, err := s.commit(ctx, prev, Change{Type: ChangeAdded, ProductID: p.ID, Quantity: newQty})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(ctx, ch)
	return nil
}

func (s *Store) RemoveItem(ctx context.Context, productID string) error {
	s.mu.Lock()
	i := s.index(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	prev := slices.Clone(s.items)
	s.items = slices.Delete(s.items, i, i+1)
	ch, err := s.commit(ctx, prev, Change{Type: ChangeRemoved, ProductID: productID})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(ctx, ch)
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Unknown ids are a
// no-op; a quantity below 1 is rejected and the cart stays as it was.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("update %s: %w", productID, ErrInvalidQuantity)
	}

	s.mu.Lock()
	i := s.index(productID)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	prev := slices.Clone(s.items)
	s.items[i].Quantity = quantity
	ch, err := s.commit(ctx, prev, Change{Type: ChangeUpdated, ProductID: productID, Quantity: quantity})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notify(ctx, ch)
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.storage.Remove(ctx, storage.KeyCart); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear cart: %w", err)
	}
	s.items = nil
	s.mu.Unlock()

	s.notify(ctx, Change{Type: ChangeCleared})
	return nil
}

// RemoveOrdered subtracts the ordered quantities from the cart. Lines added
// or increased after the order snapshot was taken stay in the cart.
func (s *Store) RemoveOrdered(ctx context.Context, ordered []models.CartLineItem) error {
	s.mu.Lock()
	prev := slices.Clone(s.items)
	for _, o := range ordered {
		i := s.index(o.ID)
		if i < 0 {
			continue
		}
		s.items[i].Quantity -= o.Quantity
		if s.items[i].Quantity < 1 {
			s.items = slices.Delete(s.items, i, i+1)
		}
	}

	var err error
	if len(s.items) == 0 {
		err = s.storage.Remove(ctx, storage.KeyCart)
	} else {
		err = storage.Save(ctx, s.storage, storage.KeyCart, s.items)
	}
	if err != nil {
		s.items = prev
		s.mu.Unlock()
		return fmt.Errorf("remove ordered items: %w", err)
	}
	ch := Change{Type: ChangeOrdered, Count: s.count()}
	s.mu.Unlock()

	s.notify(ctx, ch)
	return nil
}

func (s *Store) Items() []models.CartLineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *Store) Item(productID string) (models.CartLineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(productID); i >= 0 {
		return s.items[i], true
	}
	return models.CartLineItem{}, false
}

// Total is the exact sum of price * quantity; rounding is left to display.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Sum(s.items)
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count()
}

func Sum(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (s *Store) index(productID string) int {
	return slices.IndexFunc(s.items, func(it models.CartLineItem) bool { return it.ID == productID })
}

func (s *Store) count() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// commit persists the current items; on failure the previous items are restored.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context, prev []models.CartLineItem, ch Change) (Change, error) {
	if err := storage.Save(ctx, s.storage, storage.KeyCart, s.items); err != nil {
		s.items = prev
		return Change{}, fmt.Errorf("persist cart: %w", err)
	}
	ch.Count = s.count()
	return ch, nil
}

func (s *Store) notify(ctx context.Context, ch Change) {
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(ctx, ch)
	}
}

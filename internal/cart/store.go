package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/storage"
)

// Store owns the cart. All reads and mutations go through it; callers only
// ever see copies of the lines. Every mutation is written through to the
// cart slot before it becomes visible, so a persistence failure leaves the
// in-memory cart unchanged.
type Store struct {
	mu      sync.Mutex
	storage storage.Store
	items   []domain.CartLine
	subs    map[int]func(totalItems int)
	nextSub int
}

// NewStore restores the cart from the cart slot when present, otherwise
// starts empty. Unreadable or corrupt state is logged and treated as empty.
func NewStore(ctx context.Context, st storage.Store) *Store {
	s := &Store{
		storage: st,
		subs:    make(map[int]func(int)),
	}

	data, err := st.Get(ctx, storage.KeyCart)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotNotFound) {
			log.Printf("cart restore error: %v \n", err)
		}
		return s
	}

	var items []domain.CartLine
	if err := json.Unmarshal(data, &items); err != nil {
		log.Printf("cart decode error: %v \n", err)
		return s
	}

	s.items = items
	return s
}

// AddItem increments the line for the product by one, inserting a new line
// with quantity 1 when none exists.
func (s *Store) AddItem(ctx context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyItems()
	found := false
	for i := range next {
		if next[i].ID == product.ID {
			next[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		next = append(next, domain.CartLine{Product: product, Quantity: 1})
	}

	return s.commit(ctx, next)
}

// RemoveItem deletes the line for the product. Absent lines are a no-op,
// not an error.
func (s *Store) RemoveItem(ctx context.Context, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]domain.CartLine, 0, len(s.items))
	for _, line := range s.items {
		if line.ID != productID {
			next = append(next, line)
		}
	}
	if len(next) == len(s.items) {
		return nil
	}

	return s.commit(ctx, next)
}

// UpdateQuantity sets the line's quantity to exactly quantity. A quantity
// of zero or less removes the line. The line must already exist; the
// product is never implicitly added.
func (s *Store) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.copyItems()
	found := false
	for i := range next {
		if next[i].ID == productID {
			next[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	return s.commit(ctx, next)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, []domain.CartLine{})
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.copyItems()
}

// TotalItems returns the sum of all line quantities.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return totalItems(s.items)
}

// TotalPrice returns the sum of price times quantity across all lines.
// No currency rounding is applied; rounding is a display concern.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, line := range s.items {
		total += line.Price * float64(line.Quantity)
	}
	return total
}

// Subscribe registers a listener invoked synchronously after every committed
// mutation with the new total item count. Listeners must not call back into
// the store. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(totalItems int)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// commit persists the candidate state before swapping it in. Callers hold
// the lock.
func (s *Store) commit(ctx context.Context, next []domain.CartLine) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}

	if err := s.storage.Set(ctx, storage.KeyCart, data); err != nil {
		log.Printf("cart persist error: %v \n", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}

	s.items = next

	total := totalItems(next)
	for _, fn := range s.subs {
		fn(total)
	}
	return nil
}

func (s *Store) copyItems() []domain.CartLine {
	next := make([]domain.CartLine, len(s.items))
	copy(next, s.items)
	return next
}

func totalItems(items []domain.CartLine) int {
	total := 0
	for _, line := range items {
		total += line.Quantity
	}
	return total
}

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/cart"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/storage"
	"github.com/google/uuid"
)

var (
	ErrEmptyCart = errors.New("cart is empty")
	ErrNoOrder   = errors.New("no order placed yet")
)

// ShippingForm is the customer input validated at checkout.
type ShippingForm struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

var emailShape = regexp.MustCompile(`\S+@\S+\.\S+`)

// Validate checks the shipping form and returns a field name to error
// message map. An empty map means the form is valid. Every field is required
// non-empty after trimming; email must additionally look like local@domain.
func Validate(form ShippingForm) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(form.Name) == "" {
		errs["name"] = "Name is required"
	}
	email := strings.TrimSpace(form.Email)
	if email == "" {
		errs["email"] = "Email is required"
	} else if !emailShape.MatchString(email) {
		errs["email"] = "Email is invalid"
	}
	if strings.TrimSpace(form.Address) == "" {
		errs["address"] = "Address is required"
	}
	if strings.TrimSpace(form.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(form.Zip) == "" {
		errs["zip"] = "ZIP code is required"
	}
	if strings.TrimSpace(form.Country) == "" {
		errs["country"] = "Country is required"
	}

	return errs
}

// Service reads the cart, validates the shipping form and turns both into a
// persisted order snapshot.
type Service struct {
	cart    *cart.Store
	storage storage.Store
	now     func() time.Time
	newID   func() string
}

func NewService(cartStore *cart.Store, st storage.Store) *Service {
	return &Service{
		cart:    cartStore,
		storage: st,
		now:     time.Now,
		newID:   func() string { return "ORD-" + uuid.NewString() },
	}
}

// Submit validates the form and on success persists the order snapshot and
// empties the cart. The two side effects are atomic: either the snapshot is
// saved and the cart cleared, or neither happens. Field errors are returned
// in the map; the order is only non-nil when the map is empty and err is nil.
func (s *Service) Submit(ctx context.Context, form ShippingForm) (*domain.Order, map[string]string, error) {
	if errs := Validate(form); len(errs) > 0 {
		return nil, errs, nil
	}

	items := s.cart.Items()
	if len(items) == 0 {
		return nil, nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:    s.newID(),
		Items: items,
		Total: s.cart.TotalPrice(),
		Date:  s.now(),
		Customer: domain.Customer{
			Name:  strings.TrimSpace(form.Name),
			Email: strings.TrimSpace(form.Email),
			Address: fmt.Sprintf("%s, %s, %s, %s",
				form.Address, form.City, form.Zip, form.Country),
		},
	}

	data, err := json.Marshal(order)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode order: %w", err)
	}

	if err := s.storage.Set(ctx, storage.KeyLastOrder, data); err != nil {
		log.Printf("order persist error: %v \n", err)
		return nil, nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if err := s.cart.Clear(ctx); err != nil {
		// Roll the snapshot back so order and cart stay consistent.
		if delErr := s.storage.Delete(ctx, storage.KeyLastOrder); delErr != nil {
			log.Printf("order rollback error: %v \n", delErr)
		}
		return nil, nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	return order, nil, nil
}

// LastOrder returns the most recent order snapshot.
func (s *Service) LastOrder(ctx context.Context) (*domain.Order, error) {
	data, err := s.storage.Get(ctx, storage.KeyLastOrder)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return nil, ErrNoOrder
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read order: %w", err)
	}

	var order domain.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order: %w", err)
	}

	return &order, nil
}

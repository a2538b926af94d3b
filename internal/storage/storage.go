package storage

import (
	"context"
	"errors"
)

// Slot keys used by the storefront core. Readers treat an absent key as
// "no data" rather than an error.
const (
	KeyCart             = "cart-storage"
	KeyCachedProducts   = "cached_products"
	KeyCachedProductsAt = "cached_products_timestamp"
	KeyLastOrder        = "last_order"
)

// Store is a durable key/value slot store.
// Consumers define this interface, not the backend implementations.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrSlotNotFound = errors.New("slot not found")

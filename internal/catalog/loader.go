package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/storage"
	"golang.org/x/sync/singleflight"
)

// State is the user-visible loading state of the catalog.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const (
	// DefaultCacheTTL is how long a cached catalog counts as fresh.
	DefaultCacheTTL = time.Hour

	refreshTimeout = 30 * time.Second

	errFetchFailed = "Failed to fetch products. Please try again later."
)

// Fetcher is the catalog read operation the loader depends on.
type Fetcher interface {
	Products(ctx context.Context) ([]domain.Product, error)
}

// Loader serves the catalog from a time-boxed storage cache and refreshes it
// from the remote API. A fresh cache is served immediately and revalidated in
// the background; a stale or missing cache forces a blocking fetch. Fetch
// failures fall back to stale cached data when any exists.
//
// When several fetches overlap (initial, background, online-triggered), the
// last one to complete wins on both cache and served data.
type Loader struct {
	fetcher Fetcher
	storage storage.Store
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	state    State
	products []domain.Product
	errMsg   string

	sfg    singleflight.Group
	online chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
	bg     sync.WaitGroup
}

func NewLoader(fetcher Fetcher, st storage.Store, ttl time.Duration) *Loader {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Loader{
		fetcher: fetcher,
		storage: st,
		ttl:     ttl,
		now:     time.Now,
		state:   StateIdle,
		online:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Start performs the initial load and begins watching for online signals.
func (l *Loader) Start(ctx context.Context) {
	l.wg.Add(1)
	go l.watchOnline(ctx)
	l.Load(ctx)
}

// NotifyOnline signals that network connectivity was regained. The full load
// sequence re-runs regardless of cache age. Safe to call after Close.
func (l *Loader) NotifyOnline() {
	select {
	case l.online <- struct{}{}:
	default:
	}
}

// Close detaches the online watcher and waits for in-flight background
// refreshes to settle.
func (l *Loader) Close() {
	close(l.done)
	l.wg.Wait()
	l.bg.Wait()
}

// Snapshot returns the served products, the loading state and the error
// message ("" when there is none).
func (l *Loader) Snapshot() ([]domain.Product, State, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	products := make([]domain.Product, len(l.products))
	copy(products, l.products)
	return products, l.state, l.errMsg
}

// Load runs the cache-check-then-fetch sequence once. A fresh cache answers
// immediately and triggers a silent background refresh; otherwise the fetch
// blocks until it resolves.
func (l *Loader) Load(ctx context.Context) {
	cached, capturedAt, ok := l.readCache(ctx)
	if ok && l.now().Sub(capturedAt) < l.ttl {
		l.mu.Lock()
		l.products = cached
		l.state = StateReady
		l.errMsg = ""
		l.mu.Unlock()

		l.refreshInBackground()
		return
	}

	l.mu.Lock()
	l.state = StateLoading
	l.errMsg = ""
	l.mu.Unlock()

	products, err := l.fetcher.Products(ctx)
	if err != nil {
		log.Printf("catalog fetch error: %v \n", err)
		l.mu.Lock()
		l.state = StateError
		l.errMsg = errFetchFailed
		if ok {
			// Stale data beats a blank screen.
			l.products = cached
		}
		l.mu.Unlock()
		return
	}

	l.writeCache(ctx, products)
	l.mu.Lock()
	l.products = products
	l.state = StateReady
	l.errMsg = ""
	l.mu.Unlock()
}

// refreshInBackground revalidates the cache without leaving the Ready state.
// Failures are swallowed and leave cache and served data untouched.
// Singleflight keeps at most one refresh in flight.
func (l *Loader) refreshInBackground() {
	l.bg.Add(1)
	go func() {
		defer l.bg.Done()
		_, _, _ = l.sfg.Do("refresh", func() (interface{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			products, err := l.fetcher.Products(ctx)
			if err != nil {
				log.Printf("background catalog refresh failed: %v \n", err)
				return nil, nil
			}

			l.writeCache(ctx, products)
			l.mu.Lock()
			l.products = products
			l.mu.Unlock()
			return nil, nil
		})
	}()
}

func (l *Loader) watchOnline(ctx context.Context) {
	defer l.wg.Done()
	for {
		select {
		case <-l.online:
			l.Load(ctx)
		case <-l.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// readCache returns the cached catalog and its capture time. Any read or
// decode problem degrades to a cache miss.
func (l *Loader) readCache(ctx context.Context) ([]domain.Product, time.Time, bool) {
	data, err := l.storage.Get(ctx, storage.KeyCachedProducts)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotNotFound) {
			log.Printf("catalog cache read error: %v \n", err)
		}
		return nil, time.Time{}, false
	}

	tsRaw, err := l.storage.Get(ctx, storage.KeyCachedProductsAt)
	if err != nil {
		if !errors.Is(err, storage.ErrSlotNotFound) {
			log.Printf("catalog cache timestamp read error: %v \n", err)
		}
		return nil, time.Time{}, false
	}

	millis, err := strconv.ParseInt(string(tsRaw), 10, 64)
	if err != nil {
		log.Printf("catalog cache timestamp parse error: %v \n", err)
		return nil, time.Time{}, false
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Printf("catalog cache decode error: %v \n", err)
		return nil, time.Time{}, false
	}

	return products, time.UnixMilli(millis), true
}

// writeCache replaces both cache slots. Write failures are logged; the
// fetched data is still served.
func (l *Loader) writeCache(ctx context.Context, products []domain.Product) {
	data, err := json.Marshal(products)
	if err != nil {
		log.Printf("catalog cache encode error: %v \n", err)
		return
	}

	if err := l.storage.Set(ctx, storage.KeyCachedProducts, data); err != nil {
		log.Printf("catalog cache write error: %v \n", err)
		return
	}

	ts := strconv.FormatInt(l.now().UnixMilli(), 10)
	if err := l.storage.Set(ctx, storage.KeyCachedProductsAt, []byte(ts)); err != nil {
		log.Printf("catalog cache timestamp write error: %v \n", err)
	}
}

package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
	{"id": 1, "title": "Laptop", "price": 1299.99, "description": "A powerful laptop",
	 "category": "electronics", "image": "https://example.com/laptop.jpg",
	 "rating": {"rate": 4.5, "count": 120}},
	{"id": 2, "title": "Mouse", "price": 29.99, "description": "Wireless mouse",
	 "category": "electronics", "image": "https://example.com/mouse.jpg",
	 "rating": {"rate": 3.8, "count": 80}}
]`

func TestProducts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	}))
	t.Cleanup(server.Close)

	sut := NewClient(server.URL, 5*time.Second)
	products, err := sut.Products(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Laptop", products[0].Title)
	assert.Equal(t, 1299.99, products[0].Price)
	assert.Equal(t, 4.5, products[0].Rating.Rate)
	assert.Equal(t, 120, products[0].Rating.Count)
}

func TestProducts_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	sut := NewClient(server.URL, 5*time.Second)
	_, err := sut.Products(context.Background())
	assert.Error(t, err)
}

func TestProducts_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	t.Cleanup(server.Close)

	sut := NewClient(server.URL, 5*time.Second)
	_, err := sut.Products(context.Background())
	assert.Error(t, err)
}

func TestProductsOrEmpty_SwallowsFailure(t *testing.T) {
	sut := NewClient("http://127.0.0.1:0", time.Second)

	products := sut.ProductsOrEmpty(context.Background())

	require.NotNil(t, products)
	assert.Empty(t, products)
}

func TestProductsOrEmpty_ReturnsCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productsJSON))
	}))
	t.Cleanup(server.Close)

	sut := NewClient(server.URL, 5*time.Second)
	products := sut.ProductsOrEmpty(context.Background())
	assert.Len(t, products, 2)
}

func TestProducts_BreakerOpensOnRepeatedFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	sut := NewClient(server.URL, 5*time.Second)
	for i := 0; i < 10; i++ {
		_, err := sut.Products(context.Background())
		require.Error(t, err)
	}

	// Once the breaker opens, calls fail fast without reaching the server.
	assert.Less(t, atomic.LoadInt32(&hits), int32(10))
}

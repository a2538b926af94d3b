package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()

	// In-memory Redis server
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sut := setupTestRedis(t)

	require.NoError(t, sut.Set(ctx, KeyCart, []byte(`[{"id":1,"quantity":2}]`)))

	got, err := sut.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":1,"quantity":2}]`), got)
}

func TestRedisStore_AbsentKey(t *testing.T) {
	sut := setupTestRedis(t)

	_, err := sut.Get(context.Background(), KeyLastOrder)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRedisStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	sut := setupTestRedis(t)

	require.NoError(t, sut.Set(ctx, KeyCachedProducts, []byte("old")))
	require.NoError(t, sut.Set(ctx, KeyCachedProducts, []byte("new")))

	got, err := sut.Get(ctx, KeyCachedProducts)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestRedisStore_Delete(t *testing.T) {
	ctx := context.Background()
	sut := setupTestRedis(t)

	require.NoError(t, sut.Set(ctx, KeyLastOrder, []byte("order")))
	require.NoError(t, sut.Delete(ctx, KeyLastOrder))

	_, err := sut.Get(ctx, KeyLastOrder)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestRedisStore_KeysAreNamespaced(t *testing.T) {
	assert.Equal(t, "storefront:cart-storage", slotKey(KeyCart))
}

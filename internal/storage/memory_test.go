package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	sut := NewMemoryStore()

	require.NoError(t, sut.Set(ctx, KeyCart, []byte(`[{"id":1}]`)))

	got, err := sut.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":1}]`), got)
}

func TestMemoryStore_AbsentKey(t *testing.T) {
	sut := NewMemoryStore()

	_, err := sut.Get(context.Background(), KeyLastOrder)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestMemoryStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	sut := NewMemoryStore()

	require.NoError(t, sut.Set(ctx, KeyCart, []byte("old")))
	require.NoError(t, sut.Set(ctx, KeyCart, []byte("new")))

	got, err := sut.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	sut := NewMemoryStore()

	require.NoError(t, sut.Set(ctx, KeyLastOrder, []byte("order")))
	require.NoError(t, sut.Delete(ctx, KeyLastOrder))

	_, err := sut.Get(ctx, KeyLastOrder)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	sut := NewMemoryStore()

	value := []byte("original")
	require.NoError(t, sut.Set(ctx, KeyCart, value))
	value[0] = 'X'

	got, err := sut.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := sut.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}

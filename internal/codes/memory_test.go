package codes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, ImagePrefix+"t1", "AB12", 300*time.Second))

	value, err := store.Get(ctx, ImagePrefix+"t1")
	require.NoError(t, err)
	assert.Equal(t, "AB12", value)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOverwriteResetsValue(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, SmsPrefix+"13800000000", "111111", time.Minute))
	require.NoError(t, store.Set(ctx, SmsPrefix+"13800000000", "222222", time.Minute))

	value, err := store.Get(ctx, SmsPrefix+"13800000000")
	require.NoError(t, err)
	assert.Equal(t, "222222", value)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Set(ctx, SmsPrefix+"13800000000", "123456", 300*time.Second))

	store.SetClock(func() time.Time { return now.Add(301 * time.Second) })

	_, err := store.Get(ctx, SmsPrefix+"13800000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, store.Delete(ctx, "k"))
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateStore_SetNX(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "lock:event:1", []byte("a"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "lock:event:1", []byte("b"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// the first holder still owns the lock
	deleted, err := s.CompareAndDelete(ctx, "lock:event:1", []byte("b"))
	require.NoError(t, err)
	assert.False(t, deleted)
	deleted, err = s.CompareAndDelete(ctx, "lock:event:1", []byte("a"))
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestMemoryStateStore_SetNXAfterExpiry(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()

	ok, err := s.SetNX(ctx, "k", []byte("a"), 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	ok, err = s.SetNX(ctx, "k", []byte("b"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStateStore_CompareAndDelete(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("mine"), time.Minute))

	deleted, err := s.CompareAndDelete(ctx, "k", []byte("theirs"))
	require.NoError(t, err)
	assert.False(t, deleted)

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	deleted, err = s.CompareAndDelete(ctx, "k", []byte("mine"))
	require.NoError(t, err)
	assert.True(t, deleted)

	exists, err = s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	deleted, err = s.CompareAndDelete(ctx, "missing", []byte("mine"))
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStateStore_TTL(t *testing.T) {
	s := NewMemoryStateStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("x"), 10*time.Millisecond))
	require.NoError(t, s.Set(ctx, "forever", []byte("y"), 0))

	time.Sleep(20 * time.Millisecond)

	exists, err := s.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	deleted, err := s.CompareAndDelete(ctx, "short", []byte("x"))
	require.NoError(t, err)
	assert.False(t, deleted, "expired entries do not match")

	exists, err = s.Exists(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, exists)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMutex_LockUnlock(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	m := NewMutex(client, "index:doc-1", WithLockTTL(time.Second))
	require.NoError(t, m.Lock(ctx))
	assert.True(t, mr.Exists("insuredoc:lock:index:doc-1"))

	require.NoError(t, m.Unlock(ctx))
	assert.False(t, mr.Exists("insuredoc:lock:index:doc-1"))
}

func TestMutex_Contention(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	a := NewMutex(client, "doc", WithRetry(2, 5*time.Millisecond))
	b := NewMutex(client, "doc", WithRetry(2, 5*time.Millisecond))

	require.NoError(t, a.Lock(ctx))
	assert.Equal(t, ErrLockNotAcquired, b.Lock(ctx))

	assert.Equal(t, ErrLockNotHeld, b.Unlock(ctx))
	require.NoError(t, a.Unlock(ctx))
	assert.NoError(t, b.Lock(ctx))
}

func TestMutex_ExpiresAfterTTL(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	a := NewMutex(client, "doc", WithLockTTL(time.Second))
	b := NewMutex(client, "doc")

	ok, err := a.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = b.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMutex_Extend(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	a := NewMutex(client, "doc", WithLockTTL(time.Second))
	require.NoError(t, a.Lock(ctx))

	ok, err := a.Extend(ctx, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, mr.TTL("insuredoc:lock:doc"))

	other := NewMutex(client, "doc")
	ok, err = other.Extend(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMutex_LockHonoursContext(t *testing.T) {
	client, _ := newTestClient(t)
	holder := NewMutex(client, "doc")
	require.NoError(t, holder.Lock(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	waiter := NewMutex(client, "doc", WithRetry(5, time.Second))
	assert.ErrorIs(t, waiter.Lock(ctx), context.Canceled)
}

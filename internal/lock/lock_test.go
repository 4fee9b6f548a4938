package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/pkg/models"
)

func TestKeyedMutex_Exclusive(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := k.Acquire(ctx, ProfileKey("u"))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	assert.Equal(t, 0, k.Len())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	r1, err := k.Acquire(ctx, "a")
	require.NoError(t, err)
	r2, err := k.Acquire(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, k.Len())
	r1()
	r2()
	assert.Equal(t, 0, k.Len())
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	k := NewKeyedMutex()
	release, err := k.Acquire(context.Background(), "a")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Acquire(ctx, "a")
	assert.ErrorIs(t, err, models.ErrLockNotAcquired)
}

func TestKeyedMutex_DoubleReleaseIsSafe(t *testing.T) {
	k := NewKeyedMutex()
	release, err := k.Acquire(context.Background(), "a")
	require.NoError(t, err)
	release()
	release()

	again, err := k.Acquire(context.Background(), "a")
	require.NoError(t, err)
	again()
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	client, err := NewRedisClient(ctx, "localhost:6379", "", 0)
	if err != nil {
		t.Skipf("Skipping test: Redis not available: %v", err)
	}
	defer client.Close()

	l := NewRedisLocker(client, time.Second)
	key := ProfileKey("redis-user-" + time.Now().String())
	release, err := l.Acquire(ctx, key)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(short, key)
	assert.ErrorIs(t, err, models.ErrLockNotAcquired)

	release()
	again, err := l.Acquire(ctx, key)
	require.NoError(t, err)
	again()
}

package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "itemtexture:backend:test"

// newReplica returns a locker with its own client, as a separate service
// replica would have.
func newReplica(t *testing.T, mr *miniredis.Miniredis, ttl time.Duration) Locker {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	l := NewRedis(client, testKey, ttl).(*redisLocker)
	l.pollEvery = 5 * time.Millisecond
	return l
}

func TestRedisLockExcludesOtherReplicas(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newReplica(t, mr, time.Minute)
	b := newReplica(t, mr, time.Minute)

	releaseA, err := a.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, mr.Exists(testKey))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = b.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	releaseA()
	assert.False(t, mr.Exists(testKey))

	releaseB, err := b.Acquire(context.Background())
	require.NoError(t, err)
	releaseB()
}

func TestRedisLockSerialisesConcurrentHolders(t *testing.T) {
	mr := miniredis.RunT(t)

	var active, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		l := newReplica(t, mr, time.Minute)
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background())
			if !assert.NoError(t, err) {
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&active, -1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak)
}

func TestRedisLockReleaseKeepsForeignLease(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newReplica(t, mr, time.Minute)

	release, err := a.Acquire(context.Background())
	require.NoError(t, err)

	// the lease moved to someone else, e.g. after an expiry
	require.NoError(t, mr.Set(testKey, "another-replica"))

	release()

	got, err := mr.Get(testKey)
	require.NoError(t, err)
	assert.Equal(t, "another-replica", got)
}

func TestRedisLockReleaseIsIdempotent(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newReplica(t, mr, time.Minute)
	b := newReplica(t, mr, time.Minute)

	releaseA, err := a.Acquire(context.Background())
	require.NoError(t, err)
	releaseA()

	releaseB, err := b.Acquire(context.Background())
	require.NoError(t, err)
	defer releaseB()

	releaseA()
	assert.True(t, mr.Exists(testKey))
}

func TestRedisLockAcquireHonoursContext(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set(testKey, "held-elsewhere"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newReplica(t, mr, time.Minute).Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRedisLockRenewsLeaseWhileHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	ttl := 300 * time.Millisecond
	a := newReplica(t, mr, ttl)
	b := newReplica(t, mr, ttl)

	release, err := a.Acquire(context.Background())
	require.NoError(t, err)
	defer release()

	// age the lease; the holder must push the expiry back out
	mr.FastForward(250 * time.Millisecond)
	assert.Eventually(t, func() bool {
		return mr.TTL(testKey) > 250*time.Millisecond
	}, 2*time.Second, 10*time.Millisecond)

	// only the renewed lease is left; without renewal this would expire it
	mr.FastForward(100 * time.Millisecond)
	require.True(t, mr.Exists(testKey))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = b.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only if this holder still owns it.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

const minLeaseTTL = 30 * time.Millisecond

type redisLocker struct {
	client    *redis.Client
	key       string
	ttl       time.Duration
	pollEvery time.Duration
}

// NewRedis shares one backend between several service replicas. The lease
// expires after ttl so a crashed holder cannot wedge the backend forever; a
// live holder renews it every ttl/3 until release.
func NewRedis(client *redis.Client, key string, ttl time.Duration) Locker {
	if ttl < minLeaseTTL {
		ttl = minLeaseTTL
	}
	return &redisLocker{
		client:    client,
		key:       key,
		ttl:       ttl,
		pollEvery: 100 * time.Millisecond,
	}
}

func (l *redisLocker) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollEvery)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return nil, err
		}
		if ok {
			return l.hold(token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// hold starts the lease renewal and returns the release func for token.
func (l *redisLocker) hold(token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(token)
		})
	}
}

func (l *redisLocker) renew(token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
		kept, err := renewScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		cancel()

		switch {
		case err != nil:
			logrus.WithError(err).WithField("key", l.key).Warn("failed to renew backend lock")
		case kept == 0:
			logrus.WithField("key", l.key).Error("backend lock lost before release")
			return
		}
	}
}

func (l *redisLocker) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
		logrus.WithError(err).WithField("key", l.key).Warn("failed to release backend lock")
	}
}

func NewRedisClient(addr, password string, db int, dial, read, write time.Duration) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dial,
		ReadTimeout:  read,
		WriteTimeout: write,
	})

	logrus.WithField("addr", addr).Info("redis client configured for backend lock")
	return client
}

package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "bookmarker:lock:"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type (
	// Locker serializes work on a key across requests. The returned func
	// releases the lock and is safe to call once.
	Locker interface {
		Lock(ctx context.Context, key string) (func(), error)
	}

	RedisLocker struct {
		client *redis.Client
		ttl    time.Duration
		retry  time.Duration
		logger *zap.SugaredLogger
	}

	LocalLocker struct {
		mu    sync.Mutex
		locks map[string]*localLock
	}

	localLock struct {
		ch   chan struct{}
		refs int
	}
)

var (
	_ Locker = (*RedisLocker)(nil)
	_ Locker = (*LocalLocker)(nil)
)

func LinkKey(ownerID uint64, url string) string {
	return fmt.Sprintf("link:%d:%s", ownerID, url)
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, logger *zap.SugaredLogger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		logger: logger,
	}
}

// Lock polls SET NX until it wins or ctx ends. The TTL bounds how long a
// crashed holder can block others.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = keyPrefix + key
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, errors.Wrap(err, "redis setnx")
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be canceled.
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
				l.logger.Warnw("failed to release lock, key stays until ttl", "key", key, "ttl", l.ttl, "error", err)
			}
		})
	}, nil
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		locks: make(map[string]*localLock),
	}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	ll, ok := l.locks[key]
	if !ok {
		ll = &localLock{ch: make(chan struct{}, 1)}
		l.locks[key] = ll
	}
	ll.refs++
	l.mu.Unlock()

	select {
	case ll.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, ll)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-ll.ch
			l.release(key, ll)
		})
	}, nil
}

func (l *LocalLocker) release(key string, ll *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ll.refs--
	if ll.refs == 0 {
		delete(l.locks, key)
	}
}

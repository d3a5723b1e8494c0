// Package redislock implements ports.RenderLock on Redis.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only if it still holds our token, so a lock that
// expired and was taken by someone else is left alone.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RenderLock is a SETNX lock with a TTL. Tokens of locks held by this process are kept
// in memory.
type RenderLock struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string

	mu     sync.Mutex
	tokens map[string]string
}

func NewRenderLock(rdb redis.Cmdable, prefix string, ttl time.Duration) (*RenderLock, error) {
	if rdb == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("lock ttl must be positive, got %s", ttl)
	}
	return &RenderLock{
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
		tokens: make(map[string]string),
	}, nil
}

func (l *RenderLock) key(name string) string {
	return fmt.Sprintf("%s:lock:%s", l.prefix, name)
}

func (l *RenderLock) TryLock(ctx context.Context, name string) (bool, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, l.key(name), token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	l.mu.Lock()
	l.tokens[name] = token
	l.mu.Unlock()
	return true, nil
}

// Unlock releases a lock taken by TryLock. Unlocking a name this process does not hold
// is a no-op.
func (l *RenderLock) Unlock(ctx context.Context, name string) error {
	l.mu.Lock()
	token, ok := l.tokens[name]
	delete(l.tokens, name)
	l.mu.Unlock()

	if !ok {
		return nil
	}
	return unlockScript.Run(ctx, l.rdb, []string{l.key(name)}, token).Err()
}

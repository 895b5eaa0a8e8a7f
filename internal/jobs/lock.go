package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"alcyxob/coach-core/internal/config"
)

// Locker hands out a lease on a job name so that only one replica runs a tick.
type Locker interface {
	// TryLock returns ok=false without error when another holder owns the lease.
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// LocalLocker always grants the lease. Used when the scheduler runs on a single replica.
type LocalLocker struct{}

func (LocalLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// releaseScript deletes the key only when it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb    goredis.UniversalClient
	prefix string
}

// NewRedisLocker connects to cfg.Addr and checks the connection with a ping.
func NewRedisLocker(ctx context.Context, cfg config.RedisConfig) (Locker, *goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil, errors.New("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisLockerFromClient(rdb, cfg.LockPrefix), rdb, nil
}

func NewRedisLockerFromClient(rdb goredis.UniversalClient, prefix string) Locker {
	if prefix == "" {
		prefix = "coach-core:jobs:"
	}
	return &redisLocker{rdb: rdb, prefix: prefix}
}

func (l *redisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire %s: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = releaseScript.Run(relCtx, l.rdb, []string{fullKey}, token).Err()
	}
	return release, true, nil
}

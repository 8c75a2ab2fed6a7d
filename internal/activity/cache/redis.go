package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

var _ Backend = (*RedisBackend)(nil)

const redisUpdateMaxRetries = 10

// RedisBackend keeps the slot under a single redis key. Updates use
// WATCH/MULTI, so a concurrent writer makes the update retry instead of being lost.
type RedisBackend struct {
	client *redis.Client
	key    string
}

func NewRedisBackend(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{
		client: client,
		key:    key,
	}
}

func (b *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", b.key, err)
	}
	return data, nil
}

func (b *RedisBackend) Update(ctx context.Context, fn func(cur []byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, b.key).Bytes()
		if errors.Is(err, redis.Nil) {
			cur = nil
		} else if err != nil {
			return fmt.Errorf("redis get %s: %w", b.key, err)
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, b.key)
			} else {
				pipe.Set(ctx, b.key, next, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < redisUpdateMaxRetries; i++ {
		err := b.client.Watch(ctx, txf, b.key)
		if errors.Is(err, redis.TxFailedErr) {
			log.Debugf("cache slot %s changed during update, retry %d", b.key, i+1)
			continue
		}
		return err
	}
	return ErrTooManyConflicts
}

// Close is a no-op, the redis client is shared and closed by its owner.
func (b *RedisBackend) Close() error {
	return nil
}

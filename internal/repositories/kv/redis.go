package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/go-redis/redis/v8"
)

// DefaultRedisPrefix namespaces every key written by RedisStore.
const DefaultRedisPrefix = "patrimonio:"

// redisClient is the part of *redis.Client used by RedisStore.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
	Close() error
}

// execTx applies staged writes in one MULTI/EXEC round trip.
var execTx = func(ctx context.Context, c redisClient, ops []stagedOp) error {
	_, err := c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			if op.del {
				pipe.Del(ctx, op.key)
				continue
			}
			pipe.Set(ctx, op.key, op.value, 0)
		}
		return nil
	})
	return err
}

// RedisStore keeps values as plain redis strings under a key prefix.
type RedisStore struct {
	client redisClient
	prefix string
}

func NewRedisStore(client redisClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(k string) string {
	return r.prefix + k
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get kv[%s]: %w", common.ErrStorage, key, err)
	}
	return v, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: failed to set kv[%s]: %w", common.ErrStorage, key, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: failed to delete kv[%s]: %w", common.ErrStorage, key, err)
	}
	return nil
}

// InTx stages the writes of fn and sends them in a single MULTI/EXEC.
// Reads inside fn are not isolated from concurrent writers.
func (r *RedisStore) InTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	tx := newStagedStore(r)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if len(tx.ops) == 0 {
		return nil
	}

	ops := make([]stagedOp, len(tx.ops))
	for i, op := range tx.ops {
		op.key = r.key(op.key)
		ops[i] = op
	}
	if err := execTx(ctx, r.client, ops); err != nil {
		return fmt.Errorf("%w: redis tx: %w", common.ErrStorage, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

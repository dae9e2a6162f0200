package kv

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisTimeout = 3 * time.Second

// RedisOptions configures a Redis-backed store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "yaps:".
	Prefix string
	// Timeout bounds each call, and the retry loop of Update as a whole.
	Timeout time.Duration
}

// RedisStore keeps entries as plain Redis strings.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore builds a Redis-backed store. The connection is opened lazily.
func NewRedisStore(opts RedisOptions) *RedisStore {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		prefix:  opts.Prefix,
		timeout: timeout,
	}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// Get resolves key to its value.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set writes key without expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (s *RedisStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Update WATCHes keys, runs fn and commits its writes in MULTI/EXEC. When
// another client touches a watched key first, the whole attempt is retried.
func (s *RedisStore) Update(ctx context.Context, keys []string, fn func(Txn) error) error {
	watched := sortedUnique(keys)
	if len(watched) == 0 {
		return errors.New("kv: redis update needs at least one key")
	}
	for i, k := range watched {
		watched[i] = s.key(k)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			if attempts > 0 {
				return fmt.Errorf("%w after %d attempts: %v", ErrConflict, attempts, err)
			}
			return err
		}

		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			txn := newStaged(func(key string) (string, bool, error) {
				val, err := tx.Get(ctx, s.key(key)).Result()
				if err == redis.Nil {
					return "", false, nil
				}
				if err != nil {
					return "", false, fmt.Errorf("redis get %s: %w", key, err)
				}
				return val, true, nil
			})
			if err := fn(txn); err != nil {
				return err
			}
			if len(txn.writes) == 0 {
				return nil
			}
			_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for _, k := range txn.keys() {
					w := txn.writes[k]
					if w.deleted {
						pipe.Del(ctx, s.key(k))
						continue
					}
					pipe.Set(ctx, s.key(k), w.value, 0)
				}
				return nil
			})
			return err
		}, watched...)

		if err != redis.TxFailedErr {
			if err != nil && attempts > 0 && ctx.Err() != nil {
				return fmt.Errorf("%w after %d attempts: %v", ErrConflict, attempts, err)
			}
			return err
		}
		attempts++
		select {
		case <-ctx.Done():
		case <-time.After(retryBackoff(attempts)):
		}
	}
}

const (
	retryBaseDelay = 2 * time.Millisecond
	retryMaxDelay  = 50 * time.Millisecond
)

// retryBackoff is a jittered delay in [d/2, d) where d doubles per attempt up
// to retryMaxDelay.
func retryBackoff(attempt int) time.Duration {
	d := retryMaxDelay
	if attempt < 6 {
		d = min(retryBaseDelay<<attempt, retryMaxDelay)
	}
	half := d / 2
	return half + rand.N(half)
}

// Close releases the client's connections.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

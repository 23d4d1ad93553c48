// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/rendezvous/internal/platform/constants"
)

// RedisFailureCounter implements [FailureCounter] with INCR and EXPIRE so
// counters are shared across API replicas.
type RedisFailureCounter struct {
	client redis.Cmdable
}

// NewRedisFailureCounter creates a counter on the given client.
func NewRedisFailureCounter(client redis.Cmdable) *RedisFailureCounter {
	return &RedisFailureCounter{client: client}
}

func failureKey(username string) string {
	return constants.RedisPrefixLoginFailures + username
}

/*
Increment adds one failure and sets the expiry on the first one.

Description: INCR and EXPIRE NX run in one MULTI block, so the window is
anchored to the first failure and a crash between them cannot leave a key
without a TTL.
*/
func (counter *RedisFailureCounter) Increment(context context.Context, username string, window time.Duration) (int64, error) {
	key := failureKey(username)

	var incr *redis.IntCmd
	_, err := counter.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(context, key)
		pipe.ExpireNX(context, key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_login_failures_incr_failed: %w", err)
	}

	return incr.Val(), nil
}

// Count returns the current failure count, zero when the key is absent.
func (counter *RedisFailureCounter) Count(context context.Context, username string) (int64, error) {
	count, err := counter.client.Get(context, failureKey(username)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_login_failures_get_failed: %w", err)
	}
	return count, nil
}

// Clear deletes the counter.
func (counter *RedisFailureCounter) Clear(context context.Context, username string) error {
	if err := counter.client.Del(context, failureKey(username)).Err(); err != nil {
		return fmt.Errorf("redis_login_failures_del_failed: %w", err)
	}
	return nil
}

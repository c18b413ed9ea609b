package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Pinger is the minimal interface for a dependency capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// Checker is implemented by components that report their own readiness.
type Checker interface{ Check(ctx context.Context) error }

type redisPinger struct{ rdb *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.rdb.Ping(ctx).Err() }

// RedisPinger adapts a go-redis client to Pinger. A nil client yields nil.
func RedisPinger(rdb *redis.Client) Pinger {
	if rdb == nil {
		return nil
	}
	return redisPinger{rdb: rdb}
}

// BuildReadinessChecks returns the db, redis and embeddings probes. A nil
// dependency yields a nil probe, which the readiness handler skips.
func BuildReadinessChecks(pool, rdb Pinger, embeddings Checker) (
	dbCheck func(ctx context.Context) error,
	redisCheck func(ctx context.Context) error,
	embeddingsCheck func(ctx context.Context) error,
) {
	if pool != nil {
		dbCheck = func(ctx context.Context) error {
			if err := pool.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			return nil
		}
	}
	if rdb != nil {
		redisCheck = func(ctx context.Context) error {
			if err := rdb.Ping(ctx); err != nil {
				return fmt.Errorf("redis ping: %w", err)
			}
			return nil
		}
	}
	if embeddings != nil {
		embeddingsCheck = embeddings.Check
	}
	return dbCheck, redisCheck, embeddingsCheck
}

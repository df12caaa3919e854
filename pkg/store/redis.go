package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

const (
	redisKeyPrefix = "design:"
	redisIndexKey  = "designs:index"
)

// RedisStore is a Redis-backed snapshot store for multi-instance service
// deployments. Snapshots are stored as JSON strings; a sorted set indexes
// run IDs by creation time so List stays cheap.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis using a redis:// DSN and verifies the
// connection with a ping.
func NewRedisStore(ctx context.Context, dsn string) (*RedisStore, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parse redis DSN")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, runID string) (*design.Snapshot, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+runID).Bytes()
	if err == redis.Nil {
		return nil, notFound(runID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "redis get")
	}
	snap, err := design.UnmarshalSnapshot(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "parse snapshot %s", runID)
	}
	return snap, nil
}

func (s *RedisStore) Set(ctx context.Context, snap *design.Snapshot) error {
	data, err := design.MarshalSnapshot(snap)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "marshal snapshot")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+snap.RunID, data, 0)
	pipe.ZAdd(ctx, redisIndexKey, redis.Z{
		Score:  float64(snap.CreatedAt.UnixNano()),
		Member: snap.RunID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis set")
	}
	return nil
}

// List returns run IDs newest first, from the creation-time index.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "redis list")
	}
	return ids, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Cleanup drops index entries whose snapshot key has expired or been
// deleted out of band.
func (s *RedisStore) Cleanup(ctx context.Context) error {
	ids, err := s.client.ZRange(ctx, redisIndexKey, 0, -1).Result()
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "redis cleanup")
	}
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, redisKeyPrefix+id).Result()
		if err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "redis cleanup")
		}
		if exists == 0 {
			if err := s.client.ZRem(ctx, redisIndexKey, id).Err(); err != nil {
				return errors.Wrap(errors.ErrCodeStore, err, "redis cleanup")
			}
		}
	}
	return nil
}

// ping timeout shared by health checks.
const redisPingTimeout = 2 * time.Second

// Healthy reports whether the Redis connection answers a ping.
func (s *RedisStore) Healthy(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return s.client.Ping(ctx).Err() == nil
}

var _ Store = (*RedisStore)(nil)

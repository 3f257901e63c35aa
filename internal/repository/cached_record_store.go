package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	domainRepo "care-registry/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	// RedisExistenceKeyPrefix prefixes every cached count: existence:<store>:<digest>
	RedisExistenceKeyPrefix = "existence:"

	// Timeout for individual Redis operations
	redisCacheTimeout = 500 * time.Millisecond

	// Upper bound for a store query shared by collapsed callers
	sharedQueryTimeout = 10 * time.Second
)

// CacheOptions controls what the cached store keeps in redis
type CacheOptions struct {
	TTL time.Duration
	// Negative also caches zero counts. A record created after a cached miss
	// stays invisible until the TTL runs out.
	Negative bool
}

// cachedRecordStore is a read-through redis cache in front of a RecordStore.
//
// Redis is best effort: any redis failure is logged and the lookup falls
// through to the inner store. Store errors are never cached.
type cachedRecordStore struct {
	inner       domainRepo.RecordStore
	redisClient *redis.Client
	log         *logrus.Logger
	storeName   string
	opts        CacheOptions
	group       singleflight.Group
}

// NewCachedRecordStore wraps inner with a redis cache. It returns inner unchanged
// when redisClient is nil or the TTL is zero.
func NewCachedRecordStore(inner domainRepo.RecordStore, redisClient *redis.Client, log *logrus.Logger, storeName string, opts CacheOptions) domainRepo.RecordStore {
	if redisClient == nil || opts.TTL <= 0 {
		return inner
	}

	return &cachedRecordStore{
		inner:       inner,
		redisClient: redisClient,
		log:         log,
		storeName:   storeName,
		opts:        opts,
	}
}

func (s *cachedRecordStore) CountByNameAndDOB(ctx context.Context, name string, dob time.Time) (int64, error) {
	key := ExistenceCacheKey(s.storeName, name, dob)

	if count, ok := s.get(ctx, key); ok {
		return count, nil
	}

	// Concurrent misses for the same key share one store query. The shared query
	// must outlive whichever caller started it, so it runs detached from that
	// caller's cancellation and each caller waits on its own context instead.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedQueryTimeout)
		defer cancel()

		count, err := s.inner.CountByNameAndDOB(queryCtx, name, dob)
		if err != nil {
			return int64(0), err
		}
		if count > 0 || s.opts.Negative {
			s.set(queryCtx, key, count)
		}
		return count, nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int64), nil
	}
}

func (s *cachedRecordStore) get(ctx context.Context, key string) (int64, bool) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	count, err := s.redisClient.Get(ctx, key).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warnf("Failed to read existence cache for %s store: %+v", s.storeName, err)
		}
		return 0, false
	}

	return count, true
}

func (s *cachedRecordStore) set(ctx context.Context, key string, count int64) {
	ctx, cancel := context.WithTimeout(ctx, redisCacheTimeout)
	defer cancel()

	if err := s.redisClient.Set(ctx, key, count, s.opts.TTL).Err(); err != nil {
		s.log.Warnf("Failed to write existence cache for %s store: %+v", s.storeName, err)
	}
}

// ExistenceCacheKey derives the redis key for a lookup. The identity fields are
// hashed so that names and birth dates never appear in redis keys.
func ExistenceCacheKey(storeName, name string, dob time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", name, dob.Format(time.DateOnly))))
	return RedisExistenceKeyPrefix + storeName + ":" + hex.EncodeToString(sum[:])
}

package service

import (
	"context"
	"fmt"
	"time"

	"care-registry/internal/domain/entity"
	domainRepo "care-registry/internal/domain/repository"
	"care-registry/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// Batch size for startup warm-up - process 500 identities at a time.
	// The pipeline is created and executed inside the batch loop.
	warmupBatchSize = 500
)

// CacheWarmupService preloads the existence cache with the positive counts
// of both registries, so the first lookups after a deploy do not all hit postgres.
type CacheWarmupService struct {
	db          *gorm.DB
	redisClient *redis.Client
	log         *logrus.Logger
	ttl         time.Duration
}

// registryCount is one distinct (name, date_of_birth) identity and how many records carry it
type registryCount struct {
	Name        string
	DateOfBirth time.Time
	Matches     int64
}

func NewCacheWarmupService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, ttl time.Duration) *CacheWarmupService {
	return &CacheWarmupService{
		db:          db,
		redisClient: redisClient,
		log:         log,
		ttl:         ttl,
	}
}

// WarmOnStartup writes the count of every identity in both registries to redis.
// Should be called before accepting traffic. Returns the number of keys written.
func (s *CacheWarmupService) WarmOnStartup(ctx context.Context) (int, error) {
	s.log.Info("Starting existence cache warm-up from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		return 0, fmt.Errorf("redis ping failed: %w", err)
	}

	total := 0
	stores := []struct {
		name  string
		model interface{}
	}{
		{domainRepo.StoreProviders, &entity.Provider{}},
		{domainRepo.StorePatients, &entity.Patient{}},
	}

	for _, store := range stores {
		synced, err := s.warmStore(ctx, store.name, store.model)
		if err != nil {
			return total, err
		}
		total += synced
	}

	s.log.Infof("Existence cache warm-up completed: %d keys written in %v", total, time.Since(startTime))
	return total, nil
}

func (s *CacheWarmupService) warmStore(ctx context.Context, storeName string, model interface{}) (int, error) {
	offset := 0
	synced := 0

	for {
		var results []registryCount

		err := s.db.WithContext(ctx).Model(model).
			Select("name, date_of_birth, COUNT(*) AS matches").
			Group("name, date_of_birth").
			Order("name, date_of_birth").
			Limit(warmupBatchSize).
			Offset(offset).
			Scan(&results).Error
		if err != nil {
			return synced, fmt.Errorf("query %s at offset %d: %w", storeName, offset, err)
		}

		if len(results) == 0 {
			break
		}

		// New pipeline per batch to keep memory flat
		pipe := s.redisClient.Pipeline()
		for _, result := range results {
			key := repository.ExistenceCacheKey(storeName, result.Name, result.DateOfBirth)
			pipe.Set(ctx, key, result.Matches, s.ttl)
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return synced, fmt.Errorf("pipeline exec for %s at offset %d: %w", storeName, offset, err)
		}

		synced += len(results)
		s.log.Debugf("Warmed %s batch: offset=%d, count=%d", storeName, offset, len(results))

		if len(results) < warmupBatchSize {
			break
		}

		offset += warmupBatchSize

		// Respect context cancellation
		select {
		case <-ctx.Done():
			return synced, ctx.Err()
		default:
		}
	}

	return synced, nil
}

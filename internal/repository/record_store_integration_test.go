//go:build integration

package repository_test

import (
	"context"
	"io"
	"testing"
	"time"

	"care-registry/internal/domain/entity"
	domainRepo "care-registry/internal/domain/repository"
	"care-registry/internal/infrastructure/database"
	"care-registry/internal/repository"
	"care-registry/pkg/testutil/containers"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
)

type RecordStoreSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	redis     *containers.RedisContainer
	providers domainRepo.RecordStore
	patients  domainRepo.RecordStore
	log       *logrus.Logger
}

func TestRecordStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RecordStoreSuite))
}

func (s *RecordStoreSuite) SetupSuite() {
	s.log = logrus.New()
	s.log.SetOutput(io.Discard)

	s.postgres = containers.NewPostgresContainer(s.T())
	s.redis = containers.NewRedisContainer(s.T())
	s.Require().NoError(database.Migrate(s.postgres.DB, s.log))

	s.providers = repository.NewProviderRepository(s.postgres.DB)
	s.patients = repository.NewPatientRepository(s.postgres.DB)
}

func (s *RecordStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "providers", "patients"))
	s.Require().NoError(s.redis.FlushAll(ctx))
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *RecordStoreSuite) TestMigrateIsIdempotent() {
	s.NoError(database.Migrate(s.postgres.DB, s.log))
}

func (s *RecordStoreSuite) TestCountExactMatch() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.DB.Create(&entity.Patient{Name: "Jane Doe", DateOfBirth: date(1990, 1, 1)}).Error)
	s.Require().NoError(s.postgres.DB.Create(&entity.Patient{Name: "Jane Doe", DateOfBirth: date(1990, 1, 1)}).Error)
	s.Require().NoError(s.postgres.DB.Create(&entity.Provider{Name: "John Smith", DateOfBirth: date(1975, 5, 5)}).Error)

	s.Run("multiple matches are counted", func() {
		count, err := s.patients.CountByNameAndDOB(ctx, "Jane Doe", date(1990, 1, 1))
		s.NoError(err)
		s.Equal(int64(2), count)
	})

	s.Run("name match is case sensitive", func() {
		count, err := s.patients.CountByNameAndDOB(ctx, "jane doe", date(1990, 1, 1))
		s.NoError(err)
		s.Zero(count)
	})

	s.Run("different date does not match", func() {
		count, err := s.patients.CountByNameAndDOB(ctx, "Jane Doe", date(1990, 1, 2))
		s.NoError(err)
		s.Zero(count)
	})

	s.Run("stores are disjoint", func() {
		count, err := s.providers.CountByNameAndDOB(ctx, "Jane Doe", date(1990, 1, 1))
		s.NoError(err)
		s.Zero(count)

		count, err = s.providers.CountByNameAndDOB(ctx, "John Smith", date(1975, 5, 5))
		s.NoError(err)
		s.Equal(int64(1), count)
	})
}

func (s *RecordStoreSuite) TestCachedStoreServesPositiveCountFromRedis() {
	ctx := context.Background()
	dob := date(2000, 1, 1)
	s.Require().NoError(s.postgres.DB.Create(&entity.Patient{Name: "A B", DateOfBirth: dob}).Error)

	cached := repository.NewCachedRecordStore(s.patients, s.redis.Client, s.log, "patients", repository.CacheOptions{TTL: time.Minute})

	count, err := cached.CountByNameAndDOB(ctx, "A B", dob)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	stored, err := s.redis.Client.Get(ctx, repository.ExistenceCacheKey("patients", "A B", dob)).Int64()
	s.Require().NoError(err)
	s.Equal(int64(1), stored)

	// The record is gone from postgres but the cached count still answers
	s.Require().NoError(s.postgres.TruncateTables(ctx, "patients"))
	count, err = cached.CountByNameAndDOB(ctx, "A B", dob)
	s.NoError(err)
	s.Equal(int64(1), count)
}

func (s *RecordStoreSuite) TestCachedStoreSkipsMissesUnlessNegative() {
	ctx := context.Background()
	dob := date(1975, 5, 5)
	key := repository.ExistenceCacheKey("providers", "John Smith", dob)

	s.Run("misses are not cached by default", func() {
		cached := repository.NewCachedRecordStore(s.providers, s.redis.Client, s.log, "providers", repository.CacheOptions{TTL: time.Minute})

		count, err := cached.CountByNameAndDOB(ctx, "John Smith", dob)
		s.NoError(err)
		s.Zero(count)

		exists, err := s.redis.Client.Exists(ctx, key).Result()
		s.NoError(err)
		s.Zero(exists)
	})

	s.Run("negative caching stores zero counts", func() {
		cached := repository.NewCachedRecordStore(s.providers, s.redis.Client, s.log, "providers", repository.CacheOptions{TTL: time.Minute, Negative: true})

		count, err := cached.CountByNameAndDOB(ctx, "John Smith", dob)
		s.NoError(err)
		s.Zero(count)

		ttl, err := s.redis.Client.TTL(ctx, key).Result()
		s.NoError(err)
		s.Greater(ttl, time.Duration(0))
	})
}

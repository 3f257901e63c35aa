package usecase

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"care-registry/internal/domain/entity"
	"care-registry/internal/domain/repository/mocks"
	"care-registry/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ExistenceUsecaseSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	providers *mocks.MockRecordStore
	patients  *mocks.MockRecordStore
	metrics   *metrics.Collector
	usecase   ExistenceUsecase
}

func TestExistenceUsecaseSuite(t *testing.T) {
	suite.Run(t, new(ExistenceUsecaseSuite))
}

func (s *ExistenceUsecaseSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.providers = mocks.NewMockRecordStore(s.ctrl)
	s.patients = mocks.NewMockRecordStore(s.ctrl)
	s.metrics = metrics.NewCollector("test", prometheus.NewRegistry())

	log := logrus.New()
	log.SetOutput(io.Discard)
	s.usecase = NewExistenceUsecase(log, s.providers, s.patients, s.metrics)
}

func (s *ExistenceUsecaseSuite) TearDownTest() {
	s.ctrl.Finish()
}

func dob(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (s *ExistenceUsecaseSuite) assertFound(result *entity.ExistenceResult, err error) {
	s.Require().NoError(err)
	s.True(result.Exists)
	s.Equal(http.StatusOK, result.Status)
}

func (s *ExistenceUsecaseSuite) assertNotFound(result *entity.ExistenceResult, err error) {
	s.Require().NoError(err)
	s.False(result.Exists)
	s.Equal(http.StatusBadRequest, result.Status)
}

func (s *ExistenceUsecaseSuite) TestPatientRoles() {
	ctx := context.Background()

	for _, role := range []entity.Role{entity.RolePatient, entity.RolePatientCompanion} {
		s.Run(role.String()+" match in patients", func() {
			s.patients.EXPECT().CountByNameAndDOB(ctx, "Jane Doe", dob(1990, 1, 1)).Return(int64(1), nil)

			result, err := s.usecase.Resolve(ctx, role, "Jane Doe", dob(1990, 1, 1))
			s.assertFound(result, err)
		})

		s.Run(role.String()+" ignores provider-only match", func() {
			// providers has no expectation: any call fails the test
			s.patients.EXPECT().CountByNameAndDOB(ctx, "John Smith", dob(1975, 5, 5)).Return(int64(0), nil)

			result, err := s.usecase.Resolve(ctx, role, "John Smith", dob(1975, 5, 5))
			s.assertNotFound(result, err)
		})
	}
}

func (s *ExistenceUsecaseSuite) TestProviderRole() {
	ctx := context.Background()

	s.Run("match in providers", func() {
		s.providers.EXPECT().CountByNameAndDOB(ctx, "John Smith", dob(1975, 5, 5)).Return(int64(3), nil)

		result, err := s.usecase.Resolve(ctx, entity.RoleProvider, "John Smith", dob(1975, 5, 5))
		s.assertFound(result, err)
	})

	s.Run("no provider match is not found even if a patient matches", func() {
		s.providers.EXPECT().CountByNameAndDOB(ctx, "John Smith", dob(1975, 5, 5)).Return(int64(0), nil)

		result, err := s.usecase.Resolve(ctx, entity.RoleProvider, "John Smith", dob(1975, 5, 5))
		s.assertNotFound(result, err)
	})
}

func (s *ExistenceUsecaseSuite) TestUnrecognizedRoleFallback() {
	ctx := context.Background()

	s.Run("patient-only match found via fallback", func() {
		gomock.InOrder(
			s.providers.EXPECT().CountByNameAndDOB(ctx, "A B", dob(2000, 1, 1)).Return(int64(0), nil),
			s.patients.EXPECT().CountByNameAndDOB(ctx, "A B", dob(2000, 1, 1)).Return(int64(1), nil),
		)

		result, err := s.usecase.Resolve(ctx, entity.RoleUnrecognized, "A B", dob(2000, 1, 1))
		s.assertFound(result, err)
	})

	s.Run("no match in either store", func() {
		gomock.InOrder(
			s.providers.EXPECT().CountByNameAndDOB(ctx, "Nobody", dob(2000, 1, 1)).Return(int64(0), nil),
			s.patients.EXPECT().CountByNameAndDOB(ctx, "Nobody", dob(2000, 1, 1)).Return(int64(0), nil),
		)

		result, err := s.usecase.Resolve(ctx, entity.RoleUnrecognized, "Nobody", dob(2000, 1, 1))
		s.assertNotFound(result, err)
	})
}

// Same record in both stores: the provider answer wins and patients is never asked
func (s *ExistenceUsecaseSuite) TestProviderMatchShortCircuits() {
	ctx := context.Background()
	s.providers.EXPECT().CountByNameAndDOB(ctx, "A B", dob(2000, 1, 1)).Return(int64(1), nil).Times(1)
	s.patients.EXPECT().CountByNameAndDOB(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	result, err := s.usecase.Resolve(ctx, entity.RoleUnrecognized, "A B", dob(2000, 1, 1))
	s.assertFound(result, err)
}

func (s *ExistenceUsecaseSuite) TestStoreFailure() {
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	s.Run("provider failure stops the fallback", func() {
		s.providers.EXPECT().CountByNameAndDOB(ctx, "A B", dob(2000, 1, 1)).Return(int64(0), storeErr)

		result, err := s.usecase.Resolve(ctx, entity.RoleUnrecognized, "A B", dob(2000, 1, 1))
		s.Nil(result)
		s.ErrorIs(err, ErrStoreUnavailable)
		s.ErrorIs(err, storeErr)
	})

	s.Run("patient failure is not reported as not found", func() {
		s.patients.EXPECT().CountByNameAndDOB(ctx, "Jane Doe", dob(1990, 1, 1)).Return(int64(0), storeErr)

		result, err := s.usecase.Resolve(ctx, entity.RolePatient, "Jane Doe", dob(1990, 1, 1))
		s.Nil(result)
		s.ErrorIs(err, ErrStoreUnavailable)
	})
}

func (s *ExistenceUsecaseSuite) TestRepeatedQueriesAgree() {
	ctx := context.Background()
	s.patients.EXPECT().CountByNameAndDOB(ctx, "Jane Doe", dob(1990, 1, 1)).Return(int64(1), nil).Times(3)

	for i := 0; i < 3; i++ {
		result, err := s.usecase.Resolve(ctx, entity.RolePatientCompanion, "Jane Doe", dob(1990, 1, 1))
		s.assertFound(result, err)
	}
}

func (s *ExistenceUsecaseSuite) TestMetricsRecordOutcome() {
	ctx := context.Background()
	s.providers.EXPECT().CountByNameAndDOB(ctx, "John Smith", dob(1975, 5, 5)).Return(int64(0), nil)
	s.providers.EXPECT().CountByNameAndDOB(ctx, "John Smith", dob(1975, 5, 6)).Return(int64(1), nil)

	_, err := s.usecase.Resolve(ctx, entity.RoleProvider, "John Smith", dob(1975, 5, 5))
	s.Require().NoError(err)
	_, err = s.usecase.Resolve(ctx, entity.RoleProvider, "John Smith", dob(1975, 5, 6))
	s.Require().NoError(err)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.ExistenceChecksTotal.WithLabelValues("Nurse/Doctor", OutcomeNotFound)))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ExistenceChecksTotal.WithLabelValues("Nurse/Doctor", OutcomeFound)))
}

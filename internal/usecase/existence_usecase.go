package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"care-registry/internal/domain/entity"
	"care-registry/internal/domain/repository"
	"care-registry/pkg/metrics"

	"github.com/sirupsen/logrus"
)

var (
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// Outcome labels used in logs and metrics
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

type ExistenceUsecase interface {
	Resolve(ctx context.Context, role entity.Role, name string, dob time.Time) (*entity.ExistenceResult, error)
}

type existenceUsecase struct {
	log       *logrus.Logger
	providers repository.RecordStore
	patients  repository.RecordStore
	metrics   *metrics.Collector
}

func NewExistenceUsecase(
	log *logrus.Logger,
	providers repository.RecordStore,
	patients repository.RecordStore,
	collector *metrics.Collector,
) ExistenceUsecase {
	return &existenceUsecase{
		log:       log,
		providers: providers,
		patients:  patients,
		metrics:   collector,
	}
}

// Resolve checks whether a person record with exactly this name and date of
// birth exists in the store(s) the role points at.
//
// Patient and PatientCompanion consult only patients. Nurse/Doctor consults only
// providers. Any other role consults providers first and patients only when
// providers had no match.
func (u *existenceUsecase) Resolve(ctx context.Context, role entity.Role, name string, dob time.Time) (*entity.ExistenceResult, error) {
	var stores []string

	switch role {
	case entity.RolePatient, entity.RolePatientCompanion:
		stores = []string{repository.StorePatients}
	case entity.RoleProvider:
		stores = []string{repository.StoreProviders}
	default:
		stores = []string{repository.StoreProviders, repository.StorePatients}
	}

	for _, store := range stores {
		found, err := u.exists(ctx, store, name, dob)
		if err != nil {
			u.observe(role, OutcomeError)
			u.log.Errorf("Failed to query %s store for role %s: %+v", store, role, err)
			return nil, fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, store, err)
		}
		if found {
			u.observe(role, OutcomeFound)
			u.log.WithFields(logrus.Fields{"role": role.String(), "store": store}).Debug("Existence check matched")
			return &entity.ExistenceResult{Exists: true, Status: http.StatusOK}, nil
		}
	}

	u.observe(role, OutcomeNotFound)
	u.log.WithField("role", role.String()).Debug("Existence check found no match")

	return &entity.ExistenceResult{Exists: false, Status: http.StatusBadRequest}, nil
}

func (u *existenceUsecase) exists(ctx context.Context, store string, name string, dob time.Time) (bool, error) {
	recordStore := u.patients
	if store == repository.StoreProviders {
		recordStore = u.providers
	}

	count, err := recordStore.CountByNameAndDOB(ctx, name, dob)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (u *existenceUsecase) observe(role entity.Role, outcome string) {
	if u.metrics != nil {
		u.metrics.ObserveExistenceCheck(role.String(), outcome)
	}
}

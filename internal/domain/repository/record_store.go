package repository

//go:generate mockgen -source=record_store.go -destination=mocks/mocks.go -package=mocks RecordStore

import (
	"context"
	"time"
)

// Store names, used in cache keys, logs and metrics
const (
	StoreProviders = "providers"
	StorePatients  = "patients"
)

// RecordStore is a read-only person registry answering exact-match lookups.
// Name and date of birth are compared as-is, with no normalization.
type RecordStore interface {
	CountByNameAndDOB(ctx context.Context, name string, dob time.Time) (int64, error)
}

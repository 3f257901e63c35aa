package repository

import (
	"context"
	"time"

	"care-registry/internal/domain/entity"
	domainRepo "care-registry/internal/domain/repository"

	"gorm.io/gorm"
)

type providerRepository struct {
	db *gorm.DB
}

func NewProviderRepository(db *gorm.DB) domainRepo.RecordStore {
	return &providerRepository{db: db}
}

func (r *providerRepository) CountByNameAndDOB(ctx context.Context, name string, dob time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Provider{}).
		Where("name = ? AND date_of_birth = ?", name, dob.Format(time.DateOnly)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

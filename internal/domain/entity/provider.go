package entity

import (
	"time"

	"github.com/google/uuid"
)

// Provider represents a care-staff person record (nurse or doctor)
type Provider struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(64);not null;index:idx_providers_name_dob,priority:1" json:"name"`
	DateOfBirth time.Time `gorm:"type:date;not null;index:idx_providers_name_dob,priority:2" json:"date_of_birth"`
}

func (Provider) TableName() string {
	return "providers"
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Patient represents a care-recipient person record
type Patient struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"type:varchar(64);not null;index:idx_patients_name_dob,priority:1" json:"name"`
	DateOfBirth time.Time `gorm:"type:date;not null;index:idx_patients_name_dob,priority:2" json:"date_of_birth"`
}

func (Patient) TableName() string {
	return "patients"
}

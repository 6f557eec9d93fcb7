package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient represents a patient profile linked to a user account.
type Patient struct {
	Base
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	BloodType   string     `db:"blood_type" json:"blood_type,omitempty"`
}

type CreatePatientRequest struct {
	UserID      uuid.UUID  `json:"user_id" binding:"required"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	BloodType   string     `json:"blood_type"`
}

type UpdatePatientRequest struct {
	DateOfBirth *time.Time `json:"date_of_birth"`
	BloodType   *string    `json:"blood_type"`
}

package model

// User role constants
const (
	UserRoleDoctor  = "doctor"
	UserRolePatient = "patient"
)

// User status constants
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents an account holder, either a patient or a doctor.
type User struct {
	Base
	UserName     string `json:"user_name" db:"user_name"`
	FullName     string `json:"full_name" db:"full_name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
	Avatar       string `json:"avatar,omitempty" db:"avatar"`
	Status       string `json:"status" db:"status"`
}

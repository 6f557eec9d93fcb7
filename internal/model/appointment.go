package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	// AppointmentStatusTBD marks a request that is awaiting slot allocation.
	AppointmentStatusTBD       AppointmentStatus = "tbd"
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusVisited   AppointmentStatus = "visited"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

type AppointmentPriority string

const (
	PriorityHigh AppointmentPriority = "high"
	PriorityLow  AppointmentPriority = "low"
)

// Prescription is one medication entry attached to an appointment.
type Prescription struct {
	ID           string `json:"id"`
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

type PrescriptionList []Prescription

func (p PrescriptionList) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

func (p *PrescriptionList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type for PrescriptionList: %T", src)
	}
}

// Appointment is a booking request. It is created in status "tbd" and moves
// to "pending" once the scheduler assigns it a concrete date and slot.
// BookedOn keeps the raw timestamp string the client submitted; the
// scheduler parses it and pushes unparseable values to the end of the order.
type Appointment struct {
	Base
	DoctorID      uuid.UUID           `db:"doctor_id" json:"doctor_id"`
	PatientID     uuid.UUID           `db:"patient_id" json:"patient_id"`
	Description   string              `db:"description" json:"description"`
	Location      string              `db:"location" json:"location,omitempty"`
	Priority      AppointmentPriority `db:"priority" json:"priority"`
	BookedOn      string              `db:"booked_on" json:"booked_on"`
	Date          *string             `db:"date" json:"date,omitempty"`
	Time          *string             `db:"time" json:"time,omitempty"`
	Status        AppointmentStatus   `db:"status" json:"status"`
	Prescriptions PrescriptionList    `db:"prescriptions" json:"prescriptions,omitempty"`
}

type CreateAppointmentRequest struct {
	DoctorID    uuid.UUID           `json:"doctor_id" binding:"required"`
	PatientID   uuid.UUID           `json:"patient_id" binding:"required"`
	Description string              `json:"description" binding:"required,max=2000"`
	Location    string              `json:"location"`
	Priority    AppointmentPriority `json:"priority" binding:"omitempty,oneof=high low"`
	BookedOn    string              `json:"booked_on"`
}

type UpdateAppointmentRequest struct {
	Description *string              `json:"description"`
	Location    *string              `json:"location"`
	Priority    *AppointmentPriority `json:"priority"`
	Status      *AppointmentStatus   `json:"status"`
	Date        *string              `json:"date"`
	Time        *string              `json:"time"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
}

type ScheduleRequest struct {
	Day string `json:"day" binding:"required"`
}

// PatientPrescriptions groups the prescriptions of one appointment for the
// per-patient listing.
type PatientPrescriptions struct {
	AppointmentID uuid.UUID         `json:"appointment_id"`
	Date          string            `json:"date,omitempty"`
	Time          string            `json:"time,omitempty"`
	Status        AppointmentStatus `json:"status"`
	Prescriptions PrescriptionList  `json:"prescriptions"`
}

// BookedOnTime parses the raw booking timestamp. The second return value is
// false when the value does not parse.
func (a *Appointment) BookedOnTime() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, a.BookedOn); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsHighPriority reports whether the request is explicitly high priority.
// Every other value, including empty or unknown ones, counts as low.
func (a *Appointment) IsHighPriority() bool {
	return a.Priority == PriorityHigh
}

package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/smarthealthpro/booking-api/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListPending returns every appointment still awaiting allocation
		// (status "tbd"), in insertion order.
		ListPending(ctx context.Context) ([]*model.Appointment, error)
		// UpdateAssignment writes the scheduler's decision for one request:
		// the concrete date, the slot start time and the new status.
		UpdateAssignment(ctx context.Context, id uuid.UUID, date string, slotStart model.TimeOfDay, status model.AppointmentStatus) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		UpdatePrescriptions(ctx context.Context, id uuid.UUID, prescriptions model.PrescriptionList) error
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetOfficeHours(ctx context.Context, id uuid.UUID) (model.WeeklyHours, error)
		UpdateOfficeHours(ctx context.Context, id uuid.UUID, hours model.WeeklyHours) error
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
	}
)

package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/smarthealthpro/booking-api/internal/email"
	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
	"github.com/smarthealthpro/booking-api/pkg/logger"
	"github.com/smarthealthpro/booking-api/pkg/messaging"
)

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	users    repository.UserRepository
	emailSvc email.Service
	broker   messaging.Broker
	logger   *logger.Logger
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, doctors repository.DoctorRepository, users repository.UserRepository, emailSvc email.Service, broker messaging.Broker, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		users:    users,
		emailSvc: emailSvc,
		broker:   broker,
		logger:   logger,
	}
}

// CreateAppointment registers a booking request. The request enters the pool
// in status "tbd" and stays there until a scheduling run assigns it a slot.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	now := time.Now()
	apt := &model.Appointment{
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		Description: req.Description,
		Location:    req.Location,
		Priority:    req.Priority,
		BookedOn:    req.BookedOn,
		Status:      model.AppointmentStatusTBD,
	}
	apt.ID = uuid.New()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	if apt.Priority != model.PriorityHigh {
		apt.Priority = model.PriorityLow
	}
	if apt.BookedOn == "" {
		apt.BookedOn = now.Format("2006-01-02 15:04:05")
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.publish(ctx, "appointment_created", apt)
	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if req.Description != nil {
		apt.Description = *req.Description
	}
	if req.Location != nil {
		apt.Location = *req.Location
	}
	if req.Priority != nil {
		apt.Priority = *req.Priority
	}
	if req.Status != nil {
		apt.Status = *req.Status
	}
	if req.Date != nil {
		apt.Date = req.Date
	}
	if req.Time != nil {
		apt.Time = req.Time
	}
	apt.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}

// CancelAppointment marks the appointment cancelled and emails the patient.
// The email is best effort; a delivery failure never rolls back the
// cancellation.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return apt, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, model.AppointmentStatusCancelled); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}
	apt.Status = model.AppointmentStatusCancelled

	s.notifyCancellation(ctx, apt)
	s.publish(ctx, "appointment_cancelled", apt)
	return apt, nil
}

func (s *Service) notifyCancellation(ctx context.Context, apt *model.Appointment) {
	if s.emailSvc == nil {
		return
	}

	date, timeOfDay := "the scheduled date", "the scheduled time"
	if apt.Date != nil {
		date = *apt.Date
	}
	if apt.Time != nil {
		timeOfDay = *apt.Time
	}

	// Both parties get the notice; either lookup failing skips only that
	// recipient.
	if patient, err := s.patients.Get(ctx, apt.PatientID); err != nil {
		s.logger.Error(err, "failed to load patient for cancellation email",
			"appointment_id", apt.ID.String())
	} else {
		s.sendCancellation(ctx, patient.UserID, apt, date, timeOfDay)
	}

	if doctor, err := s.doctors.Get(ctx, apt.DoctorID); err != nil {
		s.logger.Error(err, "failed to load doctor for cancellation email",
			"appointment_id", apt.ID.String())
	} else {
		s.sendCancellation(ctx, doctor.UserID, apt, date, timeOfDay)
	}
}

func (s *Service) sendCancellation(ctx context.Context, userID uuid.UUID, apt *model.Appointment, date, timeOfDay string) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		s.logger.Error(err, "failed to load user for cancellation email",
			"appointment_id", apt.ID.String())
		return
	}
	if err := s.emailSvc.SendCancellation(user.Email, user.FullName, date, timeOfDay); err != nil {
		s.logger.Error(err, "failed to send cancellation email",
			"appointment_id", apt.ID.String())
	}
}

// AddPrescription appends a prescription to an appointment. IDs are
// sequential within the appointment, presc-001 onward.
func (s *Service) AddPrescription(ctx context.Context, id uuid.UUID, presc model.Prescription) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	presc.ID = fmt.Sprintf("presc-%03d", len(apt.Prescriptions)+1)
	apt.Prescriptions = append(apt.Prescriptions, presc)

	if err := s.repo.UpdatePrescriptions(ctx, id, apt.Prescriptions); err != nil {
		return nil, fmt.Errorf("failed to save prescriptions: %w", err)
	}
	return apt, nil
}

// UpdatePrescription replaces one prescription entry, matched by its id.
func (s *Service) UpdatePrescription(ctx context.Context, id uuid.UUID, prescID string, presc model.Prescription) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	found := false
	for i := range apt.Prescriptions {
		if apt.Prescriptions[i].ID == prescID {
			presc.ID = prescID
			apt.Prescriptions[i] = presc
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("prescription %s: %w", prescID, repository.ErrNotFound)
	}

	if err := s.repo.UpdatePrescriptions(ctx, id, apt.Prescriptions); err != nil {
		return nil, fmt.Errorf("failed to save prescriptions: %w", err)
	}
	return apt, nil
}

// ListPatientPrescriptions collects the prescriptions across every
// appointment of one patient, most recent appointment first.
func (s *Service) ListPatientPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.PatientPrescriptions, error) {
	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{PatientID: patientID})
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	// The repository lists oldest first.
	result := []*model.PatientPrescriptions{}
	for i := len(appointments) - 1; i >= 0; i-- {
		apt := appointments[i]
		if len(apt.Prescriptions) == 0 {
			continue
		}
		entry := &model.PatientPrescriptions{
			AppointmentID: apt.ID,
			Status:        apt.Status,
			Prescriptions: apt.Prescriptions,
		}
		if apt.Date != nil {
			entry.Date = *apt.Date
		}
		if apt.Time != nil {
			entry.Time = *apt.Time
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *Service) publish(ctx context.Context, eventType string, apt *model.Appointment) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: eventType, Payload: apt}
	if err := s.broker.Publish(ctx, messaging.ChannelAppointments, msg); err != nil {
		s.logger.Error(err, "failed to publish appointment event",
			"event", eventType, "appointment_id", apt.ID.String())
	}
}

package appointment

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
	"github.com/smarthealthpro/booking-api/pkg/logger"
)

type fakeAppointmentRepo struct {
	byID    map[uuid.UUID]*model.Appointment
	created []*model.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{byID: map[uuid.UUID]*model.Appointment{}}
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error {
	f.byID[apt.ID] = apt
	f.created = append(f.created, apt)
	return nil
}

func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return apt, nil
}

func (f *fakeAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error {
	f.byID[apt.ID] = apt
	return nil
}

func (f *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, apt := range f.created {
		if filters != nil && filters.PatientID != uuid.Nil && apt.PatientID != filters.PatientID {
			continue
		}
		out = append(out, apt)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListPending(ctx context.Context) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) UpdateAssignment(ctx context.Context, id uuid.UUID, date string, slotStart model.TimeOfDay, status model.AppointmentStatus) error {
	return nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	apt, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	apt.Status = status
	return nil
}

func (f *fakeAppointmentRepo) UpdatePrescriptions(ctx context.Context, id uuid.UUID, prescriptions model.PrescriptionList) error {
	apt, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	apt.Prescriptions = prescriptions
	return nil
}

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}
func (f *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakePatientRepo) List(ctx context.Context) ([]*model.Patient, error) { return nil, nil }

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctorRepo) Create(ctx context.Context, d *model.Doctor) error { return nil }
func (f *fakeDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return d, nil
}
func (f *fakeDoctorRepo) GetOfficeHours(ctx context.Context, id uuid.UUID) (model.WeeklyHours, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeDoctorRepo) UpdateOfficeHours(ctx context.Context, id uuid.UUID, hours model.WeeklyHours) error {
	return nil
}
func (f *fakeDoctorRepo) List(ctx context.Context) ([]*model.Doctor, error) { return nil, nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error { return nil }
func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (f *fakeUserRepo) Update(ctx context.Context, u *model.User) error { return nil }

type fakeEmail struct {
	cancellations []string
	err           error
}

func (f *fakeEmail) SendCancellation(to, patientName, date, timeOfDay string) error {
	if f.err != nil {
		return f.err
	}
	f.cancellations = append(f.cancellations, to)
	return nil
}

func (f *fakeEmail) SendCustom(to, subject, body string) error { return nil }

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
}

func newTestService(repo *fakeAppointmentRepo, patients *fakePatientRepo, doctors *fakeDoctorRepo, users *fakeUserRepo, mail *fakeEmail) *Service {
	svc := NewService(repo, patients, doctors, users, nil, nil, testLogger())
	if mail != nil {
		svc.emailSvc = mail
	}
	return svc
}

func TestCreateAppointmentDefaults(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakePatientRepo{}, &fakeDoctorRepo{}, &fakeUserRepo{}, nil)

	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:    uuid.New(),
		PatientID:   uuid.New(),
		Description: "annual checkup",
	})
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusTBD, apt.Status)
	assert.Equal(t, model.PriorityLow, apt.Priority)
	assert.NotEmpty(t, apt.BookedOn)
	assert.NotEqual(t, uuid.Nil, apt.ID)
	require.Len(t, repo.created, 1)
}

func TestCreateAppointmentKeepsHighPriority(t *testing.T) {
	svc := newTestService(newFakeAppointmentRepo(), &fakePatientRepo{}, &fakeDoctorRepo{}, &fakeUserRepo{}, nil)

	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:    uuid.New(),
		PatientID:   uuid.New(),
		Description: "chest pain",
		Priority:    model.PriorityHigh,
		BookedOn:    "2026-08-01 09:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, apt.Priority)
	assert.Equal(t, "2026-08-01 09:00:00", apt.BookedOn)
}

func setupCancellable(t *testing.T) (*Service, *fakeAppointmentRepo, *fakeEmail, *model.Appointment) {
	t.Helper()
	repo := newFakeAppointmentRepo()
	userID := uuid.New()
	patientID := uuid.New()
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	p := &model.Patient{UserID: userID}
	p.ID = patientID
	patients.patients[patientID] = p
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	u := &model.User{Email: "pat@example.com", FullName: "Pat Doe"}
	u.ID = userID
	users.users[userID] = u
	mail := &fakeEmail{}

	svc := newTestService(repo, patients, &fakeDoctorRepo{}, users, mail)
	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:    uuid.New(),
		PatientID:   patientID,
		Description: "follow up",
	})
	require.NoError(t, err)
	return svc, repo, mail, apt
}

func TestCancelAppointmentSendsEmail(t *testing.T) {
	svc, repo, mail, apt := setupCancellable(t)

	cancelled, err := svc.CancelAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, model.AppointmentStatusCancelled, repo.byID[apt.ID].Status)
	assert.Equal(t, []string{"pat@example.com"}, mail.cancellations)
}

func TestCancelAppointmentEmailFailureIsNonFatal(t *testing.T) {
	svc, repo, mail, apt := setupCancellable(t)
	mail.err = errors.New("smtp unreachable")

	cancelled, err := svc.CancelAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, model.AppointmentStatusCancelled, repo.byID[apt.ID].Status)
}

func TestCancelAppointmentIdempotent(t *testing.T) {
	svc, _, mail, apt := setupCancellable(t)

	_, err := svc.CancelAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	_, err = svc.CancelAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.Len(t, mail.cancellations, 1)
}

func TestAddPrescriptionSequentialIDs(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakePatientRepo{}, &fakeDoctorRepo{}, &fakeUserRepo{}, nil)

	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:    uuid.New(),
		PatientID:   uuid.New(),
		Description: "infection",
	})
	require.NoError(t, err)

	_, err = svc.AddPrescription(context.Background(), apt.ID, model.Prescription{
		Medication: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Duration: "7 days",
	})
	require.NoError(t, err)
	updated, err := svc.AddPrescription(context.Background(), apt.ID, model.Prescription{
		Medication: "Ibuprofen", Dosage: "200mg", Frequency: "as needed", Duration: "5 days",
	})
	require.NoError(t, err)

	require.Len(t, updated.Prescriptions, 2)
	assert.Equal(t, "presc-001", updated.Prescriptions[0].ID)
	assert.Equal(t, "presc-002", updated.Prescriptions[1].ID)
}

func TestCancelAppointmentEmailsDoctorToo(t *testing.T) {
	repo := newFakeAppointmentRepo()

	patientUserID := uuid.New()
	patientID := uuid.New()
	patients := &fakePatientRepo{patients: map[uuid.UUID]*model.Patient{}}
	p := &model.Patient{UserID: patientUserID}
	p.ID = patientID
	patients.patients[patientID] = p

	doctorUserID := uuid.New()
	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{}}
	d := &model.Doctor{UserID: doctorUserID}
	d.ID = doctorID
	doctors.doctors[doctorID] = d

	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	pu := &model.User{Email: "pat@example.com", FullName: "Pat Doe"}
	pu.ID = patientUserID
	users.users[patientUserID] = pu
	du := &model.User{Email: "doc@example.com", FullName: "Dr. Roe"}
	du.ID = doctorUserID
	users.users[doctorUserID] = du

	mail := &fakeEmail{}
	svc := newTestService(repo, patients, doctors, users, mail)

	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: doctorID, PatientID: patientID, Description: "follow up",
	})
	require.NoError(t, err)

	_, err = svc.CancelAppointment(context.Background(), apt.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pat@example.com", "doc@example.com"}, mail.cancellations)
}

func TestUpdatePrescriptionByID(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakePatientRepo{}, &fakeDoctorRepo{}, &fakeUserRepo{}, nil)

	apt, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: uuid.New(), PatientID: uuid.New(), Description: "infection",
	})
	require.NoError(t, err)

	_, err = svc.AddPrescription(context.Background(), apt.ID, model.Prescription{
		Medication: "Amoxicillin", Dosage: "500mg", Frequency: "3x daily", Duration: "7 days",
	})
	require.NoError(t, err)

	updated, err := svc.UpdatePrescription(context.Background(), apt.ID, "presc-001", model.Prescription{
		Medication: "Amoxicillin", Dosage: "250mg", Frequency: "2x daily", Duration: "10 days",
	})
	require.NoError(t, err)
	assert.Equal(t, "presc-001", updated.Prescriptions[0].ID)
	assert.Equal(t, "250mg", updated.Prescriptions[0].Dosage)

	_, err = svc.UpdatePrescription(context.Background(), apt.ID, "presc-999", model.Prescription{})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListPatientPrescriptionsMostRecentFirst(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakePatientRepo{}, &fakeDoctorRepo{}, &fakeUserRepo{}, nil)
	patientID := uuid.New()

	older, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: uuid.New(), PatientID: patientID, Description: "visit one",
	})
	require.NoError(t, err)
	newer, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: uuid.New(), PatientID: patientID, Description: "visit two",
	})
	require.NoError(t, err)

	for _, id := range []uuid.UUID{older.ID, newer.ID} {
		_, err = svc.AddPrescription(context.Background(), id, model.Prescription{
			Medication: "Lisinopril", Dosage: "10mg", Frequency: "daily", Duration: "30 days",
		})
		require.NoError(t, err)
	}

	list, err := svc.ListPatientPrescriptions(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].AppointmentID)
	assert.Equal(t, older.ID, list[1].AppointmentID)
}

func TestListPatientPrescriptionsSkipsEmpty(t *testing.T) {
	repo := newFakeAppointmentRepo()
	svc := newTestService(repo, &fakePatientRepo{}, &fakeDoctorRepo{}, &fakeUserRepo{}, nil)
	patientID := uuid.New()

	withPresc, err := svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: uuid.New(), PatientID: patientID, Description: "visit one",
	})
	require.NoError(t, err)
	_, err = svc.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: uuid.New(), PatientID: patientID, Description: "visit two",
	})
	require.NoError(t, err)

	_, err = svc.AddPrescription(context.Background(), withPresc.ID, model.Prescription{
		Medication: "Lisinopril", Dosage: "10mg", Frequency: "daily", Duration: "30 days",
	})
	require.NoError(t, err)

	list, err := svc.ListPatientPrescriptions(context.Background(), patientID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, withPresc.ID, list[0].AppointmentID)
}

package schedule

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/pkg/logger"
	"github.com/smarthealthpro/booking-api/pkg/metrics"
)

type assignmentWrite struct {
	date      string
	slotStart model.TimeOfDay
	status    model.AppointmentStatus
}

type fakeAppointmentRepo struct {
	mu          sync.Mutex
	pending     []*model.Appointment
	pendingErr  error
	failUpdates map[uuid.UUID]error
	assignments map[uuid.UUID]assignmentWrite
}

func newFakeAppointmentRepo(pending ...*model.Appointment) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{
		pending:     pending,
		failUpdates: map[uuid.UUID]error{},
		assignments: map[uuid.UUID]assignmentWrite{},
	}
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, apt *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeAppointmentRepo) Update(ctx context.Context, apt *model.Appointment) error { return nil }
func (f *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (f *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListPending(ctx context.Context) ([]*model.Appointment, error) {
	if f.pendingErr != nil {
		return nil, f.pendingErr
	}
	return f.pending, nil
}

func (f *fakeAppointmentRepo) UpdateAssignment(ctx context.Context, id uuid.UUID, date string, slotStart model.TimeOfDay, status model.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failUpdates[id]; ok {
		return err
	}
	f.assignments[id] = assignmentWrite{date: date, slotStart: slotStart, status: status}
	return nil
}

func (f *fakeAppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	return nil
}

func (f *fakeAppointmentRepo) UpdatePrescriptions(ctx context.Context, id uuid.UUID, prescriptions model.PrescriptionList) error {
	return nil
}

type fakeBroker struct {
	mu       sync.Mutex
	channels []string
	payloads []interface{}
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, message)
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

// monday is a fixed clock used across the runner tests.
var monday = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

func newTestService(repo *fakeAppointmentRepo, doctors *fakeDoctorRepo, broker *fakeBroker) *Service {
	log := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	svc := NewService(repo, NewHoursResolver(doctors, time.Minute), nil, log, metrics.New("test"))
	if broker != nil {
		svc.broker = broker
	}
	svc.now = func() time.Time { return monday }
	return svc
}

func doctorRequest(doctorID uuid.UUID, priority model.AppointmentPriority, bookedOn string) *model.Appointment {
	apt := request(priority, bookedOn)
	apt.DoctorID = doctorID
	apt.Status = model.AppointmentStatusTBD
	return apt
}

func TestRunForDayPriorityWinsScarceSlots(t *testing.T) {
	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		doctorID: {"monday": "10:00 AM - 11:00 AM"},
	}}

	lowEarly := doctorRequest(doctorID, model.PriorityLow, "2026-08-01 09:00:00")
	highLate := doctorRequest(doctorID, model.PriorityHigh, "2026-08-20 09:00:00")
	lowLate := doctorRequest(doctorID, model.PriorityLow, "2026-08-21 09:00:00")
	repo := newFakeAppointmentRepo(lowEarly, highLate, lowLate)

	svc := newTestService(repo, doctors, nil)
	summary, err := svc.RunForDay(context.Background(), "Monday")
	require.NoError(t, err)

	require.Len(t, summary.Assigned, 2)
	assert.Equal(t, highLate.ID, summary.Assigned[0].AppointmentID)
	assert.Equal(t, "10:00 AM", summary.Assigned[0].SlotStart.String())
	assert.Equal(t, lowEarly.ID, summary.Assigned[1].AppointmentID)
	assert.Equal(t, "10:30 AM", summary.Assigned[1].SlotStart.String())
	require.Len(t, summary.WaitingList, 1)
	assert.Equal(t, lowLate.ID, summary.WaitingList[0])

	write, ok := repo.assignments[highLate.ID]
	require.True(t, ok)
	assert.Equal(t, "2026-08-31", write.date)
	assert.Equal(t, model.AppointmentStatusPending, write.status)
	_, waitlistedWritten := repo.assignments[lowLate.ID]
	assert.False(t, waitlistedWritten)
}

func TestRunForDayClosedDayWaitlistsEveryone(t *testing.T) {
	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		doctorID: {"monday": "closed"},
	}}
	first := doctorRequest(doctorID, model.PriorityHigh, "2026-08-01 09:00:00")
	second := doctorRequest(doctorID, model.PriorityLow, "2026-08-02 09:00:00")
	repo := newFakeAppointmentRepo(first, second)

	svc := newTestService(repo, doctors, nil)
	summary, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	assert.Empty(t, summary.Assigned)
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, summary.WaitingList)
	assert.Empty(t, repo.assignments)
}

func TestRunForDayEmptyPoolIsNoOp(t *testing.T) {
	repo := newFakeAppointmentRepo()
	broker := &fakeBroker{}

	svc := newTestService(repo, &fakeDoctorRepo{}, broker)
	summary, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	assert.Equal(t, "no pending appointment requests", summary.Message)
	assert.Empty(t, summary.Assigned)
	assert.Empty(t, summary.WaitingList)
	assert.Empty(t, repo.assignments)
	assert.Empty(t, broker.channels)
}

func TestRunForDayInvalidWeekday(t *testing.T) {
	svc := newTestService(newFakeAppointmentRepo(), &fakeDoctorRepo{}, nil)

	_, err := svc.RunForDay(context.Background(), "someday")
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestRunForDayListFailureAborts(t *testing.T) {
	repo := newFakeAppointmentRepo()
	repo.pendingErr = errors.New("connection reset")

	svc := newTestService(repo, &fakeDoctorRepo{}, nil)
	_, err := svc.RunForDay(context.Background(), "monday")
	assert.Error(t, err)
}

func TestRunForDayPersistFailureDropsFromSummary(t *testing.T) {
	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		doctorID: {"monday": "10:00 AM - 11:00 AM"},
	}}
	first := doctorRequest(doctorID, model.PriorityHigh, "2026-08-01 09:00:00")
	second := doctorRequest(doctorID, model.PriorityLow, "2026-08-02 09:00:00")
	repo := newFakeAppointmentRepo(first, second)
	repo.failUpdates[first.ID] = errors.New("deadlock detected")

	svc := newTestService(repo, doctors, nil)
	summary, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	// The failed write drops the request from the run entirely; it stays
	// pending and competes again next time.
	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, second.ID, summary.Assigned[0].AppointmentID)
	assert.Empty(t, summary.WaitingList)
}

func TestRunForDayGroupsPerDoctor(t *testing.T) {
	drSmith := uuid.New()
	drJones := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		drSmith: {"monday": "10:00 AM - 10:30 AM"},
		drJones: {"monday": "02:00 PM - 03:00 PM"},
	}}

	smithReq := doctorRequest(drSmith, model.PriorityLow, "2026-08-01 09:00:00")
	jonesReq := doctorRequest(drJones, model.PriorityLow, "2026-08-01 10:00:00")
	repo := newFakeAppointmentRepo(smithReq, jonesReq)

	svc := newTestService(repo, doctors, nil)
	summary, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	// Each pool is allocated against its own doctor's hours, so both win a
	// slot even though the hours do not overlap.
	require.Len(t, summary.Assigned, 2)
	assert.Equal(t, "10:00 AM", repo.assignments[smithReq.ID].slotStart.String())
	assert.Equal(t, "02:00 PM", repo.assignments[jonesReq.ID].slotStart.String())
}

func TestRunForDayUnknownDoctorWaitlisted(t *testing.T) {
	req := doctorRequest(uuid.New(), model.PriorityHigh, "2026-08-01 09:00:00")
	repo := newFakeAppointmentRepo(req)

	svc := newTestService(repo, &fakeDoctorRepo{}, nil)
	summary, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	assert.Empty(t, summary.Assigned)
	assert.Equal(t, []uuid.UUID{req.ID}, summary.WaitingList)
}

func TestRunForDayTargetsNextOccurrence(t *testing.T) {
	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		doctorID: {"wednesday": "10:00 AM - 11:00 AM"},
	}}
	req := doctorRequest(doctorID, model.PriorityLow, "2026-08-01 09:00:00")
	repo := newFakeAppointmentRepo(req)

	svc := newTestService(repo, doctors, nil)
	summary, err := svc.RunForDay(context.Background(), "wednesday")
	require.NoError(t, err)

	// The clock reads Monday 2026-08-31, so the next Wednesday is two days
	// out.
	require.Len(t, summary.Assigned, 1)
	assert.Equal(t, "2026-09-02", summary.Assigned[0].Date)
	assert.Equal(t, "wednesday", summary.Weekday)
}

func TestRunForDayAccountsForEveryRequest(t *testing.T) {
	drOpen := uuid.New()
	drClosed := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		drOpen:   {"monday": "10:00 AM - 11:00 AM"},
		drClosed: {"monday": "closed"},
	}}

	var pool []*model.Appointment
	for i := 0; i < 3; i++ {
		pool = append(pool, doctorRequest(drOpen, model.PriorityLow, "2026-08-01 09:00:00"))
	}
	pool = append(pool, doctorRequest(drClosed, model.PriorityHigh, "2026-08-01 09:00:00"))
	repo := newFakeAppointmentRepo(pool...)

	svc := newTestService(repo, doctors, nil)
	summary, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	// Every request lands in exactly one bucket and no two assignments
	// share a slot.
	assert.Equal(t, len(pool), len(summary.Assigned)+len(summary.WaitingList))
	seen := map[uuid.UUID]bool{}
	slots := map[string]bool{}
	for _, as := range summary.Assigned {
		assert.False(t, seen[as.AppointmentID])
		seen[as.AppointmentID] = true
		assert.False(t, slots[as.SlotStart.String()])
		slots[as.SlotStart.String()] = true
	}
	for _, id := range summary.WaitingList {
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestRunForDayPublishesSummary(t *testing.T) {
	doctorID := uuid.New()
	doctors := &fakeDoctorRepo{hours: map[uuid.UUID]model.WeeklyHours{
		doctorID: {"monday": "10:00 AM - 11:00 AM"},
	}}
	req := doctorRequest(doctorID, model.PriorityLow, "2026-08-01 09:00:00")
	broker := &fakeBroker{}

	svc := newTestService(newFakeAppointmentRepo(req), doctors, broker)
	_, err := svc.RunForDay(context.Background(), "monday")
	require.NoError(t, err)

	require.Len(t, broker.channels, 1)
	assert.Equal(t, "scheduling", broker.channels[0])
}

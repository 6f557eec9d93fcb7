package worker

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
	"github.com/smarthealthpro/booking-api/internal/service/schedule"
	"github.com/smarthealthpro/booking-api/pkg/logger"
	"github.com/smarthealthpro/booking-api/pkg/metrics"
)

type pendingRepo struct {
	mu       sync.Mutex
	listens  int
	pending  []*model.Appointment
	assigned map[uuid.UUID]string
}

func (r *pendingRepo) Create(ctx context.Context, apt *model.Appointment) error { return nil }
func (r *pendingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, repository.ErrNotFound
}
func (r *pendingRepo) Update(ctx context.Context, apt *model.Appointment) error { return nil }
func (r *pendingRepo) Delete(ctx context.Context, id uuid.UUID) error           { return nil }
func (r *pendingRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (r *pendingRepo) ListPending(ctx context.Context) ([]*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listens++
	return r.pending, nil
}

func (r *pendingRepo) UpdateAssignment(ctx context.Context, id uuid.UUID, date string, slotStart model.TimeOfDay, status model.AppointmentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assigned == nil {
		r.assigned = map[uuid.UUID]string{}
	}
	r.assigned[id] = date
	return nil
}

func (r *pendingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	return nil
}

func (r *pendingRepo) UpdatePrescriptions(ctx context.Context, id uuid.UUID, prescriptions model.PrescriptionList) error {
	return nil
}

type openDoctorRepo struct {
	hours model.WeeklyHours
}

func (r *openDoctorRepo) Create(ctx context.Context, doctor *model.Doctor) error { return nil }
func (r *openDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return nil, repository.ErrNotFound
}
func (r *openDoctorRepo) GetOfficeHours(ctx context.Context, id uuid.UUID) (model.WeeklyHours, error) {
	return r.hours, nil
}
func (r *openDoctorRepo) UpdateOfficeHours(ctx context.Context, id uuid.UUID, hours model.WeeklyHours) error {
	return nil
}
func (r *openDoctorRepo) List(ctx context.Context) ([]*model.Doctor, error) { return nil, nil }

func TestScheduleWorkerRunsOnStartAndTicks(t *testing.T) {
	apt := &model.Appointment{
		DoctorID: uuid.New(),
		Priority: model.PriorityLow,
		BookedOn: "2026-08-01 09:00:00",
		Status:   model.AppointmentStatusTBD,
	}
	apt.ID = uuid.New()
	repo := &pendingRepo{pending: []*model.Appointment{apt}}

	allDay := model.WeeklyHours{}
	for _, day := range model.Weekdays {
		allDay[day] = "09:00 AM - 05:00 PM"
	}
	doctors := &openDoctorRepo{hours: allDay}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	svc := schedule.NewService(repo, schedule.NewHoursResolver(doctors, time.Minute), nil, log, metrics.New("worker_test"))

	w := NewScheduleWorker(svc, 10*time.Millisecond, log)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return repo.listens >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Contains(t, repo.assigned, apt.ID)
}

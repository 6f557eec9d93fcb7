package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
	"github.com/smarthealthpro/booking-api/pkg/logger"
	"github.com/smarthealthpro/booking-api/pkg/messaging"
	"github.com/smarthealthpro/booking-api/pkg/metrics"
)

// ErrInvalidWeekday is returned when the requested day is not a weekday name.
var ErrInvalidWeekday = errors.New("invalid weekday")

const dateLayout = "2006-01-02"

// Service runs the slot allocation pass over pending appointment requests.
type Service struct {
	appointments repository.AppointmentRepository
	hours        *HoursResolver
	broker       messaging.Broker
	logger       *logger.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, hours *HoursResolver, broker messaging.Broker, logger *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		appointments: appointments,
		hours:        hours,
		broker:       broker,
		logger:       logger,
		metrics:      m,
		now:          time.Now,
	}
}

// RunForDay allocates slots for every pending request, targeting the next
// occurrence of the given weekday (today counts when the days match).
//
// Requests are grouped per doctor: each doctor's own office hours decide the
// slots their pool competes for. A doctor closed on the target day sends that
// whole pool to the waiting list. A request whose assignment fails to persist
// is dropped from the summary and stays pending for the next run; only the
// initial fetch of the pool aborts the run as a whole.
func (s *Service) RunForDay(ctx context.Context, day string) (*model.ScheduleSummary, error) {
	weekday, ok := model.NormalizeWeekday(day)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, day)
	}

	s.metrics.SchedulingRuns.Inc()
	start := s.now()
	defer func() {
		s.metrics.SchedulingRunDuration.Observe(time.Since(start).Seconds())
	}()

	pending, err := s.appointments.ListPending(ctx)
	if err != nil {
		s.metrics.SchedulingRunErrors.Inc()
		return nil, fmt.Errorf("failed to list pending appointments: %w", err)
	}

	summary := &model.ScheduleSummary{
		Weekday:     weekday,
		Assigned:    []model.AssignedAppointment{},
		WaitingList: []uuid.UUID{},
	}

	if len(pending) == 0 {
		summary.Message = "no pending appointment requests"
		return summary, nil
	}

	targetDate := s.nextOccurrence(weekday)

	for _, group := range groupByDoctor(pending) {
		s.runDoctor(ctx, group, weekday, targetDate, summary)
	}

	summary.Message = fmt.Sprintf("scheduled %d appointments, %d on waiting list",
		len(summary.Assigned), len(summary.WaitingList))

	s.publishSummary(ctx, summary)
	return summary, nil
}

type doctorGroup struct {
	doctorID uuid.UUID
	requests []*model.Appointment
}

// groupByDoctor splits the pool per doctor, keeping doctors in the order they
// first appear and requests in their original order within each group.
func groupByDoctor(pending []*model.Appointment) []doctorGroup {
	index := make(map[uuid.UUID]int)
	var groups []doctorGroup
	for _, req := range pending {
		i, ok := index[req.DoctorID]
		if !ok {
			i = len(groups)
			index[req.DoctorID] = i
			groups = append(groups, doctorGroup{doctorID: req.DoctorID})
		}
		groups[i].requests = append(groups[i].requests, req)
	}
	return groups
}

func (s *Service) runDoctor(ctx context.Context, group doctorGroup, weekday, targetDate string, summary *model.ScheduleSummary) {
	iv, open, err := s.hours.Resolve(ctx, group.doctorID, weekday)
	if err != nil {
		s.metrics.SchedulingRunErrors.Inc()
		s.logger.Error(err, "failed to resolve office hours, waitlisting doctor's pool",
			"doctor_id", group.doctorID.String())
		s.waitlist(summary, group.requests)
		return
	}
	if !open {
		s.waitlist(summary, group.requests)
		return
	}

	slots := GenerateSlots(iv)
	alloc := Allocate(slots, OrderByPriority(group.requests))

	persisted := s.persistAssignments(ctx, alloc.Assigned, targetDate)
	for i, as := range alloc.Assigned {
		if !persisted[i] {
			continue
		}
		summary.Assigned = append(summary.Assigned, model.AssignedAppointment{
			AppointmentID: as.Appointment.ID,
			Date:          targetDate,
			SlotStart:     as.Slot.Start,
			SlotEnd:       as.Slot.End,
		})
		s.metrics.AppointmentsAssigned.Inc()
	}

	s.waitlist(summary, alloc.Waiting)
}

// persistAssignments writes the assignments concurrently and reports, per
// index, whether the write succeeded. A failed write leaves the request in
// its pending state and is only logged and counted.
func (s *Service) persistAssignments(ctx context.Context, assigned []Assignment, targetDate string) []bool {
	persisted := make([]bool, len(assigned))

	var wg sync.WaitGroup
	for i, as := range assigned {
		wg.Add(1)
		go func(i int, as Assignment) {
			defer wg.Done()
			err := s.appointments.UpdateAssignment(ctx, as.Appointment.ID, targetDate, as.Slot.Start, model.AppointmentStatusPending)
			if err != nil {
				s.metrics.AssignmentPersistFailures.Inc()
				s.logger.Error(err, "failed to persist assignment",
					"appointment_id", as.Appointment.ID.String())
				return
			}
			persisted[i] = true
		}(i, as)
	}
	wg.Wait()

	return persisted
}

func (s *Service) waitlist(summary *model.ScheduleSummary, requests []*model.Appointment) {
	for _, req := range requests {
		summary.WaitingList = append(summary.WaitingList, req.ID)
		s.metrics.AppointmentsWaitlisted.Inc()
	}
}

// nextOccurrence returns the date of the next target weekday, today included.
func (s *Service) nextOccurrence(weekday string) string {
	target := weekdayIndex(weekday)
	now := s.now()
	offset := (target - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, offset).Format(dateLayout)
}

func weekdayIndex(weekday string) int {
	for i, w := range model.Weekdays {
		if w == weekday {
			return i
		}
	}
	return 0
}

func (s *Service) publishSummary(ctx context.Context, summary *model.ScheduleSummary) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: "scheduling_run_completed", Payload: summary}
	if err := s.broker.Publish(ctx, messaging.ChannelScheduling, msg); err != nil {
		s.logger.Error(err, "failed to publish scheduling summary")
	}
}

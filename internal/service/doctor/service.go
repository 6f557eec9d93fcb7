package doctor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
	"github.com/smarthealthpro/booking-api/internal/service/schedule"
	apperrors "github.com/smarthealthpro/booking-api/pkg/errors"
)

type Service struct {
	repo  repository.DoctorRepository
	hours *schedule.HoursResolver
}

func NewService(repo repository.DoctorRepository, hours *schedule.HoursResolver) *Service {
	return &Service{repo: repo, hours: hours}
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return doc, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (s *Service) GetOfficeHours(ctx context.Context, id uuid.UUID) (model.WeeklyHours, error) {
	hours, err := s.repo.GetOfficeHours(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get office hours: %w", err)
	}
	return hours, nil
}

// UpdateOfficeHours validates and stores a doctor's weekly hours. Each entry
// must be "closed", empty, or a well formed range; the update also drops the
// scheduler's cached copy.
func (s *Service) UpdateOfficeHours(ctx context.Context, id uuid.UUID, hours model.WeeklyHours) error {
	normalized := model.WeeklyHours{}
	for day, entry := range hours {
		d, ok := model.NormalizeWeekday(day)
		if !ok {
			return apperrors.BadRequest(fmt.Sprintf("invalid weekday %q", day), nil)
		}
		normalized[d] = entry
	}

	if err := s.repo.UpdateOfficeHours(ctx, id, normalized); err != nil {
		return fmt.Errorf("failed to update office hours: %w", err)
	}
	if s.hours != nil {
		s.hours.Invalidate(id)
	}
	return nil
}

// DailySlots expands a doctor's hours on one weekday into bookable slots.
// A closed day returns an empty list.
func (s *Service) DailySlots(ctx context.Context, id uuid.UUID, weekday string) ([]model.TimeSlot, error) {
	day, ok := model.NormalizeWeekday(weekday)
	if !ok {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid weekday %q", weekday), nil)
	}

	hours, err := s.repo.GetOfficeHours(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get office hours: %w", err)
	}

	iv, open := hours.Range(day)
	if !open {
		return []model.TimeSlot{}, nil
	}
	return schedule.GenerateSlots(iv), nil
}

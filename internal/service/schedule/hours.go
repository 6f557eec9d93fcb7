package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/smarthealthpro/booking-api/internal/model"
	"github.com/smarthealthpro/booking-api/internal/repository"
)

// HoursResolver answers "when is this doctor open on this weekday", caching
// office hours so a scheduling run does not hammer the database with one
// lookup per pending request.
type HoursResolver struct {
	doctors repository.DoctorRepository
	cache   *gocache.Cache
}

func NewHoursResolver(doctors repository.DoctorRepository, ttl time.Duration) *HoursResolver {
	return &HoursResolver{
		doctors: doctors,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

// Resolve returns the open interval for a doctor on a weekday. The boolean is
// false when the doctor is closed that day, has no usable hours entry, or the
// doctor does not exist. An error is returned only for storage failures.
func (r *HoursResolver) Resolve(ctx context.Context, doctorID uuid.UUID, weekday string) (model.Interval, bool, error) {
	hours, err := r.officeHours(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Interval{}, false, nil
		}
		return model.Interval{}, false, fmt.Errorf("failed to resolve office hours: %w", err)
	}

	iv, open := hours.Range(weekday)
	return iv, open, nil
}

func (r *HoursResolver) officeHours(ctx context.Context, doctorID uuid.UUID) (model.WeeklyHours, error) {
	key := doctorID.String()
	if cached, ok := r.cache.Get(key); ok {
		return cached.(model.WeeklyHours), nil
	}

	hours, err := r.doctors.GetOfficeHours(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	r.cache.Set(key, hours, gocache.DefaultExpiration)
	return hours, nil
}

// Invalidate drops a doctor's cached hours, used after an hours update.
func (r *HoursResolver) Invalidate(doctorID uuid.UUID) {
	r.cache.Delete(doctorID.String())
}

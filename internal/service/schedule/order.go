package schedule

import (
	"sort"

	"github.com/smarthealthpro/booking-api/internal/model"
)

// OrderByPriority sorts pending requests into allocation order without
// mutating the input. High priority requests come first; within the same
// priority, earlier booking timestamps win. Requests whose booking timestamp
// does not parse sink below every parseable one of the same priority, keeping
// their relative insertion order.
func OrderByPriority(requests []*model.Appointment) []*model.Appointment {
	ordered := make([]*model.Appointment, len(requests))
	copy(ordered, requests)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.IsHighPriority() != b.IsHighPriority() {
			return a.IsHighPriority()
		}

		at, aok := a.BookedOnTime()
		bt, bok := b.BookedOnTime()
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return at.Before(bt)
	})

	return ordered
}

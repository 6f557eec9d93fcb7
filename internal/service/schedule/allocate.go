package schedule

import (
	"github.com/smarthealthpro/booking-api/internal/model"
)

// Assignment pairs one request with the slot it won.
type Assignment struct {
	Appointment *model.Appointment
	Slot        model.TimeSlot
}

// Allocation is the outcome of matching an ordered request list against a
// day's slots.
type Allocation struct {
	Assigned []Assignment
	Waiting  []*model.Appointment
}

// Allocate hands out slots greedily: the first request in order takes the
// first slot, the second takes the second, and so on. Once slots run out,
// every remaining request goes to the waiting list in order.
func Allocate(slots []model.TimeSlot, ordered []*model.Appointment) Allocation {
	var alloc Allocation
	for i, req := range ordered {
		if i < len(slots) {
			alloc.Assigned = append(alloc.Assigned, Assignment{Appointment: req, Slot: slots[i]})
			continue
		}
		alloc.Waiting = append(alloc.Waiting, req)
	}
	return alloc
}

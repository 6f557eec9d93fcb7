package schedule

import (
	"github.com/smarthealthpro/booking-api/internal/model"
)

// GenerateSlots cuts an open interval into consecutive 30-minute slots.
// A slot is emitted whenever its start falls inside the interval, so the
// last slot of an uneven interval runs past the closing time. Clinics treat
// the closing time as "last admission", not "doors locked", and the booking
// history depends on that final slot existing.
func GenerateSlots(iv model.Interval) []model.TimeSlot {
	var slots []model.TimeSlot
	for cur := iv.Start; cur.Before(iv.End); cur = cur.Add(model.SlotDurationMinutes) {
		slots = append(slots, model.TimeSlot{
			Start: cur,
			End:   cur.Add(model.SlotDurationMinutes),
		})
	}
	return slots
}

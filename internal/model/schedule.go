package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlotDurationMinutes is the fixed width of a bookable slot.
const SlotDurationMinutes = 30

// TimeOfDay is a wall-clock time with minute precision, no date attached.
// It is carried over the wire in 12-hour format, e.g. "10:00 AM".
type TimeOfDay int

const timeOfDayLayout = "3:04 PM"

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeOfDayLayout, strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

func (t TimeOfDay) String() string {
	ref := time.Date(0, 1, 1, int(t)/60, int(t)%60, 0, 0, time.UTC)
	return ref.Format("03:04 PM")
}

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Interval is a doctor's open window on a single day.
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// TimeSlot is one bookable window inside an interval.
type TimeSlot struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Weekday names as stored in office hours, always lowercase.
var Weekdays = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// NormalizeWeekday lowercases and trims a weekday name. Returns false for
// anything that is not a day of the week.
func NormalizeWeekday(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	for _, w := range Weekdays {
		if w == d {
			return d, true
		}
	}
	return "", false
}

// AssignedAppointment is one successful pairing from a scheduling run.
type AssignedAppointment struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Date          string    `json:"date"`
	SlotStart     TimeOfDay `json:"slot_start"`
	SlotEnd       TimeOfDay `json:"slot_end"`
}

// ScheduleSummary is the result of one scheduling run for a target weekday.
type ScheduleSummary struct {
	Message     string                `json:"message"`
	Weekday     string                `json:"target_weekday"`
	Assigned    []AssignedAppointment `json:"assigned_appointments"`
	WaitingList []uuid.UUID           `json:"waiting_list"`
}

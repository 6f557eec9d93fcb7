package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// WeeklyHours maps a lowercase weekday name to an office-hours range such as
// "10:00 AM - 11:00 AM", or "closed". Missing days count as closed.
type WeeklyHours map[string]string

const hoursClosed = "closed"

// Range returns the open interval for a day. The second return value is false
// when the day is missing, empty, closed, or the stored range is malformed.
func (w WeeklyHours) Range(day string) (Interval, bool) {
	entry, ok := w[strings.ToLower(day)]
	if !ok {
		return Interval{}, false
	}
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.EqualFold(entry, hoursClosed) {
		return Interval{}, false
	}

	parts := strings.SplitN(entry, " - ", 2)
	if len(parts) != 2 {
		return Interval{}, false
	}
	start, err := ParseTimeOfDay(parts[0])
	if err != nil {
		return Interval{}, false
	}
	end, err := ParseTimeOfDay(parts[1])
	if err != nil {
		return Interval{}, false
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

func (w WeeklyHours) Value() (driver.Value, error) {
	if w == nil {
		return "{}", nil
	}
	return json.Marshal(w)
}

func (w *WeeklyHours) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*w = WeeklyHours{}
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("unsupported type for WeeklyHours: %T", src)
	}
}

// Doctor represents a practitioner profile.
type Doctor struct {
	Base
	UserID         uuid.UUID   `db:"user_id" json:"user_id"`
	Specialization string      `db:"specialization" json:"specialization"`
	About          string      `db:"about" json:"about,omitempty"`
	Address        string      `db:"address" json:"address,omitempty"`
	Rating         float64     `db:"rating" json:"rating"`
	ReviewCount    int         `db:"review_count" json:"review_count"`
	OfficeHours    WeeklyHours `db:"office_hours" json:"office_hours"`
}

type UpdateOfficeHoursRequest struct {
	OfficeHours WeeklyHours `json:"office_hours" binding:"required"`
}

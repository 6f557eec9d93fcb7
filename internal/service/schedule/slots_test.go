package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarthealthpro/booking-api/internal/model"
)

func mustTime(t *testing.T, s string) model.TimeOfDay {
	t.Helper()
	tod, err := model.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func TestGenerateSlots(t *testing.T) {
	iv := model.Interval{
		Start: mustTime(t, "10:00 AM"),
		End:   mustTime(t, "11:00 AM"),
	}

	slots := GenerateSlots(iv)
	require.Len(t, slots, 2)
	assert.Equal(t, "10:00 AM", slots[0].Start.String())
	assert.Equal(t, "10:30 AM", slots[0].End.String())
	assert.Equal(t, "10:30 AM", slots[1].Start.String())
	assert.Equal(t, "11:00 AM", slots[1].End.String())
}

func TestGenerateSlotsUnevenIntervalOverruns(t *testing.T) {
	iv := model.Interval{
		Start: mustTime(t, "09:00 AM"),
		End:   mustTime(t, "09:45 AM"),
	}

	slots := GenerateSlots(iv)
	require.Len(t, slots, 2)
	// The 09:30 slot starts inside the interval, so it is kept even though
	// it ends past closing time.
	assert.Equal(t, "09:30 AM", slots[1].Start.String())
	assert.Equal(t, "10:00 AM", slots[1].End.String())
}

func TestGenerateSlotsEmptyInterval(t *testing.T) {
	iv := model.Interval{
		Start: mustTime(t, "10:00 AM"),
		End:   mustTime(t, "10:00 AM"),
	}
	assert.Empty(t, GenerateSlots(iv))
}

func TestGenerateSlotsAcrossNoon(t *testing.T) {
	iv := model.Interval{
		Start: mustTime(t, "11:30 AM"),
		End:   mustTime(t, "12:30 PM"),
	}

	slots := GenerateSlots(iv)
	require.Len(t, slots, 2)
	assert.Equal(t, "12:00 PM", slots[1].Start.String())
	assert.Equal(t, "12:30 PM", slots[1].End.String())
}

package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianails/tg_booking_bot/pkg/booking/schedule"
)

var defaultSlots = []string{"09:00", "10:30", "12:00", "13:30", "15:00", "16:30", "18:00", "19:30"}

func TestNew_Validation(t *testing.T) {
	_, err := schedule.New(nil)
	assert.Error(t, err)

	_, err = schedule.New([]string{"9 утра"})
	assert.Error(t, err)

	_, err = schedule.New([]string{"10:00", "10:00"})
	assert.Error(t, err)
}

func TestSlots_Order(t *testing.T) {
	grid, err := schedule.New(defaultSlots)
	require.NoError(t, err)
	assert.Equal(t, defaultSlots, grid.Slots())
}

func TestValidSlot(t *testing.T) {
	grid, err := schedule.New(defaultSlots)
	require.NoError(t, err)

	assert.True(t, grid.ValidSlot("10:30"))
	assert.False(t, grid.ValidSlot("10:31"))
	assert.False(t, grid.ValidSlot(""))
}

func TestDateEligible(t *testing.T) {
	grid, err := schedule.New(defaultSlots)
	require.NoError(t, err)

	// Вечер: сегодняшняя дата всё ещё доступна.
	now := time.Date(2025, 6, 10, 23, 30, 0, 0, time.UTC)

	assert.True(t, grid.DateEligible("2025-06-10", now))
	assert.True(t, grid.DateEligible("2025-06-11", now))
	assert.True(t, grid.DateEligible("2026-01-01", now))
	assert.False(t, grid.DateEligible("2025-06-09", now))
	assert.False(t, grid.DateEligible("junk", now))
}

func TestMonth(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	view := schedule.Month(2025, time.June, now)

	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, time.June, view.Month)
	// 1 июня 2025 — воскресенье: шесть пустых ячеек до него.
	assert.Equal(t, 6, view.Offset)
	require.Len(t, view.Days, 30)

	assert.False(t, view.Days[8].Eligible, "9th is in the past")
	assert.True(t, view.Days[9].Eligible, "10th is today")
	assert.True(t, view.Days[29].Eligible)
	assert.Equal(t, "2025-06-01", view.Days[0].Date)
	assert.Equal(t, "2025-06-30", view.Days[29].Date)
}

func TestMonth_Future(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	view := schedule.Month(2025, time.July, now)

	require.Len(t, view.Days, 31)
	for _, d := range view.Days {
		assert.True(t, d.Eligible, d.Date)
	}
	// 1 июля 2025 — вторник.
	assert.Equal(t, 1, view.Offset)
}

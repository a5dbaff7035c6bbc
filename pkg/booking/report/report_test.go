package report_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianails/tg_booking_bot/pkg/booking/report"
	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/julianails/tg_booking_bot/pkg/repository/store"
)

// 2025-06-10 — вторник.
var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T) *store.Memory {
	t.Helper()
	ctx := context.Background()
	mem := store.NewMemory()

	for i, name := range []string{"Анна", "Мария", "Ольга"} {
		_, err := mem.UpsertClient(ctx, model.Client{UserID: int64(i + 1), FullName: name, Phone: fmt.Sprintf("+7900000000%d", i)})
		require.NoError(t, err)
	}

	book := func(userID int64, key, date, slot string, price int) model.Appointment {
		a, err := mem.CreateAppointment(ctx, model.Appointment{
			UserID: userID, ServiceKey: key, ServiceName: key,
			Date: date, Slot: slot, Price: price, CreatedAt: now,
		})
		require.NoError(t, err)
		return a
	}

	book(1, "classic", "2025-06-10", "09:00", 1500) // сегодня
	book(2, "gel", "2025-06-10", "12:00", 2500)     // сегодня
	book(1, "gel", "2025-06-14", "09:00", 2500)     // на этой неделе (суббота)
	book(2, "classic", "2025-06-24", "09:00", 1500) // в этом месяце, вне недели (вторник)
	book(3, "design", "2025-07-01", "09:00", 3000)  // следующий месяц

	// Отменённая запись не должна попадать ни в один показатель.
	cancelled := book(3, "gel", "2025-06-15", "15:00", 2500)
	_, err := mem.CancelAppointment(ctx, cancelled.ID, now)
	require.NoError(t, err)

	return mem
}

func TestSummary(t *testing.T) {
	r := report.New(seed(t))

	s, err := r.Summary(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 3, s.TotalClients)
	assert.Equal(t, 5, s.ActiveAppointments)
	assert.Equal(t, 2, s.TodayAppointments)
	assert.Equal(t, 3, s.WeekAppointments)
	assert.Equal(t, 1500+2500+2500+1500, s.MonthRevenue)
}

func TestTodaySchedule(t *testing.T) {
	r := report.New(seed(t))

	today, err := r.TodaySchedule(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, today, 2)
	assert.Equal(t, "09:00", today[0].Slot)
	assert.Equal(t, "12:00", today[1].Slot)
	assert.Equal(t, "Анна", today[0].FullName)
}

func TestWeekSchedule(t *testing.T) {
	r := report.New(seed(t))

	week, err := r.WeekSchedule(context.Background(), now)
	require.NoError(t, err)
	assert.Len(t, week, 3)
}

func TestServiceBreakdown(t *testing.T) {
	r := report.New(seed(t))

	stats, err := r.ServiceBreakdown(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, report.ServiceStat{ServiceKey: "classic", Count: 2, Revenue: 3000}, stats[0])
	assert.Equal(t, report.ServiceStat{ServiceKey: "gel", Count: 2, Revenue: 5000}, stats[1])
	assert.Equal(t, report.ServiceStat{ServiceKey: "design", Count: 1, Revenue: 3000}, stats[2])
}

func TestTopWeekdays(t *testing.T) {
	r := report.New(seed(t))

	days, err := r.TopWeekdays(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, days, 2)

	// Вторник — самый загруженный день: обе записи на 10.06 плюс 24.06 и 01.07.
	assert.Equal(t, report.WeekdayStat{Weekday: "Вторник", Count: 4}, days[0])
	assert.Equal(t, report.WeekdayStat{Weekday: "Суббота", Count: 1}, days[1])
}

func TestSummary_EmptyStore(t *testing.T) {
	r := report.New(store.NewMemory())

	s, err := r.Summary(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, s.TotalClients)
	assert.Zero(t, s.ActiveAppointments)
	assert.Zero(t, s.MonthRevenue)
}

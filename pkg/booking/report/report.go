// Package report derives admin statistics from the committed state of
// the store. Everything is recomputed per request; there are no cached
// counters to drift out of sync with the ledger.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/julianails/tg_booking_bot/pkg/repository/model"
)

var weekdayNames = [...]string{
	"Воскресенье", "Понедельник", "Вторник", "Среда",
	"Четверг", "Пятница", "Суббота",
}

type Summary struct {
	TotalClients       int
	ActiveAppointments int // pending, сегодня и позже
	TodayAppointments  int
	WeekAppointments   int // сегодня .. +7 дней
	MonthRevenue       int // pending за текущий календарный месяц
}

type ServiceStat struct {
	ServiceKey string
	Count      int
	Revenue    int
}

type WeekdayStat struct {
	Weekday string
	Count   int
}

type Reporter struct {
	store model.Store
}

func New(store model.Store) *Reporter {
	return &Reporter{store: store}
}

func (r *Reporter) Summary(ctx context.Context, now time.Time) (Summary, error) {
	total, err := r.store.CountClients(ctx)
	if err != nil {
		return Summary{}, err
	}
	pending, err := r.store.ListAll(ctx, model.StatusPending)
	if err != nil {
		return Summary{}, err
	}

	today := now.Format(model.DateLayout)
	weekEnd := now.AddDate(0, 0, 7).Format(model.DateLayout)
	month := now.Format("2006-01")

	s := Summary{TotalClients: total}
	for _, a := range pending {
		if a.Date >= today {
			s.ActiveAppointments++
		}
		if a.Date == today {
			s.TodayAppointments++
		}
		if a.Date >= today && a.Date <= weekEnd {
			s.WeekAppointments++
		}
		if len(a.Date) >= len(month) && a.Date[:len(month)] == month {
			s.MonthRevenue += a.Price
		}
	}
	return s, nil
}

// TodaySchedule returns today's pending appointments with client info.
func (r *Reporter) TodaySchedule(ctx context.Context, now time.Time) ([]model.AppointmentWithClient, error) {
	today := now.Format(model.DateLayout)
	return r.store.ListByDateRange(ctx, today, today)
}

// WeekSchedule returns the pending appointments of the next 7 days.
func (r *Reporter) WeekSchedule(ctx context.Context, now time.Time) ([]model.AppointmentWithClient, error) {
	return r.store.ListByDateRange(ctx,
		now.Format(model.DateLayout),
		now.AddDate(0, 0, 7).Format(model.DateLayout))
}

// ServiceBreakdown aggregates pending future appointments per service,
// ordered by count (ties by key) so the busiest service comes first.
func (r *Reporter) ServiceBreakdown(ctx context.Context, now time.Time) ([]ServiceStat, error) {
	pending, err := r.store.ListAll(ctx, model.StatusPending)
	if err != nil {
		return nil, err
	}
	today := now.Format(model.DateLayout)

	byKey := make(map[string]*ServiceStat)
	for _, a := range pending {
		if a.Date < today {
			continue
		}
		st, ok := byKey[a.ServiceKey]
		if !ok {
			st = &ServiceStat{ServiceKey: a.ServiceKey}
			byKey[a.ServiceKey] = st
		}
		st.Count++
		st.Revenue += a.Price
	}

	out := make([]ServiceStat, 0, len(byKey))
	for _, st := range byKey {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ServiceKey < out[j].ServiceKey
	})
	return out, nil
}

// TopWeekdays returns the n most-booked weekdays over all pending
// appointments.
func (r *Reporter) TopWeekdays(ctx context.Context, n int) ([]WeekdayStat, error) {
	pending, err := r.store.ListAll(ctx, model.StatusPending)
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Weekday]int)
	for _, a := range pending {
		d, err := time.Parse(model.DateLayout, a.Date)
		if err != nil {
			continue
		}
		counts[d.Weekday()]++
	}

	out := make([]WeekdayStat, 0, len(counts))
	for wd, c := range counts {
		out = append(out, WeekdayStat{Weekday: weekdayNames[wd], Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Weekday < out[j].Weekday
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

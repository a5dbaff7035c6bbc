// Package schedule defines the daily slot grid and date eligibility
// rules. Which dates and times are bookable is a domain rule, so the
// calendar math lives here rather than in the chat layer.
package schedule

import (
	"time"

	"github.com/julianails/tg_booking_bot/pkg/repository/model"
	"github.com/julianails/tg_booking_bot/pkg/utils/errs"
)

// Grid holds the fixed set of bookable time-of-day slots.
type Grid struct {
	slots []string
	set   map[string]struct{}
}

func New(slots []string) (*Grid, error) {
	if len(slots) == 0 {
		return nil, errs.New("slot grid requires at least one slot")
	}
	g := &Grid{set: make(map[string]struct{}, len(slots))}
	for _, s := range slots {
		if _, err := time.Parse(model.SlotLayout, s); err != nil {
			return nil, errs.New("malformed slot").Arg("slot", s).Wrap(err)
		}
		if _, dup := g.set[s]; dup {
			return nil, errs.New("duplicate slot").Arg("slot", s)
		}
		g.slots = append(g.slots, s)
		g.set[s] = struct{}{}
	}
	return g, nil
}

// Slots returns the grid in configuration order.
func (g *Grid) Slots() []string {
	out := make([]string, len(g.slots))
	copy(out, g.slots)
	return out
}

func (g *Grid) ValidSlot(slot string) bool {
	_, ok := g.set[slot]
	return ok
}

// DateEligible reports whether date (YYYY-MM-DD) is today or later
// relative to now's calendar date. A malformed date is never eligible.
// ISO dates compare correctly as strings, which sidesteps timezone
// mismatches between the parsed date and now.
func (g *Grid) DateEligible(date string, now time.Time) bool {
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		return false
	}
	return date >= now.Format(model.DateLayout)
}

// Day is one calendar cell of a month view.
type Day struct {
	Day      int
	Date     string // YYYY-MM-DD
	Eligible bool
}

// MonthView is the bookable calendar of a single month.
type MonthView struct {
	Year  int
	Month time.Month
	// Offset — количество пустых ячеек перед первым днём
	// при неделе с понедельника.
	Offset int
	Days   []Day
}

// Month builds the view for (year, month): every day of the month with
// its eligibility against now, plus the Monday-first leading offset.
func Month(year int, month time.Month, now time.Time) MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)
	today := startOfDay(now)

	// time.Weekday is Sunday-based; shift to Monday-first.
	offset := (int(first.Weekday()) + 6) % 7

	view := MonthView{Year: year, Month: month, Offset: offset}
	for d := 1; d <= last.Day(); d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, now.Location())
		view.Days = append(view.Days, Day{
			Day:      d,
			Date:     date.Format(model.DateLayout),
			Eligible: !date.Before(today),
		})
	}
	return view
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

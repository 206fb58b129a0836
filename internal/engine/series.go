package engine

import (
	"fmt"
	"time"

	"github.com/restoops/backend-go/internal/domain"
)

// dateOnly truncates a timestamp to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// windowDays counts calendar days in [start, end] inclusive.
func windowDays(start, end time.Time) int {
	return int(dateOnly(end).Sub(dateOnly(start)).Hours()/24) + 1
}

// BuildDailySeries aggregates outbound movement events into one total per
// calendar day over [start, end] inclusive. Days without events carry a zero.
// Events outside the window, inbound events and non-positive quantities are
// ignored; input order does not matter.
func BuildDailySeries(events []UsageEventView, start, end time.Time) (DailySeries, error) {
	start = dateOnly(start)
	end = dateOnly(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s after end %s", ErrInvalidWindow, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	totals := make(map[time.Time]float64)
	for _, ev := range events {
		if ev.Direction != string(domain.DirectionOut) || ev.Quantity <= 0 {
			continue
		}
		day := dateOnly(ev.OccurredAt)
		if day.Before(start) || day.After(end) {
			continue
		}
		totals[day] += ev.Quantity
	}

	// Walking the window day by day yields a contiguous, date-ascending
	// series regardless of input order.
	days := windowDays(start, end)
	series := make(DailySeries, 0, days)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		series = append(series, DailyPoint{Date: day, Quantity: totals[day]})
	}
	return series, nil
}

// FromUsageEvents converts repository movement records into the engine's view.
func FromUsageEvents(events []domain.UsageEvent) []UsageEventView {
	views := make([]UsageEventView, len(events))
	for i, ev := range events {
		views[i] = UsageEventView{
			Quantity:   ev.Quantity,
			Direction:  string(ev.Direction),
			OccurredAt: ev.OccurredAt,
		}
	}
	return views
}

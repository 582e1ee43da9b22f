// Package analytics computes month-to-date comparative summaries over the
// operational logs: the current month through "today" against the same
// stretch of the previous month.
package analytics

import (
	"time"

	"haulbook/internal/core"
)

type (
	// Window is a closed date range [From, To].
	Window struct {
		From core.Date
		To   core.Date
	}

	// Metric is one compared figure across the two windows.
	Metric struct {
		Current  int64
		Previous int64
		Delta    int64
		// PctChange is rounded to one decimal. Undefined when Previous is
		// zero; NoBaseline flags that case and PctChange stays 0.
		PctChange  float64
		NoBaseline bool
	}

	// Report is the full MTD comparison shown on the dashboard.
	Report struct {
		Current  Window
		Previous Window

		DieselMilli Metric
		DieselPaise Metric
		CoalTrips   Metric
		CoalKg      Metric
		MiningKg    Metric
	}
)

// Contains reports whether d falls inside the window.
func (w Window) Contains(d core.Date) bool {
	if d.Before(w.From.Time) {
		return false
	}
	return !d.After(w.To.Time)
}

// Windows splits "now" into the current month-to-date range and the matching
// range of the previous month. The previous window's end day is clamped to
// that month's length (Mar 30 compares against the full Feb).
func Windows(now time.Time) (current, previous Window) {
	y, m, day := now.Date()

	current = Window{
		From: core.NewDate(y, int(m), 1),
		To:   core.NewDate(y, int(m), day),
	}

	py, pm := y, int(m)-1
	if pm < 1 {
		pm = 12
		py--
	}
	prevDays := daysIn(py, pm)
	pd := day
	if pd > prevDays {
		pd = prevDays
	}
	previous = Window{
		From: core.NewDate(py, pm, 1),
		To:   core.NewDate(py, pm, pd),
	}
	return current, previous
}

func daysIn(year, month int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Compare fills the report from rows already fetched for both windows.
// Rows outside their window are ignored, so callers may pass a superset.
func Compare(now time.Time, fuel []core.FuelLog, coal []core.CoalLog, mining []core.MiningLog) Report {
	cur, prev := Windows(now)
	r := Report{Current: cur, Previous: prev}

	for _, f := range fuel {
		switch {
		case cur.Contains(f.Date):
			r.DieselMilli.Current += f.Quantity.Milli
			r.DieselPaise.Current += f.Cost.Paise
		case prev.Contains(f.Date):
			r.DieselMilli.Previous += f.Quantity.Milli
			r.DieselPaise.Previous += f.Cost.Paise
		}
	}
	for _, c := range coal {
		switch {
		case cur.Contains(c.Date):
			r.CoalTrips.Current += int64(c.Trips)
			r.CoalKg.Current += c.TonnageKg
		case prev.Contains(c.Date):
			r.CoalTrips.Previous += int64(c.Trips)
			r.CoalKg.Previous += c.TonnageKg
		}
	}
	for _, m := range mining {
		switch {
		case cur.Contains(m.Date):
			r.MiningKg.Current += m.OutputKg
		case prev.Contains(m.Date):
			r.MiningKg.Previous += m.OutputKg
		}
	}

	for _, m := range []*Metric{&r.DieselMilli, &r.DieselPaise, &r.CoalTrips, &r.CoalKg, &r.MiningKg} {
		m.finish()
	}
	return r
}

func (m *Metric) finish() {
	m.Delta = m.Current - m.Previous
	if m.Previous == 0 {
		m.NoBaseline = true
		return
	}
	pct := float64(m.Delta) / float64(m.Previous) * 100
	// Round to one decimal place.
	if pct >= 0 {
		m.PctChange = float64(int64(pct*10+0.5)) / 10
	} else {
		m.PctChange = float64(int64(pct*10-0.5)) / 10
	}
}

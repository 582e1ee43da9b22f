package analytics

import (
	"testing"
	"time"

	"haulbook/internal/core"
)

func TestWindows(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantCur  [2]core.Date
		wantPrev [2]core.Date
	}{
		{
			name:     "mid month",
			now:      time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC),
			wantCur:  [2]core.Date{core.NewDate(2026, 8, 1), core.NewDate(2026, 8, 15)},
			wantPrev: [2]core.Date{core.NewDate(2026, 7, 1), core.NewDate(2026, 7, 15)},
		},
		{
			name:     "january rolls into december",
			now:      time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			wantCur:  [2]core.Date{core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 10)},
			wantPrev: [2]core.Date{core.NewDate(2025, 12, 1), core.NewDate(2025, 12, 10)},
		},
		{
			name:     "day clamped to short previous month",
			now:      time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
			wantCur:  [2]core.Date{core.NewDate(2026, 3, 1), core.NewDate(2026, 3, 30)},
			wantPrev: [2]core.Date{core.NewDate(2026, 2, 1), core.NewDate(2026, 2, 28)},
		},
		{
			name:     "leap february",
			now:      time.Date(2028, 3, 31, 0, 0, 0, 0, time.UTC),
			wantCur:  [2]core.Date{core.NewDate(2028, 3, 1), core.NewDate(2028, 3, 31)},
			wantPrev: [2]core.Date{core.NewDate(2028, 2, 1), core.NewDate(2028, 2, 29)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, prev := Windows(tt.now)
			if !cur.From.Equal(tt.wantCur[0].Time) || !cur.To.Equal(tt.wantCur[1].Time) {
				t.Errorf("current = %v..%v, want %v..%v",
					cur.From.Time, cur.To.Time, tt.wantCur[0].Time, tt.wantCur[1].Time)
			}
			if !prev.From.Equal(tt.wantPrev[0].Time) || !prev.To.Equal(tt.wantPrev[1].Time) {
				t.Errorf("previous = %v..%v, want %v..%v",
					prev.From.Time, prev.To.Time, tt.wantPrev[0].Time, tt.wantPrev[1].Time)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	fuel := []core.FuelLog{
		{Date: core.NewDate(2026, 8, 3), Quantity: core.Volume{Milli: 60000}, Cost: core.Money{Paise: 540000}},
		{Date: core.NewDate(2026, 8, 10), Quantity: core.Volume{Milli: 40000}, Cost: core.Money{Paise: 360000}},
		{Date: core.NewDate(2026, 7, 5), Quantity: core.Volume{Milli: 50000}, Cost: core.Money{Paise: 450000}},
		// Outside both windows: July 20 is past the previous cutoff day.
		{Date: core.NewDate(2026, 7, 20), Quantity: core.Volume{Milli: 99000}, Cost: core.Money{Paise: 990000}},
	}
	coal := []core.CoalLog{
		{Date: core.NewDate(2026, 8, 4), Trips: 5, TonnageKg: 80000},
		{Date: core.NewDate(2026, 7, 2), Trips: 4, TonnageKg: 64000},
	}
	mining := []core.MiningLog{
		{Date: core.NewDate(2026, 8, 1), OutputKg: 300000},
	}

	r := Compare(now, fuel, coal, mining)

	if r.DieselMilli.Current != 100000 || r.DieselMilli.Previous != 50000 {
		t.Errorf("diesel liters = %d/%d, want 100000/50000",
			r.DieselMilli.Current, r.DieselMilli.Previous)
	}
	if r.DieselMilli.Delta != 50000 {
		t.Errorf("diesel delta = %d, want 50000", r.DieselMilli.Delta)
	}
	if r.DieselMilli.PctChange != 100.0 {
		t.Errorf("diesel pct = %v, want 100.0", r.DieselMilli.PctChange)
	}
	if r.CoalTrips.Current != 5 || r.CoalTrips.Previous != 4 || r.CoalTrips.PctChange != 25.0 {
		t.Errorf("coal trips = %+v", r.CoalTrips)
	}
	if !r.MiningKg.NoBaseline {
		t.Error("mining with empty previous window should flag NoBaseline")
	}
	if r.MiningKg.PctChange != 0 {
		t.Errorf("mining pct = %v, want 0 when no baseline", r.MiningKg.PctChange)
	}
}

func TestMetricPctRounding(t *testing.T) {
	m := Metric{Current: 1, Previous: 3}
	m.finish()
	if m.PctChange != -66.7 {
		t.Errorf("PctChange = %v, want -66.7", m.PctChange)
	}

	m = Metric{Current: 4, Previous: 3}
	m.finish()
	if m.PctChange != 33.3 {
		t.Errorf("PctChange = %v, want 33.3", m.PctChange)
	}
}

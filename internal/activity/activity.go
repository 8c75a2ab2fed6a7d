// Package activity holds the types shared by the activity reconciliation
// and synchronization components.
package activity

import (
	"math"
	"time"
)

const (
	// KmPerStep is the average stride length used to derive distance from steps.
	KmPerStep = 0.000762
	// CaloriesPerStep is used to derive burned calories from steps.
	CaloriesPerStep = 0.04

	DayLayout = "2006-01-02"
)

// Snapshot is the reconciled, display-ready view of one user's activity for today.
// It is computed on demand and never persisted.
type Snapshot struct {
	Steps      int64     `json:"steps"`
	DistanceKm float64   `json:"distanceKm"`
	Calories   int64     `json:"calories"`
	AsOf       time.Time `json:"asOf"`
	// IsNewUser marks the "no data available" fallback snapshot.
	IsNewUser bool `json:"isNewUser"`
}

// Totals is a (steps, distance, calories) triple, used both for cached deltas
// and for remote aggregates.
type Totals struct {
	Steps      int64   `json:"steps"`
	DistanceKm float64 `json:"distanceKm"`
	Calories   int64   `json:"calories"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Steps:      t.Steps + o.Steps,
		DistanceKm: t.DistanceKm + o.DistanceKm,
		Calories:   t.Calories + o.Calories,
	}
}

// Sub subtracts o from t, never going below zero.
func (t Totals) Sub(o Totals) Totals {
	res := Totals{
		Steps:      max(t.Steps-o.Steps, 0),
		DistanceKm: math.Max(t.DistanceKm-o.DistanceKm, 0),
		Calories:   max(t.Calories-o.Calories, 0),
	}
	// float leftovers from repeated add/sub
	if res.DistanceKm < 1e-9 {
		res.DistanceKm = 0
	}
	return res
}

func (t Totals) IsZero() bool {
	return t.Steps == 0 && t.DistanceKm == 0 && t.Calories == 0
}

// FromSteps derives distance and calories from a step count.
func FromSteps(steps int64) Totals {
	if steps < 0 {
		steps = 0
	}
	return Totals{
		Steps:      steps,
		DistanceKm: float64(steps) * KmPerStep,
		Calories:   int64(math.Round(float64(steps) * CaloriesPerStep)),
	}
}

// Day returns the calendar day key (UTC, ISO) of t.
func Day(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay parses a day key produced by Day.
func ParseDay(day string) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, time.UTC)
}

// Clock is a source of the current time; overridden in tests.
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now()
}

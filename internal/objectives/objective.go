// Package objectives reads the user's daily activity objectives and computes
// the progress towards them. Objectives are created elsewhere; this package
// never writes them.
package objectives

import (
	"math"
	"time"

	"github.com/2beens/fitsync/internal/activity"
)

type Type string

const (
	TypeSteps    Type = "steps"
	TypeCalories Type = "calories"
	TypeDistance Type = "distance"
)

type Objective struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	Type      Type      `json:"type"`
	Value     float64   `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Objectives holds the current goal per type; zero means no goal set.
type Objectives struct {
	Steps      float64 `json:"steps"`
	Calories   float64 `json:"calories"`
	DistanceKm float64 `json:"distanceKm"`
}

// FromList folds objective documents into per-type goals; a later document of
// the same type replaces an earlier one.
func FromList(list []Objective) Objectives {
	var res Objectives
	for _, o := range list {
		switch o.Type {
		case TypeSteps:
			res.Steps = o.Value
		case TypeCalories:
			res.Calories = o.Value
		case TypeDistance:
			res.DistanceKm = o.Value
		}
	}
	return res
}

type Progress struct {
	Goals           Objectives `json:"goals"`
	StepsPercent    float64    `json:"stepsPercent"`
	CaloriesPercent float64    `json:"caloriesPercent"`
	DistancePercent float64    `json:"distancePercent"`
	// GlobalPercent compares the sum of all values with the sum of all goals,
	// counting a missing goal as 1.
	GlobalPercent float64 `json:"globalPercent"`
}

func NewProgress(goals Objectives, snapshot activity.Snapshot) Progress {
	steps := float64(snapshot.Steps)
	calories := float64(snapshot.Calories)

	total := orOne(goals.Steps) + orOne(goals.Calories) + orOne(goals.DistanceKm)
	current := steps + calories + snapshot.DistanceKm

	return Progress{
		Goals:           goals,
		StepsPercent:    percent(steps, goals.Steps),
		CaloriesPercent: percent(calories, goals.Calories),
		DistancePercent: percent(snapshot.DistanceKm, goals.DistanceKm),
		GlobalPercent:   math.Round(math.Min(current/total*100, 100)),
	}
}

func percent(value, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Round(math.Min(value/goal*100, 100))
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

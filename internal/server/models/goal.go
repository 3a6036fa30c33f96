package models

import (
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
)

// Goal is a daily nutrition target effective between StartDate and EndDate
// (inclusive). A nil EndDate means open ended.
type Goal struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	DailyKcal    float64          `json:"daily_kcal"`
	DailyProtein *float64         `json:"daily_protein,omitempty"`
	DailyFat     *float64         `json:"daily_fat,omitempty"`
	DailyCarb    *float64         `json:"daily_carb,omitempty"`
	Split        *nutrition.Split `json:"macro_split,omitempty"`

	StartWeight  *float64 `json:"start_weight,omitempty"`
	TargetWeight *float64 `json:"target_weight,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Target returns the nutrition target this goal sets.
func (g *Goal) Target() nutrition.Target {
	return nutrition.Target{
		Kcal:    g.DailyKcal,
		Protein: g.DailyProtein,
		Fat:     g.DailyFat,
		Carb:    g.DailyCarb,
		Split:   g.Split,
	}
}

// Covers reports whether day lies within the goal's range.
func (g *Goal) Covers(day time.Time) bool {
	if day.Before(g.StartDate) {
		return false
	}
	return g.EndDate == nil || !day.After(*g.EndDate)
}

// DailyTotal is the aggregated nutrition of one user for one day.
type DailyTotal struct {
	Date   time.Time        `json:"-"`
	Day    string           `json:"date"`
	Totals nutrition.Totals `json:"totals"`
}

// Comparison is a day's actual intake against the effective goal.
type Comparison struct {
	Goal     *Goal              `json:"goal"`
	Date     string             `json:"date"`
	Target   nutrition.Totals   `json:"target"`
	Actual   nutrition.Totals   `json:"actual"`
	Delta    nutrition.Totals   `json:"delta"`
	Progress nutrition.Progress `json:"progress"`
}

// WeightLog is a body weight measurement, one per user per day.
type WeightLog struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	WeightKg float64   `json:"weight_kg"`
}

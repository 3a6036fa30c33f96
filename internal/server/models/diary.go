package models

import (
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
)

// MealType groups diary entries within a day.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// MealTypes lists meal types in display order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

// Valid reports whether m is a known meal type.
func (m MealType) Valid() bool {
	for _, t := range MealTypes {
		if m == t {
			return true
		}
	}
	return false
}

// DiaryEntry is one consumption event.
type DiaryEntry struct {
	ID       string         `json:"id"`
	UserID   string         `json:"user_id"`
	FoodID   string         `json:"food_id"`
	Quantity float64        `json:"quantity"`
	Unit     nutrition.Unit `json:"unit"`
	Meal     MealType       `json:"meal"`
	// Date is the calendar day (UTC midnight) the entry counts towards.
	Date time.Time `json:"date"`
	// Time is the optional time of day, "HH:MM".
	Time      string    `json:"time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DiaryLine is an entry joined with its food and the computed nutrition.
type DiaryLine struct {
	DiaryEntry
	FoodName  string           `json:"food_name"`
	FoodBrand string           `json:"food_brand,omitempty"`
	Per100g   nutrition.Totals `json:"per_100g"`
	Totals    nutrition.Totals `json:"totals"`
}

// EntryPatch carries the editable fields of an entry; nil means unchanged.
type EntryPatch struct {
	Quantity *float64
	Unit     *string
	Meal     *MealType
}

// MealGroup is the entries of one meal with their subtotal.
type MealGroup struct {
	Meal   MealType         `json:"meal"`
	Lines  []DiaryLine      `json:"lines"`
	Totals nutrition.Totals `json:"totals"`
}

// DayDiary is a user's diary for a day grouped by meal.
type DayDiary struct {
	Date   string           `json:"date"`
	Meals  []MealGroup      `json:"meals"`
	Totals nutrition.Totals `json:"totals"`
}

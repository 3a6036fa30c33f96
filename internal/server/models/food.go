// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
)

// Food item sources.
const (
	SourceManual        = "manual"
	SourceOpenFoodFacts = "openfoodfacts"
)

// FoodItem is a catalog row. All nutrition values are per 100 g.
type FoodItem struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id,omitempty"`
	Name    string `json:"name"`
	Brand   string `json:"brand,omitempty"`

	Per100g nutrition.Totals `json:"per_100g"`

	// Source is "manual" or the external provider name.
	Source string `json:"source"`
	// ExternalID is the provider identifier (barcode for OpenFoodFacts).
	ExternalID string `json:"external_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FoodSearch is a paged catalog query.
type FoodSearch struct {
	Query  string
	Limit  int
	Offset int
}

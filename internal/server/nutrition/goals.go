package nutrition

import (
	"math"

	"github.com/dmitrijs2005/fitmacro/internal/common"
)

// Energy density of macros, kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramFat     = 9.0
	KcalPerGramCarb    = 4.0
)

// Split is a macro split expressed as a percentage of daily calories.
type Split struct {
	ProteinPct float64 `json:"protein_pct"`
	FatPct     float64 `json:"fat_pct"`
	CarbPct    float64 `json:"carb_pct"`
}

// Validate requires non-negative percentages summing to at most 100.
func (s Split) Validate() error {
	for _, v := range []float64{s.ProteinPct, s.FatPct, s.CarbPct} {
		if math.IsNaN(v) || v < 0 {
			return common.NewValidationError("macro_split", "percentages must be non-negative")
		}
	}
	if s.ProteinPct+s.FatPct+s.CarbPct > 100 {
		return common.NewValidationError("macro_split", "percentages must sum to at most 100")
	}
	return nil
}

// Grams converts the split into gram targets for a daily calorie target.
func (s Split) Grams(kcal float64) Totals {
	return Totals{
		Kcal:    kcal,
		Protein: kcal * s.ProteinPct / 100 / KcalPerGramProtein,
		Fat:     kcal * s.FatPct / 100 / KcalPerGramFat,
		Carb:    kcal * s.CarbPct / 100 / KcalPerGramCarb,
	}
}

// Target describes a daily goal. Explicit gram targets win over the
// percentage split; a macro with neither has a zero target.
type Target struct {
	Kcal    float64
	Protein *float64
	Fat     *float64
	Carb    *float64
	Split   *Split
}

// Totals resolves the target into a plain vector.
func (t Target) Totals() Totals {
	out := Totals{Kcal: t.Kcal}
	if t.Split != nil {
		out = t.Split.Grams(t.Kcal)
	}
	if t.Protein != nil {
		out.Protein = *t.Protein
	}
	if t.Fat != nil {
		out.Fat = *t.Fat
	}
	if t.Carb != nil {
		out.Carb = *t.Carb
	}
	return out
}

// Validate checks that every target is non-negative, the calorie target is
// positive and the split, if any, is consistent.
func (t Target) Validate() error {
	if math.IsNaN(t.Kcal) || t.Kcal <= 0 {
		return common.NewValidationError("daily_kcal", "must be positive")
	}
	if t.Kcal > MaxValue {
		return common.NewValidationError("daily_kcal", "is too large")
	}
	grams := []struct {
		field string
		v     *float64
	}{
		{"daily_protein", t.Protein},
		{"daily_fat", t.Fat},
		{"daily_carb", t.Carb},
	}
	for _, g := range grams {
		if g.v != nil && (math.IsNaN(*g.v) || *g.v < 0) {
			return common.NewValidationError(g.field, "must be non-negative")
		}
		if g.v != nil && *g.v > MaxValue {
			return common.NewValidationError(g.field, "is too large")
		}
	}
	if t.Split != nil {
		return t.Split.Validate()
	}
	return nil
}

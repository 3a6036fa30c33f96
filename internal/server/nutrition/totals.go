package nutrition

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/fitmacro/internal/common"
)

// Totals is a calorie + macro vector. Depending on context it is a value per
// 100 g, an amount eaten, a target or a delta.
type Totals struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carb    float64 `json:"carb"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{Kcal: t.Kcal + o.Kcal, Protein: t.Protein + o.Protein, Fat: t.Fat + o.Fat, Carb: t.Carb + o.Carb}
}

func (t Totals) Sub(o Totals) Totals {
	return Totals{Kcal: t.Kcal - o.Kcal, Protein: t.Protein - o.Protein, Fat: t.Fat - o.Fat, Carb: t.Carb - o.Carb}
}

func (t Totals) Scale(f float64) Totals {
	return Totals{Kcal: t.Kcal * f, Protein: t.Protein * f, Fat: t.Fat * f, Carb: t.Carb * f}
}

// Round rounds every metric to the given number of decimal places.
func (t Totals) Round(places int) Totals {
	p := math.Pow(10, float64(places))
	r := func(v float64) float64 { return math.Round(v*p) / p }
	return Totals{Kcal: r(t.Kcal), Protein: r(t.Protein), Fat: r(t.Fat), Carb: r(t.Carb)}
}

// IsZero reports whether every metric is zero.
func (t Totals) IsZero() bool {
	return t == Totals{}
}

// Metric returns the value for a metric name ("kcal", "protein", "fat", "carb").
func (t Totals) Metric(name string) (float64, error) {
	switch name {
	case MetricKcal:
		return t.Kcal, nil
	case MetricProtein:
		return t.Protein, nil
	case MetricFat:
		return t.Fat, nil
	case MetricCarb:
		return t.Carb, nil
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

const (
	MetricKcal    = "kcal"
	MetricProtein = "protein"
	MetricFat     = "fat"
	MetricCarb    = "carb"
)

// Metrics lists metric names in display order.
var Metrics = []string{MetricKcal, MetricProtein, MetricFat, MetricCarb}

// MaxValue is the largest per-100g or target value a NUMERIC(8,2) column holds.
const MaxValue = 999999.99

// Validate checks that every value is a finite number in [0, MaxValue].
func (t Totals) Validate() error {
	checks := []struct {
		field string
		v     float64
	}{
		{"kcal_per_100g", t.Kcal},
		{"protein_per_100g", t.Protein},
		{"fat_per_100g", t.Fat},
		{"carb_per_100g", t.Carb},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) || c.v < 0 {
			return common.NewValidationError(c.field, "must be a non-negative number")
		}
		if c.v > MaxValue {
			return common.NewValidationError(c.field, fmt.Sprintf("must not exceed %.2f", MaxValue))
		}
	}
	return nil
}

// CheckMacroMass rejects per-100g values whose macros weigh more than 100 g.
func CheckMacroMass(t Totals) error {
	if t.Protein+t.Fat+t.Carb > ReferenceGrams {
		return common.NewValidationError("macros", "protein, fat and carbs exceed 100 g per 100 g")
	}
	return nil
}

// Line is one eaten portion: a quantity of some food with its per-100g values.
type Line struct {
	Quantity float64
	Unit     Unit
	Per100g  Totals
}

// LineTotals returns quantity × value_per_100g / 100 after converting the
// quantity into grams.
func LineTotals(l Line) (Totals, error) {
	grams, err := ToGrams(l.Quantity, l.Unit)
	if err != nil {
		return Totals{}, err
	}
	return l.Per100g.Scale(grams / ReferenceGrams), nil
}

// Sum adds up any number of lines. No lines means all-zero totals.
func Sum(lines []Line) (Totals, error) {
	var total Totals
	for _, l := range lines {
		t, err := LineTotals(l)
		if err != nil {
			return Totals{}, err
		}
		total = total.Add(t)
	}
	return total, nil
}

// Delta is actual − target for every metric; negative means under target.
func Delta(actual, target Totals) Totals {
	return actual.Sub(target)
}

// Progress holds integer completion percentages per metric.
type Progress struct {
	Kcal    int `json:"kcal"`
	Protein int `json:"protein"`
	Fat     int `json:"fat"`
	Carb    int `json:"carb"`
}

// PercentOf returns truncated actual/target percentages; 0 where the target is not set.
func PercentOf(actual, target Totals) Progress {
	pct := func(a, t float64) int {
		if t <= 0 {
			return 0
		}
		return int(a / t * 100)
	}
	return Progress{
		Kcal:    pct(actual.Kcal, target.Kcal),
		Protein: pct(actual.Protein, target.Protein),
		Fat:     pct(actual.Fat, target.Fat),
		Carb:    pct(actual.Carb, target.Carb),
	}
}

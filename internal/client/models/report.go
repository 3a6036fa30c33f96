// Package models holds the CLI's view of server responses.
package models

// Macros is a calorie and macro-nutrient vector.
type Macros struct {
	Kcal    float64
	Protein float64
	Fat     float64
	Carb    float64
}

// Progress is the integer completion percentage per metric.
type Progress struct {
	Kcal    int
	Protein int
	Fat     int
	Carb    int
}

// Summary is one day's intake. Target, Delta and Progress are nil when the
// user has no goal for that day.
type Summary struct {
	Date     string
	Totals   Macros
	GoalKcal *float64
	Target   *Macros
	Delta    *Macros
	Progress *Progress
}

// HasGoal reports whether the summary carries a goal comparison.
func (s *Summary) HasGoal() bool {
	return s.Target != nil
}

type Point struct {
	Date  string
	Value float64
}

// CalorieSeries is the per-day kcal history used by the chart command.
type CalorieSeries struct {
	From   string
	To     string
	Points []Point
	Goal   *float64
}

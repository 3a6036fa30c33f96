// Package charts shapes daily totals into the time series a chart renders:
// ordered {date, value} points per metric plus an optional goal line.
package charts

import (
	"sort"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// Point is one chart sample.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Series is a named, date-ordered list of points.
type Series struct {
	Metric string  `json:"metric"`
	Label  string  `json:"label"`
	Points []Point `json:"points"`
}

var labels = map[string]string{
	nutrition.MetricKcal:    "Ккал/день",
	nutrition.MetricProtein: "Белки, г",
	nutrition.MetricFat:     "Жиры, г",
	nutrition.MetricCarb:    "Углеводы, г",
}

// GoalMetric prefixes goal line series, e.g. "goal:kcal".
const GoalMetric = "goal:"

// BuildSeries returns the points of metric ordered by date. Values are
// rounded to one decimal place.
func BuildSeries(metric string, totals []models.DailyTotal) (Series, error) {
	sorted := make([]models.DailyTotal, len(totals))
	copy(sorted, totals)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	s := Series{Metric: metric, Label: labels[metric], Points: make([]Point, 0, len(sorted))}
	for _, t := range sorted {
		v, err := t.Totals.Round(1).Metric(metric)
		if err != nil {
			return Series{}, err
		}
		s.Points = append(s.Points, Point{Date: timex.FormatDate(t.Date), Value: v})
	}
	return s, nil
}

// GoalLine is a constant series at target across the same dates as base.
func GoalLine(base Series, target float64) Series {
	s := Series{Metric: GoalMetric + base.Metric, Label: "Цель", Points: make([]Point, len(base.Points))}
	for i, p := range base.Points {
		s.Points[i] = Point{Date: p.Date, Value: target}
	}
	return s
}

// Dashboard is the chart payload of the dashboard.
type Dashboard struct {
	From   string            `json:"from"`
	To     string            `json:"to"`
	Series []Series          `json:"series"`
	Goal   *models.Goal      `json:"goal"`
	Latest *models.WeightLog `json:"latest_weight"`
}

// BuildDashboard returns a series per metric and, when goal is set, a goal
// line for every metric the goal has a positive target for.
func BuildDashboard(totals []models.DailyTotal, goal *models.Goal) (*Dashboard, error) {
	d := &Dashboard{Goal: goal}

	var target nutrition.Totals
	if goal != nil {
		target = goal.Target().Totals()
	}

	for _, m := range nutrition.Metrics {
		s, err := BuildSeries(m, totals)
		if err != nil {
			return nil, err
		}
		d.Series = append(d.Series, s)

		if goal == nil {
			continue
		}
		if v, _ := target.Metric(m); v > 0 {
			d.Series = append(d.Series, GoalLine(s, v))
		}
	}

	if first := d.Series[0].Points; len(first) > 0 {
		d.From = first[0].Date
		d.To = first[len(first)-1].Date
	}
	return d, nil
}

// Find returns the series for metric, if present.
func (d *Dashboard) Find(metric string) (Series, bool) {
	for _, s := range d.Series {
		if s.Metric == metric {
			return s, true
		}
	}
	return Series{}, false
}

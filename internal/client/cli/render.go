package cli

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/fitmacro/internal/client/models"
)

// RenderSummary formats a day's intake. Over-target metrics are red; metrics
// the goal leaves at zero are shown without a target.
func RenderSummary(s *models.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Day "+s.Date) + "\n")

	row := func(name string, actual float64, unit string, target, delta *float64, pct *int) {
		line := fmt.Sprintf("  %-8s %8.1f %s", name, actual, unit)
		if target != nil && *target > 0 {
			line += fmt.Sprintf(" / %.1f", *target)
			if pct != nil {
				line += fmt.Sprintf("  %3d%%", *pct)
			}
			style := underStyle
			if *delta > 0 {
				style = overStyle
			}
			line = style.Render(line)
		}
		b.WriteString(line + "\n")
	}

	if !s.HasGoal() {
		row("Kcal", s.Totals.Kcal, "kcal", nil, nil, nil)
		row("Protein", s.Totals.Protein, "g", nil, nil, nil)
		row("Fat", s.Totals.Fat, "g", nil, nil, nil)
		row("Carb", s.Totals.Carb, "g", nil, nil, nil)
		b.WriteString(mutedStyle.Render("  no goal set"))
		return b.String()
	}

	t, d, p := s.Target, s.Delta, s.Progress
	row("Kcal", s.Totals.Kcal, "kcal", &t.Kcal, &d.Kcal, &p.Kcal)
	row("Protein", s.Totals.Protein, "g", &t.Protein, &d.Protein, &p.Protein)
	row("Fat", s.Totals.Fat, "g", &t.Fat, &d.Fat, &p.Fat)
	row("Carb", s.Totals.Carb, "g", &t.Carb, &d.Carb, &p.Carb)
	return strings.TrimRight(b.String(), "\n")
}

// RenderCalorieChart draws one bar per day. Days above the goal are red,
// the rest green; without a goal all bars use the primary colour.
func RenderCalorieChart(series *models.CalorieSeries, width, height int) string {
	if len(series.Points) == 0 {
		return mutedStyle.Render("No data for this period")
	}

	chart := barchart.New(width, height)

	bars := make([]barchart.BarData, 0, len(series.Points))
	for _, p := range series.Points {
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if series.Goal != nil {
			if p.Value > *series.Goal {
				style = overStyle
			} else {
				style = underStyle
			}
		}
		bars = append(bars, barchart.BarData{
			Label:  dayLabel(p.Date),
			Values: []barchart.BarValue{{Name: "kcal", Value: p.Value, Style: style}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()

	header := titleStyle.Render(fmt.Sprintf("Calories %s .. %s", series.From, series.To))
	legend := mutedStyle.Render("no goal set")
	if series.Goal != nil {
		legend = fmt.Sprintf("goal %.0f kcal  %s  %s", *series.Goal, underStyle.Render("● within"), overStyle.Render("● over"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", chart.View(), "", legend)
}

// dayLabel shortens YYYY-MM-DD to DD so bars stay narrow.
func dayLabel(date string) string {
	if len(date) == len("2006-01-02") {
		return date[8:]
	}
	return date
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/fitmacro/internal/client/client"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

const (
	chartWidth   = 60
	chartHeight  = 12
	maxChartDays = 90
)

// Today prints the totals of the given day (default today) and, when a goal
// is set, the remaining amounts and progress.
func (a *App) Today(ctx context.Context, args []string) error {
	date := ""
	if len(args) > 0 {
		if _, err := timex.ParseDate(args[0]); err != nil {
			return fmt.Errorf("usage: today [YYYY-MM-DD]")
		}
		date = args[0]
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.reportService.Today(ctx, date)
	if err != nil {
		return a.sessionError(ctx, err)
	}

	fmt.Fprintln(a.out, RenderSummary(s))
	return nil
}

// Chart draws the calorie history of the last days (default from config).
func (a *App) Chart(ctx context.Context, args []string) error {
	days := 0
	if a.config != nil {
		days = a.config.ChartDays
	}
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 || n > maxChartDays {
			return fmt.Errorf("usage: chart [1..%d]", maxChartDays)
		}
		days = n
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	series, err := a.reportService.Chart(ctx, days)
	if err != nil {
		return a.sessionError(ctx, err)
	}

	fmt.Fprintln(a.out, RenderCalorieChart(series, chartWidth, chartHeight))
	return nil
}

// sessionError drops a session the server no longer accepts.
func (a *App) sessionError(ctx context.Context, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		_ = a.Logout(ctx)
		return fmt.Errorf("session expired, please login again")
	}
	return err
}

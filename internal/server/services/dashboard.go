package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/charts"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// DashboardService assembles the chart payload for the last N days.
type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	aggregator  *AggregatorService
	goals       *GoalService
	days        int
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, agg *AggregatorService, goals *GoalService, days int) *DashboardService {
	if days <= 0 {
		days = 14
	}
	return &DashboardService{db: db, repomanager: m, aggregator: agg, goals: goals, days: days}
}

// Dashboard returns the series of the days ending on today, the goal
// effective today (nil if none) and the latest weight.
func (s *DashboardService) Dashboard(ctx context.Context, userID string, today time.Time, days int) (*charts.Dashboard, error) {
	if days <= 0 {
		days = s.days
	}
	if days > MaxRangeDays {
		return nil, common.NewValidationError("days", "range is too long")
	}
	today = timex.Day(today)

	var (
		totals []models.DailyTotal
		goal   *models.Goal
		weight *models.WeightLog
	)
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		totals, err = s.aggregator.rangeIn(ctx, tx, userID, today.AddDate(0, 0, -(days-1)), today)
		if err != nil {
			return err
		}

		goal, err = s.goals.goalIn(ctx, tx, userID, today)
		if errors.Is(err, common.ErrNoGoalDefined) {
			goal, err = nil, nil
		}
		if err != nil {
			return err
		}

		weight, err = s.repomanager.Weights(tx).Latest(ctx, userID)
		if errors.Is(err, common.ErrorNotFound) {
			weight, err = nil, nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	d, err := charts.BuildDashboard(totals, goal)
	if err != nil {
		return nil, err
	}
	d.Latest = weight
	return d, nil
}

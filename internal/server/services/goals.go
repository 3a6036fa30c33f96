package services

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// GoalService sets goals and compares intake against them.
type GoalService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	aggregator  *AggregatorService
	trendWindow int
}

func NewGoalService(db *sql.DB, m repomanager.RepositoryManager, agg *AggregatorService, trendWindow int) *GoalService {
	if trendWindow <= 0 {
		trendWindow = 14
	}
	return &GoalService{db: db, repomanager: m, aggregator: agg, trendWindow: trendWindow}
}

// GoalInput is a goal as submitted by a user. Dates are YYYY-MM-DD.
type GoalInput struct {
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date"`
	DailyKcal    float64          `json:"daily_kcal"`
	DailyProtein *float64         `json:"daily_protein"`
	DailyFat     *float64         `json:"daily_fat"`
	DailyCarb    *float64         `json:"daily_carb"`
	Split        *nutrition.Split `json:"macro_split"`
	StartWeight  *float64         `json:"start_weight"`
	TargetWeight *float64         `json:"target_weight"`
}

func validWeight(field string, v *float64) error {
	if v != nil && (math.IsNaN(*v) || *v <= 0 || *v >= 1000) {
		return common.NewValidationError(field, "must be between 0 and 1000 kg")
	}
	return nil
}

func (in GoalInput) goal(userID string) (*models.Goal, error) {
	if in.StartDate == "" {
		return nil, common.NewValidationError("start_date", "is required")
	}
	start, err := timex.ParseDate(in.StartDate)
	if err != nil {
		return nil, common.NewValidationError("start_date", "must be YYYY-MM-DD")
	}

	g := &models.Goal{
		UserID:       userID,
		StartDate:    start,
		DailyKcal:    in.DailyKcal,
		DailyProtein: in.DailyProtein,
		DailyFat:     in.DailyFat,
		DailyCarb:    in.DailyCarb,
		Split:        in.Split,
		StartWeight:  in.StartWeight,
		TargetWeight: in.TargetWeight,
	}

	if in.EndDate != "" {
		end, err := timex.ParseDate(in.EndDate)
		if err != nil {
			return nil, common.NewValidationError("end_date", "must be YYYY-MM-DD")
		}
		if end.Before(start) {
			return nil, common.NewValidationError("end_date", "must not be before start_date")
		}
		g.EndDate = &end
	}

	if err := g.Target().Validate(); err != nil {
		return nil, err
	}
	if err := validWeight("start_weight", g.StartWeight); err != nil {
		return nil, err
	}
	if err := validWeight("target_weight", g.TargetWeight); err != nil {
		return nil, err
	}
	return g, nil
}

// SetGoal stores a new goal. The goal running on the new start date, if
// any, is ended the day before, in the same transaction.
func (s *GoalService) SetGoal(ctx context.Context, userID string, in GoalInput) (*models.Goal, error) {
	g, err := in.goal(userID)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Goals(tx)
		if err := repo.CloseOpen(ctx, userID, g.StartDate.AddDate(0, 0, -1)); err != nil {
			return err
		}
		g, err = repo.Create(ctx, g)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GoalService) goalIn(ctx context.Context, db dbx.DBTX, userID string, day time.Time) (*models.Goal, error) {
	g, err := s.repomanager.Goals(db).FindEffective(ctx, userID, timex.Day(day))
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrNoGoalDefined
	}
	return g, err
}

// GoalFor returns the goal effective on day or common.ErrNoGoalDefined.
func (s *GoalService) GoalFor(ctx context.Context, userID string, day time.Time) (*models.Goal, error) {
	return s.goalIn(ctx, s.db, userID, day)
}

// Compare reports the day's intake against the effective goal. Delta is
// negative where the user is under target.
func (s *GoalService) Compare(ctx context.Context, userID string, day time.Time) (*models.Comparison, error) {
	var (
		g      *models.Goal
		totals []models.DailyTotal
	)
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if g, err = s.goalIn(ctx, tx, userID, day); err != nil {
			return err
		}
		totals, err = s.aggregator.rangeIn(ctx, tx, userID, day, day)
		return err
	})
	if err != nil {
		return nil, err
	}

	target := g.Target().Totals()
	actual := totals[0].Totals
	return &models.Comparison{
		Goal:     g,
		Date:     totals[0].Day,
		Target:   target,
		Actual:   actual,
		Delta:    nutrition.Delta(actual, target),
		Progress: nutrition.PercentOf(actual, target),
	}, nil
}

// Trend projects the day after 'day' from the totals of the preceding
// 'days' days ending on 'day'. days <= 0 uses the configured window.
func (s *GoalService) Trend(ctx context.Context, userID string, day time.Time, days int, method string) (*nutrition.Projection, error) {
	if days <= 0 {
		days = s.trendWindow
	}
	if days > MaxRangeDays {
		return nil, common.NewValidationError("days", "range is too long")
	}
	if method == "" {
		method = nutrition.MethodLinear
	}
	if method != nutrition.MethodLinear && method != nutrition.MethodMovingAverage {
		return nil, common.NewValidationError("method", "must be linear_regression or moving_average")
	}

	day = timex.Day(day)
	totals, err := s.aggregator.RangeTotals(ctx, userID, day.AddDate(0, 0, -(days-1)), day)
	if err != nil {
		return nil, err
	}

	history := make([]nutrition.Totals, len(totals))
	for i, t := range totals {
		history[i] = t.Totals
	}

	var p nutrition.Projection
	if method == nutrition.MethodMovingAverage {
		p = nutrition.MovingAverage(history, days)
	} else {
		p = nutrition.LinearTrend(history)
	}
	p.Next = p.Next.Round(2)
	return &p, nil
}

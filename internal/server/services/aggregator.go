package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// MaxRangeDays bounds range queries.
const MaxRangeDays = 366

// AggregatorService sums diary entries into per-day totals. It never writes.
type AggregatorService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAggregatorService(db *sql.DB, m repomanager.RepositoryManager) *AggregatorService {
	return &AggregatorService{db: db, repomanager: m}
}

// DailyTotal returns the user's totals for one day. A day without entries
// yields zero totals.
func (s *AggregatorService) DailyTotal(ctx context.Context, userID string, day time.Time) (*models.DailyTotal, error) {
	var out []models.DailyTotal
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.rangeIn(ctx, tx, userID, day, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// RangeTotals returns one DailyTotal per calendar day in [from, to], with
// days that have no entries filled with zeros.
func (s *AggregatorService) RangeTotals(ctx context.Context, userID string, from, to time.Time) ([]models.DailyTotal, error) {
	var out []models.DailyTotal
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		out, err = s.rangeIn(ctx, tx, userID, from, to)
		return err
	})
	return out, err
}

func checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return common.NewValidationError("date", "is required")
	}
	from, to = timex.Day(from), timex.Day(to)
	if to.Before(from) {
		return common.NewValidationError("to", "must not be before from")
	}
	if len(timex.Days(from, to)) > MaxRangeDays {
		return common.NewValidationError("to", "range is too long")
	}
	return nil
}

// rangeIn does the work of RangeTotals on an open handle, so callers that
// already hold a transaction read from the same snapshot.
func (s *AggregatorService) rangeIn(ctx context.Context, db dbx.DBTX, userID string, from, to time.Time) ([]models.DailyTotal, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	from, to = timex.Day(from), timex.Day(to)

	lines, err := s.repomanager.Diary(db).ListLines(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string][]nutrition.Line)
	for _, l := range lines {
		k := timex.FormatDate(l.Date)
		byDay[k] = append(byDay[k], nutrition.Line{Quantity: l.Quantity, Unit: l.Unit, Per100g: l.Per100g})
	}

	days := timex.Days(from, to)
	out := make([]models.DailyTotal, 0, len(days))
	for _, d := range days {
		k := timex.FormatDate(d)
		sum, err := nutrition.Sum(byDay[k])
		if err != nil {
			return nil, err
		}
		out = append(out, models.DailyTotal{Date: d, Day: k, Totals: sum})
	}
	return out, nil
}

// fillLineTotals computes the nutrition of every line in place.
func fillLineTotals(lines []*models.DiaryLine) error {
	for _, l := range lines {
		t, err := nutrition.LineTotals(nutrition.Line{Quantity: l.Quantity, Unit: l.Unit, Per100g: l.Per100g})
		if err != nil {
			return err
		}
		l.Totals = t
	}
	return nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

// MessageDailyTotal is the realtime message type carrying a models.DailyTotal.
const MessageDailyTotal = "daily_total"

// Publisher pushes a message to every open connection of a user.
type Publisher interface {
	Publish(ctx context.Context, userID, msgType string, payload any)
}

// DiaryService records what users eat.
type DiaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	aggregator  *AggregatorService
	publisher   Publisher
	log         logging.Logger
}

func NewDiaryService(db *sql.DB, m repomanager.RepositoryManager, agg *AggregatorService, pub Publisher, log logging.Logger) *DiaryService {
	return &DiaryService{db: db, repomanager: m, aggregator: agg, publisher: pub, log: log}
}

// NewEntry is a diary entry as submitted by a user.
type NewEntry struct {
	FoodID   string          `json:"food_id"`
	Quantity float64         `json:"quantity"`
	Unit     string          `json:"unit"`
	Meal     models.MealType `json:"meal"`
	Date     string          `json:"date"`
	Time     string          `json:"time"`
}

// Quantity bounds; quantities are stored as NUMERIC(10,3).
const (
	MinQuantity = 0.001
	MaxQuantity = 1e6
)

func validQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return common.NewValidationError("quantity", "must be greater than zero")
	}
	if q < MinQuantity || q > MaxQuantity {
		return common.NewValidationError("quantity", fmt.Sprintf("must be between %g and %g", MinQuantity, MaxQuantity))
	}
	return nil
}

func validMeal(m models.MealType) error {
	if !m.Valid() {
		return common.NewValidationError("meal", "must be one of breakfast, lunch, dinner, snack")
	}
	return nil
}

func (in NewEntry) entry(userID string) (*models.DiaryEntry, error) {
	if err := validQuantity(in.Quantity); err != nil {
		return nil, err
	}
	unit, err := nutrition.ParseUnit(in.Unit)
	if err != nil {
		return nil, err
	}
	if err := validMeal(in.Meal); err != nil {
		return nil, err
	}
	if in.Date == "" {
		return nil, common.NewValidationError("date", "is required")
	}
	day, err := timex.ParseDate(in.Date)
	if err != nil {
		return nil, common.NewValidationError("date", "must be YYYY-MM-DD")
	}
	if in.Time != "" {
		if _, err := time.Parse("15:04", in.Time); err != nil {
			return nil, common.NewValidationError("time", "must be HH:MM")
		}
	}
	if !validID(in.FoodID) {
		return nil, common.NewValidationError("food_id", "unknown food")
	}

	return &models.DiaryEntry{
		UserID:   userID,
		FoodID:   in.FoodID,
		Quantity: in.Quantity,
		Unit:     unit,
		Meal:     in.Meal,
		Date:     day,
		Time:     in.Time,
	}, nil
}

// Log records an entry for userID.
func (s *DiaryService) Log(ctx context.Context, userID string, in NewEntry) (*models.DiaryEntry, error) {
	e, err := in.entry(userID)
	if err != nil {
		return nil, err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Foods(tx).Get(ctx, e.FoodID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NewValidationError("food_id", "unknown food")
			}
			return err
		}
		e, err = s.repomanager.Diary(tx).Create(ctx, e)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publishDay(ctx, userID, e.Date)
	return e, nil
}

// Day returns the user's entries for day with computed nutrition, grouped
// by meal in display order. Every meal is present, possibly empty.
func (s *DiaryService) Day(ctx context.Context, userID string, day time.Time) (*models.DayDiary, error) {
	if day.IsZero() {
		return nil, common.NewValidationError("date", "is required")
	}
	day = timex.Day(day)

	var lines []*models.DiaryLine
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		lines, err = s.repomanager.Diary(tx).ListLines(ctx, userID, day, day)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := fillLineTotals(lines); err != nil {
		return nil, err
	}

	out := &models.DayDiary{Date: timex.FormatDate(day)}
	for _, meal := range models.MealTypes {
		g := models.MealGroup{Meal: meal, Lines: []models.DiaryLine{}}
		for _, l := range lines {
			if l.Meal == meal {
				g.Lines = append(g.Lines, *l)
				g.Totals = g.Totals.Add(l.Totals)
			}
		}
		out.Totals = out.Totals.Add(g.Totals)
		out.Meals = append(out.Meals, g)
	}
	return out, nil
}

// Lines returns the user's entries in [from, to] with computed nutrition.
func (s *DiaryService) Lines(ctx context.Context, userID string, from, to time.Time) ([]*models.DiaryLine, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	var lines []*models.DiaryLine
	err := dbx.WithReadTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		lines, err = s.repomanager.Diary(tx).ListLines(ctx, userID, timex.Day(from), timex.Day(to))
		return err
	})
	if err != nil {
		return nil, err
	}
	return lines, fillLineTotals(lines)
}

// ownedEntry loads an entry and checks it belongs to userID.
func (s *DiaryService) ownedEntry(ctx context.Context, tx dbx.DBTX, userID, id string) (*models.DiaryEntry, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	e, err := s.repomanager.Diary(tx).Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.UserID != userID {
		return nil, common.ErrorForbidden
	}
	return e, nil
}

// Update changes quantity, unit or meal of an entry owned by userID.
func (s *DiaryService) Update(ctx context.Context, userID, id string, patch models.EntryPatch) (*models.DiaryEntry, error) {
	var e *models.DiaryEntry
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		e, err = s.ownedEntry(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if patch.Quantity != nil {
			if err := validQuantity(*patch.Quantity); err != nil {
				return err
			}
			e.Quantity = *patch.Quantity
		}
		if patch.Unit != nil {
			u, err := nutrition.ParseUnit(*patch.Unit)
			if err != nil {
				return err
			}
			e.Unit = u
		}
		if patch.Meal != nil {
			if err := validMeal(*patch.Meal); err != nil {
				return err
			}
			e.Meal = *patch.Meal
		}

		return s.repomanager.Diary(tx).Update(ctx, e)
	})
	if err != nil {
		return nil, err
	}

	s.publishDay(ctx, userID, e.Date)
	return e, nil
}

// Delete removes an entry owned by userID.
func (s *DiaryService) Delete(ctx context.Context, userID, id string) error {
	var day time.Time
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		e, err := s.ownedEntry(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		day = e.Date
		return s.repomanager.Diary(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.publishDay(ctx, userID, day)
	return nil
}

// publishDay pushes the recomputed total of day to the user's connections.
// The write has already committed, so failures are only logged.
func (s *DiaryService) publishDay(ctx context.Context, userID string, day time.Time) {
	if s.publisher == nil {
		return
	}
	total, err := s.aggregator.DailyTotal(ctx, userID, day)
	if err != nil {
		s.log.Warn(ctx, "daily total not published", "user_id", userID, "error", err)
		return
	}
	s.publisher.Publish(ctx, userID, MessageDailyTotal, total)
}

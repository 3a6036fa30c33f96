package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/timex"
)

type WeightService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewWeightService(db *sql.DB, m repomanager.RepositoryManager) *WeightService {
	return &WeightService{db: db, repomanager: m}
}

// Log stores the user's weight for a day, replacing an earlier value.
func (s *WeightService) Log(ctx context.Context, userID, date string, kg float64) (*models.WeightLog, error) {
	if date == "" {
		return nil, common.NewValidationError("date", "is required")
	}
	day, err := timex.ParseDate(date)
	if err != nil {
		return nil, common.NewValidationError("date", "must be YYYY-MM-DD")
	}
	if err := validWeight("weight_kg", &kg); err != nil {
		return nil, err
	}
	return s.repomanager.Weights(s.db).Upsert(ctx, &models.WeightLog{UserID: userID, Date: day, WeightKg: kg})
}

// Latest returns the most recent weight, or nil when none was logged.
func (s *WeightService) Latest(ctx context.Context, userID string) (*models.WeightLog, error) {
	w, err := s.repomanager.Weights(s.db).Latest(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return w, err
}

package goals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func splitArgs(s *nutrition.Split) (p, f, c any) {
	if s == nil {
		return nil, nil, nil
	}
	return s.ProteinPct, s.FatPct, s.CarbPct
}

func (r *PostgresRepository) Create(ctx context.Context, g *models.Goal) (*models.Goal, error) {
	query := `
		INSERT INTO goals (user_id, start_date, end_date, daily_kcal, daily_protein, daily_fat, daily_carb,
			protein_pct, fat_pct, carb_pct, start_weight, target_weight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`
	pp, fp, cp := splitArgs(g.Split)
	err := r.db.QueryRowContext(ctx, query,
		g.UserID, g.StartDate, g.EndDate, g.DailyKcal, g.DailyProtein, g.DailyFat, g.DailyCarb,
		pp, fp, cp, g.StartWeight, g.TargetWeight,
	).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g, nil
}

func (r *PostgresRepository) CloseOpen(ctx context.Context, userID string, endDate time.Time) error {
	query := `
		UPDATE goals SET end_date = $2
		WHERE user_id = $1 AND start_date <= $2 AND (end_date IS NULL OR end_date > $2)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, endDate); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindEffective(ctx context.Context, userID string, day time.Time) (*models.Goal, error) {
	query := `
		SELECT id, user_id, start_date, end_date, daily_kcal, daily_protein, daily_fat, daily_carb,
			protein_pct, fat_pct, carb_pct, start_weight, target_weight, created_at
		FROM goals
		WHERE user_id = $1 AND start_date <= $2 AND (end_date IS NULL OR end_date >= $2)
		ORDER BY start_date DESC, created_at DESC
		LIMIT 1
	`
	g := &models.Goal{}
	var pp, fp, cp sql.NullFloat64
	err := r.db.QueryRowContext(ctx, query, userID, day).Scan(
		&g.ID, &g.UserID, &g.StartDate, &g.EndDate, &g.DailyKcal, &g.DailyProtein, &g.DailyFat, &g.DailyCarb,
		&pp, &fp, &cp, &g.StartWeight, &g.TargetWeight, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if pp.Valid || fp.Valid || cp.Valid {
		g.Split = &nutrition.Split{ProteinPct: pp.Float64, FatPct: fp.Float64, CarbPct: cp.Float64}
	}
	return g, nil
}

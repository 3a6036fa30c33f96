package weights

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, w *models.WeightLog) (*models.WeightLog, error) {
	query := `
		INSERT INTO weight_logs (user_id, log_date, weight_kg)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, log_date) DO UPDATE SET weight_kg = EXCLUDED.weight_kg
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, w.UserID, w.Date, w.WeightKg).Scan(&w.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*models.WeightLog, error) {
	query := `
		SELECT id, user_id, log_date, weight_kg
		FROM weight_logs
		WHERE user_id = $1
		ORDER BY log_date DESC
		LIMIT 1
	`
	w := &models.WeightLog{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&w.ID, &w.UserID, &w.Date, &w.WeightKg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return w, nil
}

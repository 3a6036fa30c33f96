package diary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *PostgresRepository) Create(ctx context.Context, e *models.DiaryEntry) (*models.DiaryEntry, error) {
	query := `
		INSERT INTO diary_entries (user_id, food_id, quantity, unit, meal_type, entry_date, entry_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		e.UserID, e.FoodID, e.Quantity, string(e.Unit), string(e.Meal), e.Date, e.Time,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.DiaryEntry, error) {
	query := `
		SELECT id, user_id, food_id, quantity, unit, meal_type, entry_date, entry_time, created_at
		FROM diary_entries
		WHERE id = $1
	`
	e := &models.DiaryEntry{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.UserID, &e.FoodID, &e.Quantity, &e.Unit, &e.Meal, &e.Date, &e.Time, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Update(ctx context.Context, e *models.DiaryEntry) error {
	query := `
		UPDATE diary_entries
		SET quantity = $2, unit = $3, meal_type = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, e.ID, e.Quantity, string(e.Unit), string(e.Meal))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM diary_entries WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) ListLines(ctx context.Context, userID string, from, to time.Time) ([]*models.DiaryLine, error) {
	query := `
		SELECT d.id, d.user_id, d.food_id, d.quantity, d.unit, d.meal_type, d.entry_date, d.entry_time, d.created_at,
			f.name, f.brand, f.kcal_100g, f.protein_100g, f.fat_100g, f.carb_100g
		FROM diary_entries d
		JOIN food_items f ON f.id = d.food_id
		WHERE d.user_id = $1 AND d.entry_date BETWEEN $2 AND $3
		ORDER BY d.entry_date, d.meal_type, d.created_at
	`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.DiaryLine
	for rows.Next() {
		l := &models.DiaryLine{}
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.FoodID, &l.Quantity, &l.Unit, &l.Meal, &l.Date, &l.Time, &l.CreatedAt,
			&l.FoodName, &l.FoodBrand, &l.Per100g.Kcal, &l.Per100g.Protein, &l.Per100g.Fat, &l.Per100g.Carb,
		); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

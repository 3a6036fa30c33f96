package foods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
)

const columns = `id, COALESCE(owner_id::text, ''), name, brand, kcal_100g, protein_100g, fat_100g, carb_100g,
		source, external_id, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFood(s scanner) (*models.FoodItem, error) {
	f := &models.FoodItem{}
	err := s.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Brand,
		&f.Per100g.Kcal, &f.Per100g.Protein, &f.Per100g.Fat, &f.Per100g.Carb,
		&f.Source, &f.ExternalID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func nullableOwner(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func (r *PostgresRepository) Create(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	query := `
		INSERT INTO food_items (owner_id, name, brand, kcal_100g, protein_100g, fat_100g, carb_100g, source, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	p := item.Per100g
	err := r.db.QueryRowContext(ctx, query,
		nullableOwner(item.OwnerID), item.Name, item.Brand, p.Kcal, p.Protein, p.Fat, p.Carb,
		item.Source, item.ExternalID).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	query := `SELECT ` + columns + ` FROM food_items WHERE id = $1`

	f, err := scanFood(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

// escapeLike escapes LIKE wildcards in user input.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Search matches name or brand case-insensitively, ordered by name.
func (r *PostgresRepository) Search(ctx context.Context, q models.FoodSearch) ([]*models.FoodItem, error) {
	query := `SELECT ` + columns + ` FROM food_items
		WHERE name ILIKE $1 OR brand ILIKE $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3`

	pattern := "%" + escapeLike(strings.TrimSpace(q.Query)) + "%"
	rows, err := r.db.QueryContext(ctx, query, pattern, q.Limit, q.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.FoodItem
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, item *models.FoodItem) error {
	query := `
		UPDATE food_items
		SET name = $2, brand = $3, kcal_100g = $4, protein_100g = $5, fat_100g = $6, carb_100g = $7, updated_at = now()
		WHERE id = $1
	`
	p := item.Per100g
	res, err := r.db.ExecContext(ctx, query, item.ID, item.Name, item.Brand, p.Kcal, p.Protein, p.Fat, p.Carb)
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

func (r *PostgresRepository) UpsertExternal(ctx context.Context, item *models.FoodItem) (*models.FoodItem, bool, error) {
	query := `
		INSERT INTO food_items (name, brand, kcal_100g, protein_100g, fat_100g, carb_100g, source, external_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source, external_id) WHERE external_id <> ''
		DO UPDATE SET name = EXCLUDED.name, brand = EXCLUDED.brand,
			kcal_100g = EXCLUDED.kcal_100g, protein_100g = EXCLUDED.protein_100g,
			fat_100g = EXCLUDED.fat_100g, carb_100g = EXCLUDED.carb_100g,
			updated_at = now()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`
	p := item.Per100g
	var created bool
	err := r.db.QueryRowContext(ctx, query,
		item.Name, item.Brand, p.Kcal, p.Protein, p.Fat, p.Carb, item.Source, item.ExternalID,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt, &created)
	if err != nil {
		return nil, false, fmt.Errorf("db error: %w", err)
	}
	return item, created, nil
}

func (r *PostgresRepository) IsReferenced(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM diary_entries WHERE food_id = $1)`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

// Package foods stores the food catalog.
package foods

import (
	"context"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.FoodItem) (*models.FoodItem, error)
	Get(ctx context.Context, id string) (*models.FoodItem, error)
	Search(ctx context.Context, q models.FoodSearch) ([]*models.FoodItem, error)
	Update(ctx context.Context, item *models.FoodItem) error

	// UpsertExternal inserts an imported item or refreshes the row that already
	// carries the same (source, external_id). created is false on refresh.
	UpsertExternal(ctx context.Context, item *models.FoodItem) (saved *models.FoodItem, created bool, err error)

	// IsReferenced reports whether any diary entry points at the item.
	IsReferenced(ctx context.Context, id string) (bool, error)
}

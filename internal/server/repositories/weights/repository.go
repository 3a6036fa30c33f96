// Package weights stores body weight logs.
package weights

import (
	"context"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
)

type Repository interface {
	// Upsert stores the weight for the user's day, replacing an earlier value.
	Upsert(ctx context.Context, w *models.WeightLog) (*models.WeightLog, error)
	// Latest returns the most recent weight or common.ErrorNotFound.
	Latest(ctx context.Context, userID string) (*models.WeightLog, error)
}

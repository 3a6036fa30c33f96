// Package goals stores nutrition goals.
package goals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, g *models.Goal) (*models.Goal, error)

	// CloseOpen ends every goal of the user still running on endDate at endDate.
	CloseOpen(ctx context.Context, userID string, endDate time.Time) error

	// FindEffective returns the most recently started goal covering day,
	// or common.ErrorNotFound.
	FindEffective(ctx context.Context, userID string, day time.Time) (*models.Goal, error)
}

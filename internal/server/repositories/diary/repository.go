// Package diary stores diary entries.
package diary

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, e *models.DiaryEntry) (*models.DiaryEntry, error)
	Get(ctx context.Context, id string) (*models.DiaryEntry, error)
	Update(ctx context.Context, e *models.DiaryEntry) error
	Delete(ctx context.Context, id string) error

	// ListLines returns the user's entries dated within [from, to] joined
	// with their food items, ordered by date, meal and creation time.
	ListLines(ctx context.Context, userID string, from, to time.Time) ([]*models.DiaryLine, error)
}

package client

import (
	"context"

	"github.com/dmitrijs2005/fitmacro/internal/client/models"
)

// Client is the part of the FitMacro server API the CLI uses.
type Client interface {
	Close() error
	Register(ctx context.Context, username string, password []byte) (string, error)
	Login(ctx context.Context, username string, password []byte) (accessToken, refreshToken string, err error)
	SetTokens(accessToken, refreshToken string)
	Tokens() (accessToken, refreshToken string)
	Ping(ctx context.Context) error
	DailySummary(ctx context.Context, date string) (*models.Summary, error)
	CalorieSeries(ctx context.Context, days int) (*models.CalorieSeries, error)
}

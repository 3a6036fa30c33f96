// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/migrations"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/diary"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/foods"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/goals"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/users"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/weights"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

// Foods returns a foods.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Foods(db dbx.DBTX) foods.Repository {
	return foods.NewPostgresRepository(db)
}

// Diary returns a diary.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Diary(db dbx.DBTX) diary.Repository {
	return diary.NewPostgresRepository(db)
}

// Goals returns a goals.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Goals(db dbx.DBTX) goals.Repository {
	return goals.NewPostgresRepository(db)
}

// Weights returns a weights.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Weights(db dbx.DBTX) weights.Repository {
	return weights.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager(db *sql.DB) (RepositoryManager, error) {
	return &PostgresRepositoryManager{}, nil
}

package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/diary"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/foods"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/goals"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/users"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/weights"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Foods(db dbx.DBTX) foods.Repository
	Diary(db dbx.DBTX) diary.Repository
	Goals(db dbx.DBTX) goals.Repository
	Weights(db dbx.DBTX) weights.Repository
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/foodapi"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
)

const (
	maxFoodNameLen     = 200
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// FoodSource is an external food database.
type FoodSource interface {
	Search(ctx context.Context, query string, limit int) ([]foodapi.Product, error)
	Product(ctx context.Context, code string) (*foodapi.Product, error)
}

// CatalogService manages the food catalog: manual items, local search and
// import from an external source.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	source      FoodSource
	log         logging.Logger
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager, source FoodSource, log logging.Logger) *CatalogService {
	return &CatalogService{db: db, repomanager: m, source: source, log: log}
}

// FoodInput is the user supplied part of a manual food item.
type FoodInput struct {
	Name    string           `json:"name"`
	Brand   string           `json:"brand"`
	Per100g nutrition.Totals `json:"per_100g"`
}

func (in *FoodInput) normalise() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	if in.Name == "" {
		return common.NewValidationError("name", "is required")
	}
	if utf8.RuneCountInString(in.Name) > maxFoodNameLen {
		return common.NewValidationError("name", fmt.Sprintf("must be at most %d characters", maxFoodNameLen))
	}
	if utf8.RuneCountInString(in.Brand) > maxFoodNameLen {
		return common.NewValidationError("brand", fmt.Sprintf("must be at most %d characters", maxFoodNameLen))
	}
	if err := in.Per100g.Validate(); err != nil {
		return err
	}
	return nutrition.CheckMacroMass(in.Per100g)
}

// CreateManual adds a user-entered food item.
func (s *CatalogService) CreateManual(ctx context.Context, userID string, in FoodInput) (*models.FoodItem, error) {
	if err := in.normalise(); err != nil {
		return nil, err
	}

	item, err := s.repomanager.Foods(s.db).Create(ctx, &models.FoodItem{
		OwnerID: userID,
		Name:    in.Name,
		Brand:   in.Brand,
		Per100g: in.Per100g,
		Source:  models.SourceManual,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating food: %w", err)
	}
	return item, nil
}

// Get returns a catalog item. Malformed ids are reported as not found.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.FoodItem, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Foods(s.db).Get(ctx, id)
}

// Search finds local items whose name or brand contains the query.
func (s *CatalogService) Search(ctx context.Context, q models.FoodSearch) ([]*models.FoodItem, error) {
	q.Query = strings.TrimSpace(q.Query)
	switch {
	case q.Limit <= 0:
		q.Limit = defaultSearchLimit
	case q.Limit > maxSearchLimit:
		q.Limit = maxSearchLimit
	}
	if q.Offset < 0 {
		return nil, common.NewValidationError("offset", "must not be negative")
	}
	return s.repomanager.Foods(s.db).Search(ctx, q)
}

// Update edits a manual item owned by userID. Items already used in a diary
// are immutable so that past days keep their totals.
func (s *CatalogService) Update(ctx context.Context, userID, id string, in FoodInput) (*models.FoodItem, error) {
	if !validID(id) {
		return nil, common.ErrorNotFound
	}
	if err := in.normalise(); err != nil {
		return nil, err
	}

	var item *models.FoodItem
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Foods(tx)

		var err error
		item, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if item.Source != models.SourceManual {
			return common.NewValidationError("source", "imported items are refreshed by re-import")
		}
		if item.OwnerID != userID {
			return common.ErrorForbidden
		}

		used, err := repo.IsReferenced(ctx, id)
		if err != nil {
			return err
		}
		if used {
			return common.NewValidationError("id", "food is used in the diary and cannot be changed")
		}

		item.Name, item.Brand, item.Per100g = in.Name, in.Brand, in.Per100g
		return repo.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// SearchExternal queries the external source without touching the catalog.
func (s *CatalogService) SearchExternal(ctx context.Context, query string, limit int) ([]foodapi.Product, error) {
	return s.source.Search(ctx, query, limit)
}

// Import fetches a product by its external code and stores it. Re-importing
// the same code refreshes the existing row. created reports a new row.
func (s *CatalogService) Import(ctx context.Context, code string) (item *models.FoodItem, created bool, err error) {
	code = strings.TrimSpace(code)
	p, err := s.source.Product(ctx, code)
	if err != nil {
		return nil, false, err
	}
	return s.store(ctx, p)
}

// ImportByQuery imports the best external match for a search term: the
// first result that reports energy.
func (s *CatalogService) ImportByQuery(ctx context.Context, query string) (*models.FoodItem, bool, error) {
	products, err := s.source.Search(ctx, query, foodapi.MaxPageSize)
	if err != nil {
		return nil, false, err
	}
	for i := range products {
		if products[i].Kcal != nil {
			return s.store(ctx, &products[i])
		}
	}
	return nil, false, &common.ImportError{Source: foodapi.SourceName, Ref: query, Err: foodapi.ErrProductNotFound}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (s *CatalogService) store(ctx context.Context, p *foodapi.Product) (*models.FoodItem, bool, error) {
	per100g, ok := p.Per100g()
	if !ok {
		return nil, false, &common.ImportError{Source: foodapi.SourceName, Ref: p.Code, Err: errors.New("product has no energy value")}
	}
	per100g = per100g.Round(2)
	if err := per100g.Validate(); err != nil {
		return nil, false, &common.ImportError{Source: foodapi.SourceName, Ref: p.Code, Err: err}
	}

	item := &models.FoodItem{
		Name:       truncate(p.Name, maxFoodNameLen),
		Brand:      truncate(p.Brand, maxFoodNameLen),
		Per100g:    per100g,
		Source:     foodapi.SourceName,
		ExternalID: p.Code,
	}

	var (
		saved   *models.FoodItem
		created bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		saved, created, err = s.repomanager.Foods(tx).UpsertExternal(ctx, item)
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("error storing imported food: %w", err)
	}

	s.log.Info(ctx, "food imported", "code", p.Code, "id", saved.ID, "created", created)
	return saved, created, nil
}

// Package server initializes and runs the FitMacro server: it opens the
// database, applies migrations, builds the services and runs the HTTP and
// gRPC endpoints until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/config"
	"github.com/dmitrijs2005/fitmacro/internal/server/export"
	"github.com/dmitrijs2005/fitmacro/internal/server/foodapi"
	"github.com/dmitrijs2005/fitmacro/internal/server/httpapi"
	"github.com/dmitrijs2005/fitmacro/internal/server/realtime"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"

	gs "github.com/dmitrijs2005/fitmacro/internal/server/grpc"
)

// tokenPurgeInterval is how often expired refresh tokens are removed.
const tokenPurgeInterval = time.Hour

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	hub    *realtime.Hub

	users      *services.UserService
	catalog    *services.CatalogService
	diary      *services.DiaryService
	aggregator *services.AggregatorService
	goals      *services.GoalService
	weights    *services.WeightService
	dashboard  *services.DashboardService
	exporter   *services.ExportService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	hub := realtime.NewHub(logger)

	source := foodapi.NewClient(foodapi.Options{
		BaseURL:   c.FoodAPIBaseURL,
		UserAgent: c.FoodAPIUserAgent,
		Timeout:   c.FoodAPITimeout,
		Country:   c.FoodAPICountry,
		CacheTTL:  c.FoodAPICacheTTL,
	}, logger)

	store := export.NewS3Store(export.S3Config{
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})

	agg := services.NewAggregatorService(db, rm)
	goals := services.NewGoalService(db, rm, agg, c.TrendWindowDays)
	diary := services.NewDiaryService(db, rm, agg, hub, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		hub:        hub,
		users:      services.NewUserService(db, rm, c),
		catalog:    services.NewCatalogService(db, rm, source, logger),
		diary:      diary,
		aggregator: agg,
		goals:      goals,
		weights:    services.NewWeightService(db, rm),
		dashboard:  services.NewDashboardService(db, rm, agg, goals, c.DashboardDays),
		exporter:   services.NewExportService(diary, store),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.users, app.aggregator, app.goals, app.dashboard)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, httpapi.Services{
		Users:      app.users,
		Catalog:    app.catalog,
		Diary:      app.diary,
		Aggregator: app.aggregator,
		Goals:      app.goals,
		Weights:    app.weights,
		Dashboard:  app.dashboard,
		Export:     app.exporter,
	}, app.hub)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) purgeTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.users.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "refresh tokens purged", "count", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeTokens(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}

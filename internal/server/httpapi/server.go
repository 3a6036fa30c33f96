// Package httpapi is the JSON/HTTP surface of the server, built on gin.
// Handlers translate requests into service calls and map domain errors to
// status codes; they hold no business logic.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/charts"
	"github.com/dmitrijs2005/fitmacro/internal/server/foodapi"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/realtime"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
)

type Users interface {
	Register(ctx context.Context, userName, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Authenticate(accessToken string) (string, error)
}

type Catalog interface {
	CreateManual(ctx context.Context, userID string, in services.FoodInput) (*models.FoodItem, error)
	Get(ctx context.Context, id string) (*models.FoodItem, error)
	Search(ctx context.Context, q models.FoodSearch) ([]*models.FoodItem, error)
	Update(ctx context.Context, userID, id string, in services.FoodInput) (*models.FoodItem, error)
	SearchExternal(ctx context.Context, query string, limit int) ([]foodapi.Product, error)
	Import(ctx context.Context, code string) (*models.FoodItem, bool, error)
	ImportByQuery(ctx context.Context, query string) (*models.FoodItem, bool, error)
}

type Diary interface {
	Log(ctx context.Context, userID string, in services.NewEntry) (*models.DiaryEntry, error)
	Day(ctx context.Context, userID string, day time.Time) (*models.DayDiary, error)
	Update(ctx context.Context, userID, id string, patch models.EntryPatch) (*models.DiaryEntry, error)
	Delete(ctx context.Context, userID, id string) error
}

type Aggregator interface {
	DailyTotal(ctx context.Context, userID string, day time.Time) (*models.DailyTotal, error)
	RangeTotals(ctx context.Context, userID string, from, to time.Time) ([]models.DailyTotal, error)
}

type Goals interface {
	SetGoal(ctx context.Context, userID string, in services.GoalInput) (*models.Goal, error)
	Compare(ctx context.Context, userID string, day time.Time) (*models.Comparison, error)
	Trend(ctx context.Context, userID string, day time.Time, days int, method string) (*nutrition.Projection, error)
}

type Weights interface {
	Log(ctx context.Context, userID, date string, kg float64) (*models.WeightLog, error)
}

type Dashboards interface {
	Dashboard(ctx context.Context, userID string, today time.Time, days int) (*charts.Dashboard, error)
}

type Exporter interface {
	Export(ctx context.Context, userID string, from, to time.Time) (*services.ExportResult, error)
}

// Services is everything the handlers call into.
type Services struct {
	Users      Users
	Catalog    Catalog
	Diary      Diary
	Aggregator Aggregator
	Goals      Goals
	Weights    Weights
	Dashboard  Dashboards
	Export     Exporter
}

type HTTPServer struct {
	address string
	logger  logging.Logger
	svc     Services
	hub     *realtime.Hub
	now     func() time.Time
}

func NewHTTPServer(address string, l logging.Logger, svc Services, hub *realtime.Hub) *HTTPServer {
	return &HTTPServer{
		address: address,
		logger:  l.With("module", "http_server"),
		svc:     svc,
		hub:     hub,
		now:     time.Now,
	}
}

// Router builds the gin engine with every route registered.
func (s *HTTPServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/refresh", s.refresh)
	}

	private := api.Group("")
	private.Use(s.authMiddleware())
	{
		private.GET("/foods", s.searchFoods)
		private.POST("/foods", s.createFood)
		private.GET("/foods/external", s.searchExternal)
		private.POST("/foods/import", s.importFood)
		private.GET("/foods/:id", s.getFood)
		private.PUT("/foods/:id", s.updateFood)

		private.GET("/diary", s.dayDiary)
		private.POST("/diary", s.logEntry)
		private.PATCH("/diary/:id", s.updateEntry)
		private.DELETE("/diary/:id", s.deleteEntry)

		private.GET("/totals", s.totals)
		private.GET("/goals/current", s.currentGoal)
		private.POST("/goals", s.setGoal)
		private.GET("/trend", s.trend)
		private.GET("/dashboard", s.dashboard)
		private.POST("/weights", s.logWeight)
		private.POST("/export", s.export)
		private.GET("/ws", s.streamTotals)
	}

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

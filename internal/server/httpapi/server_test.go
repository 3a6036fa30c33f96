package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/logging"
	"github.com/dmitrijs2005/fitmacro/internal/server/charts"
	"github.com/dmitrijs2005/fitmacro/internal/server/foodapi"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/nutrition"
	"github.com/dmitrijs2005/fitmacro/internal/server/realtime"
	"github.com/dmitrijs2005/fitmacro/internal/server/services"
)

const (
	goodToken = "good-token"
	uid       = "11111111-1111-1111-1111-111111111111"
)

type fakeUsers struct{ err error }

func (f *fakeUsers) Register(_ context.Context, name, _ string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: uid, UserName: name}, nil
}

func (f *fakeUsers) Login(context.Context, string, string) (*services.TokenPair, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeUsers) RefreshToken(context.Context, string) (*services.TokenPair, error) {
	return nil, common.ErrRefreshTokenExpired
}

func (f *fakeUsers) Authenticate(token string) (string, error) {
	if token != goodToken {
		return "", common.ErrInvalidToken
	}
	return uid, nil
}

type fakeCatalog struct {
	importErr error
	gotQuery  models.FoodSearch
}

func (f *fakeCatalog) CreateManual(_ context.Context, userID string, in services.FoodInput) (*models.FoodItem, error) {
	if in.Name == "" {
		return nil, common.NewValidationError("name", "is required")
	}
	return &models.FoodItem{ID: "f1", OwnerID: userID, Name: in.Name, Per100g: in.Per100g}, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (*models.FoodItem, error) {
	if id != "f1" {
		return nil, common.ErrorNotFound
	}
	return &models.FoodItem{ID: "f1", Name: "Овсянка"}, nil
}

func (f *fakeCatalog) Search(_ context.Context, q models.FoodSearch) ([]*models.FoodItem, error) {
	f.gotQuery = q
	return nil, nil
}

func (f *fakeCatalog) Update(context.Context, string, string, services.FoodInput) (*models.FoodItem, error) {
	return nil, common.NewValidationError("id", "food is used in the diary and cannot be changed")
}

func (f *fakeCatalog) SearchExternal(context.Context, string, int) ([]foodapi.Product, error) {
	return nil, f.importErr
}

func (f *fakeCatalog) Import(_ context.Context, code string) (*models.FoodItem, bool, error) {
	if f.importErr != nil {
		return nil, false, f.importErr
	}
	return &models.FoodItem{ID: "f2", ExternalID: code}, true, nil
}

func (f *fakeCatalog) ImportByQuery(context.Context, string) (*models.FoodItem, bool, error) {
	return &models.FoodItem{ID: "f2"}, false, nil
}

type fakeDiary struct{}

func (fakeDiary) Log(_ context.Context, userID string, in services.NewEntry) (*models.DiaryEntry, error) {
	if in.Unit == "portion" {
		return nil, &common.UnsupportedUnitError{Unit: in.Unit}
	}
	d, _ := time.Parse("2006-01-02", in.Date)
	return &models.DiaryEntry{ID: "e1", UserID: userID, FoodID: in.FoodID, Quantity: in.Quantity, Date: d}, nil
}

func (fakeDiary) Day(_ context.Context, _ string, day time.Time) (*models.DayDiary, error) {
	return &models.DayDiary{Date: day.Format("2006-01-02")}, nil
}

func (fakeDiary) Update(context.Context, string, string, models.EntryPatch) (*models.DiaryEntry, error) {
	return nil, common.ErrorForbidden
}

func (fakeDiary) Delete(_ context.Context, _ string, id string) error {
	if id == "theirs" {
		return common.ErrorForbidden
	}
	return nil
}

type fakeAggregator struct{}

func (fakeAggregator) DailyTotal(_ context.Context, _ string, day time.Time) (*models.DailyTotal, error) {
	return &models.DailyTotal{Date: day, Day: day.Format("2006-01-02"), Totals: nutrition.Totals{Kcal: 300}}, nil
}

func (fakeAggregator) RangeTotals(_ context.Context, _ string, from, to time.Time) ([]models.DailyTotal, error) {
	if to.Before(from) {
		return nil, common.NewValidationError("to", "must not be before from")
	}
	return []models.DailyTotal{{Day: from.Format("2006-01-02")}, {Day: to.Format("2006-01-02")}}, nil
}

type fakeGoals struct{ hasGoal bool }

func (f *fakeGoals) SetGoal(_ context.Context, userID string, in services.GoalInput) (*models.Goal, error) {
	return &models.Goal{ID: "g1", UserID: userID, DailyKcal: in.DailyKcal}, nil
}

func (f *fakeGoals) Compare(_ context.Context, _ string, day time.Time) (*models.Comparison, error) {
	if !f.hasGoal {
		return nil, common.ErrNoGoalDefined
	}
	return &models.Comparison{Goal: &models.Goal{ID: "g1", DailyKcal: 2000}, Date: day.Format("2006-01-02"),
		Delta: nutrition.Totals{Kcal: -1700}}, nil
}

func (f *fakeGoals) Trend(_ context.Context, _ string, _ time.Time, days int, method string) (*nutrition.Projection, error) {
	return &nutrition.Projection{Method: nutrition.MethodLinear, Window: days, Note: nutrition.ProjectionNote}, nil
}

type fakeWeights struct{}

func (fakeWeights) Log(_ context.Context, userID, date string, kg float64) (*models.WeightLog, error) {
	return &models.WeightLog{UserID: userID, WeightKg: kg}, nil
}

type fakeDashboards struct{}

func (fakeDashboards) Dashboard(_ context.Context, _ string, _ time.Time, days int) (*charts.Dashboard, error) {
	return &charts.Dashboard{Series: []charts.Series{{Metric: "kcal", Points: make([]charts.Point, days)}}}, nil
}

type fakeExporter struct{}

func (fakeExporter) Export(context.Context, string, time.Time, time.Time) (*services.ExportResult, error) {
	return &services.ExportResult{Key: "k", URL: "https://s3.local/k"}, nil
}

type testEnv struct {
	srv     *HTTPServer
	router  http.Handler
	catalog *fakeCatalog
	goals   *fakeGoals
	hub     *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{catalog: &fakeCatalog{}, goals: &fakeGoals{}, hub: realtime.NewHub(logging.Discard())}
	env.srv = NewHTTPServer(":0", logging.Discard(), Services{
		Users:      &fakeUsers{},
		Catalog:    env.catalog,
		Diary:      fakeDiary{},
		Aggregator: fakeAggregator{},
		Goals:      env.goals,
		Weights:    fakeWeights{},
		Dashboard:  fakeDashboards{},
		Export:     fakeExporter{},
	}, env.hub)
	env.srv.now = func() time.Time { return time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC) }
	env.router = env.srv.Router()
	return env
}

func (e *testEnv) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+goodToken)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/diary", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/diary", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/diary", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-14", decode(t, w)["date"])
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/register", `{"username":"alice","password":"password1"}`, false)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", decode(t, w)["username"])

	w = env.do(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"password1"}`, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a", decode(t, w)["access_token"])

	w = env.do(http.MethodPost, "/api/auth/login", `{"username":"alice"}`, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/auth/refresh", `{"refresh_token":"old"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorMapping(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"validation", http.MethodPost, "/api/foods", `{"name":""}`, http.StatusBadRequest},
		{"not found", http.MethodGet, "/api/foods/missing", "", http.StatusNotFound},
		{"unsupported unit", http.MethodPost, "/api/diary", `{"food_id":"f1","quantity":1,"unit":"portion","meal":"lunch"}`, http.StatusUnprocessableEntity},
		{"forbidden patch", http.MethodPatch, "/api/diary/e1", `{"quantity":2}`, http.StatusForbidden},
		{"forbidden delete", http.MethodDelete, "/api/diary/theirs", "", http.StatusForbidden},
		{"bad date", http.MethodGet, "/api/totals?date=14.03.2024", "", http.StatusBadRequest},
		{"bad int", http.MethodGet, "/api/trend?days=many", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(tc.method, tc.path, tc.body, true)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}
}

func TestValidationErrorCarriesField(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/foods", `{"name":""}`, true)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "name", decode(t, w)["field"])
}

func TestImportErrorIsRetryable(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.importErr = &common.ImportError{Source: foodapi.SourceName, Ref: "123", Err: errors.New("timeout")}

	w := env.do(http.MethodPost, "/api/foods/import", `{"code":"123"}`, true)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, true, decode(t, w)["retryable"])

	w = env.do(http.MethodGet, "/api/foods/external?q=milk", "", true)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestImportErrorWrappingValidationIsRetryable(t *testing.T) {
	env := newTestEnv(t)
	env.catalog.importErr = &common.ImportError{
		Source: foodapi.SourceName, Ref: "123",
		Err: common.NewValidationError("kcal_per_100g", "must not exceed 999999.99"),
	}

	w := env.do(http.MethodPost, "/api/foods/import", `{"code":"123"}`, true)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, true, decode(t, w)["retryable"])
}

func TestImport(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/foods/import", `{"code":"4607025392408"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/foods/import", `{"query":"молоко"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/foods/import", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchFoods_PassesPaging(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/foods?q=oat&limit=5&offset=10", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.FoodSearch{Query: "oat", Limit: 5, Offset: 10}, env.catalog.gotQuery)
	assert.Equal(t, []any{}, decode(t, w)["items"])
}

func TestCurrentGoal_NoGoalIsEmptyState(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/goals/current?date=2024-03-01", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "goal")
	assert.Nil(t, body["goal"])

	env.goals.hasGoal = true
	w = env.do(http.MethodGet, "/api/goals/current", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["goal"])
}

func TestLogEntry_DefaultsDateToToday(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/diary", `{"food_id":"f1","quantity":150,"unit":"g","meal":"lunch"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, decode(t, w)["date"], "2024-03-14")
}

func TestTotals(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/totals?date=2024-03-01", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2024-03-01", decode(t, w)["date"])

	w = env.do(http.MethodGet, "/api/totals?from=2024-03-01&to=2024-03-02", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["days"], 2)

	w = env.do(http.MethodGet, "/api/totals?from=2024-03-05&to=2024-03-01", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOtherReportRoutes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/goals", `{"daily_kcal":2000}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodGet, "/api/trend?days=7", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, nutrition.ProjectionNote, decode(t, w)["note"])

	w = env.do(http.MethodGet, "/api/dashboard?days=3", "", true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/weights", `{"weight_kg":80.5}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/api/export?from=2024-03-01&to=2024-03-14", "", true)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "https://s3.local/k", decode(t, w)["url"])

	w = env.do(http.MethodDelete, "/api/diary/e1", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestWebsocketReceivesPublishedTotals(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws?access_token=" + goodToken
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.hub.Count(uid) == 1 }, time.Second, 10*time.Millisecond)

	env.hub.Publish(context.Background(), uid, services.MessageDailyTotal, models.DailyTotal{Day: "2024-03-14"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string            `json:"type"`
		Payload models.DailyTotal `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.MessageDailyTotal, msg.Type)
	assert.Equal(t, "2024-03-14", msg.Payload.Day)
}

func TestWebsocketRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

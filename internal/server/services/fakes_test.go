package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/foodapi"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/diary"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/foods"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/goals"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/users"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/weights"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsersRepo struct {
	byName    map[string]*models.User
	createErr error
	getErr    error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*models.User{}
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}
	cp := *u
	cp.ID = uuid.NewString()
	f.byName[u.UserName] = &cp
	return &cp, nil
}

func (f *fakeUsersRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- refresh tokens ---

type fakeRefreshRepo struct {
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
}

func (f *fakeRefreshRepo) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.tokens == nil {
		f.tokens = map[string]*models.RefreshToken{}
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.tokens {
		if t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	return n, nil
}

// --- foods ---

type fakeFoodsRepo struct {
	items      map[string]*models.FoodItem
	referenced map[string]bool
	upsertErr  error
	getErr     error
}

func newFakeFoods(items ...*models.FoodItem) *fakeFoodsRepo {
	f := &fakeFoodsRepo{items: map[string]*models.FoodItem{}, referenced: map[string]bool{}}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeFoodsRepo) Create(_ context.Context, item *models.FoodItem) (*models.FoodItem, error) {
	cp := *item
	cp.ID = uuid.NewString()
	f.items[cp.ID] = &cp
	return &cp, nil
}

func (f *fakeFoodsRepo) Get(_ context.Context, id string) (*models.FoodItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	it, ok := f.items[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *it
	return &cp, nil
}

func (f *fakeFoodsRepo) Search(_ context.Context, q models.FoodSearch) ([]*models.FoodItem, error) {
	var out []*models.FoodItem
	for _, it := range f.items {
		if strings.Contains(strings.ToLower(it.Name+" "+it.Brand), strings.ToLower(q.Query)) {
			out = append(out, it)
		}
	}
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeFoodsRepo) Update(_ context.Context, item *models.FoodItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *item
	f.items[item.ID] = &cp
	return nil
}

func (f *fakeFoodsRepo) UpsertExternal(_ context.Context, item *models.FoodItem) (*models.FoodItem, bool, error) {
	if f.upsertErr != nil {
		return nil, false, f.upsertErr
	}
	for id, it := range f.items {
		if it.Source == item.Source && it.ExternalID == item.ExternalID {
			cp := *item
			cp.ID = id
			f.items[id] = &cp
			return &cp, false, nil
		}
	}
	saved, _ := f.Create(context.Background(), item)
	return saved, true, nil
}

func (f *fakeFoodsRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	return f.referenced[id], nil
}

// --- diary ---

type fakeDiaryRepo struct {
	foods   *fakeFoodsRepo
	entries map[string]*models.DiaryEntry
	order   []string
	listErr error
}

func newFakeDiary(foods *fakeFoodsRepo) *fakeDiaryRepo {
	return &fakeDiaryRepo{foods: foods, entries: map[string]*models.DiaryEntry{}}
}

func (f *fakeDiaryRepo) Create(_ context.Context, e *models.DiaryEntry) (*models.DiaryEntry, error) {
	cp := *e
	cp.ID = uuid.NewString()
	f.entries[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
	return &cp, nil
}

func (f *fakeDiaryRepo) Get(_ context.Context, id string) (*models.DiaryEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeDiaryRepo) Update(_ context.Context, e *models.DiaryEntry) error {
	if _, ok := f.entries[e.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *e
	f.entries[e.ID] = &cp
	return nil
}

func (f *fakeDiaryRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.entries[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeDiaryRepo) ListLines(_ context.Context, userID string, from, to time.Time) ([]*models.DiaryLine, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*models.DiaryLine
	for _, id := range f.order {
		e, ok := f.entries[id]
		if !ok || e.UserID != userID || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		food := f.foods.items[e.FoodID]
		out = append(out, &models.DiaryLine{
			DiaryEntry: *e,
			FoodName:   food.Name,
			FoodBrand:  food.Brand,
			Per100g:    food.Per100g,
		})
	}
	return out, nil
}

// --- goals ---

type fakeGoalsRepo struct {
	goals    []*models.Goal
	closeErr error
	closedAt []time.Time
}

func (f *fakeGoalsRepo) Create(_ context.Context, g *models.Goal) (*models.Goal, error) {
	cp := *g
	cp.ID = uuid.NewString()
	f.goals = append(f.goals, &cp)
	return &cp, nil
}

func (f *fakeGoalsRepo) CloseOpen(_ context.Context, userID string, endDate time.Time) error {
	if f.closeErr != nil {
		return f.closeErr
	}
	f.closedAt = append(f.closedAt, endDate)
	for _, g := range f.goals {
		if g.UserID == userID && !g.StartDate.After(endDate) && (g.EndDate == nil || g.EndDate.After(endDate)) {
			end := endDate
			g.EndDate = &end
		}
	}
	return nil
}

func (f *fakeGoalsRepo) FindEffective(_ context.Context, userID string, day time.Time) (*models.Goal, error) {
	var best *models.Goal
	for _, g := range f.goals {
		if g.UserID != userID || !g.Covers(day) {
			continue
		}
		if best == nil || !g.StartDate.Before(best.StartDate) {
			best = g
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

// --- weights ---

type fakeWeightsRepo struct {
	logs []*models.WeightLog
}

func (f *fakeWeightsRepo) Upsert(_ context.Context, w *models.WeightLog) (*models.WeightLog, error) {
	for _, l := range f.logs {
		if l.UserID == w.UserID && l.Date.Equal(w.Date) {
			l.WeightKg = w.WeightKg
			return l, nil
		}
	}
	cp := *w
	cp.ID = uuid.NewString()
	f.logs = append(f.logs, &cp)
	return &cp, nil
}

func (f *fakeWeightsRepo) Latest(_ context.Context, userID string) (*models.WeightLog, error) {
	var best *models.WeightLog
	for _, l := range f.logs {
		if l.UserID == userID && (best == nil || l.Date.After(best.Date)) {
			best = l
		}
	}
	if best == nil {
		return nil, common.ErrorNotFound
	}
	return best, nil
}

// --- manager ---

type fakeRepoManager struct {
	users   *fakeUsersRepo
	refresh *fakeRefreshRepo
	foods   *fakeFoodsRepo
	diary   *fakeDiaryRepo
	goals   *fakeGoalsRepo
	weights *fakeWeightsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	f := newFakeFoods()
	return &fakeRepoManager{
		users:   &fakeUsersRepo{},
		refresh: &fakeRefreshRepo{},
		foods:   f,
		diary:   newFakeDiary(f),
		goals:   &fakeGoalsRepo{},
		weights: &fakeWeightsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Foods(dbx.DBTX) foods.Repository                 { return m.foods }
func (m *fakeRepoManager) Diary(dbx.DBTX) diary.Repository                 { return m.diary }
func (m *fakeRepoManager) Goals(dbx.DBTX) goals.Repository                 { return m.goals }
func (m *fakeRepoManager) Weights(dbx.DBTX) weights.Repository             { return m.weights }

// --- food source / publisher / store ---

type fakeSource struct {
	products map[string]*foodapi.Product
	search   []foodapi.Product
	err      error
}

func (f *fakeSource) Search(_ context.Context, query string, limit int) ([]foodapi.Product, error) {
	if f.err != nil {
		return nil, &common.ImportError{Source: foodapi.SourceName, Ref: query, Err: f.err}
	}
	return f.search, nil
}

func (f *fakeSource) Product(_ context.Context, code string) (*foodapi.Product, error) {
	if f.err != nil {
		return nil, &common.ImportError{Source: foodapi.SourceName, Ref: code, Err: f.err}
	}
	p, ok := f.products[code]
	if !ok {
		return nil, &common.ImportError{Source: foodapi.SourceName, Ref: code, Err: foodapi.ErrProductNotFound}
	}
	return p, nil
}

type published struct {
	userID  string
	msgType string
	payload any
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *fakePublisher) Publish(_ context.Context, userID, msgType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{userID, msgType, payload})
}

type fakeStore struct {
	objects    map[string][]byte
	putErr     error
	presignErr error
	ttl        time.Duration
}

func (s *fakeStore) Put(_ context.Context, key, _ string, body []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = body
	return nil
}

func (s *fakeStore) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.presignErr != nil {
		return "", s.presignErr
	}
	s.ttl = ttl
	return "https://s3.local/" + key + "?sig=x", nil
}

func ptr[T any](v T) *T { return &v }

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fitmacro/internal/client/client"
	"github.com/dmitrijs2005/fitmacro/internal/client/models"
	"github.com/dmitrijs2005/fitmacro/internal/client/repositories/metadata"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) string {
	t.Helper()
	v, err := metadata.NewSQLiteRepository(db).GetString(context.Background(), k)
	require.NoError(t, err)
	return v
}

// ---- fake client ----

type fakeClient struct {
	RegisterErr error
	LoginErr    error
	PingErr     error
	CloseErr    error

	LoginAccess  string
	LoginRefresh string

	Summary    *models.Summary
	SummaryErr error
	Series     *models.CalorieSeries
	SeriesErr  error

	LastRegisterUser string
	LastRegisterPass []byte
	LastLoginUser    string
	LastSummaryDate  string
	LastSeriesDays   int
	Closed           bool

	access, refresh string
}

func (f *fakeClient) Close() error { f.Closed = true; return f.CloseErr }

func (f *fakeClient) Register(_ context.Context, user string, pass []byte) (string, error) {
	f.LastRegisterUser, f.LastRegisterPass = user, append([]byte(nil), pass...)
	return "u1", f.RegisterErr
}

func (f *fakeClient) Login(_ context.Context, user string, _ []byte) (string, string, error) {
	f.LastLoginUser = user
	if f.LoginErr != nil {
		return "", "", f.LoginErr
	}
	f.access, f.refresh = f.LoginAccess, f.LoginRefresh
	return f.LoginAccess, f.LoginRefresh, nil
}

func (f *fakeClient) SetTokens(a, r string)      { f.access, f.refresh = a, r }
func (f *fakeClient) Tokens() (string, string)   { return f.access, f.refresh }
func (f *fakeClient) Ping(context.Context) error { return f.PingErr }

func (f *fakeClient) DailySummary(_ context.Context, date string) (*models.Summary, error) {
	f.LastSummaryDate = date
	return f.Summary, f.SummaryErr
}

func (f *fakeClient) CalorieSeries(_ context.Context, days int) (*models.CalorieSeries, error) {
	f.LastSeriesDays = days
	return f.Series, f.SeriesErr
}

var _ client.Client = (*fakeClient)(nil)

// ---- tests ----

func TestRegister_PassesThrough(t *testing.T) {
	fc := &fakeClient{}
	s := NewAuthService(fc, setupDB(t))

	require.NoError(t, s.Register(context.Background(), "alice", []byte("password1")))
	assert.Equal(t, "alice", fc.LastRegisterUser)
	assert.Equal(t, []byte("password1"), fc.LastRegisterPass)

	fc.RegisterErr = client.ErrInvalidInput
	assert.ErrorIs(t, s.Register(context.Background(), "alice", []byte("x")), client.ErrInvalidInput)
}

func TestLogin_SavesSession(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginAccess: "acc", LoginRefresh: "ref"}
	s := NewAuthService(fc, db).(*authService)
	s.now = func() time.Time { return time.Date(2024, 3, 14, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Login(context.Background(), "alice", []byte("password1")))

	assert.Equal(t, "alice", getMeta(t, db, metadata.KeyUserName))
	assert.Equal(t, "acc", getMeta(t, db, metadata.KeyAccessToken))
	assert.Equal(t, "ref", getMeta(t, db, metadata.KeyRefreshToken))
	assert.Equal(t, "2024-03-14T08:00:00Z", getMeta(t, db, metadata.KeyLoggedInAt))
}

func TestLogin_ErrorDoesNotSave(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginErr: client.ErrUnauthorized}
	s := NewAuthService(fc, db)

	err := s.Login(context.Background(), "alice", []byte("bad"))
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "", getMeta(t, db, metadata.KeyUserName))
}

func TestRestore(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginAccess: "acc", LoginRefresh: "ref"}
	s := NewAuthService(fc, db)

	name, err := s.Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", name, "empty store restores nothing")

	require.NoError(t, s.Login(context.Background(), "alice", []byte("password1")))

	fresh := &fakeClient{}
	name, err = NewAuthService(fresh, db).Restore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", name)
	a, r := fresh.Tokens()
	assert.Equal(t, "acc", a)
	assert.Equal(t, "ref", r)
}

func TestLogout_ClearsSessionAndTokens(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginAccess: "acc", LoginRefresh: "ref"}
	s := NewAuthService(fc, db)
	require.NoError(t, s.Login(context.Background(), "alice", []byte("password1")))

	require.NoError(t, s.Logout(context.Background()))

	a, _ := fc.Tokens()
	assert.Equal(t, "", a)
	assert.Equal(t, "", getMeta(t, db, metadata.KeyUserName))
}

func TestClose_PersistsRotatedTokens(t *testing.T) {
	db := setupDB(t)
	fc := &fakeClient{LoginAccess: "acc", LoginRefresh: "ref"}
	s := NewAuthService(fc, db)
	require.NoError(t, s.Login(context.Background(), "alice", []byte("password1")))

	fc.SetTokens("acc2", "ref2")
	require.NoError(t, s.Close(context.Background()))

	assert.True(t, fc.Closed)
	assert.Equal(t, "acc2", getMeta(t, db, metadata.KeyAccessToken))
	assert.Equal(t, "ref2", getMeta(t, db, metadata.KeyRefreshToken))
}

func TestPing(t *testing.T) {
	fc := &fakeClient{PingErr: client.ErrUnavailable}
	s := NewAuthService(fc, setupDB(t))
	assert.True(t, errors.Is(s.Ping(context.Background()), client.ErrUnavailable))
}

// Package services contains application services for the FitMacro client.
// This file defines the session service: register, login, restoring a saved
// session on start-up and logout.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fitmacro/internal/client/client"
	"github.com/dmitrijs2005/fitmacro/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register: create a new user on the server.
//   - Login: authenticate and persist the session locally.
//   - Restore: load a saved session into the client; "" when there is none.
//   - Logout: forget the local session.
//   - Ping: check server liveness.
//   - Close: release underlying client resources.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) error
	Login(ctx context.Context, username string, password []byte) error
	Restore(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// authService is the concrete AuthService backed by a remote Client and the
// local session database.
type authService struct {
	client client.Client
	db     *sql.DB
	now    func() time.Time
}

// NewAuthService constructs an AuthService bound to the given API client and DB.
func NewAuthService(client client.Client, db *sql.DB) AuthService {
	return &authService{client: client, db: db, now: time.Now}
}

func (a *authService) getMetadataRepo(db dbx.DBTX) *metadata.SQLiteRepository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) Register(ctx context.Context, username string, password []byte) error {
	if _, err := a.client.Register(ctx, username, password); err != nil {
		return err
	}
	return nil
}

// Login authenticates against the server and saves the user name and token
// pair so the next start does not ask for credentials.
func (a *authService) Login(ctx context.Context, username string, password []byte) error {
	access, refresh, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, username, access, refresh); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

func (a *authService) saveSession(ctx context.Context, username, access, refresh string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		values := []struct {
			key   string
			value string
		}{
			{metadata.KeyUserName, username},
			{metadata.KeyAccessToken, access},
			{metadata.KeyRefreshToken, refresh},
			{metadata.KeyLoggedInAt, a.now().UTC().Format(time.RFC3339)},
		}
		for _, v := range values {
			if err := repo.Set(ctx, v.key, []byte(v.value)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Restore loads the saved tokens into the client and returns the user name.
func (a *authService) Restore(ctx context.Context) (string, error) {
	repo := a.getMetadataRepo(a.db)

	username, err := repo.GetString(ctx, metadata.KeyUserName)
	if err != nil || username == "" {
		return "", err
	}
	access, err := repo.GetString(ctx, metadata.KeyAccessToken)
	if err != nil {
		return "", err
	}
	refresh, err := repo.GetString(ctx, metadata.KeyRefreshToken)
	if err != nil {
		return "", err
	}
	if access == "" && refresh == "" {
		return "", nil
	}

	a.client.SetTokens(access, refresh)
	return username, nil
}

// SaveTokens persists the client's current token pair, which may have been
// rotated by a refresh since login.
func (a *authService) SaveTokens(ctx context.Context) error {
	access, refresh := a.client.Tokens()
	if access == "" {
		return nil
	}
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyAccessToken, []byte(access)); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, []byte(refresh))
	})
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetTokens("", "")
	return a.getMetadataRepo(a.db).Clear(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close persists rotated tokens and releases the underlying client.
func (a *authService) Close(ctx context.Context) error {
	if err := a.SaveTokens(ctx); err != nil {
		_ = a.client.Close()
		return err
	}
	return a.client.Close()
}

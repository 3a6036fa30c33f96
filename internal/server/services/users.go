// Package services contains server-side business logic. Services own a
// *sql.DB and a repository manager; they open transactions with dbx and
// vend repositories bound to the transactional handle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"github.com/dmitrijs2005/fitmacro/internal/cryptox"
	"github.com/dmitrijs2005/fitmacro/internal/dbx"
	"github.com/dmitrijs2005/fitmacro/internal/server/auth"
	"github.com/dmitrijs2005/fitmacro/internal/server/config"
	"github.com/dmitrijs2005/fitmacro/internal/server/models"
	"github.com/dmitrijs2005/fitmacro/internal/server/repositories/repomanager"
)

const (
	minUserNameLen = 3
	maxUserNameLen = 64
	minPasswordLen = 8
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserService handles registration, login and refresh token rotation.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	now                          func() time.Time
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		now:                          time.Now,
	}
}

func validateCredentials(userName, password string) error {
	n := utf8.RuneCountInString(userName)
	if n < minUserNameLen || n > maxUserNameLen {
		return common.NewValidationError("username", fmt.Sprintf("must be %d to %d characters", minUserNameLen, maxUserNameLen))
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return common.NewValidationError("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	return nil
}

// Register creates a user with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, userName, password string) (*models.User, error) {
	userName = strings.TrimSpace(userName)
	if err := validateCredentials(userName, password); err != nil {
		return nil, err
	}

	salt := cryptox.NewSalt()
	user := &models.User{
		UserName:     userName,
		Salt:         salt,
		PasswordHash: cryptox.HashPassword([]byte(password), salt),
	}

	user, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewValidationError("username", "already taken")
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Lookup returns the user registered under userName.
func (s *UserService) Lookup(ctx context.Context, userName string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(userName))
}

// Login checks the credentials and mints a token pair.
func (s *UserService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, strings.TrimSpace(userName))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyPassword(user.PasswordHash, user.Salt, []byte(password)) {
		return nil, common.ErrorUnauthorized
	}

	return s.generateTokenPair(ctx, s.db, user.ID)
}

// RefreshToken rotates a refresh token: the presented token is deleted and a
// new pair is issued in the same transaction.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}

		pair, err = s.generateTokenPair(ctx, tx, token.UserID)
		if err != nil {
			return fmt.Errorf("error generating token pair: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// PurgeExpiredTokens removes refresh tokens that are already unusable.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, s.now())
}

// Authenticate resolves an access token to a user id.
func (s *UserService) Authenticate(accessToken string) (string, error) {
	return auth.GetUserIDFromToken(accessToken, s.jwtSecret)
}

func (s *UserService) generateTokenPair(ctx context.Context, db dbx.DBTX, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	err = s.repomanager.RefreshTokens(db).Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

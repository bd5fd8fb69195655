// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential verification, and
// issuing/refreshing the stateless JWT pair.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkazakov/taskdeck/internal/common"
	"github.com/dkazakov/taskdeck/internal/server/auth"
	"github.com/dkazakov/taskdeck/internal/server/config"
	"github.com/dkazakov/taskdeck/internal/server/models"
	"github.com/dkazakov/taskdeck/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

// validate is shared across services; validator instances cache struct
// metadata and are safe for concurrent use.
var validate = validator.New()

// dummyPasswordDigest is compared against when the account does not exist,
// so a login for an unknown email costs the same as one for a known email.
const dummyPasswordDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// credentialsInput is the validated registration/login input. The password
// is never stored on this struct longer than a single call.
type credentialsInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// UserService provides authentication-related operations:
//   - Register: create users (no tokens issued; login is a separate step)
//   - Login: verify credentials and mint a token pair
//   - Refresh: verify a refresh token and mint a brand-new pair
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	bcryptCost  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      auth.NewTokenService([]byte(cfg.SecretKey), cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration),
		bcryptCost:  cfg.BcryptCost,
	}
}

// Tokens exposes the token service for the access-guard middleware.
func (s *UserService) Tokens() *auth.TokenService {
	return s.tokens
}

// Register validates the credentials, checks for an existing account, and
// persists a new user with a hashed password. The explicit check-then-create
// keeps the duplicate error deterministic; the unique index on email catches
// the remaining race window.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if err := validate.Struct(credentialsInput{Email: email, Password: password}); err != nil {
		return nil, common.ErrorValidation
	}

	repo := s.repomanager.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrorDuplicateUser
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrorInternal
	}

	hash, err := auth.HashPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateUser) {
			return nil, common.ErrorDuplicateUser
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the provided password against the stored hash and, on
// success, returns a new TokenPair. An absent account and a wrong password
// produce the same error and burn the same hashing work.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckPassword([]byte(password), dummyPasswordDigest)
			return nil, common.ErrorInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if !auth.CheckPassword([]byte(password), user.PasswordHash) {
		return nil, common.ErrorInvalidCredentials
	}

	return s.generateTokenPair(user.ID)
}

// Refresh validates a refresh token and returns a fresh TokenPair. There is
// no server-side token store, so the old refresh token stays usable until it
// expires; validity is signature plus expiry only.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUserNotFound
		}
		return nil, common.ErrorInternal
	}

	return s.generateTokenPair(user.ID)
}

func (s *UserService) generateTokenPair(userID string) (*TokenPair, error) {
	access, err := s.tokens.Issue(userID, auth.TokenKindAccess)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.tokens.Issue(userID, auth.TokenKindRefresh)
	if err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

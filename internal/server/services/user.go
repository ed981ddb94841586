// Package services contains server-side business logic. This file implements
// UserService, which handles registration, email verification, login and
// issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/custdb/internal/common"
	"github.com/dmitrijs2005/custdb/internal/dbx"
	"github.com/dmitrijs2005/custdb/internal/logging"
	"github.com/dmitrijs2005/custdb/internal/server/auth"
	"github.com/dmitrijs2005/custdb/internal/server/config"
	"github.com/dmitrijs2005/custdb/internal/server/dto"
	"github.com/dmitrijs2005/custdb/internal/server/mailer"
	"github.com/dmitrijs2005/custdb/internal/server/models"
	"github.com/dmitrijs2005/custdb/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// VerificationSender delivers the "verify your email" message. Implementations
// must not fail the caller; the outcome is informational only.
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, email string, userID int64) mailer.Outcome
}

// hashPassword is a seam for tests that need a failing hasher.
var hashPassword = auth.HashPassword

// UserService provides account operations:
// - Register: create users and send the verification email
// - Verify: mark an account as verified
// - Login: check credentials and mint tokens
// - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	notifier                     VerificationSender
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, notifier VerificationSender,
	logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		notifier:                     notifier,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the payload, stores the user with a bcrypt hash and
// sends the verification email. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, in dto.UserCreate) (*models.User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{Email: in.Email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	s.notifier.SendVerificationEmail(ctx, u.Email, u.ID)
	return u, nil
}

// Verify marks the user as verified. It returns common.ErrorNotFound for an
// unknown id and common.ErrorAlreadyVerified when there is nothing to do.
func (s *UserService) Verify(ctx context.Context, id int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	if u.IsVerified {
		return u, common.ErrorAlreadyVerified
	}

	changed, err := repo.MarkVerified(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error verifying user: %w", err)
	}
	if !changed {
		// a concurrent request got there first
		return u, common.ErrorAlreadyVerified
	}
	u.IsVerified = true
	s.logger.Info(ctx, "user verified", "user_id", id)
	return u, nil
}

// Get returns the user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, common.ErrorInternal
	}
	return u, nil
}

// Login checks the password against the stored hash and, on success,
// returns a new TokenPair. Unverified users may log in.
func (s *UserService) Login(ctx context.Context, in dto.UserLogin) (*TokenPair, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, common.ErrorUnauthorized
	}
	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expired(timeNow()) {
		if err := repo.Delete(ctx, refreshToken); err != nil {
			s.logger.Warn(ctx, "error deleting expired refresh token", "user_id", token.UserID, "error", err)
		}
		return nil, common.ErrRefreshTokenExpired
	}

	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (*TokenPair, error) {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return nil, fmt.Errorf("error deleting refresh token: %w", err)
		}
		return s.generateTokenPair(ctx, token.UserID, tx)
	})
}

// RevokeTokens deletes every refresh token of the user and reports how many
// were removed. Access tokens stay valid until they expire.
func (s *UserService) RevokeTokens(ctx context.Context, userID int64) (int64, error) {
	if _, err := s.Get(ctx, userID); err != nil {
		return 0, err
	}
	n, err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("error deleting refresh tokens: %w", err)
	}
	s.logger.Info(ctx, "refresh tokens revoked", "user_id", userID, "count", n)
	return n, nil
}

// PurgeExpiredTokens removes refresh tokens that can no longer be used.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, timeNow())
	if err != nil {
		return 0, fmt.Errorf("error purging refresh tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info(ctx, "expired refresh tokens purged", "count", n)
	}
	return n, nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if _, err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

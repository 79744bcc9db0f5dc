package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils"
)

// tokenService issues JWT access tokens from the application configuration.
type tokenService struct {
	BaseService
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

var _ portssvc.TokenSvcFacade = (*tokenService)(nil)

// GenerateAccessToken creates a new JWT access token for the given user.
func (s *tokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	token, expiresAt, err := utils.GenerateJWT(user.UserID, user.Username, s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to generate access token", slog.String("user_id", user.UserID))
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

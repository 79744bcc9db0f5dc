package services

import (
	"context"
	"time"

	"github.com/SscSPs/mbg_dapur_ledger/internal/core/domain"
)

// TokenSvcFacade defines the interface for access token issuance.
type TokenSvcFacade interface {
	// GenerateAccessToken signs a JWT for user and returns it with its expiry.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}

package interfaces

import (
	"context"
	"time"

	"edu-game-server/shared/models"
)

// TokenVerifier defines the interface for verifying inter-service JWT tokens.
type TokenVerifier interface {
	// VerifyInterServiceToken checks signature, expiry and subject.
	VerifyInterServiceToken(ctx context.Context, tokenString string) (*models.ServiceClaims, error)
}

// TokenGenerator defines the interface for generating inter-service JWT tokens.
type TokenGenerator interface {
	GenerateInterServiceToken(issuer string, subject string, ttl time.Duration) (string, error)
}

package mocks

import (
	"context"

	"edu-game-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock TokenVerifier
type TokenVerifier struct {
	mock.Mock
}

func (m *TokenVerifier) VerifyInterServiceToken(ctx context.Context, tokenString string) (*models.ServiceClaims, error) {
	args := m.Called(ctx, tokenString)
	c, _ := args.Get(0).(*models.ServiceClaims)
	return c, args.Error(1)
}

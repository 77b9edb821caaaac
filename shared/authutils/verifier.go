package authutils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// JWTVerifier проверяет и выпускает межсервисные JWT токены (HS256, общий секрет).
type JWTVerifier struct {
	secret []byte
	logger *zap.Logger
}

var (
	_ interfaces.TokenVerifier  = (*JWTVerifier)(nil)
	_ interfaces.TokenGenerator = (*JWTVerifier)(nil)
)

// NewJWTVerifier создает новый экземпляр JWTVerifier.
// Если логгер nil, используется Noop.
func NewJWTVerifier(secret string, logger *zap.Logger) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTVerifier{
		secret: []byte(secret),
		logger: logger.Named("JWTVerifier"),
	}, nil
}

// VerifyInterServiceToken проверяет подпись, срок действия и наличие subject (имя сервиса).
func (v *JWTVerifier) VerifyInterServiceToken(ctx context.Context, tokenString string) (*models.ServiceClaims, error) {
	log := v.logger.With(zap.String("tokenSnippet", tokenSnippet(tokenString)))
	claims := &models.ServiceClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			log.Warn("Unexpected signing method", zap.Any("alg", token.Header["alg"]))
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		log.Warn("Failed to parse or verify inter-service token", zap.Error(err))
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, models.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, models.ErrTokenMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, models.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}
	if !token.Valid {
		log.Warn("Token is invalid despite no parsing error")
		return nil, models.ErrTokenInvalid
	}
	if claims.Subject == "" {
		log.Warn("Token missing subject")
		return nil, fmt.Errorf("%w: subject missing", models.ErrTokenInvalid)
	}

	log.Debug("Inter-service token verified", zap.String("service", claims.Subject))
	return claims, nil
}

// GenerateInterServiceToken подписывает токен для вызова этого сервиса.
func (v *JWTVerifier) GenerateInterServiceToken(issuer string, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.ServiceClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign inter-service token: %w", err)
	}
	return signed, nil
}

// tokenSnippet возвращает безопасную для логгирования часть токена.
func tokenSnippet(tokenString string) string {
	limit := 15
	if len(tokenString) > limit {
		return tokenString[:limit] + "..."
	}
	return tokenString
}

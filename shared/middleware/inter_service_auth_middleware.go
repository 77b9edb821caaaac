package middleware

import (
	"context"
	"errors"
	"net/http"

	"edu-game-server/shared/interfaces"
	"edu-game-server/shared/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InterServiceTokenHeader - заголовок, в котором шлюз передает межсервисный JWT.
const InterServiceTokenHeader = "X-Internal-Service-Token"

// ServiceClaimsKey - ключ echo.Context, под которым лежат проверенные claims.
const ServiceClaimsKey = "serviceClaims"

// InterServiceAuthMiddleware создает Echo middleware для проверки межсервисного JWT.
func InterServiceAuthMiddleware(verifier interfaces.TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.With(zap.String("path", c.Request().URL.Path))

			tokenString := c.Request().Header.Get(InterServiceTokenHeader)
			if tokenString == "" {
				log.Warn("Inter-service token header missing")
				return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("missing inter-service token"))
			}

			claims, err := verifier.VerifyInterServiceToken(c.Request().Context(), tokenString)
			if err != nil {
				status := http.StatusUnauthorized
				msg := "invalid inter-service token"
				switch {
				case errors.Is(err, models.ErrTokenExpired):
					msg = "inter-service token expired"
				case errors.Is(err, models.ErrTokenMalformed), errors.Is(err, models.ErrTokenInvalid):
				default:
					log.Error("Unexpected inter-service token verification error", zap.Error(err))
					status = http.StatusInternalServerError
					msg = "internal server error"
				}
				log.Warn("Inter-service token verification failed", zap.Error(err))
				return c.JSON(status, models.NewErrorResponse(msg))
			}

			c.Set(string(models.SourceServiceContextKey), claims.Subject)
			c.Set(ServiceClaimsKey, claims)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), models.SourceServiceContextKey, claims.Subject)))
			log.Debug("Inter-service request authorized", zap.String("sourceService", claims.Subject))
			return next(c)
		}
	}
}

// RequireScope пропускает запрос, только если токен дает scope.
// Без claims (проверка токенов выключена) запрос пропускается.
func RequireScope(scope string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ServiceClaimsKey).(*models.ServiceClaims)
			if ok && !claims.HasScope(scope) {
				logger.Warn("Inter-service token lacks scope",
					zap.String("scope", scope),
					zap.String("sourceService", claims.Subject),
					zap.String("path", c.Request().URL.Path),
				)
				return c.JSON(http.StatusForbidden, models.NewErrorResponse("insufficient scope"))
			}
			return next(c)
		}
	}
}

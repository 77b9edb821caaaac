package models

import "github.com/golang-jwt/jwt/v5"

// ServiceClaims - claims межсервисного токена, которым шлюз подписывает запросы.
// Subject содержит имя сервиса-источника.
type ServiceClaims struct {
	Scopes []string `json:"scopes,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether the token grants scope. Токен без scopes считается полным доступом.
func (c *ServiceClaims) HasScope(scope string) bool {
	if len(c.Scopes) == 0 {
		return true
	}
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

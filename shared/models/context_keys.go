package models

import "context"

// contextKey - приватный тип для ключей контекста, чтобы избежать коллизий.
type contextKey string

const (
	// SourceServiceContextKey хранит имя сервиса-источника межсервисного запроса.
	SourceServiceContextKey contextKey = "sourceService"
	// RequestIDContextKey хранит идентификатор запроса.
	RequestIDContextKey contextKey = "requestID"
)

// GetSourceServiceFromContext извлекает имя сервиса-источника из контекста.
func GetSourceServiceFromContext(ctx context.Context) (string, bool) {
	svc, ok := ctx.Value(SourceServiceContextKey).(string)
	return svc, ok
}

// GetRequestIDFromContext извлекает идентификатор запроса из контекста.
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(RequestIDContextKey).(string)
	return id, ok
}

package models

import (
	"errors"
	"fmt"
)

// Application-wide standard errors
var (
	// Request / identity errors. Detected before any mutation.
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("resource not found")
	ErrPlayerNotFound   = fmt.Errorf("player: %w", ErrNotFound)
	ErrPermissionDenied = errors.New("permission denied")

	// Store errors
	ErrStorage               = errors.New("storage error")
	ErrPartialReconciliation = errors.New("partial reconciliation")
	// ErrSchemaDrift - в сторе нет ожидаемой колонки или таблицы.
	ErrSchemaDrift = errors.New("schema drift")

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")
)

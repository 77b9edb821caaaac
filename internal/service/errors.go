package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edu-game-server/shared/models"
)

// storageError оборачивает ошибку хранилища в models.ErrStorage, сохраняя причину.
func storageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", models.ErrStorage, op, err)
}

// validationError формирует ошибку валидации с пояснением.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

// requireID trims id and fails with ErrValidation when it is empty.
func requireID(name, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", validationError("%s is required", name)
	}
	return id, nil
}

// withStoreTimeout ограничивает операцию таймаутом хранилища.
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

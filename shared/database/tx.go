package database

import (
	"context"
	"fmt"

	"edu-game-server/shared/interfaces"

	"github.com/jackc/pgx/v5"
)

// WithTx выполняет fn в транзакции: commit при успехе, rollback при ошибке.
func WithTx(ctx context.Context, db interfaces.TxBeginner, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка при начале транзакции: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("ошибка при выполнении транзакции: %w (ошибка отката: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка при фиксации транзакции: %w", err)
	}
	return nil
}

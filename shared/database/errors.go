package database

import (
	"errors"
	"fmt"

	"edu-game-server/shared/models"

	"github.com/jackc/pgx/v5/pgconn"
)

// Коды ошибок Postgres, которые различает слой хранения.
const (
	pgUndefinedColumn  = "42703"
	pgUndefinedTable   = "42P01"
	pgDuplicateColumn  = "42701"
	pgDuplicateTable   = "42P07"
	pgUniqueViolation  = "23505"
	pgDuplicateObject  = "42710"
	pgForeignKeyAbsent = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsSchemaDrift reports whether err means an expected column or table is missing.
func IsSchemaDrift(err error) bool {
	switch pgErrorCode(err) {
	case pgUndefinedColumn, pgUndefinedTable:
		return true
	}
	return false
}

// isAlreadyExists - гонка двух CREATE/ALTER: структура уже создана кем-то другим.
// 23505 возникает, когда параллельный CREATE TABLE конфликтует в pg_type.
func isAlreadyExists(err error) bool {
	switch pgErrorCode(err) {
	case pgDuplicateColumn, pgDuplicateTable, pgDuplicateObject, pgUniqueViolation:
		return true
	}
	return false
}

// IsForeignKeyViolation reports whether err is a foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgForeignKeyAbsent
}

// classifyWriteError помечает drift-ошибки как models.ErrSchemaDrift, сохраняя исходную ошибку.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	if IsSchemaDrift(err) {
		return fmt.Errorf("%w: %w", models.ErrSchemaDrift, err)
	}
	return err
}

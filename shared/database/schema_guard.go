package database

import (
	"context"
	"fmt"

	"edu-game-server/shared/interfaces"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

var _ interfaces.SchemaGuard = (*PgSchemaGuard)(nil)

const (
	columnExistsQuery = `
SELECT EXISTS (
    SELECT 1 FROM information_schema.columns
    WHERE table_schema = current_schema() AND table_name = $1 AND column_name = $2
)`
	tableExistsQuery = `
SELECT EXISTS (
    SELECT 1 FROM information_schema.tables
    WHERE table_schema = current_schema() AND table_name = $1
)`
)

// PgSchemaGuard проверяет наличие колонок/таблиц и идемпотентно создает недостающие.
// Результаты не кэшируются: каждое решение принимается по текущему состоянию каталога.
type PgSchemaGuard struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgSchemaGuard creates a SchemaGuard over db.
func NewPgSchemaGuard(db interfaces.DBTX, logger *zap.Logger) *PgSchemaGuard {
	return &PgSchemaGuard{
		db:     db,
		logger: logger.Named("PgSchemaGuard"),
	}
}

// ColumnExists reports whether table.column exists in the current schema.
func (g *PgSchemaGuard) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	var exists bool
	if err := g.db.QueryRow(ctx, columnExistsQuery, table, column).Scan(&exists); err != nil {
		g.logger.Error("Failed to check column existence", zap.String("table", table), zap.String("column", column), zap.Error(err))
		return false, fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	return exists, nil
}

// TableExists reports whether table exists in the current schema.
func (g *PgSchemaGuard) TableExists(ctx context.Context, table string) (bool, error) {
	var exists bool
	if err := g.db.QueryRow(ctx, tableExistsQuery, table).Scan(&exists); err != nil {
		g.logger.Error("Failed to check table existence", zap.String("table", table), zap.Error(err))
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	return exists, nil
}

// EnsureColumn добавляет колонку, если ее нет. Параллельное добавление считается успехом.
func (g *PgSchemaGuard) EnsureColumn(ctx context.Context, spec interfaces.ColumnSpec) error {
	logFields := []zap.Field{zap.String("table", spec.Table), zap.String("column", spec.Column)}
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s",
		pq.QuoteIdentifier(spec.Table), pq.QuoteIdentifier(spec.Column), spec.Definition)

	if _, err := g.db.Exec(ctx, stmt); err != nil {
		if isAlreadyExists(err) {
			g.logger.Debug("Column created concurrently, treating as success", logFields...)
			return nil
		}
		g.logger.Error("Failed to ensure column", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ensure column %s.%s: %w", spec.Table, spec.Column, err)
	}
	g.logger.Info("Column ensured", logFields...)
	return nil
}

// EnsureTable создает таблицу, если ее нет. Параллельное создание считается успехом.
func (g *PgSchemaGuard) EnsureTable(ctx context.Context, spec interfaces.TableSpec) error {
	logFields := []zap.Field{zap.String("table", spec.Table)}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pq.QuoteIdentifier(spec.Table), spec.DDL)

	if _, err := g.db.Exec(ctx, stmt); err != nil {
		if isAlreadyExists(err) {
			g.logger.Debug("Table created concurrently, treating as success", logFields...)
			return nil
		}
		g.logger.Error("Failed to ensure table", append(logFields, zap.Error(err))...)
		return fmt.Errorf("ensure table %s: %w", spec.Table, err)
	}
	g.logger.Info("Table ensured", logFields...)
	return nil
}

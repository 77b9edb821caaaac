package interfaces

import "context"

// ColumnSpec описывает колонку, которую SchemaGuard добавляет при отсутствии.
type ColumnSpec struct {
	Table      string
	Column     string
	Definition string // например "BOOLEAN NOT NULL DEFAULT FALSE"
}

// TableSpec описывает таблицу, которую SchemaGuard создает при отсутствии.
type TableSpec struct {
	Table string
	DDL   string // тело CREATE TABLE IF NOT EXISTS <table> (...)
}

// SchemaGuard проверяет наличие ожидаемой структуры и идемпотентно ее создает.
// "Уже существует" - это успех, а не ошибка.
//
//go:generate mockery --name SchemaGuard --output ./mocks --outpkg mocks --case=underscore
type SchemaGuard interface {
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	TableExists(ctx context.Context, table string) (bool, error)
	EnsureColumn(ctx context.Context, spec ColumnSpec) error
	EnsureTable(ctx context.Context, spec TableSpec) error
}

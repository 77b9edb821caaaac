package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

const (
	migrationsTable = "schema_migrations"
	lockTimeout     = 30 * time.Second
)

// ErrDirtySchema - предыдущая миграция упала посередине, схема требует ручного вмешательства.
var ErrDirtySchema = errors.New("schema is dirty")

// Config описывает встроенный набор миграций.
type Config struct {
	MigrationsPath string // каталог внутри MigrationsFS
	MigrationsFS   fs.FS
}

// State - текущая версия схемы. Version 0 означает, что ни одна миграция не применена.
type State struct {
	Version uint
	Dirty   bool
}

// Migrator применяет встроенные SQL миграции поверх пула pgx.
type Migrator struct {
	config Config
	pool   *pgxpool.Pool
}

func NewMigrator(config Config, pool *pgxpool.Pool) *Migrator {
	if config.MigrationsPath == "" {
		config.MigrationsPath = "."
	}
	return &Migrator{config: config, pool: pool}
}

// Up применяет все новые миграции и возвращает итоговое состояние.
func (m *Migrator) Up() (State, error) {
	return m.apply("up", (*migrate.Migrate).Up)
}

// Down откатывает все миграции. Используется тестами для проверки down-скриптов.
func (m *Migrator) Down() (State, error) {
	return m.apply("down", (*migrate.Migrate).Down)
}

// Version возвращает состояние схемы без изменений.
func (m *Migrator) Version() (State, error) {
	var state State
	err := m.withMigrate(func(mg *migrate.Migrate) error {
		var err error
		state, err = readState(mg)
		return err
	})
	return state, err
}

func (m *Migrator) apply(direction string, step func(*migrate.Migrate) error) (State, error) {
	var state State
	err := m.withMigrate(func(mg *migrate.Migrate) error {
		if err := step(mg); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migrate %s: %w", direction, err)
		}
		var err error
		state, err = readState(mg)
		return err
	})
	if err != nil {
		return State{}, err
	}
	log.Info().Str("direction", direction).Uint("version", state.Version).Bool("dirty", state.Dirty).Msg("schema migrations applied")
	if state.Dirty {
		return state, fmt.Errorf("%w at version %d", ErrDirtySchema, state.Version)
	}
	return state, nil
}

func readState(mg *migrate.Migrate) (State, error) {
	version, dirty, err := mg.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read schema version: %w", err)
	}
	return State{Version: version, Dirty: dirty}, nil
}

// withMigrate открывает migrate.Migrate на время fn.
func (m *Migrator) withMigrate(fn func(*migrate.Migrate) error) error {
	driver, err := postgres.WithInstance(stdlib.OpenDBFromPool(m.pool), &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return fmt.Errorf("postgres migrate driver: %w", err)
	}
	source, err := iofs.New(m.config.MigrationsFS, m.config.MigrationsPath)
	if err != nil {
		return fmt.Errorf("migrations source %q: %w", m.config.MigrationsPath, err)
	}
	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	mg.LockTimeout = lockTimeout
	defer mg.Close()

	return fn(mg)
}

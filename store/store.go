// Package store persists robot actions with joined-table inheritance: one
// shared actions table plus one table per action kind, keyed by the same id.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"pycramdb/action"
	"pycramdb/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var log = logrus.WithField("component", "store")

type DB struct {
	*sql.DB
	dialect  Dialect
	driver   string
	registry *action.Registry
	resolver *Resolver
	events   eventSink
}

// Open connects to the configured database, seals reg and creates the
// value, action and outbox tables for every registered kind.
func Open(cfg *config.DatabaseConfig, reg *action.Registry) (*DB, error) {
	switch cfg.Driver {
	case "sqlite":
		return openSQLite(cfg.SQLite.Path, reg)
	case "postgres":
		return openPostgres(&cfg.Postgres, reg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func openSQLite(path string, reg *action.Registry) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	db := newDB(sqlDB, sqliteDialect{}, "sqlite", reg)
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}

func openPostgres(cfg *config.PostgresConfig, reg *action.Registry) (*DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password, cfg.SSLMode)
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db := newDB(sqlDB, postgresDialect{}, "postgres", reg)
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	return db, nil
}

func newDB(sqlDB *sql.DB, d Dialect, driver string, reg *action.Registry) *DB {
	if reg == nil {
		reg = action.Builtin()
	}
	reg.Seal()
	db := &DB{DB: sqlDB, dialect: d, driver: driver, registry: reg}
	db.resolver = &Resolver{db: db}
	return db
}

func (db *DB) Dialect() Dialect               { return db.dialect }
func (db *DB) Driver() string                 { return db.driver }
func (db *DB) Registry() *action.Registry     { return db.registry }
func (db *DB) Resolver() *Resolver            { return db.resolver }
func (db *DB) SetValueCache(cache ValueCache) { db.resolver.cache = cache }

// Q rewrites ? placeholders and datetime literals for PostgreSQL, passes through for SQLite.
func (db *DB) Q(query string) string {
	if db.driver == "postgres" {
		query = strings.ReplaceAll(query, "datetime('now','localtime')", "NOW()")
		return Rebind(query)
	}
	return query
}

// Schema returns the full DDL for the configured driver.
func (db *DB) Schema() string {
	return buildSchema(db.driver, db.dialect, db.registry)
}

// SchemaFor renders the DDL for driver without connecting, covering every
// kind in reg.
func SchemaFor(driver string, reg *action.Registry) (string, error) {
	switch driver {
	case "sqlite":
		return buildSchema(driver, sqliteDialect{}, reg), nil
	case "postgres":
		return buildSchema(driver, postgresDialect{}, reg), nil
	}
	return "", fmt.Errorf("unsupported database driver: %s", driver)
}

func buildSchema(driver string, d Dialect, reg *action.Registry) string {
	var b strings.Builder
	if driver == "postgres" {
		b.WriteString(schemaPostgres)
	} else {
		b.WriteString(schemaSQLite)
	}
	for _, v := range reg.Variants() {
		b.WriteString(variantDDL(d, v))
	}
	return b.String()
}

func (db *DB) migrate() error {
	if _, err := db.Exec(db.Schema()); err != nil {
		return err
	}
	log.WithField("driver", db.driver).Debugf("schema ready (%d action kinds)", len(db.registry.Variants()))
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, rolling back when fn fails or panics.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("rollback failed")
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

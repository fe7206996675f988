package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/land-registry-map/internal/config"
)

type DB struct {
	*sqlx.DB
	Builder *goqu.Database
	schema  string
	logger  *zap.Logger
}

func New(cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Connection pool settings
	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
		zap.String("schema", cfg.Schema),
	)

	return wrap(db, cfg.Schema, logger), nil
}

func (db *DB) Close() error {
	db.logger.Info("Closing PostgreSQL connection")
	return db.DB.Close()
}

func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Schema - схема с таблицами сервиса
func (db *DB) Schema() string {
	return db.schema
}

// NewDBForTest creates a DB instance for testing with provided database and logger
func NewDBForTest(sqlxDB *sqlx.DB, schema string, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return wrap(sqlxDB, schema, logger)
}

func wrap(db *sqlx.DB, schema string, logger *zap.Logger) *DB {
	if schema == "" {
		schema = DefaultSchema
	}
	return &DB{
		DB:      db,
		Builder: goqu.New("postgres", db.DB),
		schema:  schema,
		logger:  logger,
	}
}

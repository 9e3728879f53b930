package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/luozhen/go-chat-keeper/internal/logger"
	"github.com/luozhen/go-chat-keeper/migrations"
)

type DB struct {
	*sql.DB
	logger *logger.Logger
}

// NewSQLiteDB opens (or creates) the history database at dsn and applies
// pending migrations. Use ":memory:" for a throwaway database.
func NewSQLiteDB(dsn string, log *logger.Logger) (*DB, error) {
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if err = migrations.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("dsn", dsn).Msg("history database ready")
	return &DB{DB: db, logger: log}, nil
}

package repository

import (
	"context"
	"database/sql"

	applogger "KPIPulse/pkg/logger"
)

// PostgresStore implements the persistence interfaces over a shared
// *sql.DB pool.
type PostgresStore struct {
	db     *sql.DB
	logger *applogger.Logger
}

// NewPostgresStore creates the store.
func NewPostgresStore(db *sql.DB, l *applogger.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: l}
}

// Init ensures the output tables exist.
func (s *PostgresStore) Init(ctx context.Context) error {
	for _, stmt := range Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

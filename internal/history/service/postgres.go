package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	model "github.com/babelcloud/gbox/packages/relay/pkg/chat"
	"github.com/babelcloud/gbox/packages/relay/pkg/logger"
)

// DefaultTable is the table the relay has always written history to.
const DefaultTable = "historyagents"

// DBPool abstracts pgxpool.Pool so the store can be tested with pgxmock.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore persists history in a PostgreSQL table.
type PostgresStore struct {
	pool  DBPool
	table string // sanitized identifier
	log   *logger.Logger
	now   func() time.Time
}

// Connect opens a pool for dsn and returns a ready store.
func Connect(ctx context.Context, dsn, table string, log *logger.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	store, err := NewPostgresStore(ctx, pool, table, log)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStore wraps pool and verifies the connection.
func NewPostgresStore(ctx context.Context, pool DBPool, table string, log *logger.Logger) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if table == "" {
		table = DefaultTable
	}
	return &PostgresStore{
		pool:  pool,
		table: pgx.Identifier{table}.Sanitize(),
		log:   log.Named("history"),
		now:   time.Now,
	}, nil
}

// Migrate creates the history table and its lookup index if missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL DEFAULT 'anonymous',
		message TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		command TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create history table: %w", err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (username, created_at DESC)`,
		pgx.Identifier{indexName(s.table)}.Sanitize(), s.table)
	if _, err := s.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("failed to create history index: %w", err)
	}
	s.log.Info("History schema ready in %s", s.table)
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, entry model.Entry) error {
	entry = normalize(entry, s.now)
	sql := fmt.Sprintf(`INSERT INTO %s (id, username, message, ai_response, command, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`, s.table)
	if _, err := s.pool.Exec(ctx, sql,
		entry.ID, entry.Username, entry.Message, entry.AIResponse, entry.Command, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUsername(ctx context.Context, username string) ([]model.Entry, error) {
	sql := fmt.Sprintf(`SELECT id::text, username, message, ai_response, command, created_at
		FROM %s WHERE username = $1 ORDER BY created_at DESC`, s.table)
	rows, err := s.pool.Query(ctx, sql, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Entry, error) {
		var e model.Entry
		err := row.Scan(&e.ID, &e.Username, &e.Message, &e.AIResponse, &e.Command, &e.CreatedAt)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

func (s *PostgresStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE created_at < $1`, s.table)
	tag, err := s.pool.Exec(ctx, sql, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// indexName derives the index name from a sanitized table identifier.
func indexName(sanitized string) string {
	name := sanitized
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		name = name[1 : len(name)-1]
	}
	return name + "_username_created_at_idx"
}

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telhawk-systems/telhawk-csv/internal/csv/headers"
)

// PostgresStore keeps header blocks in the csv_header_blocks and
// csv_header_columns tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString and checks the connection.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Save(ctx context.Context, source string, h *headers.Headers) error {
	rec, err := snapshot(source, h)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var line interface{}
	if rec.hasLine {
		line = rec.lineNumber
	}
	_, err = tx.Exec(ctx, `INSERT INTO csv_header_blocks (source, line_number, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (source) DO UPDATE SET line_number = EXCLUDED.line_number, updated_at = NOW()`,
		source, line)
	if err != nil {
		return fmt.Errorf("upsert header block: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM csv_header_columns WHERE source = $1`, source); err != nil {
		return fmt.Errorf("clear header columns: %w", err)
	}

	batch := &pgx.Batch{}
	for k, v := range rec.tokens {
		batch.Queue(`INSERT INTO csv_header_columns (source, key, token) VALUES ($1, $2, $3)`, source, k, v)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert header columns: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, source string) (*headers.Headers, error) {
	var line *int64
	err := s.pool.QueryRow(ctx, `SELECT line_number FROM csv_header_blocks WHERE source = $1`, source).Scan(&line)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get header block: %w", err)
	}

	rec := &record{tokens: make(map[string]string)}
	if line != nil {
		rec.lineNumber, rec.hasLine = *line, true
	}

	rows, err := s.pool.Query(ctx, `SELECT key, token FROM csv_header_columns WHERE source = $1`, source)
	if err != nil {
		return nil, fmt.Errorf("get header columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan header column: %w", err)
		}
		rec.tokens[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read header columns: %w", err)
	}
	return rec.restore(), nil
}

func (s *PostgresStore) Delete(ctx context.Context, source string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM csv_header_blocks WHERE source = $1`, source)
	if err != nil {
		return fmt.Errorf("delete header block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

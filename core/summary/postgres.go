package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS day_summaries (
    id BIGSERIAL PRIMARY KEY,
    run_id TEXT NOT NULL,
    day TEXT NOT NULL,
    record JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore persists summaries to PostgreSQL through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, verifies the connection and ensures schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Append inserts the record.
func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO day_summaries (run_id, day, record) VALUES ($1, $2, $3)`,
		rec.RunID, rec.Date, b)
	return err
}

// Query returns records matching q in insertion order.
func (s *PostgresStore) Query(ctx context.Context, q Query) ([]Record, error) {
	sqlText, args := buildPostgresQuery(q)
	rows, err := s.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func buildPostgresQuery(q Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.Date != "" {
		args = append(args, q.Date)
		where = append(where, fmt.Sprintf("day = $%d", len(args)))
	}
	if q.RunID != "" {
		args = append(args, q.RunID)
		where = append(where, fmt.Sprintf("run_id = $%d", len(args)))
	}
	sqlText := `SELECT record FROM day_summaries`
	if len(where) > 0 {
		sqlText += ` WHERE ` + strings.Join(where, " AND ")
	}
	return sqlText + ` ORDER BY id`, args
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

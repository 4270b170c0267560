package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore persists history in the lookup_history table.
type PostgresStore struct {
	db DBTX
}

func NewPostgres(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, rec Record) error {
	const query = `
		INSERT INTO lookup_history
			(lookup_id, domain, query, success, cache_hit, subject_id, resolved_by, attempts, trace, looked_up_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (lookup_id) DO NOTHING`
	_, err := s.db.Exec(ctx, query,
		rec.LookupID, rec.Domain, rec.Query, rec.Success, rec.CacheHit,
		rec.SubjectID, rec.ResolvedBy, rec.Attempts, []byte(rec.Trace), rec.LookedUpAt,
	)
	if err != nil {
		return fmt.Errorf("save lookup history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultCapacity
	}
	const query = `
		SELECT lookup_id, domain, query, success, cache_hit, subject_id, resolved_by, attempts, trace, looked_up_at
		FROM lookup_history
		ORDER BY looked_up_at DESC
		LIMIT $1`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookup history: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		var raw []byte
		err := row.Scan(&rec.LookupID, &rec.Domain, &rec.Query, &rec.Success, &rec.CacheHit,
			&rec.SubjectID, &rec.ResolvedBy, &rec.Attempts, &raw, &rec.LookedUpAt)
		rec.Trace = raw
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan lookup history: %w", err)
	}
	return records, nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"marketfactory/internal/registry/models"
	"marketfactory/pkg/platform/sentinel"
)

// Schema is the table layout the factory's indexer maintains. idx is the
// zero-based insertion position.
const Schema = `
CREATE TABLE IF NOT EXISTS markets (
	idx        BIGINT PRIMARY KEY CHECK (idx >= 0),
	account_id TEXT   NOT NULL
)`

// PostgresStore reads the registry from the markets table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry reader.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Len counts the rows in the markets table.
func (s *PostgresStore) Len(ctx context.Context) (uint64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM markets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count markets: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return uint64(n), nil
}

// Get loads the market at index. Indices above MaxInt64 cannot exist in a
// BIGINT column and report absent.
func (s *PostgresStore) Get(ctx context.Context, index uint64) (models.MarketID, bool, error) {
	if index > math.MaxInt64 {
		return "", false, nil
	}
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT account_id FROM markets WHERE idx = $1`, int64(index)).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get market %d: %w", index, err)
	}
	return models.MarketID(id), true, nil
}

// All loads every market ordered by insertion index in one statement.
func (s *PostgresStore) All(ctx context.Context) ([]models.MarketID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT account_id FROM markets ORDER BY idx`)
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return scanMarkets(rows)
}

// Range loads [start, end) ordered by index. Gaps in idx are simply absent
// from the result.
func (s *PostgresStore) Range(ctx context.Context, start, end uint64) ([]models.MarketID, error) {
	if start > math.MaxInt64 || start >= end {
		return []models.MarketID{}, nil
	}
	end = min(end, math.MaxInt64)
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id FROM markets WHERE idx >= $1 AND idx < $2 ORDER BY idx`,
		int64(start), int64(end),
	)
	if err != nil {
		return nil, fmt.Errorf("range markets: %w", errors.Join(sentinel.ErrUnavailable, err))
	}
	return scanMarkets(rows)
}

func scanMarkets(rows *sql.Rows) ([]models.MarketID, error) {
	defer rows.Close()
	ids := []models.MarketID{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan market: %w", err)
		}
		ids = append(ids, models.MarketID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate markets: %w", err)
	}
	return ids, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/truthmarkets/marketd/internal/domain"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx. All
// entity stores run against it, so the same store code serves both the
// autocommit path and WithinTx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a domain.Store backed by PostgreSQL. The zero value is not
// usable; construct with NewStore.
type Store struct {
	client *Client
	db     querier
}

// NewStore creates a Store running in autocommit mode against the client's
// connection pool.
func NewStore(client *Client) *Store {
	return &Store{client: client, db: client.pool}
}

func (s *Store) Markets() domain.MarketStore              { return &MarketStore{db: s.db} }
func (s *Store) Positions() domain.PositionStore          { return &PositionStore{db: s.db} }
func (s *Store) Providers() domain.LiquidityProviderStore { return &LiquidityProviderStore{db: s.db} }
func (s *Store) Counter() domain.CounterStore             { return &CounterStore{db: s.db} }

// WithinTx runs fn against a store view bound to a single database
// transaction, committing on success and rolling back on error. Nested calls
// reuse the ambient transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(domain.Store) error) error {
	if _, ok := s.db.(pgx.Tx); ok {
		return fn(s)
	}

	tx, err := s.client.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Store{client: s.client, db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// parseAmount converts a NUMERIC column fetched as a decimal string into a
// uint256 value.
func parseAmount(col, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("postgres: column %s holds %q: %w", col, s, err)
	}
	return v, nil
}

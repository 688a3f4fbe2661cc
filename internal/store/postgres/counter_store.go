package postgres

import (
	"context"
	"fmt"
)

// CounterStore implements domain.CounterStore using a single-row table. The
// row is seeded by the initial migration.
type CounterStore struct {
	db querier
}

// Next atomically increments the market counter and returns the new value.
func (s *CounterStore) Next(ctx context.Context) (uint64, error) {
	const query = `UPDATE market_counter SET count = count + 1 WHERE id = 1 RETURNING count`

	var count int64
	if err := s.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: advance market counter: %w", err)
	}
	return uint64(count), nil
}

// Current returns the number of markets created so far.
func (s *CounterStore) Current(ctx context.Context) (uint64, error) {
	const query = `SELECT count FROM market_counter WHERE id = 1`

	var count int64
	if err := s.db.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: read market counter: %w", err)
	}
	return uint64(count), nil
}

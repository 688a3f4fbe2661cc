package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/truthmarkets/marketd/internal/domain"
)

// PositionStore implements domain.PositionStore using PostgreSQL.
type PositionStore struct {
	db querier
}

// Get returns the position of one holder in one market.
func (s *PositionStore) Get(ctx context.Context, marketID uint64, holder domain.Address) (domain.Position, error) {
	const query = `
		SELECT market_id, holder, shares_yes::text, shares_no::text, updated_at
		FROM positions
		WHERE market_id = $1 AND holder = $2`

	p, err := scanPosition(s.db.QueryRow(ctx, query, int64(marketID), string(holder)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Position{}, fmt.Errorf("postgres: position %d/%s: %w", marketID, holder, domain.ErrNotFound)
		}
		return domain.Position{}, fmt.Errorf("postgres: get position %d/%s: %w", marketID, holder, err)
	}
	return p, nil
}

// Upsert inserts or overwrites a position row.
func (s *PositionStore) Upsert(ctx context.Context, p domain.Position) error {
	const query = `
		INSERT INTO positions (market_id, holder, shares_yes, shares_no, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (market_id, holder) DO UPDATE SET
			shares_yes = EXCLUDED.shares_yes,
			shares_no  = EXCLUDED.shares_no,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, query,
		int64(p.MarketID), string(p.Holder),
		p.SharesYes.Dec(), p.SharesNo.Dec(),
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert position %d/%s: %w", p.MarketID, p.Holder, err)
	}
	return nil
}

// ListByMarket returns every position in a market in ascending holder order.
func (s *PositionStore) ListByMarket(ctx context.Context, marketID uint64) ([]domain.Position, error) {
	const query = `
		SELECT market_id, holder, shares_yes::text, shares_no::text, updated_at
		FROM positions
		WHERE market_id = $1
		ORDER BY holder`

	rows, err := s.db.Query(ctx, query, int64(marketID))
	if err != nil {
		return nil, fmt.Errorf("postgres: list positions for market %d: %w", marketID, err)
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list positions for market %d: %w", marketID, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list positions for market %d: %w", marketID, err)
	}
	return out, nil
}

// scanPosition scans a single position row into a domain.Position.
func scanPosition(row pgx.Row) (domain.Position, error) {
	var (
		p         domain.Position
		marketID  int64
		holder    string
		sharesYes string
		sharesNo  string
	)
	if err := row.Scan(&marketID, &holder, &sharesYes, &sharesNo, &p.UpdatedAt); err != nil {
		return domain.Position{}, err
	}

	p.MarketID = uint64(marketID)
	p.Holder = domain.Address(holder)

	var err error
	if p.SharesYes, err = parseAmount("shares_yes", sharesYes); err != nil {
		return domain.Position{}, err
	}
	if p.SharesNo, err = parseAmount("shares_no", sharesNo); err != nil {
		return domain.Position{}, err
	}
	return p, nil
}

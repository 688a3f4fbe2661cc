package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/truthmarkets/marketd/internal/domain"
)

// LiquidityProviderStore implements domain.LiquidityProviderStore using
// PostgreSQL.
type LiquidityProviderStore struct {
	db querier
}

// Get returns the contribution record of one provider in one market.
func (s *LiquidityProviderStore) Get(ctx context.Context, marketID uint64, provider domain.Address) (domain.LiquidityProvider, error) {
	const query = `
		SELECT market_id, provider, contributed_liquidity::text, updated_at
		FROM liquidity_providers
		WHERE market_id = $1 AND provider = $2`

	lp, err := scanProvider(s.db.QueryRow(ctx, query, int64(marketID), string(provider)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LiquidityProvider{}, fmt.Errorf("postgres: provider %d/%s: %w", marketID, provider, domain.ErrNotFound)
		}
		return domain.LiquidityProvider{}, fmt.Errorf("postgres: get provider %d/%s: %w", marketID, provider, err)
	}
	return lp, nil
}

// Upsert inserts or overwrites a provider contribution row.
func (s *LiquidityProviderStore) Upsert(ctx context.Context, lp domain.LiquidityProvider) error {
	const query = `
		INSERT INTO liquidity_providers (market_id, provider, contributed_liquidity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market_id, provider) DO UPDATE SET
			contributed_liquidity = EXCLUDED.contributed_liquidity,
			updated_at            = EXCLUDED.updated_at`

	_, err := s.db.Exec(ctx, query,
		int64(lp.MarketID), string(lp.Provider),
		lp.ContributedLiquidity.Dec(),
		lp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert provider %d/%s: %w", lp.MarketID, lp.Provider, err)
	}
	return nil
}

// ListByMarket returns every provider in a market in ascending address order.
func (s *LiquidityProviderStore) ListByMarket(ctx context.Context, marketID uint64) ([]domain.LiquidityProvider, error) {
	const query = `
		SELECT market_id, provider, contributed_liquidity::text, updated_at
		FROM liquidity_providers
		WHERE market_id = $1
		ORDER BY provider`

	rows, err := s.db.Query(ctx, query, int64(marketID))
	if err != nil {
		return nil, fmt.Errorf("postgres: list providers for market %d: %w", marketID, err)
	}
	defer rows.Close()

	var out []domain.LiquidityProvider
	for rows.Next() {
		lp, err := scanProvider(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: list providers for market %d: %w", marketID, err)
		}
		out = append(out, lp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list providers for market %d: %w", marketID, err)
	}
	return out, nil
}

// scanProvider scans a single provider row into a domain.LiquidityProvider.
func scanProvider(row pgx.Row) (domain.LiquidityProvider, error) {
	var (
		lp          domain.LiquidityProvider
		marketID    int64
		provider    string
		contributed string
	)
	if err := row.Scan(&marketID, &provider, &contributed, &lp.UpdatedAt); err != nil {
		return domain.LiquidityProvider{}, err
	}

	lp.MarketID = uint64(marketID)
	lp.Provider = domain.Address(provider)

	var err error
	if lp.ContributedLiquidity, err = parseAmount("contributed_liquidity", contributed); err != nil {
		return domain.LiquidityProvider{}, err
	}
	return lp, nil
}

package domain

import "context"

// ListOpts provides pagination for list queries.
type ListOpts struct {
	Limit  int
	Offset int
}

// MarketStore persists market records.
type MarketStore interface {
	Create(ctx context.Context, m Market) error
	Get(ctx context.Context, id uint64) (Market, error)
	Update(ctx context.Context, m Market) error
	List(ctx context.Context, opts ListOpts) ([]Market, error)
}

// PositionStore persists per-holder outcome share balances.
// ListByMarket returns positions in ascending holder order.
type PositionStore interface {
	Get(ctx context.Context, marketID uint64, holder Address) (Position, error)
	Upsert(ctx context.Context, p Position) error
	ListByMarket(ctx context.Context, marketID uint64) ([]Position, error)
}

// LiquidityProviderStore persists per-provider contribution records.
// ListByMarket returns providers in ascending address order.
type LiquidityProviderStore interface {
	Get(ctx context.Context, marketID uint64, provider Address) (LiquidityProvider, error)
	Upsert(ctx context.Context, lp LiquidityProvider) error
	ListByMarket(ctx context.Context, marketID uint64) ([]LiquidityProvider, error)
}

// CounterStore allocates sequential market ids. Next must be invoked inside
// the same transaction as the market insert so ids are never skipped or
// reused.
type CounterStore interface {
	// Next advances the counter and returns the new value (1-based).
	Next(ctx context.Context) (uint64, error)
	// Current returns the last allocated id, 0 if none.
	Current(ctx context.Context) (uint64, error)
}

// Store aggregates the persistent collaborators behind one transactional
// boundary. WithinTx runs fn against a Store view bound to a single
// transaction; if fn returns an error nothing is committed.
type Store interface {
	Markets() MarketStore
	Positions() PositionStore
	Providers() LiquidityProviderStore
	Counter() CounterStore
	WithinTx(ctx context.Context, fn func(Store) error) error
}

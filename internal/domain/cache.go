package domain

import (
	"context"

	"github.com/holiman/uint256"
)

// PriceCache caches the derived prices of a market so read paths can serve
// them without loading the market row. Prices are scaled integers
// (DECIMAL_PRECISION = 1e8).
type PriceCache interface {
	SetPrices(ctx context.Context, marketID uint64, priceYes, priceNo *uint256.Int) error
	// GetPrices returns ErrNotFound when the market has no cached entry.
	GetPrices(ctx context.Context, marketID uint64) (priceYes, priceNo *uint256.Int, err error)
	Invalidate(ctx context.Context, marketID uint64) error
}

// EventBus fans out engine events to observers (the WebSocket hub, external
// consumers). Publishing is best-effort from the engine's point of view.
type EventBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe returns a channel of raw payloads; it is closed when ctx is
	// cancelled.
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

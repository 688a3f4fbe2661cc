// Package engine implements the market-maker accounting engines: market
// registry, liquidity, trading, and resolution. Every operation is a single
// atomic state transition executed inside the store's transactional boundary;
// no writes happen before all preconditions pass.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/holiman/uint256"

	"github.com/truthmarkets/marketd/internal/domain"
)

// Config carries the tunable engine parameters.
type Config struct {
	// FeeBps is the trading fee in basis points applied to buy amounts and
	// accumulated per market for distribution to liquidity providers at
	// resolution. Zero disables the fee.
	FeeBps uint32
}

// Engine executes market operations against the persistent store. The price
// cache, event bus, and settlement archiver are optional collaborators; nil
// disables them.
type Engine struct {
	cfg      Config
	store    domain.Store
	ledger   domain.Ledger
	prices   domain.PriceCache
	bus      domain.EventBus
	archiver domain.SettlementArchiver
	logger   *slog.Logger
}

// New creates an Engine with all dependencies.
func New(
	cfg Config,
	store domain.Store,
	ledger domain.Ledger,
	prices domain.PriceCache,
	bus domain.EventBus,
	archiver domain.SettlementArchiver,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		cfg:      cfg,
		store:    store,
		ledger:   ledger,
		prices:   prices,
		bus:      bus,
		archiver: archiver,
		logger:   logger.With(slog.String("component", "engine")),
	}
}

// GetMarket returns a market by id.
func (e *Engine) GetMarket(ctx context.Context, id uint64) (domain.Market, error) {
	return e.store.Markets().Get(ctx, id)
}

// ListMarkets returns markets in ascending id order.
func (e *Engine) ListMarkets(ctx context.Context, opts domain.ListOpts) ([]domain.Market, error) {
	return e.store.Markets().List(ctx, opts)
}

// GetPosition returns a holder's position, zero-valued if none exists.
func (e *Engine) GetPosition(ctx context.Context, marketID uint64, holder domain.Address) (domain.Position, error) {
	pos, err := e.store.Positions().Get(ctx, marketID, holder)
	if err == nil {
		return pos, nil
	}
	if isNotFound(err) {
		return domain.NewPosition(marketID, holder), nil
	}
	return domain.Position{}, err
}

// MarketPrices returns the current derived prices, serving from the cache
// when possible and falling back to the market record.
func (e *Engine) MarketPrices(ctx context.Context, marketID uint64) (priceYes, priceNo *uint256.Int, err error) {
	if e.prices != nil {
		py, pn, cacheErr := e.prices.GetPrices(ctx, marketID)
		if cacheErr == nil {
			return py, pn, nil
		}
	}

	m, err := e.store.Markets().Get(ctx, marketID)
	if err != nil {
		return nil, nil, err
	}

	if e.prices != nil {
		if cacheErr := e.prices.SetPrices(ctx, marketID, m.PriceYes, m.PriceNo); cacheErr != nil {
			e.logger.WarnContext(ctx, "price cache backfill failed",
				slog.Uint64("market_id", marketID),
				slog.String("error", cacheErr.Error()),
			)
		}
	}
	return m.PriceYes, m.PriceNo, nil
}

// cachePrices updates the derived-price cache after a committed mutation and
// emits a price tick on the bus. Failures are logged, never surfaced: the
// market record is the truth.
func (e *Engine) cachePrices(ctx context.Context, marketID uint64, priceYes, priceNo *uint256.Int) {
	if e.prices != nil {
		if err := e.prices.SetPrices(ctx, marketID, priceYes, priceNo); err != nil {
			e.logger.WarnContext(ctx, "price cache update failed",
				slog.Uint64("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	if e.bus != nil {
		payload, err := json.Marshal(map[string]string{
			"market_id": strconv.FormatUint(marketID, 10),
			"price_yes": priceYes.Dec(),
			"price_no":  priceNo.Dec(),
		})
		if err != nil {
			return
		}
		if err := e.bus.Publish(ctx, domain.ChannelPrices, payload); err != nil {
			e.logger.WarnContext(ctx, "price tick publish failed",
				slog.Uint64("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}
}

// publish broadcasts a result descriptor event after a committed mutation.
func (e *Engine) publish(ctx context.Context, eventType string, marketID uint64, attrs map[string]string) {
	if e.bus == nil {
		return
	}
	ev := domain.Event{
		Type:     eventType,
		MarketID: marketID,
		Attrs:    attrs,
		At:       time.Now().UTC(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := e.bus.Publish(ctx, domain.ChannelMarkets, payload); err != nil {
		e.logger.WarnContext(ctx, "event publish failed",
			slog.String("event", eventType),
			slog.Uint64("market_id", marketID),
			slog.String("error", err.Error()),
		)
	}
}

// loadPosition reads a position, constructing a zero-valued record when the
// key is absent (read-or-default upsert discipline).
func loadPosition(ctx context.Context, s domain.Store, marketID uint64, holder domain.Address) (domain.Position, error) {
	pos, err := s.Positions().Get(ctx, marketID, holder)
	if err == nil {
		return pos, nil
	}
	if isNotFound(err) {
		return domain.NewPosition(marketID, holder), nil
	}
	return domain.Position{}, err
}

// loadProvider reads a provider record, constructing a zero-valued record
// when the key is absent.
func loadProvider(ctx context.Context, s domain.Store, marketID uint64, provider domain.Address) (domain.LiquidityProvider, error) {
	lp, err := s.Providers().Get(ctx, marketID, provider)
	if err == nil {
		return lp, nil
	}
	if isNotFound(err) {
		return domain.NewLiquidityProvider(marketID, provider), nil
	}
	return domain.LiquidityProvider{}, err
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

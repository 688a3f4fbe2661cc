package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/holiman/uint256"

	"github.com/truthmarkets/marketd/internal/amm"
	"github.com/truthmarkets/marketd/internal/domain"
)

// CreateMarketResult is the descriptor returned by CreateMarket.
type CreateMarketResult struct {
	MarketID uint64
	PriceYes *uint256.Int
	PriceNo  *uint256.Int
}

// CreateMarket allocates the next market id and seeds both pools with the
// initial liquidity, so both prices start at exactly half of the precision
// constant. The creator is not recorded as a liquidity provider.
//
// Zero initial liquidity fails with ErrUnauthorized; historically this
// validation failure carries the authorization error kind.
func (e *Engine) CreateMarket(ctx context.Context, creator domain.Address, description string, initialLiquidity *uint256.Int) (CreateMarketResult, error) {
	if initialLiquidity == nil || initialLiquidity.IsZero() {
		return CreateMarketResult{}, fmt.Errorf("create market: initial liquidity must be positive: %w", domain.ErrUnauthorized)
	}

	var res CreateMarketResult
	err := e.store.WithinTx(ctx, func(s domain.Store) error {
		id, err := s.Counter().Next(ctx)
		if err != nil {
			return fmt.Errorf("allocate market id: %w", err)
		}

		now := time.Now().UTC()
		m := domain.Market{
			ID:                   id,
			Creator:              creator,
			Description:          description,
			SharesYes:            uint256.NewInt(0).Set(initialLiquidity),
			SharesNo:             uint256.NewInt(0).Set(initialLiquidity),
			TotalLiquidity:       uint256.NewInt(0).Set(initialLiquidity),
			TotalLiquidityShares: new(uint256.Int).Mul(initialLiquidity, initialLiquidity),
			FeesCollected:        uint256.NewInt(0),
			FeeBps:               e.cfg.FeeBps,
			PriceYes:             amm.Price(initialLiquidity, initialLiquidity),
			PriceNo:              amm.Price(initialLiquidity, initialLiquidity),
			CreatedAt:            now,
			UpdatedAt:            now,
		}

		if err := s.Markets().Create(ctx, m); err != nil {
			return fmt.Errorf("persist market %d: %w", id, err)
		}

		res = CreateMarketResult{MarketID: id, PriceYes: m.PriceYes, PriceNo: m.PriceNo}
		return nil
	})
	if err != nil {
		return CreateMarketResult{}, fmt.Errorf("engine: %w", err)
	}

	e.cachePrices(ctx, res.MarketID, res.PriceYes, res.PriceNo)
	e.publish(ctx, domain.EventMarketCreated, res.MarketID, map[string]string{
		"market_id": fmt.Sprintf("%d", res.MarketID),
	})

	e.logger.InfoContext(ctx, "market created",
		slog.Uint64("market_id", res.MarketID),
		slog.String("creator", string(creator)),
		slog.String("initial_liquidity", initialLiquidity.Dec()),
	)
	return res, nil
}

// GetCount returns the number of markets created so far.
func (e *Engine) GetCount(ctx context.Context) (uint64, error) {
	count, err := e.store.Counter().Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("engine: get count: %w", err)
	}
	return count, nil
}

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

// AddLiquidityResult is the descriptor returned by AddLiquidity.
type AddLiquidityResult struct {
	MarketID       uint64
	LiquidityAdded *uint256.Int
	MintedYes      *uint256.Int
	MintedNo       *uint256.Int
	PriceYes       *uint256.Int
	PriceNo        *uint256.Int
}

// RemoveLiquidityResult is the descriptor returned by RemoveLiquidity.
type RemoveLiquidityResult struct {
	MarketID           uint64
	LiquidityRemoved   *uint256.Int
	SharesYesWithdrawn *uint256.Int
	SharesNoWithdrawn  *uint256.Int
	PriceYes           *uint256.Int
	PriceNo            *uint256.Int
}

// AddLiquidity grows the pools by amount. On balanced pools both reserves
// grow in full and nothing is minted; on imbalanced pools the rebalancing
// rule holds prices constant and the surplus of the naive growth on the
// pricier side is minted to the provider as outcome shares.
func (e *Engine) AddLiquidity(ctx context.Context, marketID uint64, provider domain.Address, amount *uint256.Int) (AddLiquidityResult, error) {
	if amount == nil || amount.IsZero() {
		return AddLiquidityResult{}, fmt.Errorf("engine: add liquidity: %w", domain.ErrZeroAmount)
	}

	var res AddLiquidityResult
	err := e.store.WithinTx(ctx, func(s domain.Store) error {
		m, err := s.Markets().Get(ctx, marketID)
		if err != nil {
			return fmt.Errorf("load market %d: %w", marketID, err)
		}
		if m.Resolved {
			return fmt.Errorf("add liquidity to market %d: %w", marketID, domain.ErrMarketResolved)
		}

		newYes, newNo, mintYes, mintNo := amm.AddLiquidity(m.SharesYes, m.SharesNo, amount)

		m.SharesYes = newYes
		m.SharesNo = newNo
		m.TotalLiquidity = new(uint256.Int).Add(m.TotalLiquidity, amount)
		m.PriceYes = amm.Price(m.SharesYes, m.SharesNo)
		m.PriceNo = amm.Price(m.SharesNo, m.SharesYes)
		m.UpdatedAt = time.Now().UTC()

		lp, err := loadProvider(ctx, s, marketID, provider)
		if err != nil {
			return fmt.Errorf("load provider: %w", err)
		}
		lp.ContributedLiquidity = new(uint256.Int).Add(lp.ContributedLiquidity, amount)
		lp.UpdatedAt = m.UpdatedAt
		if err := s.Providers().Upsert(ctx, lp); err != nil {
			return fmt.Errorf("persist provider: %w", err)
		}

		if !mintYes.IsZero() || !mintNo.IsZero() {
			pos, err := loadPosition(ctx, s, marketID, provider)
			if err != nil {
				return fmt.Errorf("load position: %w", err)
			}
			pos.Credit(domain.OutcomeYes, mintYes)
			pos.Credit(domain.OutcomeNo, mintNo)
			pos.UpdatedAt = m.UpdatedAt
			if err := s.Positions().Upsert(ctx, pos); err != nil {
				return fmt.Errorf("persist position: %w", err)
			}
		}

		if err := s.Markets().Update(ctx, m); err != nil {
			return fmt.Errorf("persist market %d: %w", marketID, err)
		}

		res = AddLiquidityResult{
			MarketID:       marketID,
			LiquidityAdded: amount,
			MintedYes:      mintYes,
			MintedNo:       mintNo,
			PriceYes:       m.PriceYes,
			PriceNo:        m.PriceNo,
		}
		return nil
	})
	if err != nil {
		return AddLiquidityResult{}, fmt.Errorf("engine: %w", err)
	}

	e.cachePrices(ctx, marketID, res.PriceYes, res.PriceNo)
	e.publish(ctx, domain.EventLiquidityAdded, marketID, map[string]string{
		"liquidity_added": amount.Dec(),
	})

	e.logger.InfoContext(ctx, "liquidity added",
		slog.Uint64("market_id", marketID),
		slog.String("provider", string(provider)),
		slog.String("amount", amount.Dec()),
	)
	return res, nil
}

// RemoveLiquidity withdraws the provider's proportional share from both
// pools and hands the disbursement to the ledger. The provider must have a
// recorded contribution at least as large as amount.
func (e *Engine) RemoveLiquidity(ctx context.Context, marketID uint64, provider domain.Address, amount *uint256.Int) (RemoveLiquidityResult, error) {
	if amount == nil || amount.IsZero() {
		return RemoveLiquidityResult{}, fmt.Errorf("engine: remove liquidity: %w", domain.ErrZeroAmount)
	}

	var res RemoveLiquidityResult
	err := e.store.WithinTx(ctx, func(s domain.Store) error {
		m, err := s.Markets().Get(ctx, marketID)
		if err != nil {
			return fmt.Errorf("load market %d: %w", marketID, err)
		}
		if m.Resolved {
			return fmt.Errorf("remove liquidity from market %d: %w", marketID, domain.ErrMarketResolved)
		}

		lp, err := s.Providers().Get(ctx, marketID, provider)
		if err != nil {
			return fmt.Errorf("load provider: %w", err)
		}
		if lp.ContributedLiquidity.Lt(amount) {
			return fmt.Errorf("remove %s of %s contributed: %w",
				amount.Dec(), lp.ContributedLiquidity.Dec(), domain.ErrInsufficientLiquidity)
		}

		withdrawYes, withdrawNo := amm.RemoveLiquidity(
			m.SharesYes, m.SharesNo, m.TotalLiquidity, amount,
		)
		if withdrawYes.Gt(m.SharesYes) || withdrawNo.Gt(m.SharesNo) || amount.Gt(m.TotalLiquidity) {
			return fmt.Errorf("withdrawal exceeds pool reserves: %w", domain.ErrInsufficientLiquidity)
		}

		m.SharesYes = new(uint256.Int).Sub(m.SharesYes, withdrawYes)
		m.SharesNo = new(uint256.Int).Sub(m.SharesNo, withdrawNo)
		m.TotalLiquidity = new(uint256.Int).Sub(m.TotalLiquidity, amount)
		m.PriceYes = amm.Price(m.SharesYes, m.SharesNo)
		m.PriceNo = amm.Price(m.SharesNo, m.SharesYes)
		m.UpdatedAt = time.Now().UTC()

		lp.ContributedLiquidity = new(uint256.Int).Sub(lp.ContributedLiquidity, amount)
		lp.UpdatedAt = m.UpdatedAt

		if err := s.Providers().Upsert(ctx, lp); err != nil {
			return fmt.Errorf("persist provider: %w", err)
		}
		if err := s.Markets().Update(ctx, m); err != nil {
			return fmt.Errorf("persist market %d: %w", marketID, err)
		}

		if err := e.ledger.Transfer(ctx, domain.Transfer{
			MarketID:  marketID,
			Recipient: provider,
			Amount:    amount,
			Reason:    domain.TransferLiquidityWithdrawal,
		}); err != nil {
			return fmt.Errorf("disburse withdrawal: %w", err)
		}

		res = RemoveLiquidityResult{
			MarketID:           marketID,
			LiquidityRemoved:   amount,
			SharesYesWithdrawn: withdrawYes,
			SharesNoWithdrawn:  withdrawNo,
			PriceYes:           m.PriceYes,
			PriceNo:            m.PriceNo,
		}
		return nil
	})
	if err != nil {
		return RemoveLiquidityResult{}, fmt.Errorf("engine: %w", err)
	}

	e.cachePrices(ctx, marketID, res.PriceYes, res.PriceNo)
	e.publish(ctx, domain.EventLiquidityRemoved, marketID, map[string]string{
		"liquidity_removed":    amount.Dec(),
		"shares_yes_withdrawn": res.SharesYesWithdrawn.Dec(),
		"shares_no_withdrawn":  res.SharesNoWithdrawn.Dec(),
		"price_yes":            res.PriceYes.Dec(),
		"price_no":             res.PriceNo.Dec(),
	})

	e.logger.InfoContext(ctx, "liquidity removed",
		slog.Uint64("market_id", marketID),
		slog.String("provider", string(provider)),
		slog.String("amount", amount.Dec()),
	)
	return res, nil
}

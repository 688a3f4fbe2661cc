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

// BuyResult is the descriptor returned by BuyShares.
type BuyResult struct {
	MarketID     uint64
	Outcome      domain.Outcome
	SharesBought *uint256.Int
	Fee          *uint256.Int
	PriceYes     *uint256.Int
	PriceNo      *uint256.Int
}

// SellResult is the descriptor returned by SellShares.
type SellResult struct {
	MarketID     uint64
	Outcome      domain.Outcome
	SharesSold   *uint256.Int
	USDCReceived *uint256.Int
	PriceYes     *uint256.Int
	PriceNo      *uint256.Int
}

// BuyShares trades amount into the pools for outcome shares. When the market
// carries a fee, the fee is deducted before the amount enters the pools and
// accumulates on the market for distribution to liquidity providers at
// resolution.
func (e *Engine) BuyShares(ctx context.Context, marketID uint64, buyer domain.Address, outcome string, amount *uint256.Int) (BuyResult, error) {
	o, err := domain.ParseOutcome(outcome)
	if err != nil {
		return BuyResult{}, fmt.Errorf("engine: buy shares: %w", err)
	}
	if amount == nil || amount.IsZero() {
		return BuyResult{}, fmt.Errorf("engine: buy shares: %w", domain.ErrZeroAmount)
	}

	var res BuyResult
	err = e.store.WithinTx(ctx, func(s domain.Store) error {
		m, err := s.Markets().Get(ctx, marketID)
		if err != nil {
			return fmt.Errorf("load market %d: %w", marketID, err)
		}
		if m.Resolved {
			return fmt.Errorf("trade in market %d: %w", marketID, domain.ErrMarketResolved)
		}

		fee := amm.Fee(amount, m.FeeBps)
		net := new(uint256.Int).Sub(amount, fee)
		if net.IsZero() {
			return fmt.Errorf("buy amount consumed by fee: %w", domain.ErrZeroAmount)
		}
		m.FeesCollected = new(uint256.Int).Add(m.FeesCollected, fee)

		var bought *uint256.Int
		if o == domain.OutcomeYes {
			m.SharesYes, m.SharesNo, bought = amm.Buy(m.SharesYes, m.SharesNo, net)
		} else {
			m.SharesNo, m.SharesYes, bought = amm.Buy(m.SharesNo, m.SharesYes, net)
		}
		m.PriceYes = amm.Price(m.SharesYes, m.SharesNo)
		m.PriceNo = amm.Price(m.SharesNo, m.SharesYes)
		m.UpdatedAt = time.Now().UTC()

		pos, err := loadPosition(ctx, s, marketID, buyer)
		if err != nil {
			return fmt.Errorf("load position: %w", err)
		}
		pos.Credit(o, bought)
		pos.UpdatedAt = m.UpdatedAt

		if err := s.Positions().Upsert(ctx, pos); err != nil {
			return fmt.Errorf("persist position: %w", err)
		}
		if err := s.Markets().Update(ctx, m); err != nil {
			return fmt.Errorf("persist market %d: %w", marketID, err)
		}

		res = BuyResult{
			MarketID:     marketID,
			Outcome:      o,
			SharesBought: bought,
			Fee:          fee,
			PriceYes:     m.PriceYes,
			PriceNo:      m.PriceNo,
		}
		return nil
	})
	if err != nil {
		return BuyResult{}, fmt.Errorf("engine: %w", err)
	}

	e.cachePrices(ctx, marketID, res.PriceYes, res.PriceNo)
	e.publish(ctx, domain.EventSharesBought, marketID, map[string]string{
		"outcome":       string(o),
		"shares_bought": res.SharesBought.Dec(),
		"price_yes":     res.PriceYes.Dec(),
		"price_no":      res.PriceNo.Dec(),
	})

	e.logger.InfoContext(ctx, "shares bought",
		slog.Uint64("market_id", marketID),
		slog.String("buyer", string(buyer)),
		slog.String("outcome", string(o)),
		slog.String("amount", amount.Dec()),
		slog.String("shares_bought", res.SharesBought.Dec()),
	)
	return res, nil
}

// SellShares returns amount outcome shares to their pool and pays the seller
// the value released from the opposite reserve. The seller's balance is
// debited first; the payout disbursement goes through the ledger.
func (e *Engine) SellShares(ctx context.Context, marketID uint64, seller domain.Address, outcome string, amount *uint256.Int) (SellResult, error) {
	o, err := domain.ParseOutcome(outcome)
	if err != nil {
		return SellResult{}, fmt.Errorf("engine: sell shares: %w", err)
	}
	if amount == nil || amount.IsZero() {
		return SellResult{}, fmt.Errorf("engine: sell shares: %w", domain.ErrZeroAmount)
	}

	var res SellResult
	err = e.store.WithinTx(ctx, func(s domain.Store) error {
		m, err := s.Markets().Get(ctx, marketID)
		if err != nil {
			return fmt.Errorf("load market %d: %w", marketID, err)
		}
		if m.Resolved {
			return fmt.Errorf("trade in market %d: %w", marketID, domain.ErrMarketResolved)
		}

		pos, err := s.Positions().Get(ctx, marketID, seller)
		if err != nil {
			return fmt.Errorf("load position: %w", err)
		}
		if err := pos.Debit(o, amount); err != nil {
			return fmt.Errorf("sell %s %s shares: %w", amount.Dec(), o, err)
		}

		var payout *uint256.Int
		if o == domain.OutcomeYes {
			m.SharesYes, m.SharesNo, payout = amm.Sell(m.SharesYes, m.SharesNo, amount)
		} else {
			m.SharesNo, m.SharesYes, payout = amm.Sell(m.SharesNo, m.SharesYes, amount)
		}
		m.PriceYes = amm.Price(m.SharesYes, m.SharesNo)
		m.PriceNo = amm.Price(m.SharesNo, m.SharesYes)
		m.UpdatedAt = time.Now().UTC()
		pos.UpdatedAt = m.UpdatedAt

		if err := s.Positions().Upsert(ctx, pos); err != nil {
			return fmt.Errorf("persist position: %w", err)
		}
		if err := s.Markets().Update(ctx, m); err != nil {
			return fmt.Errorf("persist market %d: %w", marketID, err)
		}

		if !payout.IsZero() {
			if err := e.ledger.Transfer(ctx, domain.Transfer{
				MarketID:  marketID,
				Recipient: seller,
				Amount:    payout,
				Reason:    domain.TransferSaleProceeds,
			}); err != nil {
				return fmt.Errorf("disburse sale proceeds: %w", err)
			}
		}

		res = SellResult{
			MarketID:     marketID,
			Outcome:      o,
			SharesSold:   amount,
			USDCReceived: payout,
			PriceYes:     m.PriceYes,
			PriceNo:      m.PriceNo,
		}
		return nil
	})
	if err != nil {
		return SellResult{}, fmt.Errorf("engine: %w", err)
	}

	e.cachePrices(ctx, marketID, res.PriceYes, res.PriceNo)
	e.publish(ctx, domain.EventSharesSold, marketID, map[string]string{
		"outcome":       string(o),
		"shares_sold":   res.SharesSold.Dec(),
		"usdc_received": res.USDCReceived.Dec(),
		"price_yes":     res.PriceYes.Dec(),
		"price_no":      res.PriceNo.Dec(),
	})

	e.logger.InfoContext(ctx, "shares sold",
		slog.Uint64("market_id", marketID),
		slog.String("seller", string(seller)),
		slog.String("outcome", string(o)),
		slog.String("shares_sold", amount.Dec()),
		slog.String("usdc_received", res.USDCReceived.Dec()),
	)
	return res, nil
}

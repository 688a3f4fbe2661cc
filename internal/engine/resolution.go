package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/holiman/uint256"

	"github.com/truthmarkets/marketd/internal/domain"
)

// ResolveResult is the descriptor returned by ResolveMarket.
type ResolveResult struct {
	MarketID       uint64
	WinningOutcome domain.Outcome
	Transfers      []domain.Transfer
	TotalPaid      *uint256.Int
}

// ResolveMarket freezes a market and settles it: every holder is paid their
// balance in the winning outcome, every liquidity provider is returned their
// contributed liquidity plus a pro-rata share of accumulated fees. Only the
// market creator may resolve, and only once. All disbursements go through
// the ledger; a failed transfer aborts the whole resolution.
func (e *Engine) ResolveMarket(ctx context.Context, marketID uint64, caller domain.Address, winningOutcome string) (ResolveResult, error) {
	o, err := domain.ParseOutcome(winningOutcome)
	if err != nil {
		return ResolveResult{}, fmt.Errorf("engine: resolve market: %w", err)
	}

	var res ResolveResult
	err = e.store.WithinTx(ctx, func(s domain.Store) error {
		m, err := s.Markets().Get(ctx, marketID)
		if err != nil {
			return fmt.Errorf("load market %d: %w", marketID, err)
		}
		if m.Resolved {
			return fmt.Errorf("resolve market %d: %w", marketID, domain.ErrMarketResolved)
		}
		if m.Creator != caller {
			return fmt.Errorf("resolve market %d: only the creator may resolve: %w", marketID, domain.ErrUnauthorized)
		}

		m.Resolved = true
		m.WinningOutcome = &o
		m.UpdatedAt = time.Now().UTC()
		if err := s.Markets().Update(ctx, m); err != nil {
			return fmt.Errorf("persist market %d: %w", marketID, err)
		}

		total := uint256.NewInt(0)
		var transfers []domain.Transfer

		pay := func(recipient domain.Address, amount *uint256.Int, reason domain.TransferReason) error {
			if amount.IsZero() {
				return nil
			}
			t := domain.Transfer{
				MarketID:  marketID,
				Recipient: recipient,
				Amount:    amount,
				Reason:    reason,
			}
			if err := e.ledger.Transfer(ctx, t); err != nil {
				return fmt.Errorf("disburse %s to %s: %w", reason, recipient, err)
			}
			transfers = append(transfers, t)
			total.Add(total, amount)
			return nil
		}

		// Winning-side balances, ascending holder order.
		positions, err := s.Positions().ListByMarket(ctx, marketID)
		if err != nil {
			return fmt.Errorf("list positions: %w", err)
		}
		for _, pos := range positions {
			if err := pay(pos.Holder, pos.Balance(o), domain.TransferWinningPayout); err != nil {
				return err
			}
		}

		// Liquidity returns plus pro-rata fee shares.
		providers, err := s.Providers().ListByMarket(ctx, marketID)
		if err != nil {
			return fmt.Errorf("list providers: %w", err)
		}
		for _, lp := range providers {
			if err := pay(lp.Provider, lp.ContributedLiquidity, domain.TransferLiquidityReturn); err != nil {
				return err
			}
			if !m.FeesCollected.IsZero() && !m.TotalLiquidity.IsZero() {
				feeShare := new(uint256.Int).Mul(m.FeesCollected, lp.ContributedLiquidity)
				feeShare.Div(feeShare, m.TotalLiquidity)
				if err := pay(lp.Provider, feeShare, domain.TransferFeeShare); err != nil {
					return err
				}
			}
		}

		res = ResolveResult{
			MarketID:       marketID,
			WinningOutcome: o,
			Transfers:      transfers,
			TotalPaid:      total,
		}
		return nil
	})
	if err != nil {
		return ResolveResult{}, fmt.Errorf("engine: %w", err)
	}

	if e.archiver != nil {
		report := domain.SettlementReport{
			MarketID:       marketID,
			WinningOutcome: o,
			ResolvedAt:     time.Now().UTC(),
			Transfers:      res.Transfers,
		}
		if err := e.archiver.ArchiveSettlement(ctx, report); err != nil {
			e.logger.WarnContext(ctx, "settlement report archive failed",
				slog.Uint64("market_id", marketID),
				slog.String("error", err.Error()),
			)
		}
	}

	e.publish(ctx, domain.EventMarketResolved, marketID, map[string]string{
		"winning_outcome": string(o),
		"total_paid":      res.TotalPaid.Dec(),
	})

	e.logger.InfoContext(ctx, "market resolved",
		slog.Uint64("market_id", marketID),
		slog.String("winning_outcome", string(o)),
		slog.Int("transfers", len(res.Transfers)),
		slog.String("total_paid", res.TotalPaid.Dec()),
	)
	return res, nil
}

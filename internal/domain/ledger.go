package domain

import (
	"context"
	"time"

	"github.com/holiman/uint256"
)

// TransferReason classifies why value is being moved to a recipient.
type TransferReason string

const (
	TransferLiquidityWithdrawal TransferReason = "liquidity_withdrawal"
	TransferSaleProceeds        TransferReason = "sale_proceeds"
	TransferWinningPayout       TransferReason = "winning_payout"
	TransferLiquidityReturn     TransferReason = "liquidity_return"
	TransferFeeShare            TransferReason = "fee_share"
)

// Transfer is one computed disbursement handed to the settlement layer.
type Transfer struct {
	ID        string
	MarketID  uint64
	Recipient Address
	Amount    *uint256.Int
	Reason    TransferReason
	CreatedAt time.Time
}

// Ledger is the external settlement collaborator. The engines compute
// amounts and call Transfer; actually moving funds is outside this system.
// A failed transfer aborts the surrounding operation.
type Ledger interface {
	Transfer(ctx context.Context, t Transfer) error
}

// SettlementReport is the full payout breakdown of one resolved market.
type SettlementReport struct {
	MarketID       uint64
	WinningOutcome Outcome
	ResolvedAt     time.Time
	Transfers      []Transfer
}

// SettlementArchiver persists settlement reports to long-term storage.
type SettlementArchiver interface {
	ArchiveSettlement(ctx context.Context, report SettlementReport) error
}

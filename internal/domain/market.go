package domain

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"
)

// Outcome is one side of a binary market.
type Outcome string

const (
	OutcomeYes Outcome = "YES"
	OutcomeNo  Outcome = "NO"
)

// ParseOutcome validates an outcome literal. Anything other than the exact
// strings "YES" and "NO" is rejected.
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomeYes, OutcomeNo:
		return Outcome(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOutcome, s)
	}
}

// Opposite returns the other side of the binary pair.
func (o Outcome) Opposite() Outcome {
	if o == OutcomeYes {
		return OutcomeNo
	}
	return OutcomeYes
}

// Address identifies a market participant. Addresses are supplied by the
// dispatch layer, which has already authenticated and normalized them.
type Address string

// Market is one prediction question with its two AMM reserve pools.
//
// SharesYes/SharesNo are the pool reserves, TotalLiquidity the cumulative net
// LP contribution used as the basis for proportional accounting.
// TotalLiquidityShares is recorded once at creation (shares_yes * shares_no)
// and never recomputed. PriceYes/PriceNo are derived from the pools after
// every mutation; they are stored for read paths but the pools are the truth.
type Market struct {
	ID                   uint64
	Creator              Address
	Description          string
	SharesYes            *uint256.Int
	SharesNo             *uint256.Int
	TotalLiquidity       *uint256.Int
	TotalLiquidityShares *uint256.Int
	FeesCollected        *uint256.Int
	FeeBps               uint32
	Resolved             bool
	WinningOutcome       *Outcome
	PriceYes             *uint256.Int
	PriceNo              *uint256.Int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Clone returns a deep copy so stores can hand out markets without sharing
// the underlying big-integer words with callers.
func (m Market) Clone() Market {
	c := m
	c.SharesYes = uint256.NewInt(0).Set(m.SharesYes)
	c.SharesNo = uint256.NewInt(0).Set(m.SharesNo)
	c.TotalLiquidity = uint256.NewInt(0).Set(m.TotalLiquidity)
	c.TotalLiquidityShares = uint256.NewInt(0).Set(m.TotalLiquidityShares)
	c.FeesCollected = uint256.NewInt(0).Set(m.FeesCollected)
	c.PriceYes = uint256.NewInt(0).Set(m.PriceYes)
	c.PriceNo = uint256.NewInt(0).Set(m.PriceNo)
	if m.WinningOutcome != nil {
		w := *m.WinningOutcome
		c.WinningOutcome = &w
	}
	return c
}

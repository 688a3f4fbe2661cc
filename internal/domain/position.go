package domain

import (
	"time"

	"github.com/holiman/uint256"
)

// Position holds one participant's outstanding outcome shares in a market.
// Records are created lazily on first trade and never deleted; balances may
// reach zero.
type Position struct {
	MarketID  uint64
	Holder    Address
	SharesYes *uint256.Int
	SharesNo  *uint256.Int
	UpdatedAt time.Time
}

// NewPosition returns a zero-valued position for the given key.
func NewPosition(marketID uint64, holder Address) Position {
	return Position{
		MarketID:  marketID,
		Holder:    holder,
		SharesYes: uint256.NewInt(0),
		SharesNo:  uint256.NewInt(0),
	}
}

// Balance returns the share balance for one outcome.
func (p Position) Balance(o Outcome) *uint256.Int {
	if o == OutcomeYes {
		return p.SharesYes
	}
	return p.SharesNo
}

// Credit adds shares to one outcome balance.
func (p *Position) Credit(o Outcome, amount *uint256.Int) {
	if o == OutcomeYes {
		p.SharesYes = uint256.NewInt(0).Add(p.SharesYes, amount)
	} else {
		p.SharesNo = uint256.NewInt(0).Add(p.SharesNo, amount)
	}
}

// Debit removes shares from one outcome balance. It returns
// ErrInsufficientShares when the balance is smaller than amount.
func (p *Position) Debit(o Outcome, amount *uint256.Int) error {
	bal := p.Balance(o)
	if bal.Lt(amount) {
		return ErrInsufficientShares
	}
	if o == OutcomeYes {
		p.SharesYes = uint256.NewInt(0).Sub(p.SharesYes, amount)
	} else {
		p.SharesNo = uint256.NewInt(0).Sub(p.SharesNo, amount)
	}
	return nil
}

// Clone returns a deep copy of the position.
func (p Position) Clone() Position {
	c := p
	c.SharesYes = uint256.NewInt(0).Set(p.SharesYes)
	c.SharesNo = uint256.NewInt(0).Set(p.SharesNo)
	return c
}

// LiquidityProvider tracks one participant's net liquidity contribution to a
// market. ContributedLiquidity is the numerator for proportional withdrawal
// and for the pro-rata fee distribution at resolution.
type LiquidityProvider struct {
	MarketID             uint64
	Provider             Address
	ContributedLiquidity *uint256.Int
	UpdatedAt            time.Time
}

// NewLiquidityProvider returns a zero-valued provider record for the key.
func NewLiquidityProvider(marketID uint64, provider Address) LiquidityProvider {
	return LiquidityProvider{
		MarketID:             marketID,
		Provider:             provider,
		ContributedLiquidity: uint256.NewInt(0),
	}
}

// Clone returns a deep copy of the provider record.
func (lp LiquidityProvider) Clone() LiquidityProvider {
	c := lp
	c.ContributedLiquidity = uint256.NewInt(0).Set(lp.ContributedLiquidity)
	return c
}

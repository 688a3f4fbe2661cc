package domain

import "time"

// Event channel names for the bus.
const (
	ChannelMarkets = "markets"
	ChannelPrices  = "prices"
)

// Event types published after successful mutations.
const (
	EventMarketCreated    = "market_created"
	EventLiquidityAdded   = "liquidity_added"
	EventLiquidityRemoved = "liquidity_removed"
	EventSharesBought     = "shares_bought"
	EventSharesSold       = "shares_sold"
	EventMarketResolved   = "market_resolved"
)

// Event is the result descriptor broadcast to observers after a successful
// state transition. Attrs carries the operation's named attributes as
// decimal strings.
type Event struct {
	Type     string            `json:"type"`
	MarketID uint64            `json:"market_id"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	At       time.Time         `json:"at"`
}

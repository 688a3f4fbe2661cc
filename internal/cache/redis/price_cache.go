package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/holiman/uint256"
	"github.com/redis/go-redis/v9"

	"github.com/truthmarkets/marketd/internal/domain"
)

// priceTTL bounds staleness when an invalidation is lost; the engine
// rewrites the entry on every committed mutation anyway.
const priceTTL = 10 * time.Minute

// PriceCache implements domain.PriceCache using Redis hashes. Each market's
// derived prices live at key "market:{id}:prices" with fields "yes" and "no"
// holding the scaled-integer decimal strings.
type PriceCache struct {
	rdb *redis.Client
}

// NewPriceCache creates a PriceCache backed by the given Client.
func NewPriceCache(c *Client) *PriceCache {
	return &PriceCache{rdb: c.Underlying()}
}

func priceKey(marketID uint64) string {
	return "market:" + strconv.FormatUint(marketID, 10) + ":prices"
}

// SetPrices stores both derived prices for a market.
func (pc *PriceCache) SetPrices(ctx context.Context, marketID uint64, priceYes, priceNo *uint256.Int) error {
	key := priceKey(marketID)
	fields := map[string]interface{}{
		"yes": priceYes.Dec(),
		"no":  priceNo.Dec(),
	}
	pipe := pc.rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, priceTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set prices for market %d: %w", marketID, err)
	}
	return nil
}

// GetPrices retrieves both derived prices for a market. It returns
// domain.ErrNotFound when the key does not exist.
func (pc *PriceCache) GetPrices(ctx context.Context, marketID uint64) (*uint256.Int, *uint256.Int, error) {
	vals, err := pc.rdb.HGetAll(ctx, priceKey(marketID)).Result()
	if err != nil {
		return nil, nil, fmt.Errorf("redis: get prices for market %d: %w", marketID, err)
	}
	if len(vals) == 0 {
		return nil, nil, domain.ErrNotFound
	}

	yes, ok := vals["yes"]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	no, ok := vals["no"]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}

	priceYes, err := uint256.FromDecimal(yes)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: parse cached yes price for market %d: %w", marketID, err)
	}
	priceNo, err := uint256.FromDecimal(no)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: parse cached no price for market %d: %w", marketID, err)
	}
	return priceYes, priceNo, nil
}

// Invalidate drops the cached entry for a market.
func (pc *PriceCache) Invalidate(ctx context.Context, marketID uint64) error {
	if err := pc.rdb.Del(ctx, priceKey(marketID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate prices for market %d: %w", marketID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.PriceCache = (*PriceCache)(nil)

package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrZeroAmount            = errors.New("amount must be greater than zero")
	ErrInvalidOutcome        = errors.New("invalid outcome")
	ErrMarketResolved        = errors.New("market is already resolved")
	ErrInsufficientShares    = errors.New("insufficient shares to sell")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity to remove")
)

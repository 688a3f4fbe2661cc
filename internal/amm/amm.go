// Package amm implements the constant-product market-maker arithmetic for
// binary-outcome markets: derived prices, trade quotes, and the liquidity
// rebalancing rule. All functions are pure and operate on non-negative
// 128-bit quantities; callers own input validation.
package amm

import "github.com/holiman/uint256"

// DecimalPrecision is the fixed-point scaling constant. Prices are scaled so
// that a probability of 1.0 equals DecimalPrecision.
const DecimalPrecision = 100_000_000

var precision = uint256.NewInt(DecimalPrecision)

// Price returns the price attributed to pool given the opposing pool:
//
//	price = other * DecimalPrecision / (pool + other)
//
// A larger opposing reserve implies a higher probability-of-win price for
// this side. Returns zero when both pools are empty.
func Price(pool, other *uint256.Int) *uint256.Int {
	total := new(uint256.Int).Add(pool, other)
	if total.IsZero() {
		return uint256.NewInt(0)
	}
	num := new(uint256.Int).Mul(other, precision)
	return num.Div(num, total)
}

// Buy quotes a purchase of the outcome backed by poolBought. The input
// amount is added to both reserves, then the bought side is shrunk back onto
// the pre-trade constant product; the difference between the naive and the
// rebalanced bought reserve is what the buyer receives.
//
// Returns the new reserves and the shares bought.
func Buy(poolBought, poolOther, amount *uint256.Int) (newBought, newOther, sharesBought *uint256.Int) {
	k := new(uint256.Int).Mul(poolBought, poolOther)

	newOther = new(uint256.Int).Add(poolOther, amount)
	newBought = new(uint256.Int).Div(k, newOther)

	naive := new(uint256.Int).Add(poolBought, amount)
	sharesBought = naive.Sub(naive, newBought)
	return newBought, newOther, sharesBought
}

// Sell quotes a sale of amount shares of the outcome backed by poolSold. The
// sold shares return to their reserve and the opposite reserve is recomputed
// from the pre-trade constant product; the value released from the opposite
// reserve is the seller's payout.
//
// Returns the new reserves and the payout.
func Sell(poolSold, poolOther, amount *uint256.Int) (newSold, newOther, payout *uint256.Int) {
	k := new(uint256.Int).Mul(poolSold, poolOther)

	newSold = new(uint256.Int).Add(poolSold, amount)
	newOther = new(uint256.Int).Div(k, newSold)

	payout = new(uint256.Int).Sub(poolOther, newOther)
	return newSold, newOther, payout
}

// AddLiquidity applies a liquidity deposit to the reserves.
//
// Balanced reserves grow by amount on both sides and nothing is minted. With
// imbalanced reserves, the side that would end up with the larger reserve is
// scaled back so the price ratio is preserved, and the excess created on the
// untouched side by the naive addition is minted to the depositor as outcome
// shares. Exactly one of mintYes/mintNo is non-zero per call.
func AddLiquidity(poolYes, poolNo, amount *uint256.Int) (newYes, newNo, mintYes, mintNo *uint256.Int) {
	mintYes = uint256.NewInt(0)
	mintNo = uint256.NewInt(0)

	if poolYes.Eq(poolNo) {
		newYes = new(uint256.Int).Add(poolYes, amount)
		newNo = new(uint256.Int).Add(poolNo, amount)
		return newYes, newNo, mintYes, mintNo
	}

	priceYes := Price(poolYes, poolNo)
	priceNo := Price(poolNo, poolYes)

	tempYes := new(uint256.Int).Add(poolYes, amount)
	tempNo := new(uint256.Int).Add(poolNo, amount)

	if poolYes.Lt(poolNo) {
		// YES is the pricier side; hold the ratio by scaling YES off the
		// grown NO reserve and mint the surplus YES to the depositor.
		newYes = new(uint256.Int).Mul(tempNo, priceNo)
		newYes.Div(newYes, priceYes)
		newNo = tempNo
		if tempYes.Gt(newYes) {
			mintYes = new(uint256.Int).Sub(tempYes, newYes)
		}
		return newYes, newNo, mintYes, mintNo
	}

	newNo = new(uint256.Int).Mul(tempYes, priceYes)
	newNo.Div(newNo, priceNo)
	newYes = tempYes
	if tempNo.Gt(newNo) {
		mintNo = new(uint256.Int).Sub(tempNo, newNo)
	}
	return newYes, newNo, mintYes, mintNo
}

// RemoveLiquidity computes a proportional withdrawal: each reserve gives up
// amount/totalLiquidity of itself. Withdrawing the full amount a depositor
// added to an untraded market therefore restores the reserves exactly.
//
// Returns the per-pool withdrawal amounts.
func RemoveLiquidity(poolYes, poolNo, totalLiquidity, amount *uint256.Int) (withdrawYes, withdrawNo *uint256.Int) {
	if totalLiquidity.IsZero() {
		return uint256.NewInt(0), uint256.NewInt(0)
	}

	withdrawYes = new(uint256.Int).Mul(amount, poolYes)
	withdrawYes.Div(withdrawYes, totalLiquidity)

	withdrawNo = new(uint256.Int).Mul(amount, poolNo)
	withdrawNo.Div(withdrawNo, totalLiquidity)
	return withdrawYes, withdrawNo
}

// Fee returns amount * feeBps / 10_000.
func Fee(amount *uint256.Int, feeBps uint32) *uint256.Int {
	if feeBps == 0 {
		return uint256.NewInt(0)
	}
	fee := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(feeBps)))
	return fee.Div(fee, uint256.NewInt(10_000))
}

package amm

import (
	"testing"

	"github.com/holiman/uint256"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestPrice(t *testing.T) {
	t.Run("equal pools split evenly", func(t *testing.T) {
		p := Price(u(1000), u(1000))
		if !p.Eq(u(50_000_000)) {
			t.Errorf("Price(1000,1000) = %s, want 50000000", p.Dec())
		}
	})

	t.Run("empty pools price at zero", func(t *testing.T) {
		p := Price(u(0), u(0))
		if !p.IsZero() {
			t.Errorf("Price(0,0) = %s, want 0", p.Dec())
		}
	})

	t.Run("larger opposing pool raises the price", func(t *testing.T) {
		p := Price(u(769), u(1300))
		if !p.Eq(u(62_832_286)) {
			t.Errorf("Price(769,1300) = %s, want 62832286", p.Dec())
		}
	})

	t.Run("prices sum to precision within rounding", func(t *testing.T) {
		cases := [][2]uint64{{1000, 1000}, {769, 1300}, {1, 999999}, {12345, 678}}
		for _, c := range cases {
			sum := new(uint256.Int).Add(Price(u(c[0]), u(c[1])), Price(u(c[1]), u(c[0])))
			diff := new(uint256.Int).Sub(u(DecimalPrecision), sum)
			if diff.Gt(u(1)) {
				t.Errorf("Price sum for (%d,%d) off by %s", c[0], c[1], diff.Dec())
			}
		}
	})
}

func TestBuy(t *testing.T) {
	// Worked example: buy 300 YES against balanced pools of 1000.
	newYes, newNo, bought := Buy(u(1000), u(1000), u(300))

	if !newYes.Eq(u(769)) {
		t.Errorf("newYes = %s, want 769", newYes.Dec())
	}
	if !newNo.Eq(u(1300)) {
		t.Errorf("newNo = %s, want 1300", newNo.Dec())
	}
	if !bought.Eq(u(531)) {
		t.Errorf("bought = %s, want 531", bought.Dec())
	}
}

func TestBuyNeverUnderflows(t *testing.T) {
	// A buy much larger than the reserves still yields a valid quote.
	newBought, newOther, bought := Buy(u(10), u(10), u(1_000_000))
	if newBought.Gt(u(10)) {
		t.Errorf("bought-side reserve grew: %s", newBought.Dec())
	}
	if !newOther.Eq(u(1_000_010)) {
		t.Errorf("newOther = %s, want 1000010", newOther.Dec())
	}
	if bought.IsZero() {
		t.Error("expected non-zero shares bought")
	}
}

func TestSell(t *testing.T) {
	// Selling the position from the buy example releases reserve from the
	// opposite pool.
	newYes, newNo, payout := Sell(u(769), u(1300), u(531))

	if !newYes.Eq(u(1300)) {
		t.Errorf("newYes = %s, want 1300", newYes.Dec())
	}
	if !newNo.Eq(u(769)) {
		t.Errorf("newNo = %s, want 769", newNo.Dec())
	}
	if !payout.Eq(u(531)) {
		t.Errorf("payout = %s, want 531", payout.Dec())
	}

	// The opposite pool only ever shrinks, so the payout cannot underflow.
	if newNo.Gt(u(1300)) {
		t.Error("opposite pool grew on sell")
	}
}

func TestAddLiquidityBalanced(t *testing.T) {
	newYes, newNo, mintYes, mintNo := AddLiquidity(u(1000), u(1000), u(500))

	if !newYes.Eq(u(1500)) || !newNo.Eq(u(1500)) {
		t.Errorf("pools = (%s,%s), want (1500,1500)", newYes.Dec(), newNo.Dec())
	}
	if !mintYes.IsZero() || !mintNo.IsZero() {
		t.Errorf("minted (%s,%s), want nothing on balanced pools", mintYes.Dec(), mintNo.Dec())
	}
}

func TestAddLiquidityImbalanced(t *testing.T) {
	// Pools after the worked buy: YES=769, NO=1300. Deposit 1000.
	newYes, newNo, mintYes, mintNo := AddLiquidity(u(769), u(1300), u(1000))

	if !newNo.Eq(u(2300)) {
		t.Errorf("newNo = %s, want 2300", newNo.Dec())
	}
	// newYes = 2300 * priceNo / priceYes = 2300*37167713/62832286.
	if !newYes.Eq(u(1360)) {
		t.Errorf("newYes = %s, want 1360", newYes.Dec())
	}
	// Surplus of the naive YES growth goes to the depositor.
	if !mintYes.Eq(u(409)) {
		t.Errorf("mintYes = %s, want 409", mintYes.Dec())
	}
	if !mintNo.IsZero() {
		t.Errorf("mintNo = %s, want 0", mintNo.Dec())
	}
}

func TestAddLiquidityImbalancedMintsNoSide(t *testing.T) {
	// Mirror case: NO is the pricier (smaller) side.
	newYes, newNo, mintYes, mintNo := AddLiquidity(u(1300), u(769), u(1000))

	if !newYes.Eq(u(2300)) {
		t.Errorf("newYes = %s, want 2300", newYes.Dec())
	}
	if !newNo.Eq(u(1360)) {
		t.Errorf("newNo = %s, want 1360", newNo.Dec())
	}
	if !mintNo.Eq(u(409)) {
		t.Errorf("mintNo = %s, want 409", mintNo.Dec())
	}
	if !mintYes.IsZero() {
		t.Errorf("mintYes = %s, want 0", mintYes.Dec())
	}
}

func TestRemoveLiquidity(t *testing.T) {
	t.Run("withdrawal is the amount's fraction of each pool", func(t *testing.T) {
		wYes, wNo := RemoveLiquidity(u(1500), u(1500), u(1500), u(500))
		if !wYes.Eq(u(500)) || !wNo.Eq(u(500)) {
			t.Errorf("withdraw = (%s,%s), want (500,500)", wYes.Dec(), wNo.Dec())
		}
	})

	t.Run("partial contributor cannot drain the pools", func(t *testing.T) {
		// A provider who holds 500 of 1500 total liquidity withdraws a third
		// of each reserve, never the whole thing.
		wYes, wNo := RemoveLiquidity(u(1500), u(1500), u(1500), u(500))
		if wYes.Eq(u(1500)) || wNo.Eq(u(1500)) {
			t.Fatalf("withdraw = (%s,%s) drained a pool", wYes.Dec(), wNo.Dec())
		}
		remYes := new(uint256.Int).Sub(u(1500), wYes)
		remNo := new(uint256.Int).Sub(u(1500), wNo)
		if !remYes.Eq(u(1000)) || !remNo.Eq(u(1000)) {
			t.Errorf("remaining = (%s,%s), want (1000,1000)", remYes.Dec(), remNo.Dec())
		}
	})

	t.Run("withdrawal tracks pool fractions on imbalanced pools", func(t *testing.T) {
		wYes, wNo := RemoveLiquidity(u(1360), u(2300), u(2000), u(1000))
		// wYes = 1000*1360/2000, wNo = 1000*2300/2000.
		if !wYes.Eq(u(680)) || !wNo.Eq(u(1150)) {
			t.Errorf("withdraw = (%s,%s), want (680,1150)", wYes.Dec(), wNo.Dec())
		}
	})

	t.Run("zero total liquidity withdraws nothing", func(t *testing.T) {
		wYes, wNo := RemoveLiquidity(u(10), u(10), u(0), u(5))
		if !wYes.IsZero() || !wNo.IsZero() {
			t.Error("expected zero withdrawal")
		}
	})
}

func TestFee(t *testing.T) {
	if f := Fee(u(300), 0); !f.IsZero() {
		t.Errorf("Fee(300, 0) = %s, want 0", f.Dec())
	}
	if f := Fee(u(300), 200); !f.Eq(u(6)) {
		t.Errorf("Fee(300, 200bps) = %s, want 6", f.Dec())
	}
	if f := Fee(u(49), 200); !f.IsZero() {
		t.Errorf("Fee(49, 200bps) = %s, want 0", f.Dec())
	}
}

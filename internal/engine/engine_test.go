package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/truthmarkets/marketd/internal/amm"
	"github.com/truthmarkets/marketd/internal/domain"
	"github.com/truthmarkets/marketd/internal/ledger"
	"github.com/truthmarkets/marketd/internal/store/memory"
)

const (
	creator  = domain.Address("0x1111111111111111111111111111111111111111")
	provider = domain.Address("0x2222222222222222222222222222222222222222")
	trader   = domain.Address("0x3333333333333333333333333333333333333333")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func newTestEngine(t *testing.T, feeBps uint32) (*Engine, *memory.Store, *ledger.Recording) {
	t.Helper()
	store := memory.New()
	rec := ledger.NewRecording()
	e := New(Config{FeeBps: feeBps}, store, rec, nil, nil, nil, nil)
	return e, store, rec
}

func createMarket(t *testing.T, e *Engine, liquidity uint64) uint64 {
	t.Helper()
	res, err := e.CreateMarket(context.Background(), creator, "Will it rain tomorrow?", u(liquidity))
	if err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}
	return res.MarketID
}

func mustMarket(t *testing.T, e *Engine, id uint64) domain.Market {
	t.Helper()
	m, err := e.GetMarket(context.Background(), id)
	if err != nil {
		t.Fatalf("GetMarket(%d): %v", id, err)
	}
	return m
}

// checkPriceSum asserts the fundamental invariant: derived prices sum to the
// precision constant within one unit of rounding loss.
func checkPriceSum(t *testing.T, m domain.Market) {
	t.Helper()
	sum := new(uint256.Int).Add(m.PriceYes, m.PriceNo)
	diff := new(uint256.Int).Sub(u(amm.DecimalPrecision), sum)
	if diff.Gt(u(1)) {
		t.Errorf("price sum %s is off precision by %s", sum.Dec(), diff.Dec())
	}
}

func TestCreateMarket(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()

	id := createMarket(t, e, 1000)
	if id != 1 {
		t.Fatalf("first market id = %d, want 1", id)
	}

	m := mustMarket(t, e, id)
	if !m.SharesYes.Eq(u(1000)) || !m.SharesNo.Eq(u(1000)) {
		t.Errorf("pools = (%s,%s), want (1000,1000)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}
	if !m.PriceYes.Eq(u(50_000_000)) || !m.PriceNo.Eq(u(50_000_000)) {
		t.Errorf("prices = (%s,%s), want (50000000,50000000)", m.PriceYes.Dec(), m.PriceNo.Dec())
	}
	if !m.TotalLiquidity.Eq(u(1000)) {
		t.Errorf("total liquidity = %s, want 1000", m.TotalLiquidity.Dec())
	}
	if !m.TotalLiquidityShares.Eq(u(1_000_000)) {
		t.Errorf("total liquidity shares = %s, want 1000000", m.TotalLiquidityShares.Dec())
	}
	if m.Resolved || m.WinningOutcome != nil {
		t.Error("new market must be unresolved with no winning outcome")
	}
	checkPriceSum(t, m)

	// Ids are sequential and never reused.
	if id2 := createMarket(t, e, 500); id2 != 2 {
		t.Errorf("second market id = %d, want 2", id2)
	}
	if count, err := e.GetCount(ctx); err != nil || count != 2 {
		t.Errorf("GetCount = %d, %v, want 2", count, err)
	}

	// The creator is not recorded as a liquidity provider.
	_, err := e.store.Providers().Get(ctx, id, creator)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("creator provider record err = %v, want ErrNotFound", err)
	}
}

func TestCreateMarketZeroLiquidity(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)

	_, err := e.CreateMarket(context.Background(), creator, "empty", u(0))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if count, _ := e.GetCount(context.Background()); count != 0 {
		t.Errorf("counter advanced to %d on failed creation", count)
	}
}

func TestAddLiquidityBalanced(t *testing.T) {
	e, store, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	res, err := e.AddLiquidity(ctx, id, provider, u(500))
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if !res.LiquidityAdded.Eq(u(500)) {
		t.Errorf("liquidity added = %s, want 500", res.LiquidityAdded.Dec())
	}
	if !res.MintedYes.IsZero() || !res.MintedNo.IsZero() {
		t.Errorf("minted (%s,%s) on balanced pools, want none", res.MintedYes.Dec(), res.MintedNo.Dec())
	}

	m := mustMarket(t, e, id)
	if !m.SharesYes.Eq(u(1500)) || !m.SharesNo.Eq(u(1500)) {
		t.Errorf("pools = (%s,%s), want (1500,1500)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}
	if !m.TotalLiquidity.Eq(u(1500)) {
		t.Errorf("total liquidity = %s, want 1500", m.TotalLiquidity.Dec())
	}
	checkPriceSum(t, m)

	lp, err := store.Providers().Get(ctx, id, provider)
	if err != nil {
		t.Fatalf("provider record: %v", err)
	}
	if !lp.ContributedLiquidity.Eq(u(500)) {
		t.Errorf("contributed = %s, want 500", lp.ContributedLiquidity.Dec())
	}

	// No outcome shares were minted to the provider.
	if _, err := store.Positions().Get(ctx, id, provider); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("position err = %v, want ErrNotFound", err)
	}
}

func TestAddLiquidityImbalanced(t *testing.T) {
	e, store, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.BuyShares(ctx, id, trader, "YES", u(300)); err != nil {
		t.Fatalf("BuyShares: %v", err)
	}

	res, err := e.AddLiquidity(ctx, id, provider, u(1000))
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	m := mustMarket(t, e, id)
	if !m.SharesYes.Eq(u(1360)) || !m.SharesNo.Eq(u(2300)) {
		t.Errorf("pools = (%s,%s), want (1360,2300)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}
	if !m.TotalLiquidity.Eq(u(2000)) {
		t.Errorf("total liquidity = %s, want 2000", m.TotalLiquidity.Dec())
	}
	checkPriceSum(t, m)

	// The surplus of the naive YES growth was minted to the provider, and
	// only on the YES side.
	if !res.MintedYes.Eq(u(409)) || !res.MintedNo.IsZero() {
		t.Errorf("minted = (%s,%s), want (409,0)", res.MintedYes.Dec(), res.MintedNo.Dec())
	}
	pos, err := store.Positions().Get(ctx, id, provider)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if !pos.SharesYes.Eq(u(409)) || !pos.SharesNo.IsZero() {
		t.Errorf("position = (%s,%s), want (409,0)", pos.SharesYes.Dec(), pos.SharesNo.Dec())
	}
}

func TestAddLiquidityValidation(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.AddLiquidity(ctx, id, provider, u(0)); !errors.Is(err, domain.ErrZeroAmount) {
		t.Errorf("zero amount err = %v, want ErrZeroAmount", err)
	}
	if _, err := e.AddLiquidity(ctx, 99, provider, u(10)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing market err = %v, want ErrNotFound", err)
	}

	if _, err := e.ResolveMarket(ctx, id, creator, "YES"); err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}
	if _, err := e.AddLiquidity(ctx, id, provider, u(10)); !errors.Is(err, domain.ErrMarketResolved) {
		t.Errorf("resolved market err = %v, want ErrMarketResolved", err)
	}
}

func TestBuyShares(t *testing.T) {
	e, store, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	res, err := e.BuyShares(ctx, id, trader, "YES", u(300))
	if err != nil {
		t.Fatalf("BuyShares: %v", err)
	}
	if !res.SharesBought.Eq(u(531)) {
		t.Errorf("shares bought = %s, want 531", res.SharesBought.Dec())
	}

	m := mustMarket(t, e, id)
	if !m.SharesYes.Eq(u(769)) || !m.SharesNo.Eq(u(1300)) {
		t.Errorf("pools = (%s,%s), want (769,1300)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}
	if !m.PriceYes.Eq(u(62_832_286)) {
		t.Errorf("price yes = %s, want 62832286", m.PriceYes.Dec())
	}
	if !m.PriceNo.Eq(u(37_167_713)) {
		t.Errorf("price no = %s, want 37167713", m.PriceNo.Dec())
	}
	checkPriceSum(t, m)

	pos, err := store.Positions().Get(ctx, id, trader)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if !pos.SharesYes.Eq(u(531)) || !pos.SharesNo.IsZero() {
		t.Errorf("position = (%s,%s), want (531,0)", pos.SharesYes.Dec(), pos.SharesNo.Dec())
	}
}

func TestBuySharesNoMirrors(t *testing.T) {
	e, store, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	res, err := e.BuyShares(ctx, id, trader, "NO", u(300))
	if err != nil {
		t.Fatalf("BuyShares: %v", err)
	}
	if !res.SharesBought.Eq(u(531)) {
		t.Errorf("shares bought = %s, want 531", res.SharesBought.Dec())
	}

	m := mustMarket(t, e, id)
	if !m.SharesNo.Eq(u(769)) || !m.SharesYes.Eq(u(1300)) {
		t.Errorf("pools = (%s,%s), want (1300,769)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}
	checkPriceSum(t, m)

	pos, _ := store.Positions().Get(ctx, id, trader)
	if !pos.SharesNo.Eq(u(531)) || !pos.SharesYes.IsZero() {
		t.Errorf("position = (%s,%s), want (0,531)", pos.SharesYes.Dec(), pos.SharesNo.Dec())
	}
}

func TestBuySharesValidation(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.BuyShares(ctx, id, trader, "MAYBE", u(10)); !errors.Is(err, domain.ErrInvalidOutcome) {
		t.Errorf("invalid outcome err = %v, want ErrInvalidOutcome", err)
	}
	if _, err := e.BuyShares(ctx, id, trader, "YES", u(0)); !errors.Is(err, domain.ErrZeroAmount) {
		t.Errorf("zero amount err = %v, want ErrZeroAmount", err)
	}

	if _, err := e.ResolveMarket(ctx, id, creator, "NO"); err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}
	if _, err := e.BuyShares(ctx, id, trader, "YES", u(10)); !errors.Is(err, domain.ErrMarketResolved) {
		t.Errorf("resolved market err = %v, want ErrMarketResolved", err)
	}
}

func TestSellShares(t *testing.T) {
	e, _, rec := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.BuyShares(ctx, id, trader, "YES", u(300)); err != nil {
		t.Fatalf("BuyShares: %v", err)
	}

	res, err := e.SellShares(ctx, id, trader, "YES", u(531))
	if err != nil {
		t.Fatalf("SellShares: %v", err)
	}
	if !res.SharesSold.Eq(u(531)) {
		t.Errorf("shares sold = %s, want 531", res.SharesSold.Dec())
	}
	if res.USDCReceived.IsZero() {
		t.Error("expected non-zero payout")
	}

	m := mustMarket(t, e, id)
	checkPriceSum(t, m)

	// The payout was handed to the settlement ledger.
	transfers := rec.ByRecipient(trader)
	if len(transfers) != 1 {
		t.Fatalf("recorded %d transfers for seller, want 1", len(transfers))
	}
	if transfers[0].Reason != domain.TransferSaleProceeds {
		t.Errorf("transfer reason = %s, want %s", transfers[0].Reason, domain.TransferSaleProceeds)
	}
	if !transfers[0].Amount.Eq(res.USDCReceived) {
		t.Errorf("transfer amount = %s, want %s", transfers[0].Amount.Dec(), res.USDCReceived.Dec())
	}
}

func TestSellSharesValidation(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	// No position at all.
	if _, err := e.SellShares(ctx, id, trader, "YES", u(10)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing position err = %v, want ErrNotFound", err)
	}

	if _, err := e.BuyShares(ctx, id, trader, "YES", u(300)); err != nil {
		t.Fatalf("BuyShares: %v", err)
	}

	// Balance too small.
	if _, err := e.SellShares(ctx, id, trader, "YES", u(1000)); !errors.Is(err, domain.ErrInsufficientShares) {
		t.Errorf("oversell err = %v, want ErrInsufficientShares", err)
	}
	// Wrong side.
	if _, err := e.SellShares(ctx, id, trader, "NO", u(10)); !errors.Is(err, domain.ErrInsufficientShares) {
		t.Errorf("wrong side err = %v, want ErrInsufficientShares", err)
	}

	// A failed sell leaves the position untouched.
	pos, err := e.GetPosition(ctx, id, trader)
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if !pos.SharesYes.Eq(u(531)) {
		t.Errorf("position after failed sells = %s, want 531", pos.SharesYes.Dec())
	}
}

func TestRemoveLiquidity(t *testing.T) {
	e, _, rec := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.AddLiquidity(ctx, id, provider, u(500)); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	res, err := e.RemoveLiquidity(ctx, id, provider, u(500))
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if !res.SharesYesWithdrawn.Eq(u(500)) || !res.SharesNoWithdrawn.Eq(u(500)) {
		t.Errorf("withdrawn = (%s,%s), want (500,500)",
			res.SharesYesWithdrawn.Dec(), res.SharesNoWithdrawn.Dec())
	}

	m := mustMarket(t, e, id)
	if !m.SharesYes.Eq(u(1000)) || !m.SharesNo.Eq(u(1000)) {
		t.Errorf("pools = (%s,%s), want (1000,1000)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}
	if !m.TotalLiquidity.Eq(u(1000)) {
		t.Errorf("total liquidity = %s, want 1000", m.TotalLiquidity.Dec())
	}
	checkPriceSum(t, m)

	transfers := rec.ByRecipient(provider)
	if len(transfers) != 1 || transfers[0].Reason != domain.TransferLiquidityWithdrawal {
		t.Fatalf("expected one withdrawal transfer, got %v", transfers)
	}
	if !transfers[0].Amount.Eq(u(500)) {
		t.Errorf("withdrawal amount = %s, want 500", transfers[0].Amount.Dec())
	}
}

func TestRemoveLiquidityValidation(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	// No contribution recorded.
	if _, err := e.RemoveLiquidity(ctx, id, provider, u(10)); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing provider err = %v, want ErrNotFound", err)
	}

	if _, err := e.AddLiquidity(ctx, id, provider, u(100)); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	// Withdrawing more than contributed fails and changes nothing.
	if _, err := e.RemoveLiquidity(ctx, id, provider, u(200)); !errors.Is(err, domain.ErrInsufficientLiquidity) {
		t.Errorf("overdraw err = %v, want ErrInsufficientLiquidity", err)
	}
	m := mustMarket(t, e, id)
	if !m.SharesYes.Eq(u(1100)) || !m.SharesNo.Eq(u(1100)) {
		t.Errorf("pools mutated by failed removal: (%s,%s)", m.SharesYes.Dec(), m.SharesNo.Dec())
	}

	if _, err := e.RemoveLiquidity(ctx, id, provider, u(0)); !errors.Is(err, domain.ErrZeroAmount) {
		t.Errorf("zero amount err = %v, want ErrZeroAmount", err)
	}
}

func TestLiquidityRoundTrip(t *testing.T) {
	// On a market untouched by trades, add followed by remove of the same
	// amount by the sole provider restores the original state.
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	before := mustMarket(t, e, id)

	if _, err := e.AddLiquidity(ctx, id, provider, u(700)); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if _, err := e.RemoveLiquidity(ctx, id, provider, u(700)); err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}

	after := mustMarket(t, e, id)
	if !after.SharesYes.Eq(before.SharesYes) || !after.SharesNo.Eq(before.SharesNo) {
		t.Errorf("pools = (%s,%s), want (%s,%s)",
			after.SharesYes.Dec(), after.SharesNo.Dec(),
			before.SharesYes.Dec(), before.SharesNo.Dec())
	}
	if !after.TotalLiquidity.Eq(before.TotalLiquidity) {
		t.Errorf("total liquidity = %s, want %s",
			after.TotalLiquidity.Dec(), before.TotalLiquidity.Dec())
	}
	checkPriceSum(t, after)
}

func TestResolveMarket(t *testing.T) {
	e, _, rec := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.AddLiquidity(ctx, id, provider, u(500)); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if _, err := e.BuyShares(ctx, id, trader, "YES", u(300)); err != nil {
		t.Fatalf("BuyShares: %v", err)
	}

	res, err := e.ResolveMarket(ctx, id, creator, "YES")
	if err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}
	if res.WinningOutcome != domain.OutcomeYes {
		t.Errorf("winning outcome = %s, want YES", res.WinningOutcome)
	}

	m := mustMarket(t, e, id)
	if !m.Resolved || m.WinningOutcome == nil || *m.WinningOutcome != domain.OutcomeYes {
		t.Error("market not latched to resolved YES")
	}

	// Trader is paid their winning balance; provider gets their liquidity
	// back. Buying 300 YES against 1500/1500 pools yields 550 shares:
	// k = 2250000, newNo = 1800, newYes = 1250, bought = 1800 - 1250.
	traderTransfers := rec.ByRecipient(trader)
	if len(traderTransfers) != 1 || !traderTransfers[0].Amount.Eq(u(550)) {
		t.Fatalf("trader payout = %v, want one transfer of 550", traderTransfers)
	}
	if traderTransfers[0].Reason != domain.TransferWinningPayout {
		t.Errorf("trader transfer reason = %s", traderTransfers[0].Reason)
	}

	provTransfers := rec.ByRecipient(provider)
	if len(provTransfers) != 1 || !provTransfers[0].Amount.Eq(u(500)) {
		t.Fatalf("provider payout = %v, want one transfer of 500", provTransfers)
	}
	if provTransfers[0].Reason != domain.TransferLiquidityReturn {
		t.Errorf("provider transfer reason = %s", provTransfers[0].Reason)
	}
}

func TestResolveMarketLoserGetsNothing(t *testing.T) {
	e, _, rec := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.BuyShares(ctx, id, trader, "YES", u(300)); err != nil {
		t.Fatalf("BuyShares: %v", err)
	}
	if _, err := e.ResolveMarket(ctx, id, creator, "NO"); err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}

	if transfers := rec.ByRecipient(trader); len(transfers) != 0 {
		t.Errorf("losing-side holder received transfers: %v", transfers)
	}
}

func TestResolveMarketAuthorization(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	if _, err := e.ResolveMarket(ctx, id, trader, "YES"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("non-creator err = %v, want ErrUnauthorized", err)
	}
	if _, err := e.ResolveMarket(ctx, id, creator, "PERHAPS"); !errors.Is(err, domain.ErrInvalidOutcome) {
		t.Errorf("invalid outcome err = %v, want ErrInvalidOutcome", err)
	}

	if _, err := e.ResolveMarket(ctx, id, creator, "YES"); err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}
	if _, err := e.ResolveMarket(ctx, id, creator, "YES"); !errors.Is(err, domain.ErrMarketResolved) {
		t.Errorf("double resolve err = %v, want ErrMarketResolved", err)
	}
}

func TestBuyWithFee(t *testing.T) {
	e, _, rec := newTestEngine(t, 200) // 2%
	ctx := context.Background()
	id := createMarket(t, e, 1000)

	res, err := e.BuyShares(ctx, id, trader, "YES", u(300))
	if err != nil {
		t.Fatalf("BuyShares: %v", err)
	}
	if !res.Fee.Eq(u(6)) {
		t.Errorf("fee = %s, want 6", res.Fee.Dec())
	}

	// Net input 294: pools become (1000*1000/1294, 1294).
	m := mustMarket(t, e, id)
	if !m.SharesNo.Eq(u(1294)) {
		t.Errorf("shares no = %s, want 1294", m.SharesNo.Dec())
	}
	if !m.SharesYes.Eq(u(772)) {
		t.Errorf("shares yes = %s, want 772", m.SharesYes.Dec())
	}
	if !m.FeesCollected.Eq(u(6)) {
		t.Errorf("fees collected = %s, want 6", m.FeesCollected.Dec())
	}
	checkPriceSum(t, m)

	// At resolution the accumulated fee goes to the sole provider pro rata.
	if _, err := e.AddLiquidity(ctx, id, provider, u(1000)); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	if _, err := e.ResolveMarket(ctx, id, creator, "NO"); err != nil {
		t.Fatalf("ResolveMarket: %v", err)
	}

	var feeShare *uint256.Int
	for _, tr := range rec.ByRecipient(provider) {
		if tr.Reason == domain.TransferFeeShare {
			feeShare = tr.Amount
		}
	}
	if feeShare == nil {
		t.Fatal("no fee share transfer recorded")
	}
	// fees * contributed / total = 6 * 1000 / 2000.
	if !feeShare.Eq(u(3)) {
		t.Errorf("fee share = %s, want 3", feeShare.Dec())
	}
}

func TestGetPositionDefaultsToZero(t *testing.T) {
	e, _, _ := newTestEngine(t, 0)
	id := createMarket(t, e, 1000)

	pos, err := e.GetPosition(context.Background(), id, trader)
	if err != nil {
		t.Fatalf("GetPosition: %v", err)
	}
	if !pos.SharesYes.IsZero() || !pos.SharesNo.IsZero() {
		t.Error("expected zero-valued position for unknown holder")
	}
}

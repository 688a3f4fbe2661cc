// Package handler contains the HTTP handlers for the marketd API.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/truthmarkets/marketd/internal/domain"
	"github.com/truthmarkets/marketd/internal/engine"
)

// MarketHandler serves the market lifecycle endpoints.
type MarketHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(e *engine.Engine, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		engine: e,
		logger: logger.With(slog.String("handler", "market")),
	}
}

// marketResponse is the wire form of a market. Amounts and prices travel as
// decimal strings.
type marketResponse struct {
	ID             uint64  `json:"id"`
	Creator        string  `json:"creator"`
	Description    string  `json:"description"`
	SharesYes      string  `json:"shares_yes"`
	SharesNo       string  `json:"shares_no"`
	TotalLiquidity string  `json:"total_liquidity"`
	FeesCollected  string  `json:"fees_collected"`
	FeeBps         uint32  `json:"fee_bps"`
	Resolved       bool    `json:"resolved"`
	WinningOutcome *string `json:"winning_outcome,omitempty"`
	PriceYes       string  `json:"price_yes"`
	PriceNo        string  `json:"price_no"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func toMarketResponse(m domain.Market) marketResponse {
	resp := marketResponse{
		ID:             m.ID,
		Creator:        string(m.Creator),
		Description:    m.Description,
		SharesYes:      domain.FormatAmount(m.SharesYes),
		SharesNo:       domain.FormatAmount(m.SharesNo),
		TotalLiquidity: domain.FormatAmount(m.TotalLiquidity),
		FeesCollected:  domain.FormatAmount(m.FeesCollected),
		FeeBps:         m.FeeBps,
		Resolved:       m.Resolved,
		PriceYes:       domain.FormatAmount(m.PriceYes),
		PriceNo:        domain.FormatAmount(m.PriceNo),
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if m.WinningOutcome != nil {
		s := string(*m.WinningOutcome)
		resp.WinningOutcome = &s
	}
	return resp
}

// CreateMarket handles POST /api/markets.
func (h *MarketHandler) CreateMarket(w http.ResponseWriter, r *http.Request) {
	creator, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Description      string `json:"description"`
		InitialLiquidity string `json:"initial_liquidity"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	liquidity, err := domain.ParseAmount(req.InitialLiquidity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.CreateMarket(r.Context(), creator, req.Description, liquidity)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"market_id": res.MarketID,
		"price_yes": res.PriceYes.Dec(),
		"price_no":  res.PriceNo.Dec(),
	})
}

// ListMarkets handles GET /api/markets.
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.engine.ListMarkets(r.Context(), parseListOpts(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]marketResponse, 0, len(markets))
	for _, m := range markets {
		out = append(out, toMarketResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"markets": out})
}

// GetMarket handles GET /api/markets/{id}.
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	m, err := h.engine.GetMarket(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMarketResponse(m))
}

// GetPrices handles GET /api/markets/{id}/prices.
func (h *MarketHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	priceYes, priceNo, err := h.engine.MarketPrices(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"price_yes": priceYes.Dec(),
		"price_no":  priceNo.Dec(),
	})
}

// GetPosition handles GET /api/markets/{id}/positions/{address}.
func (h *MarketHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}

	raw := r.PathValue("address")
	if !common.IsHexAddress(raw) {
		writeError(w, http.StatusBadRequest, "invalid holder address")
		return
	}
	holder := domain.Address(common.HexToAddress(raw).Hex())

	pos, err := h.engine.GetPosition(r.Context(), id, holder)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"market_id":  id,
		"holder":     string(holder),
		"shares_yes": domain.FormatAmount(pos.SharesYes),
		"shares_no":  domain.FormatAmount(pos.SharesNo),
	})
}

// AddLiquidity handles POST /api/markets/{id}/liquidity.
func (h *MarketHandler) AddLiquidity(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}
	provider, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.AddLiquidity(r.Context(), id, provider, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"liquidity_added": res.LiquidityAdded.Dec(),
		"minted_yes":      res.MintedYes.Dec(),
		"minted_no":       res.MintedNo.Dec(),
		"price_yes":       res.PriceYes.Dec(),
		"price_no":        res.PriceNo.Dec(),
	})
}

// RemoveLiquidity handles POST /api/markets/{id}/liquidity/remove.
func (h *MarketHandler) RemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}
	provider, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.RemoveLiquidity(r.Context(), id, provider, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"liquidity_removed":    res.LiquidityRemoved.Dec(),
		"shares_yes_withdrawn": res.SharesYesWithdrawn.Dec(),
		"shares_no_withdrawn":  res.SharesNoWithdrawn.Dec(),
		"price_yes":            res.PriceYes.Dec(),
		"price_no":             res.PriceNo.Dec(),
	})
}

// BuyShares handles POST /api/markets/{id}/buy.
func (h *MarketHandler) BuyShares(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}
	buyer, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Outcome string `json:"outcome"`
		Amount  string `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.BuyShares(r.Context(), id, buyer, req.Outcome, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"outcome":       string(res.Outcome),
		"shares_bought": res.SharesBought.Dec(),
		"fee":           res.Fee.Dec(),
		"price_yes":     res.PriceYes.Dec(),
		"price_no":      res.PriceNo.Dec(),
	})
}

// SellShares handles POST /api/markets/{id}/sell.
func (h *MarketHandler) SellShares(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}
	seller, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		Outcome string `json:"outcome"`
		Amount  string `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.SellShares(r.Context(), id, seller, req.Outcome, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"outcome":       string(res.Outcome),
		"shares_sold":   res.SharesSold.Dec(),
		"usdc_received": res.USDCReceived.Dec(),
		"price_yes":     res.PriceYes.Dec(),
		"price_no":      res.PriceNo.Dec(),
	})
}

// ResolveMarket handles POST /api/markets/{id}/resolve.
func (h *MarketHandler) ResolveMarket(w http.ResponseWriter, r *http.Request) {
	id, err := marketIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid market id")
		return
	}
	resolver, ok := caller(w, r)
	if !ok {
		return
	}

	var req struct {
		WinningOutcome string `json:"winning_outcome"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.engine.ResolveMarket(r.Context(), id, resolver, req.WinningOutcome)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"winning_outcome": string(res.WinningOutcome),
		"transfers":       len(res.Transfers),
		"total_paid":      res.TotalPaid.Dec(),
	})
}

// GetCount handles GET /api/count.
func (h *MarketHandler) GetCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.GetCount(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

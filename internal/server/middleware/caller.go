package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/truthmarkets/marketd/internal/domain"
)

// CallerHeader carries the acting address on state-changing requests. The
// engines authorize against it the way a chain runtime authorizes against
// the transaction sender.
const CallerHeader = "X-Caller-Address"

type callerKey struct{}

// Caller returns middleware that extracts and validates the caller address
// header. A present but malformed address is rejected outright; absence is
// left for the handlers to enforce, since read endpoints have no caller.
func Caller() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(CallerHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !common.IsHexAddress(raw) {
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid caller address"}`))
				return
			}

			// Normalize to the EIP-55 checksum form so address equality in
			// the store is byte equality.
			addr := domain.Address(common.HexToAddress(raw).Hex())
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), callerKey{}, addr),
			))
		})
	}
}

// CallerFrom returns the validated caller address, if any.
func CallerFrom(ctx context.Context) (domain.Address, bool) {
	addr, ok := ctx.Value(callerKey{}).(domain.Address)
	return addr, ok
}

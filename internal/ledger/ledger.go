// Package ledger provides in-process implementations of the settlement
// collaborator. Real fund movement is external to this system; these
// implementations record or log the transfers the engines compute.
package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/truthmarkets/marketd/internal/domain"
)

// stamp fills in the generated fields of a transfer.
func stamp(t domain.Transfer) domain.Transfer {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	return t
}

// Recording is a domain.Ledger that keeps every transfer in memory. It backs
// the engine tests and the demo mode, and feeds settlement reports.
type Recording struct {
	mu        sync.Mutex
	transfers []domain.Transfer
}

// NewRecording creates an empty Recording ledger.
func NewRecording() *Recording {
	return &Recording{}
}

// Transfer records the disbursement.
func (l *Recording) Transfer(_ context.Context, t domain.Transfer) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transfers = append(l.transfers, stamp(t))
	return nil
}

// Transfers returns a copy of everything recorded so far.
func (l *Recording) Transfers() []domain.Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Transfer, len(l.transfers))
	copy(out, l.transfers)
	return out
}

// ByRecipient returns the transfers recorded for one recipient.
func (l *Recording) ByRecipient(addr domain.Address) []domain.Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Transfer
	for _, t := range l.transfers {
		if t.Recipient == addr {
			out = append(out, t)
		}
	}
	return out
}

// Logging is a domain.Ledger that only logs transfers. It is the default
// for deployments that have not connected a settlement backend yet.
type Logging struct {
	logger *slog.Logger
}

// NewLogging creates a Logging ledger.
func NewLogging(logger *slog.Logger) *Logging {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logging{logger: logger.With(slog.String("component", "ledger"))}
}

// Transfer logs the disbursement and reports success.
func (l *Logging) Transfer(ctx context.Context, t domain.Transfer) error {
	t = stamp(t)
	l.logger.InfoContext(ctx, "transfer",
		slog.String("id", t.ID),
		slog.Uint64("market_id", t.MarketID),
		slog.String("recipient", string(t.Recipient)),
		slog.String("amount", t.Amount.Dec()),
		slog.String("reason", string(t.Reason)),
	)
	return nil
}

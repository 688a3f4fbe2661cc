package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/truthmarkets/marketd/internal/domain"
)

// Archiver implements domain.SettlementArchiver by serializing settlement
// reports to JSONL and uploading them to S3. One object per resolved market:
//
//	settlements/42.jsonl
//
// The first line is the report header; each following line is one transfer.
type Archiver struct {
	writer *Writer
}

// NewArchiver creates an Archiver uploading through the given Writer.
func NewArchiver(writer *Writer) *Archiver {
	return &Archiver{writer: writer}
}

// reportHeader is the first JSONL line of an archived settlement.
type reportHeader struct {
	MarketID       uint64 `json:"market_id"`
	WinningOutcome string `json:"winning_outcome"`
	ResolvedAt     string `json:"resolved_at"`
	Transfers      int    `json:"transfers"`
}

// transferLine is one disbursement line of an archived settlement. Amounts
// travel as decimal strings.
type transferLine struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

// ArchiveSettlement uploads the full payout breakdown of a resolved market.
func (a *Archiver) ArchiveSettlement(ctx context.Context, report domain.SettlementReport) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	header := reportHeader{
		MarketID:       report.MarketID,
		WinningOutcome: string(report.WinningOutcome),
		ResolvedAt:     report.ResolvedAt.UTC().Format(time.RFC3339),
		Transfers:      len(report.Transfers),
	}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("s3blob: encode settlement header for market %d: %w", report.MarketID, err)
	}

	for i, t := range report.Transfers {
		line := transferLine{
			ID:        t.ID,
			Recipient: string(t.Recipient),
			Amount:    t.Amount.Dec(),
			Reason:    string(t.Reason),
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("s3blob: encode settlement transfer %d for market %d: %w", i, report.MarketID, err)
		}
	}

	path := settlementPath(report.MarketID)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf.Bytes()), "application/x-ndjson"); err != nil {
		return fmt.Errorf("s3blob: upload settlement for market %d: %w", report.MarketID, err)
	}
	return nil
}

// settlementPath builds the S3 key for one market's settlement report.
func settlementPath(marketID uint64) string {
	return fmt.Sprintf("settlements/%d.jsonl", marketID)
}

// Compile-time interface check.
var _ domain.SettlementArchiver = (*Archiver)(nil)

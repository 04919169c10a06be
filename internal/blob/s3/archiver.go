package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/llamadao/auctionhaus/internal/domain"
)

// SettlementArchiver implements domain.Archiver by snapshotting each settled
// auction as a JSON object in cold storage. Snapshots are keyed by token id,
// so retried settlements simply overwrite the same object.
type SettlementArchiver struct {
	writer domain.BlobWriter
}

// NewSettlementArchiver creates a SettlementArchiver over the given writer.
func NewSettlementArchiver(writer domain.BlobWriter) *SettlementArchiver {
	return &SettlementArchiver{writer: writer}
}

var _ domain.Archiver = (*SettlementArchiver)(nil)

// ArchiveSettlement serialises the outcome and uploads it to
// auctions/<token_id>.json.
func (a *SettlementArchiver) ArchiveSettlement(ctx context.Context, out domain.SettlementOutcome) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("s3blob: archive settlement marshal: %w", err)
	}

	path := settlementPath(out.TokenID)
	if err := a.writer.Put(ctx, path, &buf, "application/json"); err != nil {
		return fmt.Errorf("s3blob: archive settlement upload: %w", err)
	}
	return nil
}

func settlementPath(tokenID uint64) string {
	return fmt.Sprintf("auctions/%d.json", tokenID)
}

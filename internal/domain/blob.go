package domain

import (
	"context"
	"io"
)

// BlobWriter uploads objects to cold storage. Settled auctions are mirrored
// there as JSON snapshots alongside the postgres archive.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver snapshots settlement outcomes to blob storage.
type Archiver interface {
	ArchiveSettlement(ctx context.Context, out SettlementOutcome) error
}

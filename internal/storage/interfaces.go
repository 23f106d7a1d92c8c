package storage

import (
	"context"

	"solana-arb-detector/internal/domain"
)

// ArbitrageStore persists detected arbitrage results, keyed by
// (protocol, tx_id). Results from different protocols never merge.
type ArbitrageStore interface {
	// Insert adds a result. Returns ErrDuplicateKey if (protocol, tx_id) exists.
	Insert(ctx context.Context, protocol string, res *domain.ArbitrageResult) error

	// ListTxIDs returns all arbitrage transaction IDs for a protocol,
	// ordered by slot ascending, ties by tx_id.
	ListTxIDs(ctx context.Context, protocol string) ([]string, error)

	// ListByProtocol returns all results for a protocol in the same order.
	// The Swaps field is not hydrated; use SwapRecordStore for the raw
	// sequence.
	ListByProtocol(ctx context.Context, protocol string) ([]*domain.ArbitrageResult, error)
}

// SwapRecordStore persists every decoded swap, keyed by
// (protocol, tx_id, position in the transaction's event sequence).
type SwapRecordStore interface {
	// InsertTx adds a transaction's full swap sequence atomically.
	// Returns ErrDuplicateKey if the transaction was already stored.
	InsertTx(ctx context.Context, protocol string, records []domain.SwapRecord) error

	// GetByTx returns a transaction's swaps in sequence order.
	GetByTx(ctx context.Context, protocol, txID string) ([]domain.SwapRecord, error)

	// Sample returns swaps from up to maxTxs distinct transactions, in
	// insertion order, for the bounded inspection artifact.
	Sample(ctx context.Context, protocol string, maxTxs int) ([]domain.SwapRecord, error)
}

// SwapArchive is an append-only analytical sink for decoded swaps,
// typically columnar storage. Duplicates are tolerated; the archive is
// for exploration, not bookkeeping.
type SwapArchive interface {
	ArchiveSwaps(ctx context.Context, protocol string, records []domain.SwapRecord) error
}

package memory

import (
	"context"
	"sync"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

// txKey identifies one transaction's swap sequence within a protocol.
type txKey struct {
	Protocol string
	TxID     string
}

// SwapRecordStore is an in-memory implementation of storage.SwapRecordStore.
// It also satisfies storage.SwapArchive so tests can run without ClickHouse.
type SwapRecordStore struct {
	mu      sync.RWMutex
	byTx    map[txKey][]domain.SwapRecord
	txOrder map[string][]string // protocol -> tx IDs in insertion order
}

// NewSwapRecordStore creates a new in-memory swap record store.
func NewSwapRecordStore() *SwapRecordStore {
	return &SwapRecordStore{
		byTx:    make(map[txKey][]domain.SwapRecord),
		txOrder: make(map[string][]string),
	}
}

// InsertTx adds a transaction's swap sequence. Returns ErrDuplicateKey if
// the transaction was already stored for this protocol.
func (s *SwapRecordStore) InsertTx(_ context.Context, protocol string, records []domain.SwapRecord) error {
	if protocol == "" || len(records) == 0 {
		return storage.ErrInvalidInput
	}

	key := txKey{Protocol: protocol, TxID: records[0].TxID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byTx[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.byTx[key] = append([]domain.SwapRecord(nil), records...)
	s.txOrder[protocol] = append(s.txOrder[protocol], key.TxID)

	return nil
}

// GetByTx returns a transaction's swaps in sequence order.
func (s *SwapRecordStore) GetByTx(_ context.Context, protocol, txID string) ([]domain.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.byTx[txKey{Protocol: protocol, TxID: txID}]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return append([]domain.SwapRecord(nil), records...), nil
}

// Sample returns swaps from up to maxTxs distinct transactions in
// insertion order.
func (s *SwapRecordStore) Sample(_ context.Context, protocol string, maxTxs int) ([]domain.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.SwapRecord
	for i, txID := range s.txOrder[protocol] {
		if maxTxs > 0 && i >= maxTxs {
			break
		}
		result = append(result, s.byTx[txKey{Protocol: protocol, TxID: txID}]...)
	}

	return result, nil
}

// ArchiveSwaps appends swaps without duplicate checks, mirroring the
// analytical archive contract.
func (s *SwapRecordStore) ArchiveSwaps(ctx context.Context, protocol string, records []domain.SwapRecord) error {
	if len(records) == 0 {
		return nil
	}
	err := s.InsertTx(ctx, protocol, records)
	if err == storage.ErrDuplicateKey {
		return nil
	}
	return err
}

// Verify interface compliance at compile time.
var (
	_ storage.SwapRecordStore = (*SwapRecordStore)(nil)
	_ storage.SwapArchive     = (*SwapRecordStore)(nil)
)

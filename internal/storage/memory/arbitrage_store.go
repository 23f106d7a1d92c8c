package memory

import (
	"context"
	"sort"
	"sync"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

// arbKey is the composite key for arbitrage results.
type arbKey struct {
	Protocol string
	TxID     string
}

// ArbitrageStore is an in-memory implementation of storage.ArbitrageStore.
type ArbitrageStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.ArbitrageResult // protocol -> results, insertion order
	keys map[arbKey]bool
}

// NewArbitrageStore creates a new in-memory arbitrage store.
func NewArbitrageStore() *ArbitrageStore {
	return &ArbitrageStore{
		data: make(map[string][]*domain.ArbitrageResult),
		keys: make(map[arbKey]bool),
	}
}

// Insert adds a result. Returns ErrDuplicateKey if (protocol, tx_id) exists.
func (s *ArbitrageStore) Insert(_ context.Context, protocol string, res *domain.ArbitrageResult) error {
	if res == nil || protocol == "" {
		return storage.ErrInvalidInput
	}

	key := arbKey{Protocol: protocol, TxID: res.TxID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[key] {
		return storage.ErrDuplicateKey
	}

	// Store a copy
	cp := *res
	cp.AMMs = append([]domain.Address(nil), res.AMMs...)
	cp.TokenPath = append([]domain.Address(nil), res.TokenPath...)
	cp.Swaps = append([]domain.SwapEvent(nil), res.Swaps...)
	s.data[protocol] = append(s.data[protocol], &cp)
	s.keys[key] = true

	return nil
}

// ListTxIDs returns arbitrage transaction IDs ordered by slot, ties by tx_id.
func (s *ArbitrageStore) ListTxIDs(ctx context.Context, protocol string) ([]string, error) {
	results, err := s.ListByProtocol(ctx, protocol)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.TxID
	}
	return ids, nil
}

// ListByProtocol returns all results for a protocol ordered by slot, ties by tx_id.
func (s *ArbitrageStore) ListByProtocol(_ context.Context, protocol string) ([]*domain.ArbitrageResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]*domain.ArbitrageResult, 0, len(s.data[protocol]))
	for _, r := range s.data[protocol] {
		cp := *r
		cp.Swaps = nil // per the store contract, the raw sequence lives in SwapRecordStore
		results = append(results, &cp)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Slot != results[j].Slot {
			return results[i].Slot < results[j].Slot
		}
		return results[i].TxID < results[j].TxID
	})

	return results, nil
}

// Verify interface compliance at compile time.
var _ storage.ArbitrageStore = (*ArbitrageStore)(nil)

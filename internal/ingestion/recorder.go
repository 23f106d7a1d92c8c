package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log"

	"solana-arb-detector/internal/arbitrage"
	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/observability"
	"solana-arb-detector/internal/storage"
)

// Recorder runs decoded events through the evaluator and persists the
// outcome. Shared by polling and live modes.
type Recorder struct {
	Protocol  domain.Protocol
	ArbStore  storage.ArbitrageStore
	SwapStore storage.SwapRecordStore
	Archive   storage.SwapArchive // optional analytical sink
	Logger    *log.Logger
}

// Record evaluates one transaction's event sequence and stores swaps
// and, when the sequence forms a profitable closed loop, the arbitrage
// result. Duplicate writes are treated as already-done work, not errors.
func (r *Recorder) Record(ctx context.Context, tx domain.TransactionRecord) (bool, error) {
	if len(tx.Events) == 0 {
		return false, nil
	}
	txID, slot, blockTime := tx.Signature, tx.Slot, tx.BlockTime

	name := r.Protocol.Name
	observability.RecordEventsDecoded(name, len(tx.Events))
	observability.UpdateHighestSlot(slot)
	for _, e := range tx.Events {
		observability.RecordAMMCurve(name, e.AMM.IsOnCurve())
	}

	records := make([]domain.SwapRecord, len(tx.Events))
	for i, e := range tx.Events {
		records[i] = domain.NewSwapRecord(txID, slot, blockTime, e)
	}

	if err := r.SwapStore.InsertTx(ctx, name, records); err != nil {
		if !errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordStoreError(name, "swap_records")
			return false, fmt.Errorf("store swaps for %s: %w", txID, err)
		}
	}

	if r.Archive != nil {
		if err := r.Archive.ArchiveSwaps(ctx, name, records); err != nil {
			// Archive loss is tolerable; the bookkeeping stores are
			// the source of truth.
			observability.RecordStoreError(name, "swap_archive")
			r.Logger.Printf("archive swaps for %s: %v", txID, err)
		}
	}

	res, ok := arbitrage.Evaluate(txID, slot, blockTime, tx.Events)
	if !ok {
		return false, nil
	}

	if err := r.ArbStore.Insert(ctx, name, res); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return false, nil
		}
		observability.RecordStoreError(name, "arbitrages")
		return false, fmt.Errorf("store arbitrage for %s: %w", txID, err)
	}

	observability.RecordArbitrageFound(name)
	r.Logger.Printf("arbitrage detected: tx=%s slot=%d profit=%d token=%s swaps=%d",
		txID, slot, res.ProfitAmount, res.ProfitToken, len(res.Swaps))
	return true, nil
}

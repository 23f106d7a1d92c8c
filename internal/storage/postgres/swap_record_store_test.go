package postgres

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

func testRecords(txID string, n int) []domain.SwapRecord {
	records := make([]domain.SwapRecord, n)
	for i := range records {
		records[i] = domain.SwapRecord{
			TxID:             txID,
			Slot:             100,
			BlockTime:        1700000000,
			AMM:              "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8",
			InputMint:        "So11111111111111111111111111111111111111112",
			InputAmount:      uint64(1000 + i),
			OutputMint:       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			OutputAmount:     uint64(2000 + i),
			InstructionIndex: i,
		}
	}
	return records
}

func TestSwapRecordStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertTx(ctx, "dflow", testRecords("tx1", 3)))

	records, err := store.GetByTx(ctx, "dflow", "tx1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, r := range records {
		assert.Equal(t, i, r.InstructionIndex, "record %d out of sequence", i)
		assert.Equal(t, uint64(1000+i), r.InputAmount)
		assert.Equal(t, uint64(2000+i), r.OutputAmount)
	}
}

func TestSwapRecordStore_DuplicateTxRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.InsertTx(ctx, "dflow", testRecords("tx1", 2)))

	err := store.InsertTx(ctx, "dflow", testRecords("tx1", 4))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Failed insert must leave the original sequence untouched.
	records, err := store.GetByTx(ctx, "dflow", "tx1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSwapRecordStore_GetMissing(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapRecordStore(pool)

	_, err := store.GetByTx(context.Background(), "dflow", "absent")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSwapRecordStore_SampleBounded(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapRecordStore(pool)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		txID := fmt.Sprintf("tx%d", i)
		require.NoError(t, store.InsertTx(ctx, "dflow", testRecords(txID, 2)))
	}

	sample, err := store.Sample(ctx, "dflow", 3)
	require.NoError(t, err)

	// 3 transactions x 2 swaps each, insertion order.
	require.Len(t, sample, 6)
	assert.Equal(t, "tx0", sample[0].TxID)
	assert.Equal(t, "tx2", sample[5].TxID)
}

func TestSwapRecordStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapRecordStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.InsertTx(ctx, "dflow", nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.InsertTx(ctx, "", testRecords("tx1", 1)), storage.ErrInvalidInput)
}

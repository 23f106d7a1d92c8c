package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-detector/internal/domain"
)

func testRecords(txID string, n int) []domain.SwapRecord {
	records := make([]domain.SwapRecord, n)
	for i := range records {
		records[i] = domain.SwapRecord{
			TxID:             txID,
			Slot:             250000000,
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

func TestSwapArchiveStore_ArchiveAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapArchiveStore(conn)
	ctx := context.Background()

	require.NoError(t, store.ArchiveSwaps(ctx, "dflow", testRecords("tx1", 3)))

	records, err := store.GetByTx(ctx, "dflow", "tx1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, r := range records {
		assert.Equal(t, i, r.InstructionIndex, "record %d out of sequence", i)
		assert.Equal(t, uint64(1000+i), r.InputAmount)
		assert.Equal(t, int64(250000000), r.Slot)
	}
}

func TestSwapArchiveStore_DuplicatesTolerated(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapArchiveStore(conn)
	ctx := context.Background()

	records := testRecords("tx1", 2)
	require.NoError(t, store.ArchiveSwaps(ctx, "dflow", records))
	require.NoError(t, store.ArchiveSwaps(ctx, "dflow", records))

	count, err := store.CountByProtocol(ctx, "dflow")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestSwapArchiveStore_EmptyBatch(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapArchiveStore(conn)

	assert.NoError(t, store.ArchiveSwaps(context.Background(), "dflow", nil))
}

func TestSwapArchiveStore_ProtocolsIsolated(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSwapArchiveStore(conn)
	ctx := context.Background()

	require.NoError(t, store.ArchiveSwaps(ctx, "dflow", testRecords("tx1", 2)))
	require.NoError(t, store.ArchiveSwaps(ctx, "other", testRecords("tx1", 3)))

	count, err := store.CountByProtocol(ctx, "dflow")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)
}

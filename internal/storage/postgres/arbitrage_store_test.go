package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

func testResult(txID string, slot int64, profit uint64) *domain.ArbitrageResult {
	wsol := domain.MustAddress("So11111111111111111111111111111111111111112")
	usdc := domain.MustAddress("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	amm := domain.MustAddress("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	return &domain.ArbitrageResult{
		TxID:         txID,
		Slot:         slot,
		BlockTime:    1700000000,
		AMMs:         []domain.Address{amm},
		TokenPath:    []domain.Address{wsol, usdc},
		ProfitToken:  wsol,
		ProfitAmount: profit,
		Swaps:        make([]domain.SwapEvent, 2),
	}
}

func TestArbitrageStore_InsertAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewArbitrageStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "dflow", testResult("tx2", 20, 100)))
	require.NoError(t, store.Insert(ctx, "dflow", testResult("tx1", 10, 50)))

	ids, err := store.ListTxIDs(ctx, "dflow")
	require.NoError(t, err)
	assert.Equal(t, []string{"tx1", "tx2"}, ids, "expected slot order")

	results, err := store.ListByProtocol(ctx, "dflow")
	require.NoError(t, err)
	require.Len(t, results, 2)

	got := results[0]
	assert.Equal(t, "tx1", got.TxID)
	assert.Equal(t, int64(10), got.Slot)
	assert.Equal(t, int64(1700000000), got.BlockTime)
	assert.Equal(t, uint64(50), got.ProfitAmount)
	assert.Equal(t, "So11111111111111111111111111111111111111112", got.ProfitToken.String())
	assert.Len(t, got.TokenPath, 2)
	assert.Len(t, got.AMMs, 1)
}

func TestArbitrageStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewArbitrageStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, "dflow", testResult("tx1", 10, 100)))

	err := store.Insert(ctx, "dflow", testResult("tx1", 10, 100))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same tx under a different protocol is a distinct key.
	assert.NoError(t, store.Insert(ctx, "other", testResult("tx1", 10, 100)))
}

func TestArbitrageStore_MaxUint64Profit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewArbitrageStore(pool)
	ctx := context.Background()

	// Does not fit BIGINT; must survive the NUMERIC round trip.
	const huge = ^uint64(0)
	require.NoError(t, store.Insert(ctx, "dflow", testResult("tx1", 10, huge)))

	results, err := store.ListByProtocol(ctx, "dflow")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, huge, results[0].ProfitAmount)
}

func TestArbitrageStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewArbitrageStore(pool)
	ctx := context.Background()

	assert.ErrorIs(t, store.Insert(ctx, "dflow", nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, "", testResult("tx1", 10, 1)), storage.ErrInvalidInput)
}

package clickhouse

import (
	"context"
	"fmt"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

// SwapArchiveStore implements storage.SwapArchive using ClickHouse.
// MergeTree does not enforce uniqueness, which is fine here: the archive
// is an append-only analytical sink and duplicates are tolerated.
type SwapArchiveStore struct {
	conn *Conn
}

// NewSwapArchiveStore creates a new SwapArchiveStore.
func NewSwapArchiveStore(conn *Conn) *SwapArchiveStore {
	return &SwapArchiveStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SwapArchive = (*SwapArchiveStore)(nil)

// ArchiveSwaps appends a transaction's decoded swaps as one batch.
func (s *SwapArchiveStore) ArchiveSwaps(ctx context.Context, protocol string, records []domain.SwapRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO swap_archive (
			protocol, tx_id, seq, instruction_index, slot, block_time,
			amm, input_mint, input_amount, output_mint, output_amount
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for seq, r := range records {
		err = batch.Append(
			protocol, r.TxID, uint32(seq), int32(r.InstructionIndex),
			uint64(r.Slot), r.BlockTime,
			r.AMM, r.InputMint, r.InputAmount, r.OutputMint, r.OutputAmount,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTx retrieves a transaction's archived swaps in sequence order.
func (s *SwapArchiveStore) GetByTx(ctx context.Context, protocol, txID string) ([]domain.SwapRecord, error) {
	query := `
		SELECT tx_id, slot, block_time, amm, input_mint, input_amount,
		       output_mint, output_amount, instruction_index
		FROM swap_archive
		WHERE protocol = ? AND tx_id = ?
		ORDER BY seq ASC
	`

	rows, err := s.conn.Query(ctx, query, protocol, txID)
	if err != nil {
		return nil, fmt.Errorf("query archived swaps: %w", err)
	}
	defer rows.Close()

	return scanSwapArchive(rows)
}

// CountByProtocol returns the number of archived swap rows for a protocol.
func (s *SwapArchiveStore) CountByProtocol(ctx context.Context, protocol string) (uint64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count(*) FROM swap_archive WHERE protocol = ?`, protocol).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count archived swaps: %w", err)
	}
	return count, nil
}

// chRows matches driver.Rows for scanning helpers.
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSwapArchive(rows chRows) ([]domain.SwapRecord, error) {
	var records []domain.SwapRecord

	for rows.Next() {
		var r domain.SwapRecord
		var slot uint64
		var instructionIndex int32

		err := rows.Scan(
			&r.TxID, &slot, &r.BlockTime, &r.AMM, &r.InputMint, &r.InputAmount,
			&r.OutputMint, &r.OutputAmount, &instructionIndex,
		)
		if err != nil {
			return nil, fmt.Errorf("scan archived swap row: %w", err)
		}

		r.Slot = int64(slot)
		r.InstructionIndex = int(instructionIndex)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived swap rows: %w", err)
	}

	return records, nil
}

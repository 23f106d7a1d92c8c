package postgres

import (
	"context"
	"fmt"
	"strconv"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

// SwapRecordStore implements storage.SwapRecordStore using PostgreSQL.
type SwapRecordStore struct {
	pool *Pool
}

// NewSwapRecordStore creates a new SwapRecordStore.
func NewSwapRecordStore(pool *Pool) *SwapRecordStore {
	return &SwapRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapRecordStore = (*SwapRecordStore)(nil)

// InsertTx adds a transaction's full swap sequence atomically. Returns
// ErrDuplicateKey if the transaction was already stored.
func (s *SwapRecordStore) InsertTx(ctx context.Context, protocol string, records []domain.SwapRecord) error {
	if protocol == "" || len(records) == 0 {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO swap_records (
			protocol, tx_id, seq, instruction_index, slot, block_time,
			amm, input_mint, input_amount, output_mint, output_amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for seq, r := range records {
		_, err := tx.Exec(ctx, query,
			protocol,
			r.TxID,
			seq,
			r.InstructionIndex,
			r.Slot,
			r.BlockTime,
			r.AMM,
			r.InputMint,
			strconv.FormatUint(r.InputAmount, 10),
			r.OutputMint,
			strconv.FormatUint(r.OutputAmount, 10),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert swap record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByTx returns a transaction's swaps in sequence order.
func (s *SwapRecordStore) GetByTx(ctx context.Context, protocol, txID string) ([]domain.SwapRecord, error) {
	query := `
		SELECT tx_id, slot, block_time, amm, input_mint, input_amount::text,
		       output_mint, output_amount::text, instruction_index
		FROM swap_records
		WHERE protocol = $1 AND tx_id = $2
		ORDER BY seq ASC
	`

	rows, err := s.pool.Query(ctx, query, protocol, txID)
	if err != nil {
		return nil, fmt.Errorf("get swap records: %w", err)
	}
	defer rows.Close()

	records, err := scanSwapRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records, nil
}

// Sample returns swaps from up to maxTxs distinct transactions, in
// insertion order.
func (s *SwapRecordStore) Sample(ctx context.Context, protocol string, maxTxs int) ([]domain.SwapRecord, error) {
	query := `
		SELECT r.tx_id, r.slot, r.block_time, r.amm, r.input_mint, r.input_amount::text,
		       r.output_mint, r.output_amount::text, r.instruction_index
		FROM swap_records r
		JOIN (
			SELECT tx_id, MIN(id) AS first_id
			FROM swap_records
			WHERE protocol = $1
			GROUP BY tx_id
			ORDER BY first_id ASC
			LIMIT $2
		) first ON first.tx_id = r.tx_id
		WHERE r.protocol = $1
		ORDER BY first.first_id ASC, r.seq ASC
	`

	rows, err := s.pool.Query(ctx, query, protocol, maxTxs)
	if err != nil {
		return nil, fmt.Errorf("sample swap records: %w", err)
	}
	defer rows.Close()

	return scanSwapRecords(rows)
}

// rowScanner matches pgx.Rows for scanning helpers.
type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSwapRecords(rows rowScanner) ([]domain.SwapRecord, error) {
	var records []domain.SwapRecord
	for rows.Next() {
		var (
			r        domain.SwapRecord
			inAmount string
			outAmt   string
		)
		if err := rows.Scan(&r.TxID, &r.Slot, &r.BlockTime, &r.AMM, &r.InputMint,
			&inAmount, &r.OutputMint, &outAmt, &r.InstructionIndex); err != nil {
			return nil, fmt.Errorf("scan swap record: %w", err)
		}

		var err error
		if r.InputAmount, err = strconv.ParseUint(inAmount, 10, 64); err != nil {
			return nil, fmt.Errorf("parse input amount: %w", err)
		}
		if r.OutputAmount, err = strconv.ParseUint(outAmt, 10, 64); err != nil {
			return nil, fmt.Errorf("parse output amount: %w", err)
		}

		records = append(records, r)
	}
	return records, rows.Err()
}

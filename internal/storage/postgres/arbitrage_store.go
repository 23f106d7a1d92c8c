package postgres

import (
	"context"
	"fmt"
	"strconv"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

// ArbitrageStore implements storage.ArbitrageStore using PostgreSQL.
type ArbitrageStore struct {
	pool *Pool
}

// NewArbitrageStore creates a new ArbitrageStore.
func NewArbitrageStore(pool *Pool) *ArbitrageStore {
	return &ArbitrageStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ArbitrageStore = (*ArbitrageStore)(nil)

// Insert adds a result. Returns ErrDuplicateKey if (protocol, tx_id) exists.
// Amounts go through NUMERIC as strings: uint64 does not fit BIGINT.
func (s *ArbitrageStore) Insert(ctx context.Context, protocol string, res *domain.ArbitrageResult) error {
	if res == nil || protocol == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO arbitrages (
			protocol, tx_id, slot, block_time, profit_token, profit_amount,
			num_swaps, amms, token_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		protocol,
		res.TxID,
		res.Slot,
		res.BlockTime,
		res.ProfitToken.String(),
		strconv.FormatUint(res.ProfitAmount, 10),
		len(res.Swaps),
		encodeAddresses(res.AMMs),
		encodeAddresses(res.TokenPath),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert arbitrage: %w", err)
	}
	return nil
}

// ListTxIDs returns arbitrage transaction IDs ordered by slot, ties by tx_id.
func (s *ArbitrageStore) ListTxIDs(ctx context.Context, protocol string) ([]string, error) {
	query := `
		SELECT tx_id
		FROM arbitrages
		WHERE protocol = $1
		ORDER BY slot ASC, tx_id ASC
	`

	rows, err := s.pool.Query(ctx, query, protocol)
	if err != nil {
		return nil, fmt.Errorf("list arbitrage tx ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan tx id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListByProtocol returns all results for a protocol ordered by slot,
// ties by tx_id. Swaps are not hydrated.
func (s *ArbitrageStore) ListByProtocol(ctx context.Context, protocol string) ([]*domain.ArbitrageResult, error) {
	query := `
		SELECT tx_id, slot, block_time, profit_token, profit_amount::text, amms, token_path
		FROM arbitrages
		WHERE protocol = $1
		ORDER BY slot ASC, tx_id ASC
	`

	rows, err := s.pool.Query(ctx, query, protocol)
	if err != nil {
		return nil, fmt.Errorf("list arbitrages: %w", err)
	}
	defer rows.Close()

	var results []*domain.ArbitrageResult
	for rows.Next() {
		var (
			res          domain.ArbitrageResult
			profitToken  string
			profitAmount string
			amms         []string
			tokenPath    []string
		)
		if err := rows.Scan(&res.TxID, &res.Slot, &res.BlockTime, &profitToken, &profitAmount, &amms, &tokenPath); err != nil {
			return nil, fmt.Errorf("scan arbitrage: %w", err)
		}

		if res.ProfitToken, err = domain.AddressFromBase58(profitToken); err != nil {
			return nil, fmt.Errorf("decode profit token: %w", err)
		}
		if res.ProfitAmount, err = strconv.ParseUint(profitAmount, 10, 64); err != nil {
			return nil, fmt.Errorf("parse profit amount: %w", err)
		}
		if res.AMMs, err = decodeAddresses(amms); err != nil {
			return nil, fmt.Errorf("decode amms: %w", err)
		}
		if res.TokenPath, err = decodeAddresses(tokenPath); err != nil {
			return nil, fmt.Errorf("decode token path: %w", err)
		}

		results = append(results, &res)
	}
	return results, rows.Err()
}

func encodeAddresses(addrs []domain.Address) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = a.String()
	}
	return out
}

func decodeAddresses(encoded []string) ([]domain.Address, error) {
	out := make([]domain.Address, len(encoded))
	for i, s := range encoded {
		a, err := domain.AddressFromBase58(s)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

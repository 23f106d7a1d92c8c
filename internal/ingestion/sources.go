package ingestion

import (
	"context"
	"fmt"

	"solana-arb-detector/internal/solana"
)

// SignatureSource lists recent transaction signatures mentioning a
// program. Listings are cheap identity-only lookups; the poller decides
// which of them deserve a full fetch.
type SignatureSource interface {
	ListRecent(ctx context.Context, programID string, limit int) ([]solana.TransactionInfo, error)
}

// HeliusSource lists signatures via the Helius Enhanced Transactions
// API. Primary source for polling mode.
type HeliusSource struct {
	client *solana.EnhancedClient
}

// NewHeliusSource creates a HeliusSource.
func NewHeliusSource(client *solana.EnhancedClient) *HeliusSource {
	return &HeliusSource{client: client}
}

// Compile-time interface check.
var _ SignatureSource = (*HeliusSource)(nil)

// ListRecent lists recent transactions for the program.
func (s *HeliusSource) ListRecent(ctx context.Context, programID string, limit int) ([]solana.TransactionInfo, error) {
	return s.client.ListTransactions(ctx, programID, limit)
}

// RPCSource lists signatures via plain getSignaturesForAddress, for
// deployments without an Enhanced API key.
type RPCSource struct {
	client solana.RPCClient
}

// NewRPCSource creates an RPCSource.
func NewRPCSource(client solana.RPCClient) *RPCSource {
	return &RPCSource{client: client}
}

// Compile-time interface check.
var _ SignatureSource = (*RPCSource)(nil)

// ListRecent lists recent signatures for the program. Transactions that
// failed on-chain are filtered out here; their events never executed.
func (s *RPCSource) ListRecent(ctx context.Context, programID string, limit int) ([]solana.TransactionInfo, error) {
	sigs, err := s.client.GetSignaturesForAddress(ctx, programID, &solana.SignaturesOpts{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	infos := make([]solana.TransactionInfo, 0, len(sigs))
	for _, sig := range sigs {
		if sig.Err != nil {
			continue
		}
		info := solana.TransactionInfo{Signature: sig.Signature, Slot: sig.Slot}
		if sig.BlockTime != nil {
			info.BlockTime = *sig.BlockTime
		}
		infos = append(infos, info)
	}
	return infos, nil
}

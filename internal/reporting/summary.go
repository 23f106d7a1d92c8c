package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/storage"
)

// Summary is a rendered view of one protocol's stored results.
type Summary struct {
	GeneratedAt time.Time
	Protocol    string
	Arbitrages  []*domain.ArbitrageResult
	SampleSwaps []domain.SwapRecord
}

// Generator builds summaries from stored data.
type Generator struct {
	arbStore  storage.ArbitrageStore
	swapStore storage.SwapRecordStore
	now       func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a summary generator.
func NewGenerator(arbStore storage.ArbitrageStore, swapStore storage.SwapRecordStore) *Generator {
	return &Generator{
		arbStore:  arbStore,
		swapStore: swapStore,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate loads a protocol's results. sampleTxs bounds how many
// transactions' swaps are included; 0 means SampleSwapLimit.
func (g *Generator) Generate(ctx context.Context, protocol string, sampleTxs int) (*Summary, error) {
	if sampleTxs <= 0 {
		sampleTxs = SampleSwapLimit
	}

	arbs, err := g.arbStore.ListByProtocol(ctx, protocol)
	if err != nil {
		return nil, fmt.Errorf("load arbitrages: %w", err)
	}

	sample, err := g.swapStore.Sample(ctx, protocol, sampleTxs)
	if err != nil {
		return nil, fmt.Errorf("load sample swaps: %w", err)
	}

	return &Summary{
		GeneratedAt: g.now(),
		Protocol:    protocol,
		Arbitrages:  arbs,
		SampleSwaps: sample,
	}, nil
}

// RenderText renders a summary for terminal output.
func RenderText(s *Summary) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("=== %s arbitrage summary ===\n", s.Protocol))
	sb.WriteString(fmt.Sprintf("Generated: %s\n", s.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Arbitrage transactions: %d\n\n", len(s.Arbitrages)))

	for _, a := range s.Arbitrages {
		sb.WriteString(fmt.Sprintf("tx %s\n", a.TxID))
		sb.WriteString(fmt.Sprintf("  slot %d  time %s\n", a.Slot, formatBlockTime(a.BlockTime)))
		sb.WriteString(fmt.Sprintf("  profit %d of %s\n", a.ProfitAmount, a.ProfitToken))
		sb.WriteString(fmt.Sprintf("  path %s\n", joinAddresses(a.TokenPath)))
		sb.WriteString(fmt.Sprintf("  amms %s\n", joinAddresses(a.AMMs)))
	}

	if len(s.SampleSwaps) > 0 {
		sb.WriteString(fmt.Sprintf("\nSample swaps (%d records):\n", len(s.SampleSwaps)))
		sb.WriteString("tx_id | slot | amm | input | output\n")
		for _, r := range s.SampleSwaps {
			sb.WriteString(fmt.Sprintf("%s | %d | %s | %d %s | %d %s\n",
				shorten(r.TxID), r.Slot, shorten(r.AMM),
				r.InputAmount, shorten(r.InputMint),
				r.OutputAmount, shorten(r.OutputMint)))
		}
	}

	return sb.String()
}

func formatBlockTime(t int64) string {
	if t == 0 {
		return "unknown"
	}
	return time.Unix(t, 0).UTC().Format(time.RFC3339)
}

func joinAddresses(addrs []domain.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = shorten(a.String())
	}
	return strings.Join(parts, " -> ")
}

// shorten abbreviates a base58 string for table display.
func shorten(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + ".." + s[len(s)-4:]
}

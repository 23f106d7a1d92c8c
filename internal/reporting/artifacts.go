// Package reporting writes run artifacts and renders result summaries.
package reporting

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"solana-arb-detector/internal/storage"
)

// SampleSwapLimit caps swaps.json at this many distinct transactions.
// The artifact exists for eyeballing decoder output, not as a dataset.
const SampleSwapLimit = 100

// ArtifactWriter dumps a protocol's accumulated results to JSON files.
// Writes are idempotent: re-running a detection pass overwrites the
// previous artifacts with a superset of their content.
type ArtifactWriter struct {
	arbStore  storage.ArbitrageStore
	swapStore storage.SwapRecordStore
	outDir    string
}

// NewArtifactWriter creates a writer rooted at outDir. Files land in
// outDir/<protocol>/.
func NewArtifactWriter(arbStore storage.ArbitrageStore, swapStore storage.SwapRecordStore, outDir string) *ArtifactWriter {
	return &ArtifactWriter{arbStore: arbStore, swapStore: swapStore, outDir: outDir}
}

// Write produces arbitrages.json (ordered arbitrage tx-id list) and
// swaps.json (raw decoded swaps from up to SampleSwapLimit transactions)
// for one protocol.
func (w *ArtifactWriter) Write(ctx context.Context, protocol string) error {
	dir := filepath.Join(w.outDir, protocol)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	txIDs, err := w.arbStore.ListTxIDs(ctx, protocol)
	if err != nil {
		return fmt.Errorf("list arbitrages: %w", err)
	}
	if txIDs == nil {
		txIDs = []string{}
	}
	if err := writeJSON(filepath.Join(dir, "arbitrages.json"), txIDs); err != nil {
		return err
	}

	sample, err := w.swapStore.Sample(ctx, protocol, SampleSwapLimit)
	if err != nil {
		return fmt.Errorf("sample swaps: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, "swaps.json"), sample); err != nil {
		return err
	}

	return nil
}

// writeJSON marshals v with indentation and replaces the target file
// via temp-file rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"solana-arb-detector/internal/config"
	"solana-arb-detector/internal/reporting"
	pgstore "solana-arb-detector/internal/storage/postgres"
)

func main() {
	protocolsPath := flag.String("protocols", "protocols.toml", "Path to the protocols TOML file")
	protocol := flag.String("protocol", "", "Report a single protocol (default: all configured)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	sampleTxs := flag.Int("sample", 10, "Transactions of sample swaps to print")
	outDir := flag.String("out-dir", "", "Also write JSON artifacts to this directory (empty to skip)")
	timeout := flag.Duration("timeout", 60*time.Second, "Overall timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	names, err := resolveProtocols(*protocolsPath, *protocol)
	if err != nil {
		logger.Fatalf("Resolve protocols: %v", err)
	}

	pool, err := pgstore.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("Connect to postgres: %v", err)
	}
	defer pool.Close()

	arbStore := pgstore.NewArbitrageStore(pool)
	swapStore := pgstore.NewSwapRecordStore(pool)
	gen := reporting.NewGenerator(arbStore, swapStore)

	for _, name := range names {
		summary, err := gen.Generate(ctx, name, *sampleTxs)
		if err != nil {
			logger.Fatalf("Generate summary for %s: %v", name, err)
		}
		fmt.Print(reporting.RenderText(summary))
		fmt.Println()
	}

	if *outDir != "" {
		w := reporting.NewArtifactWriter(arbStore, swapStore, *outDir)
		for _, name := range names {
			if err := w.Write(ctx, name); err != nil {
				logger.Fatalf("Write artifacts for %s: %v", name, err)
			}
			logger.Printf("Artifacts for %s written to %s", name, *outDir)
		}
	}
}

// resolveProtocols returns the protocol names to report on.
func resolveProtocols(path, single string) ([]string, error) {
	if single != "" {
		return []string{single}, nil
	}

	protocols, err := config.LoadProtocols(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(protocols))
	for i, p := range protocols {
		names[i] = p.Name
	}
	return names, nil
}

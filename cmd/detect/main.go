package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-arb-detector/internal/config"
	"solana-arb-detector/internal/dedup"
	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/ingestion"
	"solana-arb-detector/internal/observability"
	"solana-arb-detector/internal/reporting"
	"solana-arb-detector/internal/solana"
	"solana-arb-detector/internal/storage"
	chstore "solana-arb-detector/internal/storage/clickhouse"
	"solana-arb-detector/internal/storage/memory"
	"solana-arb-detector/internal/storage/migrations"
	pgstore "solana-arb-detector/internal/storage/postgres"
)

func main() {
	// Parse flags
	mode := flag.String("mode", "poll", "Detection mode: poll or live")
	rpcEndpoint := flag.String("rpc-endpoint", "", "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", "", "Solana WebSocket endpoint (live mode)")
	source := flag.String("source", "helius", "Signature source for poll mode: helius or rpc")
	protocolsPath := flag.String("protocols", "protocols.toml", "Path to the protocols TOML file")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse DSN for the swap archive (empty to disable)")
	redisAddr := flag.String("redis-addr", "", "Redis address for persistent dedup (empty for in-memory)")
	outDir := flag.String("out-dir", "out", "Directory for JSON artifacts")
	interval := flag.Duration("interval", 10*time.Second, "Polling interval")
	listLimit := flag.Int("limit", 100, "Transactions listed per polling cycle")
	workers := flag.Int("workers", 4, "Concurrent transaction fetches per protocol")
	runFor := flag.Duration("run-for", 0, "Stop after this duration (0 = run until signal)")
	rps := flag.Float64("rpc-rps", 10, "RPC request rate limit per second")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[detect] ", log.LstdFlags|log.Lshortfile)

	// Start metrics server if enabled
	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	protocols, err := config.LoadProtocols(*protocolsPath)
	if err != nil {
		logger.Fatalf("Load protocols: %v", err)
	}
	for _, p := range protocols {
		logger.Printf("Monitoring %s (%s), event tag %s", p.Name, p.ProgramID, p.Discriminator)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	if *runFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, *runFor)
	}

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		select {
		case sig := <-sigCh:
			logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		case <-ctx.Done():
			return
		}
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	opts := runOptions{
		rpcEndpoint:   *rpcEndpoint,
		wsEndpoint:    *wsEndpoint,
		source:        *source,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		redisAddr:     *redisAddr,
		outDir:        *outDir,
		interval:      *interval,
		listLimit:     *listLimit,
		workers:       *workers,
		rps:           *rps,
		useMemory:     *useMemory,
	}

	switch *mode {
	case "poll":
		err = runPoll(ctx, logger, protocols, opts)
	case "live":
		err = runLive(ctx, logger, protocols, opts)
	default:
		logger.Fatalf("Unknown mode: %s", *mode)
	}

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

type runOptions struct {
	rpcEndpoint   string
	wsEndpoint    string
	source        string
	postgresDSN   string
	clickhouseDSN string
	redisAddr     string
	outDir        string
	interval      time.Duration
	listLimit     int
	workers       int
	rps           float64
	useMemory     bool
}

// stores bundles the persistence backends for one run.
type stores struct {
	arb     storage.ArbitrageStore
	swaps   storage.SwapRecordStore
	archive storage.SwapArchive
	seen    dedup.Set
	cleanup []func()
}

func (s *stores) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

// buildStores connects the configured backends. Memory mode keeps
// everything in-process; otherwise Postgres is the bookkeeping store,
// with optional ClickHouse archive and Redis dedup.
func buildStores(ctx context.Context, logger *log.Logger, opts runOptions) (*stores, error) {
	s := &stores{seen: dedup.NewMemorySet()}

	if opts.useMemory {
		mem := memory.NewSwapRecordStore()
		s.arb = memory.NewArbitrageStore()
		s.swaps = mem
		return s, nil
	}

	if opts.postgresDSN == "" {
		return nil, fmt.Errorf("--postgres-dsn is required (use --use-memory for in-memory storage)")
	}

	pool, err := pgstore.NewPool(ctx, opts.postgresDSN)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	s.cleanup = append(s.cleanup, pool.Close)

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		s.close()
		return nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	s.arb = pgstore.NewArbitrageStore(pool)
	s.swaps = pgstore.NewSwapRecordStore(pool)

	if opts.clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, opts.clickhouseDSN)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("run clickhouse migrations: %w", err)
		}
		s.cleanup = append(s.cleanup, func() { conn.Close() })
		s.archive = chstore.NewSwapArchiveStore(conn)
	}

	if opts.redisAddr != "" {
		set, err := dedup.NewRedisSet(ctx, opts.redisAddr, "", 0)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		s.cleanup = append(s.cleanup, func() { set.Close() })
		s.seen = set
	}

	logger.Println("Storage connected")
	return s, nil
}

// buildSource picks the signature source for poll mode.
func buildSource(kind string, rpc solana.RPCClient) (ingestion.SignatureSource, error) {
	switch kind {
	case "helius":
		apiKey, err := config.HeliusAPIKey()
		if err != nil {
			return nil, err
		}
		return ingestion.NewHeliusSource(solana.NewEnhancedClient(apiKey)), nil
	case "rpc":
		return ingestion.NewRPCSource(rpc), nil
	default:
		return nil, fmt.Errorf("unknown source: %s", kind)
	}
}

// runPoll runs the listing loop for every protocol until ctx is done,
// then dumps artifacts.
func runPoll(ctx context.Context, logger *log.Logger, protocols []domain.Protocol, opts runOptions) error {
	if opts.rpcEndpoint == "" {
		return fmt.Errorf("--rpc-endpoint is required for poll mode")
	}

	rpc := solana.NewHTTPClient(opts.rpcEndpoint, solana.WithRateLimit(opts.rps, int(opts.rps)))

	src, err := buildSource(opts.source, rpc)
	if err != nil {
		return err
	}

	s, err := buildStores(ctx, logger, opts)
	if err != nil {
		return err
	}
	defer s.close()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range protocols {
		poller := ingestion.NewPoller(ingestion.PollerOptions{
			Protocol:  p,
			Source:    src,
			RPC:       rpc,
			Seen:      s.seen,
			ArbStore:  s.arb,
			SwapStore: s.swaps,
			Archive:   s.archive,
			ListLimit: opts.listLimit,
			Workers:   opts.workers,
			Interval:  opts.interval,
			Logger:    logger,
		})
		g.Go(func() error { return poller.Run(gctx) })
	}
	runErr := g.Wait()

	if err := writeArtifacts(logger, protocols, s, opts.outDir); err != nil {
		logger.Printf("Write artifacts: %v", err)
	}
	return runErr
}

// runLive subscribes to log notifications for every protocol, then
// dumps artifacts.
func runLive(ctx context.Context, logger *log.Logger, protocols []domain.Protocol, opts runOptions) error {
	if opts.wsEndpoint == "" {
		return fmt.Errorf("--ws-endpoint is required for live mode")
	}

	s, err := buildStores(ctx, logger, opts)
	if err != nil {
		return err
	}
	defer s.close()

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range protocols {
		stream, err := solana.DialLogStream(ctx, opts.wsEndpoint, solana.LogsFilter{
			Mentions: []string{p.ProgramID.String()},
		}, nil)
		if err != nil {
			return fmt.Errorf("subscribe logs for %s: %w", p.Name, err)
		}
		defer stream.Close()

		watcher := ingestion.NewWatcher(ingestion.WatcherOptions{
			Protocol:      p,
			Notifications: stream.Notifications(),
			Seen:          s.seen,
			ArbStore:      s.arb,
			SwapStore:     s.swaps,
			Archive:       s.archive,
			Logger:        logger,
		})
		g.Go(func() error { return watcher.Run(gctx) })
	}
	runErr := g.Wait()

	if err := writeArtifacts(logger, protocols, s, opts.outDir); err != nil {
		logger.Printf("Write artifacts: %v", err)
	}
	return runErr
}

// writeArtifacts dumps per-protocol JSON artifacts after a run.
// Artifact writing happens after shutdown, so it gets a fresh context.
func writeArtifacts(logger *log.Logger, protocols []domain.Protocol, s *stores, outDir string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := reporting.NewArtifactWriter(s.arb, s.swaps, outDir)
	for _, p := range protocols {
		if err := w.Write(ctx, p.Name); err != nil {
			return fmt.Errorf("artifacts for %s: %w", p.Name, err)
		}
		logger.Printf("Artifacts for %s written to %s", p.Name, outDir)
	}
	return nil
}

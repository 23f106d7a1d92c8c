package ingestion

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"solana-arb-detector/internal/dedup"
	"solana-arb-detector/internal/discovery"
	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/observability"
	"solana-arb-detector/internal/solana"
	"solana-arb-detector/internal/storage"
)

// Poller repeatedly lists recent transactions for one protocol, fetches
// the ones it has not processed, and runs them through extraction and
// evaluation.
type Poller struct {
	protocol  domain.Protocol
	source    SignatureSource
	rpc       solana.RPCClient
	extractor *discovery.Extractor
	seen      dedup.Set
	recorder  *Recorder
	listLimit int
	workers   int
	interval  time.Duration
	logger    *log.Logger
}

// PollerOptions contains configuration for creating a Poller.
type PollerOptions struct {
	Protocol  domain.Protocol
	Source    SignatureSource
	RPC       solana.RPCClient
	Seen      dedup.Set
	ArbStore  storage.ArbitrageStore
	SwapStore storage.SwapRecordStore
	Archive   storage.SwapArchive // optional
	ListLimit int                 // Default: 100
	Workers   int                 // Default: 4
	Interval  time.Duration       // Default: 10s
	Logger    *log.Logger
}

// NewPoller creates a new Poller.
func NewPoller(opts PollerOptions) *Poller {
	listLimit := opts.ListLimit
	if listLimit == 0 {
		listLimit = 100
	}

	workers := opts.Workers
	if workers == 0 {
		workers = 4
	}

	interval := opts.Interval
	if interval == 0 {
		interval = 10 * time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Poller{
		protocol:  opts.Protocol,
		source:    opts.Source,
		rpc:       opts.RPC,
		extractor: discovery.NewExtractor(opts.Protocol.Discriminator),
		seen:      opts.Seen,
		recorder: &Recorder{
			Protocol:  opts.Protocol,
			ArbStore:  opts.ArbStore,
			SwapStore: opts.SwapStore,
			Archive:   opts.Archive,
			Logger:    logger,
		},
		listLimit: listLimit,
		workers:   workers,
		interval:  interval,
		logger:    logger,
	}
}

// CycleStats summarizes one polling cycle.
type CycleStats struct {
	Listed     int // signatures returned by the source
	Skipped    int // already processed
	Processed  int // fetched and evaluated this cycle
	Arbitrages int // profitable loops found this cycle
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Printf("polling %s (%s) every %s", p.protocol.Name, p.protocol.ProgramID, p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		stats, err := p.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			p.logger.Printf("cycle failed: %v", err)
		} else {
			p.logger.Printf("cycle: listed=%d skipped=%d processed=%d arbitrages=%d",
				stats.Listed, stats.Skipped, stats.Processed, stats.Arbitrages)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single list-fetch-evaluate cycle.
func (p *Poller) RunOnce(ctx context.Context) (CycleStats, error) {
	started := time.Now()
	name := p.protocol.Name

	var stats CycleStats

	infos, err := p.source.ListRecent(ctx, p.protocol.ProgramID.String(), p.listLimit)
	if err != nil {
		return stats, err
	}
	stats.Listed = len(infos)
	observability.RecordListed(name, len(infos))

	candidates := make([]solana.TransactionInfo, 0, len(infos))
	for _, info := range infos {
		done, err := p.seen.Seen(ctx, name, info.Signature)
		if err != nil {
			return stats, err
		}
		if done {
			stats.Skipped++
			observability.RecordDedupHit(name)
			continue
		}
		candidates = append(candidates, info)
	}

	var processed, arbs atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, info := range candidates {
		g.Go(func() error {
			ok, err := p.processSignature(gctx, info)
			if err != nil {
				return err
			}
			processed.Add(1)
			if ok {
				arbs.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Processed = int(processed.Load())
	stats.Arbitrages = int(arbs.Load())

	observability.RecordCycle(name, time.Since(started).Seconds(), time.Now().Unix())
	return stats, nil
}

// processSignature fetches one transaction and runs it through the
// recorder. The signature is marked processed only after the work is
// durably done; a failed or absent fetch leaves it eligible for the
// next cycle.
func (p *Poller) processSignature(ctx context.Context, info solana.TransactionInfo) (bool, error) {
	name := p.protocol.Name

	fetchStart := time.Now()
	tx, err := p.rpc.GetTransaction(ctx, info.Signature)
	observability.RecordFetch(name, time.Since(fetchStart).Seconds(), err)
	if err != nil {
		// Absent this cycle; stays out of the seen set.
		p.logger.Printf("fetch %s: %v", info.Signature, err)
		return false, nil
	}
	if tx == nil {
		return false, nil
	}

	found := false
	if tx.Meta == nil || tx.Meta.Err == nil {
		blockTime := tx.BlockTime
		if blockTime == 0 {
			blockTime = info.BlockTime
		}
		found, err = p.recorder.Record(ctx, domain.TransactionRecord{
			Signature: info.Signature,
			Slot:      tx.Slot,
			BlockTime: blockTime,
			Events:    p.extractor.FromInnerInstructions(tx),
		})
		if err != nil {
			return false, err
		}
	}

	if err := p.seen.Mark(ctx, name, info.Signature); err != nil {
		return false, err
	}
	return found, nil
}

package ingestion

import (
	"context"
	"log"

	"solana-arb-detector/internal/dedup"
	"solana-arb-detector/internal/discovery"
	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/observability"
	"solana-arb-detector/internal/solana"
	"solana-arb-detector/internal/storage"
)

// Watcher consumes logsSubscribe notifications and decodes swap events
// straight from log lines, skipping the full-transaction fetch. It
// shares dedup state with the poller, so mixed deployments never
// process a transaction twice.
type Watcher struct {
	protocol      domain.Protocol
	notifications <-chan solana.LogNotification
	extractor     *discovery.Extractor
	seen          dedup.Set
	recorder      *Recorder
	logger        *log.Logger
}

// WatcherOptions contains configuration for creating a Watcher.
type WatcherOptions struct {
	Protocol      domain.Protocol
	Notifications <-chan solana.LogNotification
	Seen          dedup.Set
	ArbStore      storage.ArbitrageStore
	SwapStore     storage.SwapRecordStore
	Archive       storage.SwapArchive // optional
	Logger        *log.Logger
}

// NewWatcher creates a new Watcher.
func NewWatcher(opts WatcherOptions) *Watcher {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Watcher{
		protocol:      opts.Protocol,
		notifications: opts.Notifications,
		extractor:     discovery.NewExtractor(opts.Protocol.Discriminator),
		seen:          opts.Seen,
		recorder: &Recorder{
			Protocol:  opts.Protocol,
			ArbStore:  opts.ArbStore,
			SwapStore: opts.SwapStore,
			Archive:   opts.Archive,
			Logger:    logger,
		},
		logger: logger,
	}
}

// Run consumes notifications until the context is cancelled or the
// stream closes.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Printf("watching logs for %s (%s)", w.protocol.Name, w.protocol.ProgramID)

	for {
		select {
		case <-ctx.Done():
			return nil
		case note, ok := <-w.notifications:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, note); err != nil {
				w.logger.Printf("handle %s: %v", note.Signature, err)
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, note solana.LogNotification) error {
	// Failed transactions execute nothing; their logs are noise.
	if note.Err != nil {
		return nil
	}

	name := w.protocol.Name
	done, err := w.seen.Seen(ctx, name, note.Signature)
	if err != nil {
		return err
	}
	if done {
		observability.RecordDedupHit(name)
		return nil
	}

	// Log notifications carry no block time; 0 means unknown.
	if _, err := w.recorder.Record(ctx, domain.TransactionRecord{
		Signature: note.Signature,
		Slot:      note.Slot,
		Events:    w.extractor.FromLogs(note.Logs),
	}); err != nil {
		return err
	}

	return w.seen.Mark(ctx, name, note.Signature)
}

package discovery

import (
	"encoding/base64"
	"sort"
	"strings"

	"github.com/mr-tron/base58"

	"solana-arb-detector/internal/domain"
	"solana-arb-detector/internal/solana"
)

// Known aggregator programs.
const (
	// DFlowAggregator is the DFlow swap aggregator program ID.
	DFlowAggregator = "DF1ow4tspfHX9JwWJsAb9epbkA8hmpSEAtxXy1V27QBH"
)

// DFlowSwapEventDiscriminator tags the aggregator's emitted SwapEvent record.
var DFlowSwapEventDiscriminator = domain.Discriminator{0xe4, 0x45, 0xa5, 0x2e, 0x51, 0xcb, 0x9a, 0x1d}

// programDataPrefix marks log lines carrying base64 event payloads.
const programDataPrefix = "Program data: "

// Extractor scans a transaction's data-bearing records for swap events
// matching one configured discriminator. Records that fail to decode for
// any reason are skipped; unrelated and malformed records are expected.
type Extractor struct {
	disc domain.Discriminator
}

// NewExtractor creates an extractor for one event discriminator.
func NewExtractor(disc domain.Discriminator) *Extractor {
	return &Extractor{disc: disc}
}

// FromInnerInstructions extracts swap events from a transaction's inner
// instructions. Each inner instruction group carries the index of the
// top-level instruction that produced it; that index becomes the event's
// InstructionIndex so the evaluator sees true execution order. Events in
// the same group keep encounter order.
func (x *Extractor) FromInnerInstructions(tx *solana.Transaction) []domain.SwapEvent {
	if tx == nil || tx.Meta == nil {
		return nil
	}

	var events []domain.SwapEvent
	for _, group := range tx.Meta.InnerInstructions {
		for _, inst := range group.Instructions {
			if inst.Data == "" {
				continue
			}

			raw, err := base58.Decode(inst.Data)
			if err != nil {
				continue
			}

			e, ok := x.decodeTagged(raw)
			if !ok {
				continue
			}

			e.InstructionIndex = group.Index
			events = append(events, e)
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].InstructionIndex < events[j].InstructionIndex
	})

	return events
}

// FromLogs extracts swap events from "Program data:" log lines. The live
// WebSocket path uses this: notifications carry logs before the full
// transaction is fetchable. InstructionIndex is the log line position,
// which preserves emission order within the transaction.
func (x *Extractor) FromLogs(logs []string) []domain.SwapEvent {
	var events []domain.SwapEvent
	for i, line := range logs {
		payload, found := strings.CutPrefix(line, programDataPrefix)
		if !found {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			continue
		}

		e, ok := x.decodeTagged(raw)
		if !ok {
			continue
		}

		e.InstructionIndex = i
		events = append(events, e)
	}

	return events
}

// decodeTagged checks the discriminator at offset 0 and decodes the record.
func (x *Extractor) decodeTagged(raw []byte) (domain.SwapEvent, bool) {
	if len(raw) < SwapEventSize || !x.disc.Matches(raw) {
		return domain.SwapEvent{}, false
	}

	e, err := DecodeSwapEvent(raw, 0)
	if err != nil {
		return domain.SwapEvent{}, false
	}
	return e, true
}

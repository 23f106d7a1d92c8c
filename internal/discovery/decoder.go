// Package discovery locates and decodes swap event records embedded in
// transaction payloads.
package discovery

import (
	"encoding/binary"
	"errors"

	"solana-arb-detector/internal/domain"
)

// Swap event record layout, relative to the tag position. The record is
// emitted by the aggregator program via self-CPI; the 8 bytes after the
// tag are reserved and skipped without interpretation.
const (
	SwapEventSize = 128

	offReserved     = 8
	offAMM          = 16
	offInputMint    = 48
	offInputAmount  = 80
	offOutputMint   = 88
	offOutputAmount = 120
)

// ErrShortBuffer is returned when fewer than SwapEventSize bytes are
// available at the requested offset. Decoding is all-or-nothing.
var ErrShortBuffer = errors.New("buffer too short for swap event")

// DecodeSwapEvent decodes one fixed-layout swap event record starting at
// offset. The caller is responsible for checking the 8-byte discriminator
// at the same position. Amounts are not validated: zero and maximal
// values are legal.
func DecodeSwapEvent(data []byte, offset int) (domain.SwapEvent, error) {
	if offset < 0 || offset+SwapEventSize > len(data) {
		return domain.SwapEvent{}, ErrShortBuffer
	}

	rec := data[offset : offset+SwapEventSize]

	var e domain.SwapEvent
	copy(e.AMM[:], rec[offAMM:offInputMint])
	copy(e.InputMint[:], rec[offInputMint:offInputAmount])
	e.InputAmount = binary.LittleEndian.Uint64(rec[offInputAmount:offOutputMint])
	copy(e.OutputMint[:], rec[offOutputMint:offOutputAmount])
	e.OutputAmount = binary.LittleEndian.Uint64(rec[offOutputAmount:SwapEventSize])

	return e, nil
}

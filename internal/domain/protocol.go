package domain

import (
	"encoding/hex"
	"fmt"
)

// DiscriminatorLen is the size of the 8-byte event type tag that prefixes
// an encoded event record.
const DiscriminatorLen = 8

// Discriminator is the fixed 8-byte tag identifying an event record type.
type Discriminator [DiscriminatorLen]byte

// DiscriminatorFromHex parses a 16-character hex string, e.g. "e445a52e51cb9a1d".
func DiscriminatorFromHex(s string) (Discriminator, error) {
	var d Discriminator
	b, err := hex.DecodeString(s)
	if err != nil {
		return d, fmt.Errorf("decode discriminator hex: %w", err)
	}
	if len(b) != DiscriminatorLen {
		return d, fmt.Errorf("discriminator must be %d bytes, got %d", DiscriminatorLen, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// String returns the hex encoding.
func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

// Matches reports whether data begins with this discriminator.
func (d Discriminator) Matches(data []byte) bool {
	if len(data) < DiscriminatorLen {
		return false
	}
	return Discriminator(data[:DiscriminatorLen]) == d
}

// Protocol is one tracked market program. Each protocol gets its own
// dedup set and result accumulation; results are never merged across
// protocols.
type Protocol struct {
	Name          string
	ProgramID     Address
	Discriminator Discriminator
}

package domain

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// AddressLen is the size of a Solana account address in bytes.
const AddressLen = 32

// Address is a 32-byte Solana account address (pubkey, mint, program ID).
// It is a value type: two addresses are equal iff their bytes are equal.
// The base58 form is a display encoding only.
type Address [AddressLen]byte

// AddressFromBytes copies a 32-byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("address must be %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// AddressFromBase58 decodes a base58-encoded address.
func AddressFromBase58(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("decode base58 address: %w", err)
	}
	return AddressFromBytes(b)
}

// MustAddress decodes a base58 address and panics on failure.
// For package-level constants and tests only.
func MustAddress(s string) Address {
	a, err := AddressFromBase58(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Bytes returns a copy of the raw 32 bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressLen)
	copy(b, a[:])
	return b
}

// String returns the canonical base58 encoding.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the address is all zero bytes.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Program-derived addresses (AMM pools, vaults) are off-curve, so an
// on-curve AMM address in decoded event data is a data-quality signal.
func (a Address) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

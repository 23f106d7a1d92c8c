package discovery

import (
	"encoding/binary"
	"errors"
	"testing"

	"solana-arb-detector/internal/domain"
)

// buildRecord assembles a valid 128-byte swap event record.
func buildRecord(disc domain.Discriminator, amm, inMint, outMint domain.Address, inAmt, outAmt uint64) []byte {
	rec := make([]byte, SwapEventSize)
	copy(rec[0:8], disc[:])
	// bytes 8-15 reserved, left zero
	copy(rec[offAMM:], amm[:])
	copy(rec[offInputMint:], inMint[:])
	binary.LittleEndian.PutUint64(rec[offInputAmount:], inAmt)
	copy(rec[offOutputMint:], outMint[:])
	binary.LittleEndian.PutUint64(rec[offOutputAmount:], outAmt)
	return rec
}

func fillAddress(b byte) domain.Address {
	var a domain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func TestDecodeSwapEvent(t *testing.T) {
	amm := fillAddress(0xAA)
	inMint := fillAddress(0x01)
	outMint := fillAddress(0x02)

	rec := buildRecord(DFlowSwapEventDiscriminator, amm, inMint, outMint, 1000, 500)

	e, err := DecodeSwapEvent(rec, 0)
	if err != nil {
		t.Fatalf("DecodeSwapEvent: %v", err)
	}

	if e.AMM != amm {
		t.Errorf("amm mismatch: %s != %s", e.AMM, amm)
	}
	if e.InputMint != inMint {
		t.Errorf("input mint mismatch: %s != %s", e.InputMint, inMint)
	}
	if e.OutputMint != outMint {
		t.Errorf("output mint mismatch: %s != %s", e.OutputMint, outMint)
	}
	if e.InputAmount != 1000 {
		t.Errorf("expected input amount 1000, got %d", e.InputAmount)
	}
	if e.OutputAmount != 500 {
		t.Errorf("expected output amount 500, got %d", e.OutputAmount)
	}
}

func TestDecodeSwapEvent_ShortBuffer(t *testing.T) {
	for _, n := range []int{0, 1, 8, 16, 64, 127} {
		if _, err := DecodeSwapEvent(make([]byte, n), 0); !errors.Is(err, ErrShortBuffer) {
			t.Errorf("len %d: expected ErrShortBuffer, got %v", n, err)
		}
	}
}

func TestDecodeSwapEvent_OffsetPastEnd(t *testing.T) {
	rec := buildRecord(DFlowSwapEventDiscriminator,
		fillAddress(1), fillAddress(2), fillAddress(3), 1, 2)

	// 128 bytes total: any positive offset leaves too few bytes.
	if _, err := DecodeSwapEvent(rec, 1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer at offset 1, got %v", err)
	}
	if _, err := DecodeSwapEvent(rec, -1); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("expected ErrShortBuffer at negative offset, got %v", err)
	}
}

func TestDecodeSwapEvent_AtOffset(t *testing.T) {
	rec := buildRecord(DFlowSwapEventDiscriminator,
		fillAddress(1), fillAddress(2), fillAddress(3), 42, 43)

	buf := append(make([]byte, 16), rec...)

	e, err := DecodeSwapEvent(buf, 16)
	if err != nil {
		t.Fatalf("DecodeSwapEvent at offset: %v", err)
	}
	if e.InputAmount != 42 || e.OutputAmount != 43 {
		t.Errorf("wrong amounts decoded at offset: %d/%d", e.InputAmount, e.OutputAmount)
	}
}

func TestDecodeSwapEvent_FieldRoundTrip(t *testing.T) {
	// Opaque 32-byte fields must survive decode and re-encode byte for byte.
	amm := fillAddress(0x7F)
	inMint := fillAddress(0x11)
	outMint := fillAddress(0xEE)

	rec := buildRecord(DFlowSwapEventDiscriminator, amm, inMint, outMint, 0, ^uint64(0))

	e, err := DecodeSwapEvent(rec, 0)
	if err != nil {
		t.Fatalf("DecodeSwapEvent: %v", err)
	}

	reencoded, err := domain.AddressFromBase58(e.AMM.String())
	if err != nil {
		t.Fatalf("re-encode amm: %v", err)
	}
	if reencoded != amm {
		t.Error("amm bytes changed through string encoding")
	}

	// Extreme amounts are legal outputs, not errors.
	if e.InputAmount != 0 {
		t.Errorf("expected zero input amount, got %d", e.InputAmount)
	}
	if e.OutputAmount != ^uint64(0) {
		t.Errorf("expected max output amount, got %d", e.OutputAmount)
	}
}

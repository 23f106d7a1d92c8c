// Package arbitrage decides whether a transaction's swap sequence forms a
// profitable atomic arbitrage: a closed token loop with net positive output.
package arbitrage

import (
	"math"
	"math/big"

	"solana-arb-detector/internal/domain"
)

// Evaluate nets the token flow of one transaction's ordered swap sequence
// and returns a result iff the sequence is a closed loop (first input mint
// equals last output mint, byte-exact) with a strictly positive balance of
// that token. A positive balance on any other token is not arbitrage and
// is never reported.
//
// Evaluate is pure: the same inputs always produce the same verdict.
func Evaluate(txID string, slot, blockTime int64, swaps []domain.SwapEvent) (*domain.ArbitrageResult, bool) {
	if len(swaps) < 2 {
		return nil, false
	}

	// Balances are signed and arbitrary precision: summing many u64
	// amounts on either side must never wrap.
	balances := make(map[domain.Address]*big.Int, len(swaps)*2)
	balanceOf := func(a domain.Address) *big.Int {
		b, ok := balances[a]
		if !ok {
			b = new(big.Int)
			balances[a] = b
		}
		return b
	}

	var (
		amms      []domain.Address
		tokenPath []domain.Address
		seenAMM   = make(map[domain.Address]bool)
		seenToken = make(map[domain.Address]bool)
	)

	amount := new(big.Int)
	for _, s := range swaps {
		if !seenAMM[s.AMM] {
			seenAMM[s.AMM] = true
			amms = append(amms, s.AMM)
		}

		balanceOf(s.InputMint).Sub(balanceOf(s.InputMint), amount.SetUint64(s.InputAmount))
		if !seenToken[s.InputMint] {
			seenToken[s.InputMint] = true
			tokenPath = append(tokenPath, s.InputMint)
		}

		balanceOf(s.OutputMint).Add(balanceOf(s.OutputMint), amount.SetUint64(s.OutputAmount))
		if !seenToken[s.OutputMint] {
			seenToken[s.OutputMint] = true
			tokenPath = append(tokenPath, s.OutputMint)
		}
	}

	firstInput := swaps[0].InputMint
	lastOutput := swaps[len(swaps)-1].OutputMint
	if firstInput != lastOutput {
		return nil, false
	}

	net := balances[firstInput]
	if net.Sign() <= 0 {
		return nil, false
	}

	// Real token supplies are u64-bounded, so a closed-loop profit above
	// MaxUint64 does not occur; clamp rather than truncate if it ever did.
	profit := uint64(math.MaxUint64)
	if net.IsUint64() {
		profit = net.Uint64()
	}

	result := &domain.ArbitrageResult{
		TxID:         txID,
		Slot:         slot,
		BlockTime:    blockTime,
		AMMs:         amms,
		TokenPath:    tokenPath,
		ProfitToken:  firstInput,
		ProfitAmount: profit,
		Swaps:        append([]domain.SwapEvent(nil), swaps...),
	}
	return result, true
}

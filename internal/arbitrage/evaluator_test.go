package arbitrage

import (
	"reflect"
	"testing"

	"solana-arb-detector/internal/domain"
)

func addr(b byte) domain.Address {
	var a domain.Address
	for i := range a {
		a[i] = b
	}
	return a
}

var (
	tokenA = addr(0x0A)
	tokenB = addr(0x0B)
	tokenC = addr(0x0C)
	amm1   = addr(0xA1)
	amm2   = addr(0xA2)
	amm3   = addr(0xA3)
)

func swap(amm, in, out domain.Address, inAmt, outAmt uint64, idx int) domain.SwapEvent {
	return domain.SwapEvent{
		AMM:              amm,
		InputMint:        in,
		OutputMint:       out,
		InputAmount:      inAmt,
		OutputAmount:     outAmt,
		InstructionIndex: idx,
	}
}

func TestEvaluate_FewerThanTwoSwaps(t *testing.T) {
	if _, ok := Evaluate("tx", 1, 0, nil); ok {
		t.Error("expected no arbitrage for empty sequence")
	}

	single := []domain.SwapEvent{swap(amm1, tokenA, tokenA, 100, 200, 0)}
	if _, ok := Evaluate("tx", 1, 0, single); ok {
		t.Error("expected no arbitrage for single swap, even a self-profitable one")
	}
}

func TestEvaluate_TwoHopProfit(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 500, 0),
		swap(amm2, tokenB, tokenA, 500, 1100, 1),
	}

	res, ok := Evaluate("tx1", 42, 1700000000, swaps)
	if !ok {
		t.Fatal("expected arbitrage")
	}

	if res.ProfitToken != tokenA {
		t.Errorf("expected profit token A, got %s", res.ProfitToken)
	}
	if res.ProfitAmount != 100 {
		t.Errorf("expected profit 100, got %d", res.ProfitAmount)
	}
	if res.TxID != "tx1" || res.Slot != 42 || res.BlockTime != 1700000000 {
		t.Errorf("transaction identity not carried: %+v", res)
	}
	if len(res.Swaps) != 2 {
		t.Errorf("expected full swap sequence, got %d", len(res.Swaps))
	}
}

func TestEvaluate_TwoHopLoss(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 500, 0),
		swap(amm2, tokenB, tokenA, 500, 900, 1),
	}

	if _, ok := Evaluate("tx", 1, 0, swaps); ok {
		t.Error("closed loop at a loss must not be reported")
	}
}

func TestEvaluate_TwoHopBreakEven(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 500, 0),
		swap(amm2, tokenB, tokenA, 500, 1000, 1),
	}

	if _, ok := Evaluate("tx", 1, 0, swaps); ok {
		t.Error("zero net balance is not profit")
	}
}

func TestEvaluate_ThreeHopLoop(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 990, 0),
		swap(amm2, tokenB, tokenC, 990, 985, 1),
		swap(amm3, tokenC, tokenA, 985, 1005, 2),
	}

	res, ok := Evaluate("tx3", 7, 0, swaps)
	if !ok {
		t.Fatal("expected arbitrage")
	}

	if res.ProfitAmount != 5 {
		t.Errorf("expected profit 5, got %d", res.ProfitAmount)
	}

	wantPath := []domain.Address{tokenA, tokenB, tokenC}
	if !reflect.DeepEqual(res.TokenPath, wantPath) {
		t.Errorf("expected token path A,B,C got %v", res.TokenPath)
	}

	wantAMMs := []domain.Address{amm1, amm2, amm3}
	if !reflect.DeepEqual(res.AMMs, wantAMMs) {
		t.Errorf("expected AMMs in first-seen order, got %v", res.AMMs)
	}
}

func TestEvaluate_OpenPathNotReported(t *testing.T) {
	// A -> B, B -> C: token C shows a positive balance but the loop
	// never closes back to A.
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 2000, 0),
		swap(amm2, tokenB, tokenC, 1000, 5000, 1),
	}

	if _, ok := Evaluate("tx", 1, 0, swaps); ok {
		t.Error("open path must not be reported even with positive balances")
	}
}

func TestEvaluate_RepeatedAMMListedOnce(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 500, 0),
		swap(amm1, tokenB, tokenA, 500, 1100, 1),
	}

	res, ok := Evaluate("tx", 1, 0, swaps)
	if !ok {
		t.Fatal("expected arbitrage")
	}
	if len(res.AMMs) != 1 {
		t.Errorf("expected 1 distinct AMM, got %d", len(res.AMMs))
	}
}

func TestEvaluate_DegenerateSelfSwap(t *testing.T) {
	// input_mint == output_mint participates in netting without special
	// casing: the self swap contributes -100 +150 = +50 to token A.
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenA, 100, 150, 0),
		swap(amm2, tokenA, tokenA, 10, 20, 1),
	}

	res, ok := Evaluate("tx", 1, 0, swaps)
	if !ok {
		t.Fatal("expected closed-loop result from degenerate self swaps")
	}
	if res.ProfitAmount != 60 {
		t.Errorf("expected profit 60, got %d", res.ProfitAmount)
	}
	if len(res.TokenPath) != 1 {
		t.Errorf("expected single token in path, got %v", res.TokenPath)
	}
}

func TestEvaluate_LargeAmountsDoNotWrap(t *testing.T) {
	huge := uint64(1) << 63

	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, huge, huge, 0),
		swap(amm2, tokenB, tokenA, huge, huge+1000, 1),
	}

	res, ok := Evaluate("tx", 1, 0, swaps)
	if !ok {
		t.Fatal("expected arbitrage")
	}
	if res.ProfitAmount != 1000 {
		t.Errorf("expected profit 1000 with no wraparound, got %d", res.ProfitAmount)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 990, 0),
		swap(amm2, tokenB, tokenC, 990, 985, 1),
		swap(amm3, tokenC, tokenA, 985, 1005, 2),
	}

	first, ok1 := Evaluate("tx", 9, 123, swaps)
	second, ok2 := Evaluate("tx", 9, 123, swaps)

	if ok1 != ok2 {
		t.Fatal("verdict changed between identical evaluations")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestEvaluate_DoesNotAliasInput(t *testing.T) {
	swaps := []domain.SwapEvent{
		swap(amm1, tokenA, tokenB, 1000, 500, 0),
		swap(amm2, tokenB, tokenA, 500, 1100, 1),
	}

	res, ok := Evaluate("tx", 1, 0, swaps)
	if !ok {
		t.Fatal("expected arbitrage")
	}

	swaps[0].InputAmount = 999999
	if res.Swaps[0].InputAmount != 1000 {
		t.Error("result aliases caller's swap slice")
	}
}

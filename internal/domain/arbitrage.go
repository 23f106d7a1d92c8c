package domain

// ArbitrageResult summarizes one transaction whose swap sequence forms a
// profitable closed loop. Created only by the evaluator, never mutated.
type ArbitrageResult struct {
	TxID         string
	Slot         int64
	BlockTime    int64
	AMMs         []Address   // distinct markets, first-encountered order
	TokenPath    []Address   // distinct tokens, first-encountered order
	ProfitToken  Address     // token that opens and closes the loop
	ProfitAmount uint64      // net positive balance of ProfitToken
	Swaps        []SwapEvent // the full ordered sequence that produced this result
}

package domain

// SwapEvent is one exchange performed by one AMM inside a transaction,
// decoded from the aggregator's emitted event record.
type SwapEvent struct {
	AMM              Address // market that executed the swap
	InputMint        Address // token paid in
	OutputMint       Address // token received
	InputAmount      uint64  // base units, no decimal scaling
	OutputAmount     uint64  // base units, no decimal scaling
	InstructionIndex int     // outer instruction index, orders events within the transaction
}

// SwapRecord is a SwapEvent flattened with its transaction context,
// the shape persisted to stores and sample artifacts.
type SwapRecord struct {
	TxID             string `json:"tx_id"`
	Slot             int64  `json:"block_slot"`
	BlockTime        int64  `json:"block_time"`
	AMM              string `json:"amm"`
	InputMint        string `json:"inputMint"`
	InputAmount      uint64 `json:"inputAmount"`
	OutputMint       string `json:"outputMint"`
	OutputAmount     uint64 `json:"outputAmount"`
	InstructionIndex int    `json:"instruction_index"`
}

// NewSwapRecord flattens an event with its owning transaction's identity.
func NewSwapRecord(txID string, slot, blockTime int64, e SwapEvent) SwapRecord {
	return SwapRecord{
		TxID:             txID,
		Slot:             slot,
		BlockTime:        blockTime,
		AMM:              e.AMM.String(),
		InputMint:        e.InputMint.String(),
		InputAmount:      e.InputAmount,
		OutputMint:       e.OutputMint.String(),
		OutputAmount:     e.OutputAmount,
		InstructionIndex: e.InstructionIndex,
	}
}

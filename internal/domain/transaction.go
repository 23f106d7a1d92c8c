package domain

// TransactionRecord is one blockchain transaction with its decoded swap
// events, ordered by InstructionIndex. Immutable once constructed.
type TransactionRecord struct {
	Signature string      // globally unique transaction identifier
	Slot      int64       // ledger position, monotonically non-decreasing
	BlockTime int64       // Unix seconds, 0 when the node did not report one
	Events    []SwapEvent // ordered by InstructionIndex, ties in encounter order
}

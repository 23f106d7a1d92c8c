package solana

import "context"

// RPCClient defines the Solana RPC HTTP interface consumed by ingestion.
type RPCClient interface {
	// GetTransaction retrieves a confirmed transaction by signature.
	// Returns nil when the transaction is not found.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetSignaturesForAddress retrieves signatures mentioning an address,
	// newest first, with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)
}

// Transaction represents a Solana transaction as returned by getTransaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix seconds, 0 when the node reported none
	Meta      *TransactionMeta
}

// TransactionMeta contains the execution metadata ingestion cares about:
// log messages and inner instructions, where aggregator programs emit
// their event records via self-CPI.
type TransactionMeta struct {
	Err               interface{}
	LogMessages       []string
	InnerInstructions []InnerInstructionGroup
}

// InnerInstructionGroup holds the inner calls made while executing one
// top-level instruction. Index is the position of that instruction in the
// outer sequence.
type InnerInstructionGroup struct {
	Index        int
	Instructions []InnerInstruction
}

// InnerInstruction is one nested call. Data is base58-encoded and may be
// an event record, an unrelated CPI payload, or garbage.
type InnerInstruction struct {
	ProgramIDIndex int
	Accounts       []int
	Data           string
	StackHeight    *int
}

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// Package dedup tracks which transaction signatures a protocol has
// already processed, so polling cycles and reconnecting streams never
// evaluate the same transaction twice.
package dedup

import "context"

// Set records processed transaction signatures per protocol.
// Implementations must be safe for concurrent use.
type Set interface {
	// Seen reports whether the signature was already marked.
	Seen(ctx context.Context, protocol, signature string) (bool, error)

	// Mark records the signature as processed. Marking an existing
	// signature is a no-op.
	Mark(ctx context.Context, protocol, signature string) error
}

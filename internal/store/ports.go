package store

import "context"

// Persisted snapshots live in a key-value blob store: one key per
// collection, each value a serialized JSON list. The ledger owns the
// encoding; stores only move bytes.
const (
	KeyTransactions = "tracky-my-cash-transactions"
	KeyCards        = "tracky-my-cash-cards"
)

// Ports for outbound persistence adapters.
type (
	// BlobReader fetches a stored blob. A missing key is not an error:
	// ok is false and the value nil.
	BlobReader interface {
		Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	}

	// BlobWriter stores a blob under a key, replacing any previous value.
	BlobWriter interface {
		Put(ctx context.Context, key string, value []byte) error
	}

	// BlobStore is the full persistence port the ledger is wired to.
	BlobStore interface {
		BlobReader
		BlobWriter
		Close() error
	}
)

package sheets

import (
	"context"

	"tracky/internal/core"
)

// Ports for outbound export adapters.
type (
	// TransactionExporter replaces the remote sheet's contents with the
	// given ledger snapshot. Export is wholesale, mirroring how derived
	// views are rebuilt: the sheet is a projection, not a second ledger.
	TransactionExporter interface {
		ExportTransactions(ctx context.Context, transactions []core.Transaction) error
	}
)

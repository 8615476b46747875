package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"tracky/internal/amqp"
	"tracky/internal/core"
	"tracky/internal/sheets"
)

// SnapshotSource provides the current ledger snapshot. The ledger service
// satisfies it. Reload pulls the latest state from the backing store; the
// worker runs in its own process, so without it every export would repeat
// the snapshot loaded at startup.
type SnapshotSource interface {
	Reload(ctx context.Context)
	Transactions() []core.Transaction
}

// ExportWorker mirrors the ledger into a spreadsheet. It reacts to AMQP
// change notifications and additionally sweeps on an interval so a missed
// message cannot leave the export stale forever.
type ExportWorker struct {
	source   SnapshotSource
	exporter sheets.TransactionExporter
	interval time.Duration

	exported atomic.Int64
	failed   atomic.Int64
}

func NewExportWorker(source SnapshotSource, exporter sheets.TransactionExporter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		source:   source,
		exporter: exporter,
		interval: interval,
	}
}

// HandleChange processes one ledger change notification by re-exporting
// the full snapshot.
func (w *ExportWorker) HandleChange(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"change", msg.Change,
		"transaction_id", msg.TransactionID)
	return w.Export(ctx)
}

// Export refreshes the snapshot from the store and pushes it to the
// exporter.
func (w *ExportWorker) Export(ctx context.Context) error {
	w.source.Reload(ctx)
	snapshot := w.source.Transactions()
	if err := w.exporter.ExportTransactions(ctx, snapshot); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("export transactions: %w", err)
	}
	w.exported.Add(1)
	return nil
}

// RunPeriodic exports on the configured interval until the context is
// cancelled. It is the safety net behind the event-driven path.
func (w *ExportWorker) RunPeriodic(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Export worker started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Export worker stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.Export(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
				// Keep running; the next tick retries.
			}
		}
	}
}

// Stats reports how many exports succeeded and failed since start.
func (w *ExportWorker) Stats() (exported, failed int64) {
	return w.exported.Load(), w.failed.Load()
}

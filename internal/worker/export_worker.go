package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

// TransactionReader reads committed transactions back from the ledger.
type TransactionReader interface {
	Get(ctx context.Context, id int64) (core.Transaction, error)
	ListAll(ctx context.Context) ([]core.Transaction, error)
}

// Exporter mirrors transactions to an external sheet.
type Exporter interface {
	Append(ctx context.Context, t core.Transaction) (string, error)
	DeleteRow(ctx context.Context, id int64) error
}

// ExportWorker applies ledger change events to the export sheet.
type ExportWorker struct {
	ledger   TransactionReader
	exporter Exporter
}

func NewExportWorker(ledger TransactionReader, exporter Exporter) *ExportWorker {
	return &ExportWorker{ledger: ledger, exporter: exporter}
}

// HandleEvent processes a single change event from AMQP. A returned error
// asks the broker to redeliver.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"type", event.Type,
		"id", event.ID,
		"timestamp", event.Timestamp)

	switch event.Type {
	case amqp.TransactionCreated:
		return w.export(ctx, event.ID)
	case amqp.TransactionDeleted:
		if err := w.exporter.DeleteRow(ctx, event.ID); err != nil {
			return fmt.Errorf("delete exported row: %w", err)
		}
		slog.InfoContext(ctx, "Removed exported transaction", "id", event.ID)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring unknown event type", "type", event.Type, "id", event.ID)
		return nil
	}
}

func (w *ExportWorker) export(ctx context.Context, id int64) error {
	t, err := w.ledger.Get(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before we got to it; the delete event follows
		slog.InfoContext(ctx, "Transaction no longer in ledger, skipping export", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from ledger: %w", err)
	}

	ref, err := w.exporter.Append(ctx, t)
	if err != nil {
		return fmt.Errorf("export transaction: %w", err)
	}
	slog.InfoContext(ctx, "Exported transaction", "id", id, "ref", ref)
	return nil
}

// Reconcile exports every ledger record. Rows already present are left
// untouched, so it recovers from events lost while the worker was down.
func (w *ExportWorker) Reconcile(ctx context.Context) error {
	records, err := w.ledger.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list transactions for reconcile: %w", err)
	}
	if len(records) == 0 {
		slog.InfoContext(ctx, "No transactions to reconcile")
		return nil
	}

	var failed int
	for _, t := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.exporter.Append(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during reconcile", "id", t.ID, "error", err)
			failed++
		}
	}

	slog.InfoContext(ctx, "Reconcile completed", "total", len(records), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("reconcile: %d of %d transactions failed", failed, len(records))
	}
	return nil
}

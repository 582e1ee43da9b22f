package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"haulbook/internal/amqp"
	"haulbook/internal/sheets"
	"haulbook/internal/storage"
)

// MirrorWorker pushes ledger entries from SQLite into the spreadsheet
// mirror. Messages arrive over AMQP; a periodic pending scan covers
// anything a lost message left behind.
type MirrorWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.Mirror
	batchSize int
}

func NewMirrorWorker(storage *storage.SQLiteRepository, mirror sheets.Mirror, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleMessage processes a single mirror message from AMQP.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerSyncMessage) error {
	switch msg.Op {
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg.ID)
	default:
		return w.handleUpsert(ctx, msg.ID)
	}
}

func (w *MirrorWorker) handleUpsert(ctx context.Context, id int64) error {
	entry, err := w.storage.GetLedgerEntry(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before we got to it; the delete message will clean the mirror
		slog.WarnContext(ctx, "Ledger entry gone before mirror, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get ledger entry: %w", err)
	}

	party, err := w.storage.GetParty(ctx, entry.PartyID)
	if err != nil {
		return fmt.Errorf("get party: %w", err)
	}

	ref, err := w.mirror.AppendEntry(ctx, entry, party.Name)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("append entry to mirror: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry mirrored",
		"id", id,
		"party", party.Name,
		"row_ref", ref)

	return nil
}

func (w *MirrorWorker) handleDelete(ctx context.Context, id int64) error {
	if err := w.mirror.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry from mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirrored ledger row deleted", "id", id)
	return nil
}

// ProcessPendingEntries mirrors entries whose sync message was lost.
func (w *MirrorWorker) ProcessPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending ledger entries", "count", len(pending))

	var failed int
	for _, p := range pending {
		if err := w.handleUpsert(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending entry",
				"id", p.ID, "error", err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("mirror pending entries: %d of %d failed", failed, len(pending))
	}
	return nil
}

// ReportPendingEntries logs how many entries await mirroring without
// touching their sync status. Used when no spreadsheet is configured,
// so entries stay pending until one is.
func (w *MirrorWorker) ReportPendingEntries(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncEntries(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) > 0 {
		slog.InfoContext(ctx, "Ledger entries awaiting mirror", "count", len(pending))
	}
	return nil
}

// StartupSyncCheck runs one pending scan at boot so a restart drains
// whatever accumulated while the worker was down.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) {
	slog.InfoContext(ctx, "Running startup sync check")
	if err := w.ProcessPendingEntries(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup sync check failed", "error", err)
	}
}

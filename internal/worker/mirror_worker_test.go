package worker

import (
	"context"
	"path/filepath"
	"testing"

	"haulbook/internal/amqp"
	"haulbook/internal/core"
	"haulbook/internal/sheets/memory"
	"haulbook/internal/storage"
)

func newTestWorker(t *testing.T) (*MirrorWorker, *storage.SQLiteRepository, *memory.Store) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	mirror := memory.New()
	return NewMirrorWorker(repo, mirror, 25), repo, mirror
}

func seedEntry(t *testing.T, repo *storage.SQLiteRepository) core.LedgerEntry {
	t.Helper()
	ctx := context.Background()
	party, err := repo.CreateParty(ctx, core.Party{Name: "Gupta Diesels"})
	if err != nil {
		t.Fatalf("CreateParty: %v", err)
	}
	entry, err := repo.CreateLedgerEntry(ctx, core.LedgerEntry{
		PartyID:  party.ID,
		Date:     core.NewDate(2026, 8, 3),
		Kind:     core.Borrow,
		Quantity: core.Volume{Milli: 100_000},
	})
	if err != nil {
		t.Fatalf("CreateLedgerEntry: %v", err)
	}
	return entry
}

func TestHandleMessageUpsert(t *testing.T) {
	w, repo, mirror := newTestWorker(t)
	ctx := context.Background()
	entry := seedEntry(t, repo)

	msg := amqp.NewLedgerSyncMessage(entry.ID, 1, amqp.OpUpsert)
	if err := w.HandleMessage(ctx, msg); err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}

	rows := mirror.Entries()
	if len(rows) != 1 || rows[0].ID != entry.ID {
		t.Fatalf("expected mirrored entry %d, got %+v", entry.ID, rows)
	}

	pending, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncEntries: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending entries after mirror, got %d", len(pending))
	}
}

func TestHandleMessageDelete(t *testing.T) {
	w, repo, mirror := newTestWorker(t)
	ctx := context.Background()
	entry := seedEntry(t, repo)

	if err := w.HandleMessage(ctx, amqp.NewLedgerSyncMessage(entry.ID, 1, amqp.OpUpsert)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := w.HandleMessage(ctx, amqp.NewLedgerSyncMessage(entry.ID, 2, amqp.OpDelete)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rows := mirror.Entries(); len(rows) != 0 {
		t.Errorf("expected empty mirror after delete, got %+v", rows)
	}
}

func TestHandleMessageEntryGone(t *testing.T) {
	w, _, mirror := newTestWorker(t)

	// Entry 404s locally; the worker must not requeue forever
	if err := w.HandleMessage(context.Background(), amqp.NewLedgerSyncMessage(999, 1, amqp.OpUpsert)); err != nil {
		t.Fatalf("expected nil error for missing entry, got %v", err)
	}
	if rows := mirror.Entries(); len(rows) != 0 {
		t.Errorf("expected empty mirror, got %+v", rows)
	}
}

func TestProcessPendingEntries(t *testing.T) {
	w, repo, mirror := newTestWorker(t)
	ctx := context.Background()

	first := seedEntry(t, repo)
	second, err := repo.CreateLedgerEntry(ctx, core.LedgerEntry{
		PartyID:  first.PartyID,
		Date:     core.NewDate(2026, 8, 4),
		Kind:     core.SettleLiters,
		Quantity: core.Volume{Milli: 40_000},
	})
	if err != nil {
		t.Fatalf("CreateLedgerEntry: %v", err)
	}

	if err := w.ProcessPendingEntries(ctx); err != nil {
		t.Fatalf("ProcessPendingEntries: %v", err)
	}

	rows := mirror.Entries()
	if len(rows) != 2 {
		t.Fatalf("expected 2 mirrored entries, got %d", len(rows))
	}
	if rows[0].ID != first.ID || rows[1].ID != second.ID {
		t.Errorf("unexpected mirror order: %+v", rows)
	}

	// Second run is a no-op
	if err := w.ProcessPendingEntries(ctx); err != nil {
		t.Fatalf("second ProcessPendingEntries: %v", err)
	}
	if len(mirror.Entries()) != 2 {
		t.Errorf("expected mirror unchanged on second run")
	}
}

func TestReportPendingEntriesLeavesPending(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	// No mirror configured; entries must survive the scan untouched
	w := NewMirrorWorker(repo, nil, 25)
	ctx := context.Background()
	entry := seedEntry(t, repo)

	if err := w.ReportPendingEntries(ctx); err != nil {
		t.Fatalf("ReportPendingEntries: %v", err)
	}

	pending, err := repo.GetPendingSyncEntries(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncEntries: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != entry.ID {
		t.Fatalf("expected entry %d still pending, got %+v", entry.ID, pending)
	}
}

package sheets

import (
	"context"

	"haulbook/internal/core"
)

// Ports for the spreadsheet mirror of the party ledger.
type (
	EntryAppender interface {
		AppendEntry(ctx context.Context, e core.LedgerEntry, partyName string) (rowRef string, err error)
	}

	EntryDeleter interface {
		DeleteEntry(ctx context.Context, entryID int64) error
	}

	// Mirror is the full outbound surface the worker needs.
	Mirror interface {
		EntryAppender
		EntryDeleter
	}
)

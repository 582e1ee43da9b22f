package services

import (
	"context"
	"fmt"
	"log/slog"

	"haulbook/internal/amqp"
	"haulbook/internal/core"
	"haulbook/internal/storage"
)

// LedgerService orchestrates ledger writes across SQLite and AMQP.
type LedgerService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *LedgerService {
	return &LedgerService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateEntry saves the entry locally and publishes a mirror message.
// The mirror is best effort; a failed publish never fails the request
// because the periodic pending scan will pick the entry up later.
func (s *LedgerService) CreateEntry(ctx context.Context, e core.LedgerEntry) (core.LedgerEntry, error) {
	saved, err := s.storage.CreateLedgerEntry(ctx, e)
	if err != nil {
		return core.LedgerEntry{}, fmt.Errorf("save ledger entry: %w", err)
	}

	if err := s.publishSync(ctx, saved.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", saved.ID, "error", err)
	}

	return saved, nil
}

// DeleteEntry soft-deletes the entry locally and publishes a delete
// mirror message, again best effort.
func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.storage.DeleteLedgerEntry(ctx, id); err != nil {
		return fmt.Errorf("delete ledger entry: %w", err)
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *LedgerService) publishSync(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.amqpClient.PublishLedgerSync(ctx, id, version)
}

func (s *LedgerService) publishDelete(ctx context.Context, id int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.amqpClient.PublishLedgerDelete(ctx, id, 0)
}

func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}
	return nil
}

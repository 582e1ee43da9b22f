package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"haulbook/internal/amqp"
	"haulbook/internal/config"
	applog "haulbook/internal/log"
	"haulbook/internal/sheets"
	gsheet "haulbook/internal/sheets/google"
	"haulbook/internal/storage"
	"haulbook/internal/worker"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting haulbook-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Without a spreadsheet the worker idles: entries stay pending and
	// the scan only reports, so nothing gets marked synced against a
	// mirror that will not survive a restart.
	var mirror sheets.Mirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled, ledger entries stay pending until a spreadsheet is configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mirrorWorker := worker.NewMirrorWorker(repo, mirror, cfg.SyncBatchSize)

	if mirror != nil {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		// Drain whatever piled up while the worker was down
		mirrorWorker.StartupSyncCheck(ctx)

		go func() {
			err := amqpClient.ConsumeLedgerSync(ctx, func(msg *amqp.LedgerSyncMessage) error {
				return mirrorWorker.HandleMessage(ctx, msg)
			})
			if err != nil && err != context.Canceled {
				logger.Error("Message consumption failed", "error", err)
			}
			cancel()
		}()
	}

	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if mirror == nil {
					if err := mirrorWorker.ReportPendingEntries(ctx); err != nil {
						logger.Error("Pending scan failed", "error", err)
					}
					continue
				}
				if err := mirrorWorker.ProcessPendingEntries(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Give in-flight handlers a moment to finish
	time.Sleep(2 * time.Second)
	logger.Info("Worker shutdown complete")
}

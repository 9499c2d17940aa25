package main

import (
	"context"
	"errors"
	"os"

	"ridelog/internal/cli"
	applog "ridelog/internal/log"
	"ridelog/internal/sheets"
	gsheet "ridelog/internal/sheets/google"
	"ridelog/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting ridelog-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend != "sqlite" {
		// the worker reads rides written by another process
		logger.Error("Worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	store := cli.InitBackend(context.Background(), logger, cfg)
	defer store.Close()

	var exporter sheets.RideExporter
	if cfg.SheetsEnabled {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - set SHEETS_ENABLED=true to enable")
	}

	amqpClient := cli.ConnectAMQP(logger, cfg)
	if amqpClient == nil {
		logger.Error("Worker cannot run without AMQP")
		os.Exit(1)
	}
	defer amqpClient.Close()

	rideWorker := worker.NewRideWorker(store.Gateway, cli.NewEnrichClient(cfg), exporter)

	parent, stop := context.WithCancel(context.Background())
	defer stop()
	ctx, done := cli.GracefulShutdown(parent, logger, cfg.ShutdownTimeout, func(context.Context) {
		logger.Info("Shutting down worker...")
	})

	go func() {
		err := amqpClient.ConsumeRideCreated(ctx, rideWorker.HandleRideCreated)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
		stop()
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

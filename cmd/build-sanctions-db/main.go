package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/ingest"
	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/platform/logger"
	"github.com/joelkehle/sanctionguard/internal/platform/telemetry"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file")
		feedURL    = flag.String("feed-url", "", "SDN XML feed URL (default from config)")
		outPath    = flag.String("out", "", "Output database path (default from config)")
		tempDir    = flag.String("temp-dir", "", "Directory for the downloaded feed (default: OS temp dir)")
	)
	flag.Parse()

	config.LoadDotEnv(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *feedURL != "" {
		cfg.FeedURL = *feedURL
	}
	if *outPath != "" {
		cfg.DatabasePath = *outPath
	}

	lg := logger.Must(cfg.Log.Level, cfg.Log.Format, "build-sanctions-db")
	defer lg.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shutdown, err := telemetry.Setup(ctx, "build-sanctions-db", cfg.OTLPEndpoint)
	if err != nil {
		lg.Fatal("telemetry setup failed", zap.Error(err))
	}
	defer shutdown(context.Background())

	builder := ingest.NewBuilder(ingest.NewFetcher(lg, ingest.WithTempDir(*tempDir)), lg)
	db, err := builder.BuildToFile(ctx, cfg.FeedURL, cfg.DatabasePath)
	if err != nil {
		lg.Fatal("build failed", zap.Error(err))
	}
	lg.Info("sanctions database written",
		zap.String("path", cfg.DatabasePath),
		zap.Int("entities", len(db.Entities)),
	)
}

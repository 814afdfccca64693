package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/app"
	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/platform/logger"
	"github.com/joelkehle/sanctionguard/internal/screening"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file")
		dbPath     = flag.String("db", "", "Sanctions database path (default from config)")
		name       = flag.String("name", "", "Entity name to screen")
		country    = flag.String("country", "", "Entity country (optional)")
		threshold  = flag.Int("threshold", 0, "Match threshold 50-100 (default from config)")
		batchPath  = flag.String("batch", "", "CSV or XLSX file with a name column")
		outPath    = flag.String("out", "", "Batch results path (defaults to stdout)")
		format     = flag.String("format", "", "Batch output format: csv or xlsx (default from -out extension)")
	)
	flag.Parse()

	if strings.TrimSpace(*name) == "" && *batchPath == "" {
		log.Fatal("missing required -name or -batch")
	}

	config.LoadDotEnv(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	if *threshold != 0 {
		cfg.Threshold = *threshold
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid -threshold: %v", err)
		}
	}

	lg := logger.Must(cfg.Log.Level, cfg.Log.Format, "screen")
	defer lg.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a, err := app.New(ctx, cfg, "screen", lg)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close(context.Background())

	if *batchPath != "" {
		if err := runBatch(ctx, a.Session, lg, *batchPath, *outPath, *format); err != nil {
			lg.Fatal("batch screening failed", zap.Error(err))
		}
		return
	}

	rec, err := a.Session.Screen(ctx, screening.Input{Name: *name, Country: *country}, func(stage, message string) {
		lg.Info(message, zap.String("stage", stage))
	})
	if err != nil {
		lg.Fatal("screening failed", zap.Error(err))
	}
	if err := writeCaseJSON(os.Stdout, rec); err != nil {
		lg.Fatal("write case", zap.Error(err))
	}
}

func runBatch(ctx context.Context, s *screening.Session, lg *zap.Logger, inPath, outPath, format string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	inputs, err := screening.ReadBatch(f, filepath.Base(inPath))
	if err != nil {
		return err
	}
	rows, err := s.Batch(ctx, inputs, func(done, total int, name string) {
		lg.Info("screened", zap.Int("done", done), zap.Int("total", total), zap.String("name", name))
	})
	if err != nil && len(rows) == 0 {
		return err
	}
	if err != nil {
		lg.Warn("batch interrupted, writing partial results", zap.Error(err), zap.Int("rows", len(rows)))
	}

	if format == "" {
		format = "csv"
		if strings.EqualFold(filepath.Ext(outPath), ".xlsx") {
			format = "xlsx"
		}
	}

	var w io.Writer = os.Stdout
	if outPath != "" {
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}

	switch strings.ToLower(format) {
	case "csv":
		return screening.WriteCSV(w, rows)
	case "xlsx":
		return screening.WriteXLSX(w, rows)
	default:
		return fmt.Errorf("unknown -format %q", format)
	}
}

func writeCaseJSON(w io.Writer, rec screening.CaseRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

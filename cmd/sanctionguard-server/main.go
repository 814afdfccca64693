package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joelkehle/sanctionguard/internal/app"
	"github.com/joelkehle/sanctionguard/internal/httpapi"
	"github.com/joelkehle/sanctionguard/internal/platform/config"
	"github.com/joelkehle/sanctionguard/internal/platform/logger"
	"github.com/joelkehle/sanctionguard/internal/report"
)

func main() {
	var (
		configPath = flag.String("config", "", "Optional YAML config file")
		addr       = flag.String("addr", "", "Listen address (default from config)")
	)
	flag.Parse()

	config.LoadDotEnv(".env")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	lg := logger.Must(cfg.Log.Level, cfg.Log.Format, "sanctionguard-server")
	defer lg.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(ctx, cfg, "sanctionguard-server", lg)
	if err != nil {
		lg.Fatal("startup failed", zap.Error(err))
	}
	defer a.Close(context.Background())

	deps := httpapi.Deps{
		Session:  a.Session,
		Renderer: report.NewPDFRenderer(cfg.ChromePath),
		Metrics:  a.Metrics,
		Logger:   lg,
	}
	if a.Cases != nil {
		deps.Cases = a.Cases
	}

	stats := a.Session.Stats()
	lg.Info("sanctionguard listening",
		zap.String("addr", cfg.Addr),
		zap.Int("entities", stats.Entities),
		zap.Bool("degraded", stats.Degraded),
		zap.Int("threshold", stats.Threshold),
	)
	srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewServer(deps)}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Fatal("server failed", zap.Error(err))
	}
}

// Command sjonqd serves a JSON document behind the query HTTP endpoint.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/sjonq/sjonq-go/internal/app/config"
	"github.com/sjonq/sjonq-go/internal/app/loader"
	"github.com/sjonq/sjonq-go/internal/app/log"
	"github.com/sjonq/sjonq-go/internal/app/service"
	"github.com/sjonq/sjonq-go/sjonq"
)

func main() {
	configPath := flag.String("config", "sjonqd.toml", "path to the TOML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger config lives in the file that failed to load.
		log.NewLogger(false).Fatal("failed to load configuration", zap.Error(err))
	}
	logger := log.NewLogger(cfg.Log.JSON)
	defer logger.Sync()

	if cfg.Document.URI == "" {
		logger.Fatal("no document URI configured")
	}

	content, err := loader.Fetch(cfg.Document.URI, cfg.Document.Charset)
	if err != nil {
		logger.Fatal("failed to fetch document", zap.String("uri", cfg.Document.URI), zap.Error(err))
	}

	base, err := sjonq.NewBytes(content, sjonq.WithSeparator(cfg.Document.Separator))
	if err != nil {
		logger.Fatal("failed to parse document", zap.String("uri", cfg.Document.URI), zap.Error(err))
	}
	logger.Info("document loaded", zap.String("uri", cfg.Document.URI))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	qs := service.NewQueryService(cfg, base, logger)
	if err := qs.Start(ctx); err != nil {
		logger.Fatal("failed to start query service", zap.Error(err))
	}

	<-ctx.Done()
	if err := qs.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

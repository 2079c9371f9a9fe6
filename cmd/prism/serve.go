package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prismfin/prism/internal/api"
	"github.com/prismfin/prism/internal/chat"
	"github.com/prismfin/prism/internal/config"
	"github.com/prismfin/prism/internal/llm/factory"
	"github.com/prismfin/prism/internal/logger"
	"github.com/prismfin/prism/internal/metrics"
	"github.com/prismfin/prism/internal/quote"
	"github.com/prismfin/prism/internal/quote/eastmoney"
	"github.com/prismfin/prism/internal/quote/yahoo"
	"github.com/prismfin/prism/internal/storage/archive"
	"github.com/prismfin/prism/internal/upload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PRISM server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("starting PRISM server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("benchmark", cfg.Benchmark.Symbol),
	)

	// Quote sources
	registry := quote.NewRegistry()
	registry.Register(yahoo.New())
	registry.Register(eastmoney.New())
	quotes := quote.NewService(registry, cfg.Benchmark.Symbol, log)

	// Upload pipeline
	arch, err := archive.New(cfg.Archive)
	if err != nil {
		return fmt.Errorf("creating archive storage: %w", err)
	}
	uploads := upload.NewStore(cfg.Upload.MaxDatasets, cfg.Upload.TTL)

	// Chat panel, optional
	var chatSvc *chat.Service
	if cfg.LLM.Provider != "" {
		provider, err := factory.New(cfg.LLM)
		if err != nil {
			return fmt.Errorf("creating LLM provider: %w", err)
		}
		chatSvc = chat.NewService(provider, quotes, log)
		log.Info("chat panel enabled", zap.String("provider", provider.Name()))
	} else {
		log.Warn("no LLM provider configured, chat panel disabled")
	}

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: cfg.Metrics.Path,
	}, api.Deps{
		Quotes:      quotes,
		Uploads:     uploads,
		Archive:     arch,
		Chat:        chatSvc,
		Metrics:     reg,
		UploadLimit: cfg.Upload.MaxSizeBytes,
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Drop expired uploaded datasets in the background
	stopPurge := make(chan struct{})
	go purgeLoop(uploads, reg, cfg.Upload.TTL, stopPurge, log)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down PRISM server")
	close(stopPurge)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func loadConfig(log *zap.Logger) (*config.Config, error) {
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
		return config.Defaults(), nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// purgeLoop evicts expired datasets once per TTL interval.
func purgeLoop(store *upload.Store, reg *metrics.Registry, ttl time.Duration, stop <-chan struct{}, log *zap.Logger) {
	if ttl <= 0 {
		return
	}

	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if dropped := store.Purge(); dropped > 0 {
				log.Debug("purged expired datasets", zap.Int("count", dropped))
			}
			if reg != nil {
				reg.SetDatasetsActive(len(store.List()))
			}
		}
	}
}

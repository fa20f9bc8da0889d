package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/anmol-28/livedatatest/internal/config"
	"github.com/anmol-28/livedatatest/internal/ingest"
	"github.com/anmol-28/livedatatest/internal/kafka"
	"github.com/anmol-28/livedatatest/internal/logging"
	"github.com/anmol-28/livedatatest/internal/upstream"
)

func main() {
	cfgPath := flag.String("config", config.Path(), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := kafka.EnsureTopic(cfg.Kafka.Brokers[0], cfg.Kafka.Topic, 1); err != nil {
		logger.Fatalf("Failed to ensure topic %s: %v", cfg.Kafka.Topic, err)
	}

	writer := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer writer.Close()

	clock := clockwork.NewRealClock()
	client := upstream.NewClient(cfg.Ingest.UpstreamURL, cfg.Ingest.FetchTimeout, clock)
	loop := ingest.NewLoop(client, writer, cfg.Ingest.PollInterval, clock, logger)

	logger.Infof("Starting ingestor: upstream=%s interval=%s topic=%s",
		cfg.Ingest.UpstreamURL, cfg.Ingest.PollInterval, cfg.Kafka.Topic)

	if err := loop.Run(ctx); err != nil {
		// Fatalf exits without unwinding the deferred Close.
		writer.Close()
		logger.Fatalf("Ingestor stopped: %v", err)
	}
	logger.Info("Shutting down ingestor")
}

package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/anmol-28/livedatatest/internal/config"
	"github.com/anmol-28/livedatatest/internal/kafka"
	"github.com/anmol-28/livedatatest/internal/logging"
	"github.com/anmol-28/livedatatest/internal/relay"
	"github.com/anmol-28/livedatatest/internal/server"
)

const shutdownTimeout = 10 * time.Second

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

	reader := kafka.NewReader(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	hub := relay.NewHub(logger)
	srv := server.New(server.Config{Host: cfg.Server.Host, Port: cfg.Server.Port}, hub, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Errorf("Server error: %v", err)
			cancel()
		}
	}()

	logger.Infof("Starting relay: topic=%s group=%s", cfg.Kafka.Topic, cfg.Kafka.GroupID)
	runErr := relay.New(reader, hub, logger).Run(ctx)

	// ordered release: stop admitting viewers, close the fan-out set,
	// then release the log connection
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	hub.Stop()
	if err := reader.Close(); err != nil {
		logger.Errorf("Reader close error: %v", err)
	}

	if runErr != nil {
		logger.Fatalf("Relay stopped: %v", runErr)
	}
	logger.Info("Shutting down relay")
}

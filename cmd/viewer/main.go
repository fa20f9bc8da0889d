package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/anmol-28/livedatatest/internal/config"
	"github.com/anmol-28/livedatatest/internal/logging"
	"github.com/anmol-28/livedatatest/internal/model"
	"github.com/anmol-28/livedatatest/internal/viewer"
)

func main() {
	cfgPath := flag.String("config", config.Path(), "path to YAML config")
	url := flag.String("url", "", "relay websocket URL (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if *url == "" {
		*url = cfg.Viewer.URL
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	window := viewer.NewWindow(cfg.Viewer.WindowSize)
	onEvent := func(e model.PositionEvent) {
		fmt.Printf("%-22s %10.4f %10.4f  (upstream %d)\n", e.EventTime, e.Latitude, e.Longitude, e.Timestamp)
	}

	client := viewer.NewClient(*url, window, cfg.Viewer.ReconnectWait, logger, onEvent)

	logger.Infof("Starting viewer: url=%s window=%d", *url, window.Capacity())
	if err := client.Run(ctx); err != nil {
		logger.Fatalf("Viewer stopped: %v", err)
	}
	logger.Info("Shutting down viewer")
}

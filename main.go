package main

import (
	"log"

	"github.com/mohamedbeat/h1wire/config"
	"github.com/mohamedbeat/h1wire/logger"
	"github.com/mohamedbeat/h1wire/proxy"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config:", err)
	}

	// Initialize logger
	logg, err := logger.InitLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("Error initializing logger:", err)
	}
	defer logg.Sync()

	// Create and start proxy
	proxy := proxy.New(logg, cfg)
	if err := proxy.Start(cfg.Listen); err != nil {
		logg.Fatal("Proxy server failed", zap.Error(err))
	}
}

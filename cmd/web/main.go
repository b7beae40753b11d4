package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ug-admin-search/internal/config"
	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/service"
)

func main() {
	// Load environment configuration
	if err := config.LoadEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := config.Load(config.GetEnv("CONFIG_FILE", ""))
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	logger.SetupWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	fmt.Println("=== Admin Unit Search ===")
	fmt.Printf("Server: http://%s\n", cfg.Server.Addr())
	fmt.Printf("Data source: %s\n", cfg.Data.Source)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer svc.Close()

	st := svc.Holder.Engine().Stats()
	fmt.Printf("Loaded %d units (fingerprint %s)\n\n", st.Total, st.Fingerprint)

	if err := svc.Run(ctx); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

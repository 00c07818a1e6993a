package main

import (
	"context"
	"os"

	"github.com/uconn-hacklab/inventory-tracking/migrations/inventory"
	"github.com/uconn-hacklab/inventory-tracking/pkg/config"
	"github.com/uconn-hacklab/inventory-tracking/pkg/logger"
	"github.com/uconn-hacklab/inventory-tracking/pkg/migrator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg)

	if err := migrator.RunMigrations(context.Background(), cfg.DatabaseURL, inventory.FS); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")
}

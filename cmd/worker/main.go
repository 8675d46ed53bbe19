package main

import (
	"log"

	"github.com/parkvault/pv-backend/internal/audit"
	"github.com/parkvault/pv-backend/internal/config"
	"github.com/parkvault/pv-backend/internal/database"
	"github.com/parkvault/pv-backend/internal/logging"
)

func main() {
	cfg := config.Load()

	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	worker := audit.NewWorker(&cfg.Redis, db.Queries())

	log.Println("Starting audit worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}

	select {}
}

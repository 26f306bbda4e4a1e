package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/cinematch-backend/internal/catalog"
	"github.com/yungbote/cinematch-backend/internal/platform/logger"
)

// Imports a CSV catalog into the sqlite catalog store.
func main() {
	csvPath := flag.String("csv", "data/films_catalog.csv", "source CSV file")
	dbPath := flag.String("db", "data/catalog.db", "target sqlite database")
	flag.Parse()

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cat, err := catalog.LoadCSV(log, *csvPath)
	if err != nil {
		log.Fatal("Load CSV failed", "error", err, "path", *csvPath)
	}

	store, err := catalog.NewSQLiteStore(log, *dbPath)
	if err != nil {
		log.Fatal("Open sqlite store failed", "error", err, "path", *dbPath)
	}

	if err := store.Seed(context.Background(), cat); err != nil {
		log.Fatal("Seed failed", "error", err)
	}
	log.Info("Catalog seeded", "entries", cat.Len(), "db", *dbPath)
}

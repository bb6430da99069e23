package main

import (
	"context"
	"flag"
	"log"
	"os"

	"clubstore/internal/config"
	"clubstore/internal/db"
	"clubstore/internal/migrate"
)

func main() {
	var down int
	flag.IntVar(&down, "down", 0, "Roll back this many migrations instead of applying")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[migrate] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if down > 0 {
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			logger.Fatalf("rollback migrations: %v", err)
		}
		logger.Printf("rolled back %d migration(s)", down)
	} else {
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatalf("apply migrations: %v", err)
		}
		logger.Println("migrations applied")
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Fatalf("read schema version: %v", err)
	}
	logger.Printf("schema version=%d dirty=%t", version, dirty)
}

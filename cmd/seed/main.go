package main

import (
	"context"
	"log"
	"os"

	"clubstore/internal/config"
	"clubstore/internal/db"
	"clubstore/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	admin := seed.Admin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}
	if err := seed.Apply(ctx, pool, admin); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Printf("seed applied, admin=%s", admin.Email)
}

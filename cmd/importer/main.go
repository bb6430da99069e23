package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"clubstore/internal/config"
	"clubstore/internal/db"
	"clubstore/internal/importer"
	"clubstore/internal/repository/product"
	"clubstore/internal/service/catalog"
)

func main() {
	var (
		filePath string
		verbose  bool
	)
	flag.StringVar(&filePath, "file", "", "Path to product CSV")
	flag.BoolVar(&verbose, "v", false, "Log every imported row")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	var logger *log.Logger
	if verbose {
		logger = log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC)
	}
	svc := catalog.New(product.NewPostgres(pool, logger), logger)
	imp := importer.NewCSVImporter(f, svc, logger)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed after %d products: %v", res.Imported, err)
	}

	fmt.Printf("Imported %d products (%d duplicates skipped) in %s\n", res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clubstore/internal/cache"
	"clubstore/internal/config"
	"clubstore/internal/db"
	"clubstore/internal/httpserver"
	orderrepo "clubstore/internal/repository/order"
	productrepo "clubstore/internal/repository/product"
	ticketrepo "clubstore/internal/repository/ticket"
	tokenrepo "clubstore/internal/repository/token"
	userrepo "clubstore/internal/repository/user"
	authsvc "clubstore/internal/service/auth"
	catalogsvc "clubstore/internal/service/catalog"
	checkoutsvc "clubstore/internal/service/checkout"
	orderssvc "clubstore/internal/service/orders"
	ticketssvc "clubstore/internal/service/tickets"
	"clubstore/internal/session"
	"github.com/redis/go-redis/v9"
)

const sweepInterval = 10 * time.Minute

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	ticketRepo := ticketrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	tokenRepo := tokenrepo.NewPostgres(dbpool)

	authService := authsvc.New(userRepo, tokenRepo, logger)
	catalogService := catalogsvc.New(productRepo, logger)

	var snapshots cache.SessionCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Printf("redis %s unreachable, sessions will not survive restarts: %v", cfg.RedisAddr, err)
		} else {
			snapshots = cache.NewRedisCache(client, cfg.SessionTTL)
		}
		cancel()
	}
	sessions := session.NewManager(snapshots, authService, cfg.SessionTTL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Sessions:       sessions,
		Auth:           authService,
		Catalog:        catalogService,
		Checkout:       checkoutsvc.New(orderRepo, logger),
		Orders:         orderssvc.New(orderRepo, productRepo, logger),
		Tickets:        ticketssvc.New(ticketRepo, cfg.ClubName, logger),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	go sessions.Run(ctx, sweepInterval)
	go purgeTokens(ctx, tokenRepo, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func purgeTokens(ctx context.Context, tokens tokenrepo.Repository, logger *log.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				logger.Printf("token purge error=%v", err)
				continue
			}
			if n > 0 {
				logger.Printf("token purge removed=%d", n)
			}
		}
	}
}

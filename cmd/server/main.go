package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cauiki/casa-ink-financeiro/internal/auth"
	"github.com/cauiki/casa-ink-financeiro/internal/config"
	"github.com/cauiki/casa-ink-financeiro/internal/logger"
	"github.com/cauiki/casa-ink-financeiro/internal/model"
	"github.com/cauiki/casa-ink-financeiro/internal/store"
	httptransport "github.com/cauiki/casa-ink-financeiro/internal/transport/http"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// 1. load config
	cfg, err := config.Load("internal/config/config.yaml")
	if err != nil {
		panic(fmt.Errorf("load config: %w", err))
	}

	// 2. init logger
	log, err := logger.NewLogger(cfg.Server.LogLevel)
	if err != nil {
		panic(fmt.Errorf("init logger: %w", err))
	}
	defer log.Sync()

	loc, err := cfg.Studio.Location()
	if err != nil {
		log.Fatalf("load studio timezone: %v", err)
	}

	// 3. postgres
	gdb, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{PrepareStmt: true})
	if err != nil {
		log.Fatalf("open postgres: %v", err)
	}
	if err := gdb.AutoMigrate(&model.Transaction{}, &model.LedgerEvent{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	// 4. redis (session tokens)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("redis ping: %v", err)
	}

	// 5. store + cross-process change listener
	ledgerStore := store.New(gdb, nil, cfg.Studio.AppID, log)
	listener := store.NewPgListener(cfg.Postgres.DSN, cfg.Studio.AppID, ledgerStore.Wakeup, log)
	listener.Start(context.Background())
	defer listener.Stop()

	// 6. sessions & handler
	ttl, err := cfg.Session.Duration()
	if err != nil {
		log.Fatalf("session ttl: %v", err)
	}
	sessions := auth.NewManager(rdb, ttl, log)
	handler := httptransport.NewHandler(ledgerStore, sessions, cfg.Studio, loc, log)
	defer handler.Close()

	// 7. gin router
	router := httptransport.NewRouter(handler, cfg.RateLimit, log)

	// 8. serve
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("casa-ink-financeiro listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("listen: %v", err)
	}
}

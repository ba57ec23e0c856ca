package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/swaggo/swag" // 导入 swag

	"keyword_bot/config"
	"keyword_bot/db"
	_ "keyword_bot/docs" // 导入 swagger 文档
	"keyword_bot/handlers"
	"keyword_bot/logger"
	"keyword_bot/scheduler"
	"keyword_bot/services"
)

func main() {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	// 凭证缺失时直接退出，不发出任何外部请求
	recommender, err := services.NewNaverRecommender(cfg)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := db.InitWithConfig(cfg); err != nil {
		logger.Error("Failed to initialize database", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("Database connected",
		"driver", cfg.DB.Driver,
		"max_open_conns", cfg.DB.MaxOpenConns,
		"max_idle_conns", cfg.DB.MaxIdleConns,
		"conn_max_lifetime", cfg.DB.ConnMaxLifetime)

	svc := services.NewHistoryService(recommender, services.NewRepositoryStore())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers.RegisterRoutes(r, svc)

	// start watch-list refresh
	sched := scheduler.Start(ctx, cfg, svc)

	serverAddr := cfg.Server.Addr
	srv := &http.Server{Addr: serverAddr, Handler: r}

	go func() {
		logger.Info("Server starting", "address", serverAddr)
		logger.Info("Swagger docs available", "url", fmt.Sprintf("http://%s/swagger/index.html", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	sched.Wait()
}

package main

import (
	"log/slog"
	"os"

	"github.com/arnavshah/crew-scheduler-api/pkg/auth"
	"github.com/arnavshah/crew-scheduler-api/pkg/config"
	"github.com/arnavshah/crew-scheduler-api/pkg/database"
	"github.com/arnavshah/crew-scheduler-api/pkg/handlers"
	"github.com/arnavshah/crew-scheduler-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not read configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("could not open database", "error", err)
		os.Exit(1)
	}

	authSvc := auth.NewService(cfg)
	if err := authSvc.EnsureAdminExists(db, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Warn("could not ensure admin user", "error", err)
	}

	h := handlers.New(cfg, database.NewStore(db), authSvc, metrics.NewPrometheus(nil, ""), logger)
	h.MetricsHandler = promhttp.Handler()

	r := gin.Default()
	h.Register(r)

	logger.Info("server starting", "port", cfg.Port, "version", handlers.Version)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("could not run server", "error", err)
		os.Exit(1)
	}
}

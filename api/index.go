package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/arnavshah/crew-scheduler-api/pkg/auth"
	"github.com/arnavshah/crew-scheduler-api/pkg/config"
	"github.com/arnavshah/crew-scheduler-api/pkg/database"
	"github.com/arnavshah/crew-scheduler-api/pkg/handlers"
	"github.com/arnavshah/crew-scheduler-api/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var r *gin.Engine

func init() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not read configuration", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	// Serverless instances have no writable disk; DATABASE_URL should point at postgres.
	db, err := database.Open(cfg)
	if err != nil {
		logger.Error("could not open database", "error", err)
		os.Exit(1)
	}
	authSvc := auth.NewService(cfg)
	_ = authSvc.EnsureAdminExists(db, cfg.Admin.Username, cfg.Admin.Password)

	h := handlers.New(cfg, database.NewStore(db), authSvc, metrics.NewPrometheus(nil, ""), logger)
	h.MetricsHandler = promhttp.Handler()

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	h.Register(r)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}

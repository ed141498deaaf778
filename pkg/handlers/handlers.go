package handlers

import (
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/auth"
	"github.com/arnavshah/crew-scheduler-api/pkg/config"
	"github.com/arnavshah/crew-scheduler-api/pkg/database"
	"github.com/arnavshah/crew-scheduler-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

//go:embed static/*
var staticEmbed embed.FS

const (
	ctxAPIKey   = "apiKey"
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	cfg     *config.Config
	store   *database.Store
	auth    *auth.Service
	metrics metrics.Recorder
	log     *slog.Logger
	now     func() time.Time

	// MetricsHandler serves /metrics when set
	MetricsHandler http.Handler
}

// New wires the handlers. A nil recorder disables metrics and a nil logger uses slog.Default.
func New(cfg *config.Config, store *database.Store, authSvc *auth.Service, rec metrics.Recorder, logger *slog.Logger) *Handler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:     cfg,
		store:   store,
		auth:    authSvc,
		metrics: rec,
		log:     logger,
		now:     time.Now,
	}
}

func bearer(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	// Strip "Bearer " if present
	return strings.TrimPrefix(token, "Bearer ")
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := h.auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC-signed API key and enforces the daily request limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key required"})
			return
		}

		userID, err := h.auth.VerifyHMACKey(key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API Key signature"})
			return
		}

		// Fetch or create API key record to track usage
		apiKey, err := h.store.FindOrCreateAPIKey(key, userID, h.cfg.DefaultRateLimit)
		if err != nil {
			h.log.Error("api key lookup failed", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not load API Key"})
			return
		}
		if apiKey.Revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API Key revoked"})
			return
		}

		used, err := h.store.RequestCount(apiKey.ID, database.Today(h.now()))
		if err != nil {
			h.log.Error("usage lookup failed", "key_id", apiKey.ID, "error", err)
		} else if apiKey.RateLimit > 0 && used >= apiKey.RateLimit {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Daily rate limit exceeded"})
			return
		}
		if err := h.store.TouchAPIKey(apiKey.ID); err != nil {
			h.log.Warn("could not update last use", "key_id", apiKey.ID, "error", err)
		}

		c.Set(ctxAPIKey, apiKey)
		c.Set(ctxUserID, userID)
		c.Next()
	}
}

// RecordUsage adds the request to today's counters of the calling key
func (h *Handler) RecordUsage(c *gin.Context, days, staff int) {
	apiKeyRaw, exists := c.Get(ctxAPIKey)
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	if err := h.store.RecordUsage(apiKey.ID, database.Today(h.now()), days, staff); err != nil {
		h.log.Warn("could not record usage", "key_id", apiKey.ID, "error", err)
	}
}

// storageError maps repository errors onto HTTP responses
func (h *Handler) storageError(c *gin.Context, err error, what string) {
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	h.log.Error("storage failure", "resource", what, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error for " + what})
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// Login handles admin login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.auth.Login(h.store.DB(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.log.Error("login failed", "username", req.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// GenerateKey creates a new API key using the HMAC strategy
func (h *Handler) GenerateKey(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		RateLimit int    `json:"rate_limit" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.Contains(req.Name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not contain '.'"})
		return
	}

	if req.RateLimit == 0 {
		req.RateLimit = h.cfg.DefaultRateLimit
	}

	key := h.auth.GenerateHMACKey(req.Name)
	if _, err := h.store.CreateAPIKey(key, req.Name, req.RateLimit); err != nil {
		h.log.Error("could not create key record", "name", req.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create key record"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name": req.Name,
		"key":  key,
	})
}

// ListKeys returns all API keys
func (h *Handler) ListKeys(c *gin.Context) {
	keys, err := h.store.ListAPIKeys()
	if err != nil {
		h.storageError(c, err, "api keys")
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

// RevokeKey disables an API key
func (h *Handler) RevokeKey(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.store.RevokeAPIKey(id); err != nil {
		h.storageError(c, err, "api key")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Key revoked"})
}

// UpdateKeyLimit updates the daily rate limit for a key
func (h *Handler) UpdateKeyLimit(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		RateLimit int `json:"rate_limit" form:"rate_limit"`
	}

	// Try JSON first, then Form/Query
	if err := c.ShouldBindJSON(&req); err != nil {
		if err := c.ShouldBindQuery(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rate_limit is required"})
			return
		}
	}

	if req.RateLimit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rate limit"})
		return
	}

	if err := h.store.UpdateRateLimit(id, req.RateLimit); err != nil {
		h.storageError(c, err, "api key")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rate limit updated successfully"})
}

// GetUsage returns usage stats for a key
func (h *Handler) GetUsage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	usage, err := h.store.UsageHistory(id)
	if err != nil {
		h.storageError(c, err, "usage")
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage})
}

// AdminInterface serves the admin web interface from embedded files
func (h *Handler) AdminInterface(c *gin.Context) {
	data, err := staticEmbed.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "static/index.html not found in embedded FS"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", data)
}

// GetStaticFS returns the embedded filesystem for static assets
func (h *Handler) GetStaticFS() http.FileSystem {
	sub, err := fs.Sub(staticEmbed, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

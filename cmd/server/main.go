package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/applytrack/applytrack-api/internal/config"
	"github.com/applytrack/applytrack-api/internal/handler"
	"github.com/applytrack/applytrack-api/internal/middleware"
	"github.com/applytrack/applytrack-api/internal/repository"
	"github.com/applytrack/applytrack-api/internal/service"
	"github.com/applytrack/applytrack-api/internal/store"
)

func main() {
	// ── Logging ──────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// ── Config ───────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("Starting ApplyTrack API")

	// ── Database ─────────────────────────────────────────
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connected")

	// ── Snapshot cache ───────────────────────────────────
	var cache store.Store
	switch cfg.CacheBackend {
	case "redis":
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisStore.Close()
		cache = redisStore
		log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis snapshot cache")
	default:
		memStore, err := store.NewMemoryStore(cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize in-memory cache")
		}
		defer memStore.Close()
		cache = memStore
	}

	// ── Repositories ─────────────────────────────────────
	userRepo := repository.NewUserRepo(pool)
	jobRepo := repository.NewJobRepo(pool)
	eventRepo := repository.NewEventRepo(pool)
	rewardsRepo := repository.NewRewardsRepo(pool)

	// ── Services ─────────────────────────────────────────
	scraper := service.NewScraperClient(cfg.ScraperBaseURL, cfg.ScraperAPIKey)
	refresher := service.NewRefresher(scraper, userRepo, jobRepo, cache, cfg.RefreshInterval)

	refreshCtx, stopRefresher := context.WithCancel(ctx)
	go refresher.Run(refreshCtx)

	// ── Handlers ─────────────────────────────────────────
	authHandler := handler.NewAuthHandler(userRepo)
	jobHandler := handler.NewJobHandler(jobRepo, eventRepo, refresher)
	rewardsHandler := handler.NewRewardsHandler(eventRepo, rewardsRepo)
	statsHandler := handler.NewStatsHandler(jobRepo, eventRepo)

	// ── Middleware ────────────────────────────────────────
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.FirebaseProjectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firebase auth")
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS)

	// ── Router ───────────────────────────────────────────
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	// CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check (unauthenticated)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "applytrack-api",
			"time":    time.Now().UTC(),
		})
	})

	// ── Authenticated Routes ─────────────────────────────
	api := r.Group("/", authMiddleware.Authenticate(), rateLimiter.Limit())
	{
		// After auth middleware verifies Firebase token, resolve internal user ID
		api.Use(resolveUserID(userRepo))

		// Auth
		api.POST("/auth/google", authHandler.GoogleSignIn)

		// Jobs
		api.GET("/jobs", jobHandler.ListJobs)
		api.POST("/jobs/refresh", jobHandler.Refresh)
		api.DELETE("/jobs/applied", jobHandler.RemoveApplied)
		api.POST("/jobs/:id/apply", jobHandler.Apply)
		api.POST("/jobs/:id/reject", jobHandler.Reject)
		api.POST("/jobs/:id/restore", jobHandler.Restore)

		// Rewards
		api.GET("/rewards", rewardsHandler.GetRewards)
		api.GET("/rewards/badges", rewardsHandler.ListBadges)

		// Stats
		api.GET("/stats/summary", statsHandler.Summary)
	}

	// ── Server ───────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Msg("ApplyTrack API server running")

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	stopRefresher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// resolveUserID maps Firebase UID to internal user UUID for all subsequent handlers
func resolveUserID(userRepo *repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		firebaseUID := middleware.GetFirebaseUID(c)
		if firebaseUID == "" {
			c.Next()
			return
		}

		user, err := userRepo.FindByFirebaseUID(c.Request.Context(), firebaseUID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to resolve user ID")
			c.Next()
			return
		}
		if user != nil {
			c.Set(middleware.ContextKeyUserID, user.ID.String())
		}

		c.Next()
	}
}

// requestLogger logs every request with zerolog
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}

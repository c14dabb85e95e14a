package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/granaevo/granaevo-backend/internal/config"
	"github.com/granaevo/granaevo-backend/internal/domain"
	"github.com/granaevo/granaevo-backend/internal/handler"
	"github.com/granaevo/granaevo-backend/internal/middleware"
	"github.com/granaevo/granaevo-backend/internal/notify"
	"github.com/granaevo/granaevo-backend/internal/repository/postgres"
	"github.com/granaevo/granaevo-backend/internal/repository/sqlite"
	"github.com/granaevo/granaevo-backend/internal/repository/storage"
	"github.com/granaevo/granaevo-backend/internal/service"
	"github.com/granaevo/granaevo-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/sync/errgroup"
)

// @title GranaEvo API
// @version 1.0
// @description Household finance tracker: profiles, transactions, reports and savings goals.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Supabase access token, as "Bearer {token}"
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to open store")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("Store ready")

	// Goal notifications go to the broker when configured
	var notifier notify.GoalNotifier = notify.NoOpNotifier{}
	if cfg.AMQP.URL != "" {
		client, err := notify.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer client.Close()
		notifier = client
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Goal notifications enabled")
	} else {
		log.Warn().Msg("AMQP_URL not set, goal notifications disabled")
	}

	// Profile photos need S3; a nil repository disables uploads
	var photos storage.PhotoRepository
	if cfg.S3.Bucket != "" {
		repo, err := storage.NewS3PhotoRepository(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize photo storage")
		}
		photos = repo
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Photo storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set, photo uploads disabled")
	}

	// Auth
	tokenValidator, err := middleware.NewSupabaseValidator(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token validator")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenValidator)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, middleware.DefaultBurstSize)
	defer rateLimiter.Stop()

	// Realtime events
	hub := websocket.NewHub()

	// Initialize services
	sessions := service.NewSessionManager(store)
	avatarService := service.NewAvatarService(sessions, photos)
	avatarService.SetEventPublisher(hub)
	profileService := service.NewProfileService(sessions, avatarService)
	profileService.SetEventPublisher(hub)
	transactionService := service.NewTransactionService(sessions)
	transactionService.SetEventPublisher(hub)
	goalService := service.NewGoalService(sessions, notifier)
	goalService.SetEventPublisher(hub)
	reportService := service.NewReportService(sessions)
	reportService.SetEventPublisher(hub)

	// Initialize handlers
	handlers := handler.Handlers{
		Profile:     handler.NewProfileHandler(profileService, avatarService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Goal:        handler.NewGoalHandler(goalService),
		Report:      handler.NewReportHandler(reportService),
		Session:     handler.NewSessionHandler(sessions, hub),
	}
	wsHandler := handler.NewWebSocketHandler(hub, websocket.NewJWTValidator(tokenValidator), sessions, handler.NewSocketCommands(reportService), cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":          "ok",
			"active_sessions": sessions.ActiveSessions(),
			"ws_clients":      hub.TotalClientCount(),
		})
	})

	// API docs
	e.GET("/swagger/openapi3.json", handler.ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// WebSocket endpoint, authenticated by the token query parameter
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, handlers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}

	log.Info().Msg("Server exited")
}

// openStore migrates and opens the configured document store
func openStore(ctx context.Context, cfg *config.Config) (domain.Store, error) {
	if cfg.StoreDriver == config.StoreDriverSQLite {
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, err
	}
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hackmart/storefront/internal/auth"
	"github.com/hackmart/storefront/internal/config"
	"github.com/hackmart/storefront/internal/handler"
	"github.com/hackmart/storefront/internal/payment"
	"github.com/hackmart/storefront/internal/repository"
	"github.com/hackmart/storefront/internal/service"
	"github.com/hackmart/storefront/internal/validator"
	"github.com/hackmart/storefront/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Hackmart Storefront API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.Server.AllowedOrigins, ","),
		AllowCredentials: true,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,x-refresh-token",
	}))

	// Initialize validator
	validate := validator.New()

	// Token and OAuth plumbing. The handshake state lives in bounded,
	// expiring stores constructed here, not in package-level maps.
	tokens := auth.NewTokenProvider(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)
	states, err := auth.NewStateStore[service.OAuthState](cfg.Google.StateMax, cfg.Google.StateTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create oauth state store")
	}
	logins, err := auth.NewStateStore[service.OAuthLogin](cfg.Google.StateMax, cfg.Google.StateTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create oauth login store")
	}
	var google service.GoogleProviderInterface
	if cfg.Google.Enabled() {
		google = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	scoreRepo := repository.NewScoreRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)

	// Services
	gameService := service.NewGameService(pool, scoreRepo, userRepo, cfg.Season.Location())
	couponService := service.NewCouponService(pool, couponRepo, redemptionRepo, gameService)
	authService := service.NewAuthService(userRepo, tokens, google, states, logins)
	gateway := payment.NewClient(cfg.Payment.StoreID, cfg.Payment.StorePassword, cfg.Payment.Live, cfg.Payment.Timeout)

	// Handlers
	gameHandler := handler.NewGameHandler(gameService, validate)
	couponHandler := handler.NewCouponHandler(couponService, gameService, validate)
	authHandler := handler.NewAuthHandler(authService, validate, cfg.Server.SecureCookies)
	checkoutHandler := handler.NewCheckoutHandler(couponService, gameService, validate)
	paymentHandler := handler.NewPaymentHandler(gateway, authService, validate)
	healthHandler := handler.NewHealthHandler(pool)

	// Ops routes
	app.Get("/health", healthHandler.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRequired := handler.AuthRequired(tokens)
	adminOnly := handler.SuperAdminOnly()

	// Auth routes
	authGroup := app.Group("/api/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Post("/refresh-token", authHandler.Refresh)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Post("/me", authRequired, authHandler.WhoAmI)
	authGroup.Get("/login/google", authHandler.GoogleSignIn)
	authGroup.Get("/callback/google", authHandler.GoogleCallback)
	authGroup.Post("/oauth/authorize", authHandler.GoogleAuthorize)

	// Game routes
	gameGroup := app.Group("/api/game", authRequired)
	gameGroup.Get("/get-season", gameHandler.GetSeason)
	gameGroup.Get("/get-score", gameHandler.GetScore)
	gameGroup.Get("/get-user-rank", gameHandler.GetUserRank)
	gameGroup.Get("/get-leaderboard", gameHandler.GetLeaderboard)
	gameGroup.Post("/add-coin", gameHandler.AddCoin)
	gameGroup.Post("/guess", gameHandler.Guess)

	// Coupon routes
	couponGroup := app.Group("/api/coupon", authRequired)
	couponGroup.Post("/validate-coupon", couponHandler.ValidateCoupon)
	couponGroup.Post("/redeem", couponHandler.RedeemCoupon)
	couponGroup.Post("/create-coupon", adminOnly, couponHandler.CreateCoupon)
	couponGroup.Get("/fetch-all-coupons", adminOnly, couponHandler.ListCoupons)
	couponGroup.Delete("/:id", adminOnly, couponHandler.DeleteCoupon)

	// Checkout and payment routes
	app.Post("/api/checkout/quote", authRequired, checkoutHandler.Quote)
	app.Post("/api/payment/initiate", authRequired, paymentHandler.Initiate)

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

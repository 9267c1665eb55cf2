package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkleaf/fiction-api/internal/config"
	"github.com/inkleaf/fiction-api/internal/domain/account"
	"github.com/inkleaf/fiction-api/internal/domain/auth"
	"github.com/inkleaf/fiction-api/internal/domain/book"
	"github.com/inkleaf/fiction-api/internal/domain/chapter"
	"github.com/inkleaf/fiction-api/internal/domain/ledger"
	"github.com/inkleaf/fiction-api/internal/domain/payment"
	"github.com/inkleaf/fiction-api/internal/domain/unlock"
	"github.com/inkleaf/fiction-api/internal/middleware"
	"github.com/inkleaf/fiction-api/internal/pkg/database"
	"github.com/inkleaf/fiction-api/internal/pkg/email"
	"github.com/inkleaf/fiction-api/internal/pkg/googleplay"
	"github.com/inkleaf/fiction-api/internal/pkg/jwt"
	"github.com/inkleaf/fiction-api/internal/pkg/response"
	"github.com/inkleaf/fiction-api/internal/pkg/stripe"
)

func main() {
	cfg := config.Load()

	setupLogger(cfg)

	log.Info().Str("env", cfg.Env).Msg("Starting Inkleaf API")

	// Database
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.ClosePostgres(db)

	// Redis
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer database.CloseRedis(redisClient)

	// Infrastructure
	jwtService := jwt.NewService(cfg.JWTSecret, cfg.SessionTTL)

	emailService := email.NewService(email.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.EmailFrom,
		FromName:  cfg.EmailFromName,
	})
	defer emailService.Close()

	stripeClient := stripe.NewClient(stripe.Config{
		SecretKey: cfg.StripeSecretKey,
	})

	googlePlayClient := googleplay.NewClient(googleplay.Config{
		PackageName: cfg.AndroidPackageName,
		AccessToken: cfg.GooglePlayAccessToken,
		BaseURL:     cfg.GooglePlayBaseURL,
	})

	// Repositories
	accountRepo := account.NewRepository(db)
	bookRepo := book.NewRepository(db)
	chapterRepo := chapter.NewRepository(db)
	paymentRepo := payment.NewRepository(db)

	// Services
	ledgerService := ledger.NewService(accountRepo)
	unlockService := unlock.NewService(ledgerService)
	paymentService := payment.NewService(paymentRepo, ledgerService, stripeClient, googlePlayClient, payment.URLs{
		SuccessURL: cfg.FrontendURL + "/purchase/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  cfg.FrontendURL + "/purchase/cancel",
	})
	otpStore := auth.NewRedisOTPStore(redisClient)
	authService := auth.NewService(accountRepo, otpStore, jwtService, emailService, cfg.FrontendURL)

	// Handlers
	bookHandler := book.NewHandler(bookRepo)
	chapterHandler := chapter.NewHandler(chapterRepo, unlockService)
	paymentHandler := payment.NewHandler(paymentService)
	authHandler := auth.NewHandler(authService, jwtService)

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.OK(w, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/books", bookHandler.Routes())
		r.Mount("/chapters", chapterHandler.Routes())
		r.Mount("/payments", paymentHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		close(done)
	}()

	log.Info().Str("port", cfg.Port).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed")
	}
	<-done

	log.Info().Msg("Server stopped")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

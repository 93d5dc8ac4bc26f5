package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/client-auth-api/internal/config"
	jwtinfra "github.com/client-auth-api/internal/infrastructure/jwt"
	"github.com/client-auth-api/internal/infrastructure/postgres"
	"github.com/client-auth-api/internal/infrastructure/recaptcha"
	"github.com/client-auth-api/internal/infrastructure/smtp"
	"github.com/client-auth-api/internal/infrastructure/sns"
	transporthttp "github.com/client-auth-api/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// The verifier fails closed, so a missing secret would silently reject
	// every signup and login. Refuse to start instead.
	if cfg.RecaptchaSecret == "" {
		log.Fatal("RECAPTCHA_SECRET_KEY is required")
	}

	ctx := context.Background()

	if err := postgres.Migrate(ctx, cfg); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("JWT provider: %v", err)
	}

	verifier := recaptcha.NewVerifier(cfg)
	mailer := smtp.NewMailer(cfg)

	// SMS sending degrades gracefully when AWS credentials are absent.
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	deps := &transporthttp.Deps{
		UserRepo:         postgres.NewUserRepo(pool),
		SessionRepo:      postgres.NewSessionRepo(pool),
		VerificationRepo: postgres.NewVerificationRepo(pool),
		Verifier:         verifier,
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

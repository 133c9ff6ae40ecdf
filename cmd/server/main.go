// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nutriplan/internal/ai"
	"nutriplan/internal/config"
	"nutriplan/internal/db"
	"nutriplan/internal/delivery"
	"nutriplan/internal/fulfillment"
	"nutriplan/internal/payment"
	"nutriplan/internal/pdf"
	"nutriplan/internal/server"
	"nutriplan/internal/tasks"
	"nutriplan/pkg/logger"
)

func main() {
	l := logger.New()
	l.Info("Starting NutriPlan service...")

	cfg, err := config.Load()
	if err != nil {
		l.Fatal("Failed to load config", err)
	}

	// Validate critical configuration
	if cfg.OpenAI.APIKey == "" {
		l.Fatal("OpenAI API key is not configured")
	}
	if cfg.Twilio.AccountSID == "" || cfg.Twilio.AuthToken == "" || cfg.Twilio.WhatsAppNumber == "" {
		l.Fatal("Twilio configuration is incomplete")
	}
	if cfg.MercadoPago.AccessToken == "" {
		l.Fatal("Mercado Pago access token is not configured")
	}

	// Initialize database connection with retry
	var database *db.PostgresDB
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		database, err = db.NewPostgresDB(db.Config{
			Host:         cfg.DB.Host,
			Port:         cfg.DB.Port,
			User:         cfg.DB.User,
			Password:     cfg.DB.Password,
			DBName:       cfg.DB.DBName,
			SSLMode:      cfg.DB.SSLMode,
			MaxOpenConns: cfg.DB.MaxOpenConns,
			MaxIdleConns: cfg.DB.MaxIdleConns,
			ConnLifetime: cfg.DB.ConnLifetime,
		})
		if err == nil {
			break
		}
		l.Error("Failed to connect to database, retrying...", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if database == nil {
		l.Fatal("Failed to connect to database after multiple attempts", err)
	}
	defer database.Close()

	scheduler := tasks.NewScheduler(l)
	defer scheduler.Close()

	aiClient := ai.NewClient(cfg.OpenAI.APIKey, ai.Options{
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	}, l)

	renderer := pdf.NewRenderer(l)

	messenger, err := delivery.NewTwilioMessenger(delivery.TwilioConfig{
		AccountSID:      cfg.Twilio.AccountSID,
		AuthToken:       cfg.Twilio.AuthToken,
		WhatsAppNumber:  cfg.Twilio.WhatsAppNumber,
		DocumentBaseURL: cfg.Delivery.DocumentBaseURL,
	}, l)
	if err != nil {
		l.Fatal("Failed to create WhatsApp messenger", err)
	}

	dispatcher := delivery.NewDispatcher(messenger, scheduler, cfg.Delivery.FollowUpDelay, l)

	orchestrator := fulfillment.NewOrchestrator(
		aiClient, renderer, dispatcher, database, scheduler,
		cfg.PDF.TempDir, cfg.PDF.Retention, l,
	)

	mpClient := payment.NewMercadoPagoClient(cfg.MercadoPago.AccessToken, cfg.MercadoPago.BaseURL, l)
	gate := payment.NewGate(mpClient, database, orchestrator, cfg.API.BaseURL, cfg.Web.URL, l)

	httpServer := server.NewServer(server.Options{
		Port:        cfg.Server.Port,
		TempDir:     cfg.PDF.TempDir,
		WebURL:      cfg.Web.URL,
		Development: cfg.Development,
	}, orchestrator, gate, l)

	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("Failed to start HTTP server", err)
		}
	}()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		l.Error("Error during HTTP server shutdown", err)
	}

	l.Info("Service stopped successfully")
}

// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutriplan/internal/fulfillment"
	"nutriplan/internal/models"
	"nutriplan/internal/payment"
	"nutriplan/pkg/logger"
)

// Fulfillment is the orchestrator surface the handlers call.
type Fulfillment interface {
	Generate(ctx context.Context, profile models.UserProfile) (*fulfillment.Result, error)
	SendExisting(ctx context.Context, phone string, profile models.UserProfile, documentPath string) (*fulfillment.Result, error)
	FullProcess(ctx context.Context, profile models.UserProfile) (*fulfillment.Result, error)
	Latest(ctx context.Context, email string) (*fulfillment.Result, error)
}

// PaymentGate is the payment surface the handlers call.
type PaymentGate interface {
	CreatePreference(ctx context.Context, profile models.UserProfile, plan *models.DietPlan) (*payment.Preference, error)
	HandleWebhook(ctx context.Context, notif payment.WebhookNotification) error
}

type Options struct {
	Port        string
	TempDir     string
	WebURL      string
	Development bool
}

type Server struct {
	server *http.Server
	logger *logger.Logger
}

func NewServer(opts Options, orch Fulfillment, gate PaymentGate, log *logger.Logger) *Server {
	if !opts.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	h := &handlers{
		orch:        orch,
		gate:        gate,
		webURL:      opts.WebURL,
		development: opts.Development,
		logger:      log,
	}

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Rendered documents are served here so the messaging provider can
	// fetch them by media URL.
	router.Static("/files", opts.TempDir)

	api := router.Group("/api")
	{
		plans := api.Group("/diet-plans")
		{
			plans.POST("/generate", h.generateDietPlan)
			plans.POST("/send-whatsapp", h.sendDietPlanViaWhatsApp)
			plans.POST("/full-process", h.fullProcess)
			plans.GET("/latest", h.latestDietPlan)
		}

		calculations := api.Group("/calculations")
		{
			calculations.POST("/imc", h.calculateIMC)
			calculations.POST("/tmb", h.calculateTMB)
			calculations.POST("/water", h.calculateWater)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/create_preference", h.createPreference)
			payments.POST("/webhook", h.paymentWebhook)
			payments.GET("/success", h.paymentRedirect("success"))
			payments.GET("/failure", h.paymentRedirect("failure"))
			payments.GET("/pending", h.paymentRedirect("pending"))
		}
	}

	httpServer := &http.Server{
		Addr:         ":" + opts.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		server: httpServer,
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Infow("starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

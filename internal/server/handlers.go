// internal/server/handlers.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"nutriplan/internal/apperr"
	"nutriplan/internal/models"
	"nutriplan/internal/payment"
	"nutriplan/pkg/logger"
)

type handlers struct {
	orch        Fulfillment
	gate        PaymentGate
	webURL      string
	development bool
	logger      *logger.Logger
}

type generateRequest struct {
	UserData *models.UserProfile `json:"userData"`
}

type sendWhatsAppRequest struct {
	PhoneNumber string             `json:"phoneNumber"`
	UserData    models.UserProfile `json:"userData"`
	PDFPath     string             `json:"pdfPath"`
}

type createPreferenceRequest struct {
	UserData *models.UserProfile `json:"userData"`
	DietPlan *models.DietPlan    `json:"dietPlan"`
}

func (h *handlers) generateDietPlan(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserData == nil {
		h.badPayload(c, "dados do usuário inválidos ou ausentes")
		return
	}

	res, err := h.orch.Generate(c.Request.Context(), *req.UserData)
	if err != nil {
		h.respondError(c, res.CorrelationID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"dietPlan":      res.DietPlan,
		"correlationId": res.CorrelationID,
	})
}

func (h *handlers) sendDietPlanViaWhatsApp(c *gin.Context) {
	var req sendWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badPayload(c, "requisição inválida")
		return
	}

	res, err := h.orch.SendExisting(c.Request.Context(), req.PhoneNumber, req.UserData, req.PDFPath)
	if err != nil {
		h.respondError(c, res.CorrelationID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"correlationId": res.CorrelationID,
	})
}

func (h *handlers) fullProcess(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserData == nil {
		h.badPayload(c, "dados do usuário inválidos ou ausentes")
		return
	}

	res, err := h.orch.FullProcess(c.Request.Context(), *req.UserData)
	if err != nil {
		h.respondError(c, res.CorrelationID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"correlationId": res.CorrelationID,
		"pdfGenerated":  res.PDFGenerated,
		"whatsappSent":  res.WhatsAppSent,
	})
}

func (h *handlers) latestDietPlan(c *gin.Context) {
	res, err := h.orch.Latest(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.respondError(c, res.CorrelationID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"dietPlan":      res.DietPlan,
		"correlationId": res.CorrelationID,
	})
}

func (h *handlers) createPreference(c *gin.Context) {
	var req createPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserData == nil {
		h.badPayload(c, "dados do usuário inválidos ou ausentes")
		return
	}

	cid := uuid.NewString()
	pref, err := h.gate.CreatePreference(c.Request.Context(), *req.UserData, req.DietPlan)
	if err != nil {
		h.respondError(c, cid, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"preferenceId":  pref.ID,
		"init_point":    pref.RedirectURL,
		"correlationId": cid,
	})
}

func (h *handlers) paymentWebhook(c *gin.Context) {
	var notif payment.WebhookNotification
	if err := c.ShouldBindJSON(&notif); err != nil {
		h.badPayload(c, "notificação inválida")
		return
	}

	cid := uuid.NewString()
	if err := h.gate.HandleWebhook(c.Request.Context(), notif); err != nil {
		h.respondError(c, cid, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"correlationId": cid,
	})
}

func (h *handlers) paymentRedirect(status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Redirect(http.StatusFound, h.webURL+"/payment/"+status)
	}
}

func (h *handlers) badPayload(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":       false,
		"error":         message,
		"correlationId": uuid.NewString(),
	})
}

// respondError is the single place errors become HTTP responses. Every
// failure body carries the correlation ID; validation failures list the
// exact missing fields; stack-level details only leak in development mode.
func (h *handlers) respondError(c *gin.Context, correlationID string, err error) {
	status := apperr.HTTPStatus(err)

	body := gin.H{
		"success":       false,
		"error":         apperr.Message(err),
		"correlationId": correlationID,
	}
	if fields := apperr.FieldsOf(err); len(fields) > 0 {
		body["missingFields"] = fields
	}
	if h.development {
		body["details"] = err.Error()
	}

	h.logger.Errorw("request failed",
		"correlation_id", correlationID, "status", status, "error", err)

	c.JSON(status, body)
}

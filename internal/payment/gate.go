// internal/payment/gate.go
package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"nutriplan/internal/apperr"
	"nutriplan/internal/fulfillment"
	"nutriplan/internal/models"
	"nutriplan/pkg/logger"
)

// Fulfiller runs the full pipeline once a payment is approved.
type Fulfiller interface {
	FullProcess(ctx context.Context, profile models.UserProfile) (*fulfillment.Result, error)
}

// Store records preference creation and webhook status transitions.
type Store interface {
	SavePayment(ctx context.Context, p *models.Payment) error
	UpdatePaymentStatus(ctx context.Context, externalReference, providerPaymentID, status string) error
}

// Preference is what the caller redirects the user with.
type Preference struct {
	ID          string `json:"preferenceId"`
	RedirectURL string `json:"init_point"`
}

// WebhookNotification is the provider's webhook payload.
type WebhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// Gate defers fulfillment until the provider confirms an approved payment.
type Gate struct {
	provider Provider
	store    Store
	fulfill  Fulfiller
	baseURL  string
	webURL   string
	logger   *logger.Logger
	now      func() time.Time
}

func NewGate(provider Provider, store Store, fulfill Fulfiller, baseURL, webURL string, log *logger.Logger) *Gate {
	return &Gate{
		provider: provider,
		store:    store,
		fulfill:  fulfill,
		baseURL:  strings.TrimRight(baseURL, "/"),
		webURL:   strings.TrimRight(webURL, "/"),
		logger:   log,
		now:      time.Now,
	}
}

// CreatePreference builds the provider preference from the profile and the
// plan's price. Name, email and phone are all required: the webhook path
// depends on the serialized profile round-tripping through the metadata.
func (g *Gate) CreatePreference(ctx context.Context, profile models.UserProfile, plan *models.DietPlan) (*Preference, error) {
	var missing []string
	if profile.Name == "" {
		missing = append(missing, "name")
	}
	if profile.Email == "" {
		missing = append(missing, "email")
	}
	if profile.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, apperr.Payment(apperr.KindIncompleteProfile,
			"dados do usuário incompletos para pagamento: "+strings.Join(missing, ", "), nil)
	}

	price := models.FallbackPrice
	planType := "Standard"
	if plan != nil && plan.Price > 0 {
		price = plan.Price
	}
	if profile.DietType != "" {
		planType = profile.DietType
	}

	areaCode, number := splitPhone(profile.Phone)

	serialized, err := json.Marshal(profile)
	if err != nil {
		return nil, apperr.Payment(apperr.KindProviderError, "falha ao serializar dados do usuário", err)
	}

	digits := digitsOf(profile.Phone)
	req := &PreferenceRequest{
		Items: []PreferenceItem{
			{
				Title:       "Plano Nutricional - " + planType,
				Description: "Plano para " + profile.Name,
				Quantity:    1,
				UnitPrice:   price,
				CurrencyID:  "BRL",
			},
		},
		Payer: Payer{
			Name:  profile.Name,
			Email: profile.Email,
			Phone: PayerPhone{AreaCode: areaCode, Number: number},
		},
		PaymentMethods: PaymentMethods{
			ExcludedPaymentTypes: []PaymentType{{ID: "ticket"}},
			Installments:         1,
		},
		NotificationURL:   g.baseURL + "/api/payments/webhook",
		ExternalReference: fmt.Sprintf("user_%s_%d", digits, g.now().Unix()),
		Metadata: map[string]string{
			"user_data": string(serialized),
			"diet_type": planType,
		},
		BackURLs: BackURLs{
			Success: g.webURL + "/payment/success",
			Pending: g.webURL + "/payment/pending",
			Failure: g.webURL + "/payment/failure",
		},
		AutoReturn: "approved",
	}

	resp, err := g.provider.CreatePreference(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := g.store.SavePayment(ctx, &models.Payment{
		ExternalReference: req.ExternalReference,
		Amount:            price,
		Currency:          "BRL",
		Status:            "pending",
		PayerEmail:        profile.Email,
	}); err != nil {
		g.logger.Warnw("failed to persist payment record", "external_reference", req.ExternalReference, "error", err)
	}

	redirect := resp.InitPoint
	if redirect == "" {
		redirect = resp.SandboxInitPoint
	}
	return &Preference{ID: resp.ID, RedirectURL: redirect}, nil
}

// HandleWebhook processes a provider notification. Anything that is not a
// payment notification is acknowledged as a no-op: the provider must still
// get a success response or it retries. Only an approved payment triggers
// fulfillment, and that runs detached from the webhook response.
func (g *Gate) HandleWebhook(ctx context.Context, notif WebhookNotification) error {
	if notif.Type != "payment" {
		g.logger.Infow("ignoring non-payment webhook", "type", notif.Type)
		return nil
	}

	paymentID := notif.Data.ID.String()
	g.logger.Infow("payment webhook received", "payment_id", paymentID)

	p, err := g.provider.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}

	if !validPayment(p) {
		g.logger.Warnw("invalid payment", "payment_id", paymentID)
		return apperr.Payment(apperr.KindInvalidPayment, "pagamento inválido", nil)
	}

	if err := g.store.UpdatePaymentStatus(ctx, p.ExternalReference, paymentID, p.Status); err != nil {
		g.logger.Warnw("failed to update payment status",
			"external_reference", p.ExternalReference, "status", p.Status, "error", err)
	}

	if p.Status != "approved" {
		// pending/authorized are acknowledged but do not trigger delivery.
		g.logger.Infow("payment not yet approved", "payment_id", paymentID, "status", p.Status)
		return nil
	}

	profile, err := profileFromMetadata(p.Metadata)
	if err != nil {
		g.logger.Errorw("payment metadata missing user data", "payment_id", paymentID, "error", err)
		return apperr.Payment(apperr.KindInvalidPayment, "dados do usuário não encontrados no pagamento", err)
	}

	// Fulfillment runs in the background so the webhook never times out.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		res, err := g.fulfill.FullProcess(ctx, profile)
		if err != nil {
			g.logger.Errorw("fulfillment after payment failed", "payment_id", paymentID, "error", err)
			return
		}
		g.logger.Infow("fulfillment after payment completed",
			"payment_id", paymentID, "correlation_id", res.CorrelationID)
	}()

	return nil
}

func validPayment(p *PaymentResponse) bool {
	if p == nil || p.ID == 0 || p.ExternalReference == "" {
		return false
	}
	switch p.Status {
	case "approved", "pending", "authorized":
		return true
	}
	return false
}

func profileFromMetadata(metadata map[string]string) (models.UserProfile, error) {
	var profile models.UserProfile
	raw, ok := metadata["user_data"]
	if !ok || raw == "" {
		return profile, fmt.Errorf("metadata has no user_data")
	}
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return profile, fmt.Errorf("decode user_data: %w", err)
	}
	return profile, nil
}

// splitPhone breaks a Brazilian number into area code and subscriber
// number for the provider's payer schema. The 55 country code is stripped
// when present; the area code is the first two remaining digits.
func splitPhone(phone string) (areaCode, number string) {
	digits := digitsOf(phone)
	if strings.HasPrefix(digits, "55") && len(digits) > 10 {
		digits = digits[2:]
	}
	if len(digits) <= 2 {
		return digits, ""
	}
	return digits[:2], digits[2:]
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

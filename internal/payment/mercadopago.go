// internal/payment/mercadopago.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"nutriplan/internal/apperr"
	"nutriplan/pkg/logger"
)

const defaultBaseURL = "https://api.mercadopago.com"

// Provider is the payment collaborator: preference creation and payment
// lookup. Implemented by MercadoPagoClient; faked in tests.
type Provider interface {
	CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResponse, error)
	GetPayment(ctx context.Context, id string) (*PaymentResponse, error)
}

type PreferenceRequest struct {
	Items             []PreferenceItem  `json:"items"`
	Payer             Payer             `json:"payer"`
	PaymentMethods    PaymentMethods    `json:"payment_methods"`
	NotificationURL   string            `json:"notification_url"`
	ExternalReference string            `json:"external_reference"`
	Metadata          map[string]string `json:"metadata"`
	BackURLs          BackURLs          `json:"back_urls"`
	AutoReturn        string            `json:"auto_return"`
}

type PreferenceItem struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	CurrencyID  string  `json:"currency_id"`
}

type Payer struct {
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Phone PayerPhone `json:"phone"`
}

type PayerPhone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

type PaymentMethods struct {
	ExcludedPaymentTypes []PaymentType `json:"excluded_payment_types"`
	Installments         int           `json:"installments"`
}

type PaymentType struct {
	ID string `json:"id"`
}

type BackURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

type PaymentResponse struct {
	ID                int64             `json:"id"`
	Status            string            `json:"status"`
	ExternalReference string            `json:"external_reference"`
	Metadata          map[string]string `json:"metadata"`
}

// MercadoPagoClient is a thin typed client for the provider's REST API.
type MercadoPagoClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
	logger      *logger.Logger
}

func NewMercadoPagoClient(accessToken, baseURL string, log *logger.Logger) *MercadoPagoClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &MercadoPagoClient{
		baseURL:     baseURL,
		accessToken: accessToken,
		http:        &http.Client{Timeout: 10 * time.Second},
		logger:      log,
	}
}

func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req *PreferenceRequest) (*PreferenceResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, apperr.Payment(apperr.KindProviderError, "dados da preferência inválidos", nil)
	}

	var resp PreferenceResponse
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, &resp); err != nil {
		return nil, err
	}

	c.logger.Infow("payment preference created", "preference_id", resp.ID)
	return &resp, nil
}

func (c *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*PaymentResponse, error) {
	if id == "" {
		return nil, apperr.Payment(apperr.KindInvalidPayment, "ID de pagamento não fornecido", nil)
	}

	var resp PaymentResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+id, nil, &resp); err != nil {
		return nil, err
	}

	c.logger.Infow("payment verified", "payment_id", id, "status", resp.Status)
	return &resp, nil
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperr.Payment(apperr.KindProviderError, "falha ao serializar requisição de pagamento", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Payment(apperr.KindProviderError, "falha ao montar requisição de pagamento", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Payment(apperr.KindProviderError, "erro ao se comunicar com o Mercado Pago", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Errorw("Mercado Pago API error",
			"method", method, "path", path, "status", resp.StatusCode, "body", string(data))
		return apperr.Payment(apperr.KindProviderError,
			fmt.Sprintf("erro na API do Mercado Pago (status %d)", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Payment(apperr.KindProviderError, "resposta inválida do Mercado Pago", err)
	}
	return nil
}

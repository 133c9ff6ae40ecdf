package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan/internal/apperr"
	"nutriplan/pkg/logger"
)

func TestMercadoPagoCreatePreference(t *testing.T) {
	var gotAuth string
	var gotBody PreferenceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/checkout/preferences", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PreferenceResponse{
			ID:        "pref-99",
			InitPoint: "https://mp.test/init",
		})
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("test-token", srv.URL, logger.NewNop())
	resp, err := client.CreatePreference(context.Background(), &PreferenceRequest{
		Items: []PreferenceItem{{Title: "Plano Nutricional", Quantity: 1, UnitPrice: 97.90, CurrencyID: "BRL"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "pref-99", resp.ID)
	assert.Equal(t, "https://mp.test/init", resp.InitPoint)
	assert.Equal(t, "Bearer test-token", gotAuth)
	require.Len(t, gotBody.Items, 1)
	assert.Equal(t, 97.90, gotBody.Items[0].UnitPrice)
}

func TestMercadoPagoCreatePreferenceRejectsEmptyRequest(t *testing.T) {
	client := NewMercadoPagoClient("test-token", "http://unused", logger.NewNop())

	_, err := client.CreatePreference(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))

	_, err = client.CreatePreference(context.Background(), &PreferenceRequest{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))
}

func TestMercadoPagoGetPayment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/payments/42", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(PaymentResponse{
			ID:                42,
			Status:            "approved",
			ExternalReference: "user_5511999999999_1700000000",
			Metadata:          map[string]string{"diet_type": "Low Carb"},
		})
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("test-token", srv.URL, logger.NewNop())
	p, err := client.GetPayment(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, "approved", p.Status)
	assert.Equal(t, "user_5511999999999_1700000000", p.ExternalReference)
	assert.Equal(t, "Low Carb", p.Metadata["diet_type"])
}

func TestMercadoPagoGetPaymentRequiresID(t *testing.T) {
	client := NewMercadoPagoClient("test-token", "http://unused", logger.NewNop())

	_, err := client.GetPayment(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidPayment))
}

func TestMercadoPagoAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewMercadoPagoClient("bad-token", srv.URL, logger.NewNop())
	_, err := client.GetPayment(context.Background(), "42")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindProviderError))
	assert.Contains(t, err.Error(), "401")
}

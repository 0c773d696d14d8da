// internal/handler/checkout_handler_test.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paypal-gateway/internal/models"
)

type stubCheckout struct {
	payment     *models.Payment
	redirectURL string
	err         error
}

func (s *stubCheckout) CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.Payment, string, error) {
	return s.payment, s.redirectURL, s.err
}

func (s *stubCheckout) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	if s.payment != nil && s.payment.ID == paymentID {
		return s.payment, s.err
	}
	return nil, s.err
}

func newCheckoutRouter(stub *stubCheckout) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewCheckoutHandler(stub, zap.NewNop())
	router.POST("/api/v1/checkout", h.CreateCheckout)
	router.GET("/api/v1/payments/:id", h.GetPayment)
	return router
}

func TestCreateCheckoutRedirects(t *testing.T) {
	stub := &stubCheckout{
		payment:     &models.Payment{ID: "42", PurchaseKey: "abc123"},
		redirectURL: "https://www.sandbox.paypal.com/cgi-bin/webscr?cmd=_xclick",
	}
	router := newCheckoutRouter(stub)

	body := `{"first_name":"Ada","email":"buyer@example.com","total":"19.99","items":[{"product_id":"7"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != stub.redirectURL {
		t.Errorf("Location = %q, want %q", got, stub.redirectURL)
	}

	var resp models.CheckoutResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response did not parse: %v", err)
	}
	if resp.PaymentID != "42" || resp.PurchaseKey != "abc123" {
		t.Errorf("response = %+v", resp)
	}
}

func TestCreateCheckoutValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing email", body: `{"first_name":"Ada","total":"19.99","items":[{"product_id":"7"}]}`},
		{name: "bad email", body: `{"first_name":"Ada","email":"nope","total":"19.99","items":[{"product_id":"7"}]}`},
		{name: "no items", body: `{"first_name":"Ada","email":"a@b.com","total":"19.99","items":[]}`},
		{name: "not json", body: `total=19.99`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newCheckoutRouter(&stubCheckout{})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestCreateCheckoutServiceError(t *testing.T) {
	router := newCheckoutRouter(&stubCheckout{err: errors.New("db down")})

	body := `{"first_name":"Ada","email":"buyer@example.com","total":"19.99","items":[{"product_id":"7"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestGetPayment(t *testing.T) {
	stub := &stubCheckout{payment: &models.Payment{ID: "42", Status: models.PaymentStatusPending}}
	router := newCheckoutRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/payments/999", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown payment", w.Code)
	}
}

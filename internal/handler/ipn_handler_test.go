// internal/handler/ipn_handler_test.go
package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paypal-gateway/internal/models"
)

type stubProcessor struct {
	method  string
	rawBody []byte
	form    url.Values
	result  models.VerificationResult
}

func (s *stubProcessor) Process(ctx context.Context, method string, rawBody []byte, form url.Values) models.VerificationResult {
	s.method = method
	s.rawBody = rawBody
	s.form = form
	return s.result
}

func newIPNRouter(stub *stubProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Any("/paypal/ipn", NewIPNHandler(stub, zap.NewNop()).Notify)
	return router
}

func TestNotifyPassesRawBody(t *testing.T) {
	stub := &stubProcessor{result: models.VerificationResult{Outcome: models.OutcomeAccepted}}
	router := newIPNRouter(stub)

	payload := "custom=42&item_number=abc123&mc_gross=19.99"
	req := httptest.NewRequest(http.MethodPost, "/paypal/ipn", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}
	if stub.method != http.MethodPost {
		t.Errorf("method = %s, want POST", stub.method)
	}
	if string(stub.rawBody) != payload {
		t.Errorf("rawBody = %q, want %q", stub.rawBody, payload)
	}
}

func TestNotifyAlwaysAnswers200(t *testing.T) {
	// fire-and-forget from the gateway's perspective: rejections are not
	// surfaced as HTTP errors
	outcomes := []models.VerificationResult{
		{Outcome: models.OutcomeRejected, Reason: models.ReasonAmountMismatch},
		{Outcome: models.OutcomeInconclusive, Reason: models.ReasonRecordNotFound},
		{Outcome: models.OutcomeIgnored, Reason: models.ReasonMethodNotAllowed},
	}

	for _, result := range outcomes {
		stub := &stubProcessor{result: result}
		router := newIPNRouter(stub)

		req := httptest.NewRequest(http.MethodPost, "/paypal/ipn", strings.NewReader("custom=42"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("outcome %s: status = %d, want 200", result.Outcome, w.Code)
		}
	}
}

func TestNotifyRoutesNonPost(t *testing.T) {
	stub := &stubProcessor{result: models.VerificationResult{
		Outcome: models.OutcomeIgnored,
		Reason:  models.ReasonMethodNotAllowed,
	}}
	router := newIPNRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/paypal/ipn", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// the verifier sees the method instead of the router answering 404
	if stub.method != http.MethodGet {
		t.Errorf("method = %q, want GET delivered to the verifier", stub.method)
	}
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// internal/handler/ipn_handler.go
package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paypal-gateway/internal/models"
)

// IPNProcessor runs one verification pass over an inbound notification
type IPNProcessor interface {
	Process(ctx context.Context, method string, rawBody []byte, form url.Values) models.VerificationResult
}

type IPNHandler struct {
	verifier IPNProcessor
	logger   *zap.Logger
}

func NewIPNHandler(verifier IPNProcessor, logger *zap.Logger) *IPNHandler {
	return &IPNHandler{
		verifier: verifier,
		logger:   logger,
	}
}

// Notify handles the gateway callback on /paypal/ipn. The route accepts any
// method so non-POST deliveries are observable no-ops instead of router
// 404s. The gateway never receives an error signal: the response is 200
// with an empty body regardless of the verification outcome.
func (h *IPNHandler) Notify(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("failed to read ipn body", zap.Error(err))
		rawBody = nil
	}

	var form url.Values
	if len(rawBody) == 0 {
		if err := c.Request.ParseForm(); err == nil {
			form = c.Request.PostForm
		}
	}

	result := h.verifier.Process(c.Request.Context(), c.Request.Method, rawBody, form)

	h.logger.Info("ipn callback handled",
		zap.String("outcome", string(result.Outcome)),
		zap.String("reason", result.Reason),
		zap.String("payment_id", result.PaymentID))

	c.Status(http.StatusOK)
}

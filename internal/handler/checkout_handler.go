// internal/handler/checkout_handler.go
package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paypal-gateway/internal/models"
)

// CheckoutService is the checkout surface the handler depends on
type CheckoutService interface {
	CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.Payment, string, error)
	GetPayment(ctx context.Context, paymentID string) (*models.Payment, error)
}

type CheckoutHandler struct {
	service CheckoutService
	logger  *zap.Logger
}

func NewCheckoutHandler(service CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger,
	}
}

// CreateCheckout handles POST /api/v1/checkout
func (h *CheckoutHandler) CreateCheckout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, redirectURL, err := h.service.CreateCheckout(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create checkout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout"})
		return
	}

	// 303 so the browser follows with a GET to the gateway
	c.Header("Location", redirectURL)
	c.JSON(http.StatusSeeOther, models.CheckoutResponse{
		PaymentID:   payment.ID,
		PurchaseKey: payment.PurchaseKey,
		RedirectURL: redirectURL,
	})
}

// GetPayment handles GET /api/v1/payments/:id
func (h *CheckoutHandler) GetPayment(c *gin.Context) {
	paymentID := c.Param("id")

	payment, err := h.service.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.logger.Error("failed to load payment", zap.Error(err), zap.String("payment_id", paymentID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payment"})
		return
	}
	if payment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

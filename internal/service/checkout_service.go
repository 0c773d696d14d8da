// internal/service/checkout_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paypal-gateway/internal/config"
	"paypal-gateway/internal/eventbus"
	"paypal-gateway/internal/metrics"
	"paypal-gateway/internal/models"
)

// PaymentStore is the persistence surface the services depend on
type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	PublishPending(ctx context.Context, id string) (bool, error)
}

type CheckoutService struct {
	store  PaymentStore
	bus    *eventbus.Bus
	cfg    *config.Config
	logger *zap.Logger
}

func NewCheckoutService(store PaymentStore, bus *eventbus.Bus, cfg *config.Config, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		store:  store,
		bus:    bus,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCheckout creates the pending payment record and builds the gateway
// redirect. The record is persisted before any redirect is issued; the IPN
// verifier only ever looks records up.
func (s *CheckoutService) CreateCheckout(ctx context.Context, req *models.CheckoutRequest) (*models.Payment, string, error) {
	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		return nil, "", fmt.Errorf("invalid total: %w", err)
	}
	if !total.IsPositive() {
		return nil, "", errors.New("total must be greater than zero")
	}

	now := time.Now()
	payment := &models.Payment{
		ID:          uuid.New().String(),
		PurchaseKey: uuid.New().String(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Total:       total.Round(2).StringFixed(2),
		Currency:    s.cfg.Payment.Currency,
		Status:      models.PaymentStatusPending,
		Products:    req.Items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, payment); err != nil {
		return nil, "", fmt.Errorf("failed to save payment: %w", err)
	}

	metrics.CheckoutsCreated.Inc()

	// The cart owner drops local state on this event; the verifier never
	// reads live session state, only the persisted record.
	if err := s.bus.Publish(eventbus.Event{
		Type:    eventbus.CheckoutCreated,
		Payload: eventbus.CartPayload{PaymentID: payment.ID, Email: payment.Email},
	}); err != nil {
		s.logger.Warn("checkout event handler failed", zap.Error(err), zap.String("payment_id", payment.ID))
	}

	redirectURL := BuildRedirectURL(s.cfg, payment)

	s.logger.Info("checkout created",
		zap.String("payment_id", payment.ID),
		zap.String("total", payment.Total),
		zap.Bool("test_mode", s.cfg.General.TestMode))

	return payment, redirectURL, nil
}

// GetPayment retrieves a payment by ID
func (s *CheckoutService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	return s.store.GetByID(ctx, paymentID)
}

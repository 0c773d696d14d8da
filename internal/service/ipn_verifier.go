// internal/service/ipn_verifier.go
// The IPN verification pipeline: echo-back authentication, field
// extraction, record lookup, cross-validation, guarded status transition.
package service

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"paypal-gateway/internal/config"
	"paypal-gateway/internal/eventbus"
	"paypal-gateway/internal/ipnlog"
	"paypal-gateway/internal/metrics"
	"paypal-gateway/internal/models"
)

const (
	echoBackTimeout   = 45 * time.Second
	echoBackRedirects = 5
	seenKeyPrefix     = "ipn:txn:"
	seenTTL           = 24 * time.Hour
)

// ReceiptSender delivers the purchase receipt on a successful verification
type ReceiptSender interface {
	SendPurchaseReceipt(payment *models.Payment) error
}

// SeenCache suppresses re-processing of transaction ids already handled.
// It is best-effort: cache errors never change a verification outcome.
type SeenCache interface {
	Seen(ctx context.Context, key string) (bool, error)
	MarkSeen(ctx context.Context, key string, expiration time.Duration) error
}

type IPNVerifier struct {
	store    PaymentStore
	receipts ReceiptSender
	bus      *eventbus.Bus
	seen     SeenCache // optional
	client   *resty.Client
	cfg      *config.Config
	logger   *zap.Logger

	// endpoint is the validation target; tests point it at a local server
	endpoint string
}

func NewIPNVerifier(store PaymentStore, receipts ReceiptSender, bus *eventbus.Bus, seen SeenCache, cfg *config.Config, logger *zap.Logger) *IPNVerifier {
	client := resty.New().
		SetTimeout(echoBackTimeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(echoBackRedirects))

	return &IPNVerifier{
		store:    store,
		receipts: receipts,
		bus:      bus,
		seen:     seen,
		client:   client,
		cfg:      cfg,
		logger:   logger,
		endpoint: PayPalEndpoint(cfg.General.TestMode, true),
	}
}

// Process runs one verification pass over an inbound notification. Every
// failure aborts locally with no state mutation; the caller answers the
// gateway 200 regardless of the result.
func (v *IPNVerifier) Process(ctx context.Context, method string, rawBody []byte, form url.Values) models.VerificationResult {
	var lg *ipnlog.Log
	if v.cfg.General.TestMode {
		lg = ipnlog.Open(v.cfg.General.LogPath)
		lg.Start()
		defer func() {
			lg.End()
			lg.Close()
		}()
	}

	// Entry condition: only gateway POSTs are processed
	if method != http.MethodPost {
		lg.Printf("request method %s is not POST, execution stopped\n", method)
		return v.finish(lg, models.VerificationResult{
			Outcome: models.OutcomeIgnored,
			Reason:  models.ReasonMethodNotAllowed,
		})
	}

	// Reassemble the payload: prefer the raw body, fall back to re-encoding
	// the parsed POST fields
	payload := string(rawBody)
	if payload == "" {
		if len(form) == 0 {
			lg.Printf("empty body and empty form, execution stopped\n")
			return v.finish(lg, models.VerificationResult{
				Outcome: models.OutcomeRejected,
				Reason:  models.ReasonMalformedPayload,
			})
		}
		payload = form.Encode()
	}

	values, err := url.ParseQuery(payload)
	if err != nil {
		lg.Printf("payload did not parse: %v\n", err)
		return v.finish(lg, models.VerificationResult{
			Outcome: models.OutcomeRejected,
			Reason:  models.ReasonMalformedPayload,
		})
	}
	notif := models.Notification{Values: values}

	// Duplicate suppression ahead of the echo-back round trip; the status
	// CAS below is the real guard
	if txnID := notif.TxnID(); txnID != "" && v.seen != nil {
		if dup, err := v.seen.Seen(ctx, seenKeyPrefix+txnID); err == nil && dup {
			lg.Printf("txn_id %s already processed\n", txnID)
			return v.finish(lg, models.VerificationResult{
				Outcome:   models.OutcomeIgnored,
				Reason:    models.ReasonDuplicate,
				PaymentID: notif.PaymentID(),
			})
		}
	}

	// Step 1: echo the payload back to PayPal for authentication
	if err := v.echoBack(ctx, payload, lg); err != nil {
		lg.Printf("validation call failed: %v\nexecution stopped\n", err)
		return v.finish(lg, models.VerificationResult{
			Outcome: models.OutcomeRejected,
			Reason:  models.ReasonTransportFailure,
		})
	}

	// Step 2: required fields
	if missing := notif.MissingFields(); len(missing) > 0 {
		lg.Printf("missing required fields: %s\nexecution stopped\n", strings.Join(missing, ", "))
		return v.finish(lg, models.VerificationResult{
			Outcome: models.OutcomeRejected,
			Reason:  models.ReasonMalformedPayload,
		})
	}

	lg.Printf("paypal fields:\n%s\n", payload)

	// Step 3: record lookup; never create during IPN processing
	payment, err := v.store.GetByID(ctx, notif.PaymentID())
	if err != nil {
		lg.Printf("payment lookup failed: %v\n", err)
		return v.finish(lg, models.VerificationResult{
			Outcome:   models.OutcomeInconclusive,
			Reason:    models.ReasonStorageFailure,
			PaymentID: notif.PaymentID(),
		})
	}
	if payment == nil {
		lg.Printf("no payment found for payment_id %s\n", notif.PaymentID())
		return v.finish(lg, models.VerificationResult{
			Outcome:   models.OutcomeInconclusive,
			Reason:    models.ReasonRecordNotFound,
			PaymentID: notif.PaymentID(),
		})
	}

	// Step 4: cross-validation, first failure short-circuits
	if reason := v.crossValidate(notif, payment, lg); reason != "" {
		return v.finish(lg, models.VerificationResult{
			Outcome:   models.OutcomeRejected,
			Reason:    reason,
			PaymentID: payment.ID,
		})
	}

	// Step 5: guarded transition. Test mode waives the completed-status
	// requirement but never the cross-validation above.
	txnType, knownType := models.ParseTxnType(notif.TxnType())
	status, _ := models.ParsePayPalStatus(notif.Status())
	publishable := knownType && txnType == models.TxnTypeWebAccept &&
		(status == models.PayPalStatusCompleted || v.cfg.General.TestMode)

	if !publishable {
		lg.Printf("txn_type %q / payment_status %q does not warrant publishing\n", notif.TxnType(), notif.Status())
		return v.finish(lg, models.VerificationResult{
			Outcome:   models.OutcomeIgnored,
			Reason:    models.ReasonNotPublishable,
			PaymentID: payment.ID,
		})
	}

	won, err := v.store.PublishPending(ctx, payment.ID)
	if err != nil {
		lg.Printf("status transition failed: %v\n", err)
		return v.finish(lg, models.VerificationResult{
			Outcome:   models.OutcomeInconclusive,
			Reason:    models.ReasonStorageFailure,
			PaymentID: payment.ID,
		})
	}
	if !won {
		// already published; replays must not duplicate the side effects
		lg.Printf("payment %s already published, side effects skipped\n", payment.ID)
		return v.finish(lg, models.VerificationResult{
			Outcome:   models.OutcomeIgnored,
			Reason:    models.ReasonDuplicate,
			PaymentID: payment.ID,
		})
	}

	v.fireSideEffects(ctx, notif, payment, lg)

	lg.Printf("payment %s is set to published\n", payment.ID)
	return v.finish(lg, models.VerificationResult{
		Outcome:   models.OutcomeAccepted,
		PaymentID: payment.ID,
		Published: true,
	})
}

// echoBack posts the received payload, prefixed with the validate command,
// back to the gateway endpoint
func (v *IPNVerifier) echoBack(ctx context.Context, payload string, lg *ipnlog.Log) error {
	body := validateCommand + "&" + payload

	start := time.Now()
	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body).
		Post(v.endpoint)
	metrics.EchoBackDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &echoBackError{status: resp.StatusCode()}
	}

	// The gateway's VERIFIED/INVALID body is recorded for diagnosis only;
	// processing gates on transport success alone.
	lg.Printf("validation response: %s\n", resp.String())
	return nil
}

type echoBackError struct {
	status int
}

func (e *echoBackError) Error() string {
	return "validation endpoint returned status " + http.StatusText(e.status)
}

// crossValidate checks the notification against the stored record and the
// configured currency. Returns the rejection reason, or "" when all pass.
func (v *IPNVerifier) crossValidate(notif models.Notification, payment *models.Payment, lg *ipnlog.Log) string {
	if !strings.EqualFold(notif.Currency(), v.cfg.Payment.Currency) {
		lg.Printf("currency code does not match: got %s, configured %s\nexecution stopped\n",
			notif.Currency(), v.cfg.Payment.Currency)
		return models.ReasonCurrencyMismatch
	}

	gross, err := decimal.NewFromString(notif.Gross())
	if err != nil {
		lg.Printf("mc_gross %q did not parse: %v\nexecution stopped\n", notif.Gross(), err)
		return models.ReasonAmountMismatch
	}
	expected, err := decimal.NewFromString(payment.Total)
	if err != nil {
		lg.Printf("stored total %q did not parse: %v\nexecution stopped\n", payment.Total, err)
		return models.ReasonAmountMismatch
	}
	// exact equality after rounding to two places, never float tolerance
	if !gross.Round(2).Equal(expected) {
		lg.Printf("amount does not match: got %s, expected %s\nexecution stopped\n",
			gross.Round(2).StringFixed(2), payment.Total)
		return models.ReasonAmountMismatch
	}

	if notif.PurchaseKey() != payment.PurchaseKey {
		lg.Printf("purchase key does not match: got %s (item_number), stored %s\nexecution stopped\n",
			notif.PurchaseKey(), payment.PurchaseKey)
		return models.ReasonPurchaseKeyMismatch
	}

	return ""
}

// fireSideEffects runs exactly once per payment, on the pass that wins the
// pending-to-published transition
func (v *IPNVerifier) fireSideEffects(ctx context.Context, notif models.Notification, payment *models.Payment, lg *ipnlog.Log) {
	if err := v.receipts.SendPurchaseReceipt(payment); err != nil {
		v.logger.Error("failed to send purchase receipt",
			zap.Error(err), zap.String("payment_id", payment.ID))
		lg.Printf("receipt email failed: %v\n", err)
	} else {
		metrics.ReceiptsSent.Inc()
	}

	if err := v.bus.Publish(eventbus.Event{
		Type: eventbus.PaymentSucceeded,
		Payload: eventbus.SuccessPayload{
			PaymentID:   payment.ID,
			PurchaseKey: payment.PurchaseKey,
			Email:       payment.Email,
			Products:    payment.Products,
		},
	}); err != nil {
		v.logger.Error("success event handler failed", zap.Error(err), zap.String("payment_id", payment.ID))
	}

	if err := v.bus.Publish(eventbus.Event{
		Type:    eventbus.CartClear,
		Payload: eventbus.CartPayload{PaymentID: payment.ID, Email: payment.Email},
	}); err != nil {
		v.logger.Error("cart clear handler failed", zap.Error(err), zap.String("payment_id", payment.ID))
	}

	if txnID := notif.TxnID(); txnID != "" && v.seen != nil {
		if err := v.seen.MarkSeen(ctx, seenKeyPrefix+txnID, seenTTL); err != nil {
			v.logger.Warn("failed to mark txn_id processed", zap.Error(err), zap.String("txn_id", txnID))
		}
	}
}

func (v *IPNVerifier) finish(lg *ipnlog.Log, result models.VerificationResult) models.VerificationResult {
	metrics.NotificationsTotal.WithLabelValues(string(result.Outcome)).Inc()
	lg.Printf("outcome: %s %s\n", result.Outcome, result.Reason)

	v.logger.Info("ipn verification finished",
		zap.String("outcome", string(result.Outcome)),
		zap.String("reason", result.Reason),
		zap.String("payment_id", result.PaymentID),
		zap.Bool("published", result.Published))

	return result
}

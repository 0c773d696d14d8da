// internal/models/ipn.go
// PayPal IPN wire types
package models

import (
	"net/url"
	"strings"
)

// TxnType is the PayPal transaction type delivered in an IPN
type TxnType string

const (
	TxnTypeWebAccept TxnType = "web_accept"
)

// ParseTxnType maps the wire value to a known transaction type. Unknown
// values are not passed through.
func ParseTxnType(s string) (TxnType, bool) {
	switch TxnType(strings.ToLower(s)) {
	case TxnTypeWebAccept:
		return TxnTypeWebAccept, true
	default:
		return "", false
	}
}

// PayPalStatus is the payment_status field of an IPN
type PayPalStatus string

const (
	PayPalStatusCompleted PayPalStatus = "completed"
	PayPalStatusPending   PayPalStatus = "pending"
	PayPalStatusRefunded  PayPalStatus = "refunded"
	PayPalStatusReversed  PayPalStatus = "reversed"
	PayPalStatusDenied    PayPalStatus = "denied"
	PayPalStatusFailed    PayPalStatus = "failed"
)

// ParsePayPalStatus maps the wire value (case-insensitive) to a known status.
func ParsePayPalStatus(s string) (PayPalStatus, bool) {
	switch PayPalStatus(strings.ToLower(s)) {
	case PayPalStatusCompleted:
		return PayPalStatusCompleted, true
	case PayPalStatusPending:
		return PayPalStatusPending, true
	case PayPalStatusRefunded:
		return PayPalStatusRefunded, true
	case PayPalStatusReversed:
		return PayPalStatusReversed, true
	case PayPalStatusDenied:
		return PayPalStatusDenied, true
	case PayPalStatusFailed:
		return PayPalStatusFailed, true
	default:
		return "", false
	}
}

// Notification is one inbound IPN payload. It exists only for the duration
// of a single verification pass.
type Notification struct {
	Values url.Values
}

func (n Notification) PaymentID() string   { return n.Values.Get("custom") }
func (n Notification) PurchaseKey() string { return n.Values.Get("item_number") }
func (n Notification) Gross() string       { return n.Values.Get("mc_gross") }
func (n Notification) Currency() string    { return n.Values.Get("mc_currency") }
func (n Notification) Status() string      { return n.Values.Get("payment_status") }
func (n Notification) TxnType() string     { return n.Values.Get("txn_type") }
func (n Notification) TxnID() string       { return n.Values.Get("txn_id") }

var requiredIPNFields = []string{"custom", "item_number", "mc_gross", "payment_status", "mc_currency"}

// MissingFields returns the required IPN fields absent or empty in the payload.
func (n Notification) MissingFields() []string {
	var missing []string
	for _, field := range requiredIPNFields {
		if n.Values.Get(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Outcome is the final decision of one verification pass
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeRejected     Outcome = "rejected"
	OutcomeInconclusive Outcome = "inconclusive"
	OutcomeIgnored      Outcome = "ignored"
)

// Abort/ignore reasons
const (
	ReasonMethodNotAllowed    = "method_not_allowed"
	ReasonTransportFailure    = "transport_failure"
	ReasonMalformedPayload    = "malformed_payload"
	ReasonRecordNotFound      = "record_not_found"
	ReasonCurrencyMismatch    = "currency_mismatch"
	ReasonAmountMismatch      = "amount_mismatch"
	ReasonPurchaseKeyMismatch = "purchase_key_mismatch"
	ReasonNotPublishable      = "not_publishable"
	ReasonDuplicate           = "duplicate"
	ReasonStorageFailure      = "storage_failure"
)

// VerificationResult carries the outcome of one IPN pass
type VerificationResult struct {
	Outcome   Outcome `json:"outcome"`
	Reason    string  `json:"reason,omitempty"`
	PaymentID string  `json:"payment_id,omitempty"`
	Published bool    `json:"published"`
}

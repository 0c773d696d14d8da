// internal/service/paypal.go
// PayPal Standard endpoints and checkout redirect assembly.
package service

import (
	"net/url"
	"strings"

	"paypal-gateway/internal/config"
	"paypal-gateway/internal/models"
)

const (
	payPalLiveHost    = "www.paypal.com"
	payPalSandboxHost = "www.sandbox.paypal.com"
	payPalWebscrPath  = "/cgi-bin/webscr"

	// validateCommand prefixes the echoed payload on the validation call
	validateCommand = "cmd=_notify-validate"
)

// PayPalEndpoint returns the gateway URL for checkout redirects and
// echo-back validation. Test mode selects the sandbox. When sslCheck is set
// the scheme downgrades to plain http for callers that did not arrive over
// TLS; validation calls always pass secure=true.
func PayPalEndpoint(testMode, secure bool) string {
	scheme := "https://"
	if !secure {
		scheme = "http://"
	}

	host := payPalLiveHost
	if testMode {
		host = payPalSandboxHost
	}

	return scheme + host + payPalWebscrPath
}

// BuildRedirectURL assembles the _xclick checkout URL for a payment record.
// The payment id rides in custom and the purchase key in item_number; both
// come back on the IPN and anchor cross-validation.
func BuildRedirectURL(cfg *config.Config, payment *models.Payment) string {
	returnURL, _ := url.Parse(strings.TrimRight(cfg.General.SiteURL, "/") + cfg.General.ThanksPath)
	returnArgs := returnURL.Query()
	returnArgs.Set("purchase_key", payment.PurchaseKey)
	returnArgs.Set("email", payment.Email)
	returnURL.RawQuery = returnArgs.Encode()

	notifyURL := strings.TrimRight(cfg.General.SiteURL, "/") + cfg.General.IPNPath

	args := url.Values{}
	args.Set("cmd", "_xclick")
	args.Set("amount", payment.Total)
	args.Set("business", cfg.Payment.PayPalEmail)
	args.Set("email", payment.Email)
	args.Set("no_shipping", "1")
	args.Set("shipping", "0")
	args.Set("no_note", "1")
	args.Set("currency_code", payment.Currency)
	args.Set("charset", "utf-8")
	args.Set("rm", "2")
	args.Set("return", returnURL.String())
	args.Set("notify_url", notifyURL)
	args.Set("item_number", payment.PurchaseKey)
	args.Set("custom", payment.ID)

	return PayPalEndpoint(cfg.General.TestMode, true) + "?" + args.Encode()
}

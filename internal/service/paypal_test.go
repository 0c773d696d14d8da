// internal/service/paypal_test.go
package service

import (
	"net/url"
	"strings"
	"testing"

	"paypal-gateway/internal/config"
	"paypal-gateway/internal/models"
)

func TestPayPalEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		testMode bool
		secure   bool
		want     string
	}{
		{
			name:     "live https",
			testMode: false,
			secure:   true,
			want:     "https://www.paypal.com/cgi-bin/webscr",
		},
		{
			name:     "sandbox https",
			testMode: true,
			secure:   true,
			want:     "https://www.sandbox.paypal.com/cgi-bin/webscr",
		},
		{
			name:     "live plain http",
			testMode: false,
			secure:   false,
			want:     "http://www.paypal.com/cgi-bin/webscr",
		},
		{
			name:     "sandbox plain http",
			testMode: true,
			secure:   false,
			want:     "http://www.sandbox.paypal.com/cgi-bin/webscr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PayPalEndpoint(tt.testMode, tt.secure); got != tt.want {
				t.Errorf("PayPalEndpoint(%v, %v) = %s, want %s", tt.testMode, tt.secure, got, tt.want)
			}
		})
	}
}

func TestBuildRedirectURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.General.TestMode = true
	cfg.General.SiteURL = "https://shop.example.com"
	cfg.General.ThanksPath = "/thanks"
	cfg.General.IPNPath = "/paypal/ipn"
	cfg.Payment.PayPalEmail = "merchant@example.com"

	payment := &models.Payment{
		ID:          "42",
		PurchaseKey: "abc123",
		Email:       "buyer@example.com",
		Total:       "19.99",
		Currency:    "USD",
	}

	raw := BuildRedirectURL(cfg, payment)

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("redirect URL did not parse: %v", err)
	}
	if parsed.Host != "www.sandbox.paypal.com" {
		t.Errorf("host = %s, want sandbox in test mode", parsed.Host)
	}

	q := parsed.Query()
	want := map[string]string{
		"cmd":           "_xclick",
		"amount":        "19.99",
		"business":      "merchant@example.com",
		"email":         "buyer@example.com",
		"currency_code": "USD",
		"no_shipping":   "1",
		"shipping":      "0",
		"no_note":       "1",
		"rm":            "2",
		"item_number":   "abc123",
		"custom":        "42",
		"notify_url":    "https://shop.example.com/paypal/ipn",
	}
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Errorf("query %s = %q, want %q", key, got, value)
		}
	}

	returnURL, err := url.Parse(q.Get("return"))
	if err != nil {
		t.Fatalf("return URL did not parse: %v", err)
	}
	if !strings.HasPrefix(returnURL.String(), "https://shop.example.com/thanks") {
		t.Errorf("return URL = %s, want thanks page", returnURL)
	}
	if returnURL.Query().Get("purchase_key") != "abc123" {
		t.Errorf("return purchase_key = %s, want abc123", returnURL.Query().Get("purchase_key"))
	}
	if returnURL.Query().Get("email") != "buyer@example.com" {
		t.Errorf("return email = %s, want buyer@example.com", returnURL.Query().Get("email"))
	}
}

// internal/models/payment.go
package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPublished PaymentStatus = "published"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Product is a single purchased line item
type Product struct {
	ProductID       string `json:"product_id"`
	License         string `json:"license"`
	CalculatedPrice string `json:"calculated_price"`
}

// Payment is the record created at checkout time and confirmed (or not) by
// the IPN verifier. Total is normalized to exactly two fractional digits
// when the record is created.
type Payment struct {
	ID          string        `json:"id" db:"id"`
	PurchaseKey string        `json:"purchase_key" db:"purchase_key"`
	FirstName   string        `json:"first_name" db:"first_name"`
	LastName    string        `json:"last_name" db:"last_name"`
	Email       string        `json:"email" db:"email"`
	Total       string        `json:"total" db:"total"`
	Currency    string        `json:"currency" db:"currency"`
	Status      PaymentStatus `json:"status" db:"status"`
	Products    []Product     `json:"products" db:"products"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
	PublishedAt time.Time     `json:"published_at,omitempty" db:"published_at"`
}

type CheckoutRequest struct {
	FirstName string    `json:"first_name" binding:"required"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email" binding:"required,email"`
	Items     []Product `json:"items" binding:"required,min=1"`
	Total     string    `json:"total" binding:"required"`
}

type CheckoutResponse struct {
	PaymentID   string `json:"payment_id"`
	PurchaseKey string `json:"purchase_key"`
	RedirectURL string `json:"redirect_url"`
}

// Database schema
const PaymentSchema = `
CREATE TABLE IF NOT EXISTS payments (
    id VARCHAR(36) PRIMARY KEY,
    purchase_key VARCHAR(36) NOT NULL,
    first_name VARCHAR(100),
    last_name VARCHAR(100),
    email VARCHAR(255) NOT NULL,
    total VARCHAR(20) NOT NULL,
    currency VARCHAR(3) NOT NULL,
    status VARCHAR(20) NOT NULL,
    products JSONB,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),
    published_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_payments_status ON payments (status);
CREATE INDEX IF NOT EXISTS idx_payments_purchase_key ON payments (purchase_key);
`

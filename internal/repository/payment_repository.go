// internal/repository/payment_repository.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"paypal-gateway/internal/models"
)

type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	products, err := json.Marshal(payment.Products)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO payments (
			id, purchase_key, first_name, last_name, email,
			total, currency, status, products, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		payment.ID,
		payment.PurchaseKey,
		payment.FirstName,
		payment.LastName,
		payment.Email,
		payment.Total,
		payment.Currency,
		payment.Status,
		products,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	query := `
		SELECT id, purchase_key, first_name, last_name, email,
			   total, currency, status, products, created_at, updated_at
		FROM payments WHERE id = $1
	`

	payment := &models.Payment{}
	var products []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.PurchaseKey,
		&payment.FirstName,
		&payment.LastName,
		&payment.Email,
		&payment.Total,
		&payment.Currency,
		&payment.Status,
		&products,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		if err := json.Unmarshal(products, &payment.Products); err != nil {
			return nil, err
		}
	}

	return payment, nil
}

// PublishPending transitions a payment from pending to published. The WHERE
// clause on status makes the transition one-shot under concurrent duplicate
// deliveries; the boolean reports whether this call won the transition.
func (r *PaymentRepository) PublishPending(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW(), published_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, query, models.PaymentStatusPublished, id, models.PaymentStatusPending)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

// internal/mailer/mailer.go
package mailer

import (
	"strings"

	"gopkg.in/gomail.v2"

	"paypal-gateway/internal/config"
	"paypal-gateway/internal/models"
)

// Mailer delivers purchase receipts over SMTP
type Mailer struct {
	cfg *config.Config
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers a single message
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.Email.FromEmail)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(
		m.cfg.Email.SMTPHost,
		m.cfg.Email.SMTPPort,
		m.cfg.Email.SMTPUser,
		m.cfg.Email.SMTPPassword,
	)

	return d.DialAndSend(msg)
}

// SendPurchaseReceipt renders the configured receipt templates for a payment
// and delivers the result to the buyer.
func (m *Mailer) SendPurchaseReceipt(payment *models.Payment) error {
	r := strings.NewReplacer(
		"{first_name}", payment.FirstName,
		"{last_name}", payment.LastName,
		"{purchase_key}", payment.PurchaseKey,
		"{payment_id}", payment.ID,
		"{total}", payment.Total,
	)

	subject := r.Replace(m.cfg.Email.ReceiptSubject)
	body := r.Replace(m.cfg.Email.ReceiptBody)

	return m.Send(payment.Email, subject, body)
}

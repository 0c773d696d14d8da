// internal/eventbus/eventbus.go
package eventbus

import "sync"

type Type string

const (
	CheckoutCreated  Type = "checkout.created"
	PaymentSucceeded Type = "payment.succeeded"
	CartClear        Type = "cart.clear"
)

type Event struct {
	Type    Type
	Payload any
}

// SuccessPayload accompanies PaymentSucceeded events
type SuccessPayload struct {
	PaymentID   string
	PurchaseKey string
	Email       string
	Products    any
}

// CartPayload accompanies CheckoutCreated and CartClear events and names the
// cart owner whose state should be dropped
type CartPayload struct {
	PaymentID string
	Email     string
}

type HandlerFunc func(Event) error

// Bus is a synchronous in-memory publish/subscribe dispatcher
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]HandlerFunc
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]HandlerFunc),
	}
}

func (b *Bus) Subscribe(eventType Type, handler HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

func (b *Bus) Publish(evt Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, handler := range b.handlers[evt.Type] {
		if err := handler(evt); err != nil {
			return err
		}
	}

	return nil
}

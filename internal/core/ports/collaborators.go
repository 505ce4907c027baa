package ports

import (
	"context"
	"time"

	"github.com/kompu/storefront/internal/core/domain"
)

// PaymentRequest is sent to the payment provider when a checkout begins.
// Amount is always formatted with exactly two decimals ("19.99").
type PaymentRequest struct {
	Amount   string
	Currency string
	// Reference is an opaque id echoed back by the provider.
	Reference string
}

// PaymentCapture is the provider's confirmation of a captured order.
type PaymentCapture struct {
	ProviderOrderID string
	Status          string
	PayerName       string
	CapturedAt      time.Time
}

// PaymentGateway creates and captures provider orders.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req PaymentRequest) (string, error)
	Capture(ctx context.Context, providerOrderID string) (*PaymentCapture, error)
}

// Notification is an outbound templated e-mail.
type Notification struct {
	ServiceID  string
	TemplateID string
	Params     map[string]string
	PublicKey  string
}

// Recipient returns the target address from the template parameters.
func (n Notification) Recipient() string {
	return n.Params["email"]
}

// Notifier delivers a notification synchronously.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationQueue accepts notifications for fire-and-forget delivery.
type NotificationQueue interface {
	Enqueue(n Notification)
}

// Recorder observes business outcomes. Skipped and Defaulted cover the
// non-fatal paths: operations that did nothing and malformed input replaced
// by a default.
type Recorder interface {
	Skipped(op, reason string)
	Defaulted(field string)
	OrderRecorded(total float64)
	CheckoutFinished(state string)
}

// ImageUploader stores an image and returns its public URL. data is a base64
// payload or data URI.
type ImageUploader interface {
	Upload(ctx context.Context, data string) (string, error)
}

// InvoiceLine is one rendered order line.
type InvoiceLine struct {
	Name     string
	Quantity int
	Price    float64
	Subtotal float64
}

// Invoice carries everything needed to render an order invoice.
type Invoice struct {
	Order    domain.Order
	Customer domain.User
	Lines    []InvoiceLine
	Date     string
}

// InvoiceRenderer produces a printable invoice document.
type InvoiceRenderer interface {
	RenderInvoice(ctx context.Context, inv Invoice) ([]byte, error)
}

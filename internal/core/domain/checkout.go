package domain

// CheckoutState represents the lifecycle of a payment checkout.
type CheckoutState string

const (
	CheckoutIdle                     CheckoutState = "idle"
	CheckoutAwaitingProviderApproval CheckoutState = "awaiting_provider_approval"
	CheckoutCapturing                CheckoutState = "capturing"
	CheckoutRecorded                 CheckoutState = "recorded"
	CheckoutFailed                   CheckoutState = "failed"
)

// checkoutTransitions defines the allowed state machine transitions.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutIdle:                     {CheckoutAwaitingProviderApproval},
	CheckoutAwaitingProviderApproval: {CheckoutCapturing, CheckoutFailed},
	CheckoutCapturing:                {CheckoutRecorded, CheckoutFailed},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Checkout tracks one payment attempt. ID is the payment provider's order id.
// Lines are the cart lines priced when the provider order was created; the
// order is recorded from them, never from the cart at approval time.
type Checkout struct {
	ID        string        `json:"id"`
	UserID    int           `json:"idUsuario"`
	Amount    string        `json:"importe"`
	Currency  string        `json:"moneda"`
	Lines     []OrderLine   `json:"listaProductos,omitempty"`
	State     CheckoutState `json:"estado"`
	Captured  bool          `json:"capturado,omitempty"`
	OrderID   int           `json:"idPedido,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt Date          `json:"creado"`
	UpdatedAt Date          `json:"actualizado"`
}

// CanMoveTo applies the state machine plus the rule that a captured payment
// can no longer fail.
func (c *Checkout) CanMoveTo(next CheckoutState) bool {
	if c.Captured && next == CheckoutFailed {
		return false
	}
	return c.State.CanTransitionTo(next)
}

// FindCheckout returns the index of the checkout with the given id, or -1.
func FindCheckout(checkouts []Checkout, id string) int {
	for i := range checkouts {
		if checkouts[i].ID == id {
			return i
		}
	}
	return -1
}

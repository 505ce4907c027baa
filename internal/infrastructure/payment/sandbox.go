// Package payment provides the payment gateways used by checkout.
package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/ports"
)

// Sandbox is an in-process gateway that approves every order. It is used
// when no provider credentials are configured.
type Sandbox struct {
	mu     sync.Mutex
	orders map[string]ports.PaymentRequest
	log    zerolog.Logger
}

func NewSandbox(log zerolog.Logger) *Sandbox {
	return &Sandbox{orders: make(map[string]ports.PaymentRequest), log: log}
}

func (s *Sandbox) CreateOrder(_ context.Context, req ports.PaymentRequest) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	s.orders[id] = req
	s.mu.Unlock()
	s.log.Debug().Str("sandbox_order", id).Str("amount", req.Amount).Msg("sandbox order created")
	return id, nil
}

func (s *Sandbox) Capture(_ context.Context, id string) (*ports.PaymentCapture, error) {
	s.mu.Lock()
	_, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("sandbox capture: unknown order %s", id)
	}
	return &ports.PaymentCapture{
		ProviderOrderID: id,
		Status:          statusCompleted,
		PayerName:       "Sandbox",
		CapturedAt:      time.Now().UTC(),
	}, nil
}

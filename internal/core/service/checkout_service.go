package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const (
	opCheckoutBegin   = "checkout.begin"
	opCheckoutApprove = "checkout.approve"
	opCheckoutFail    = "checkout.fail"
)

// CaptureGuard abstracts the idempotency store for payment capture (Redis or
// in-process).
type CaptureGuard interface {
	Acquire(ctx context.Context, providerOrderID string) (bool, error)
	Release(ctx context.Context, providerOrderID string) error
}

type orderRecorder interface {
	RecordPurchase(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error)
}

// CheckoutService drives a cart through the payment provider:
// idle -> awaiting_provider_approval -> capturing -> recorded | failed.
type CheckoutService struct {
	resolver  *Resolver
	products  ports.ProductRepository
	checkouts ports.CheckoutRepository
	orders    ports.OrderRepository
	gateway   ports.PaymentGateway
	recorder  orderRecorder
	guard     CaptureGuard
	currency  string
	txn       *Txn
	rec       ports.Recorder
	clock     func() time.Time
	log       zerolog.Logger
}

func NewCheckoutService(
	resolver *Resolver,
	products ports.ProductRepository,
	checkouts ports.CheckoutRepository,
	orders ports.OrderRepository,
	gateway ports.PaymentGateway,
	recorder orderRecorder,
	guard CaptureGuard,
	currency string,
	txn *Txn,
	rec ports.Recorder,
	log zerolog.Logger,
) *CheckoutService {
	if currency == "" {
		currency = "EUR"
	}
	return &CheckoutService{
		resolver:  resolver,
		products:  products,
		checkouts: checkouts,
		orders:    orders,
		gateway:   gateway,
		recorder:  recorder,
		guard:     guard,
		currency:  currency,
		txn:       txn,
		rec:       orNop(rec),
		clock:     time.Now,
		log:       log,
	}
}

// Begin prices the current cart and opens a provider order for it. The priced
// lines are kept on the checkout and become the order on approval.
func (s *CheckoutService) Begin(ctx context.Context) (*domain.Checkout, error) {
	sess, err := s.resolver.Current(ctx, opCheckoutBegin)
	if err != nil {
		return nil, err
	}
	u := sess.User()
	if len(u.Cart) == 0 {
		return nil, domain.ErrEmptyCart
	}
	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	lines := domain.SnapshotLines(u.Cart, domain.PriceIndex(products))
	total := domain.LinesTotal(lines)
	if total <= 0 {
		return nil, domain.ErrEmptyCart
	}

	amount := domain.FormatAmount(total)
	providerID, err := s.gateway.CreateOrder(ctx, ports.PaymentRequest{
		Amount:    amount,
		Currency:  s.currency,
		Reference: "usuario-" + strconv.Itoa(u.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", domain.ErrPaymentFailed, err)
	}

	now := domain.NewDate(s.clock())
	co := domain.Checkout{
		ID:        providerID,
		UserID:    u.ID,
		Amount:    amount,
		Currency:  s.currency,
		Lines:     lines,
		State:     domain.CheckoutIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !co.State.CanTransitionTo(domain.CheckoutAwaitingProviderApproval) {
		return nil, domain.ErrInvalidTransition
	}
	co.State = domain.CheckoutAwaitingProviderApproval

	err = s.txn.Do(func() error {
		all, _, err := s.checkouts.LoadAll(ctx)
		if err != nil {
			return err
		}
		return s.checkouts.SaveAll(ctx, append(all, co))
	})
	if err != nil {
		return nil, fmt.Errorf("begin checkout: %w", err)
	}

	s.log.Info().Str("checkout", co.ID).Str("amount", amount).Int("user_id", u.ID).Msg("checkout started")
	return &co, nil
}

// Approve captures the provider order and records the purchase priced at
// Begin. Repeated approvals of the same order never capture or record twice.
// Once the payment is captured the checkout can only end recorded: a failure
// to record leaves it capturing so the approval can be retried.
func (s *CheckoutService) Approve(ctx context.Context, providerOrderID string) (*domain.Checkout, *ports.OrderSummary, error) {
	claims, err := s.resolver.Claims(ctx, opCheckoutApprove)
	if err != nil {
		return nil, nil, err
	}
	co, err := s.owned(ctx, providerOrderID, claims.ID)
	if err != nil {
		return nil, nil, err
	}
	if co.State == domain.CheckoutRecorded {
		return s.recorded(ctx, co)
	}

	acquired, err := s.guard.Acquire(ctx, providerOrderID)
	if err != nil {
		s.log.Warn().Err(err).Str("checkout", providerOrderID).Msg("capture guard failed, processing anyway")
		acquired = true
	}
	if !acquired {
		// Another request holds the capture. Report its outcome if it finished.
		if co, err = s.owned(ctx, providerOrderID, claims.ID); err == nil && co.State == domain.CheckoutRecorded {
			return s.recorded(ctx, co)
		}
		s.log.Debug().Str("checkout", providerOrderID).Msg("capture already in progress")
		return nil, nil, fmt.Errorf("approve: %w (capture in progress)", domain.ErrInvalidTransition)
	}

	if !co.Captured {
		if co, err = s.capture(ctx, co); err != nil {
			return nil, nil, err
		}
	}

	order, err := s.recorder.RecordPurchase(ctx, co.Lines)
	if err != nil {
		if _, uerr := s.update(ctx, providerOrderID, func(c *domain.Checkout) error {
			c.Error = err.Error()
			return nil
		}); uerr != nil {
			s.log.Warn().Err(uerr).Str("checkout", providerOrderID).Msg("failed to note record error")
		}
		s.release(ctx, providerOrderID)
		s.log.Error().Err(err).Str("checkout", providerOrderID).Msg("payment captured but order not recorded")
		return nil, nil, fmt.Errorf("approve: record order: %w", err)
	}

	co, err = s.transition(ctx, providerOrderID, domain.CheckoutRecorded, "", order.ID)
	if err != nil {
		return nil, nil, err
	}
	s.rec.CheckoutFinished(string(domain.CheckoutRecorded))
	s.log.Info().
		Str("checkout", providerOrderID).
		Int("order_id", order.ID).
		Msg("checkout recorded")
	return co, s.summary(ctx, *order), nil
}

// capture moves co to capturing and takes the payment. Only a failed
// provider call fails the checkout.
func (s *CheckoutService) capture(ctx context.Context, co *domain.Checkout) (*domain.Checkout, error) {
	id := co.ID
	if len(co.Lines) == 0 {
		s.fail(ctx, id, "checkout sin productos")
		return nil, domain.ErrEmptyCart
	}
	if co.State != domain.CheckoutCapturing {
		var err error
		if co, err = s.transition(ctx, id, domain.CheckoutCapturing, "", 0); err != nil {
			s.release(ctx, id)
			return nil, err
		}
	}

	capture, err := s.gateway.Capture(ctx, id)
	if err != nil {
		s.fail(ctx, id, err.Error())
		return nil, fmt.Errorf("%w: capture: %v", domain.ErrPaymentFailed, err)
	}

	co, err = s.update(ctx, id, func(c *domain.Checkout) error {
		c.Captured = true
		return nil
	})
	if err != nil {
		s.release(ctx, id)
		s.log.Error().Err(err).Str("checkout", id).Msg("payment captured but not marked")
		return nil, err
	}
	s.log.Info().Str("checkout", id).Str("capture_status", capture.Status).Msg("payment captured")
	return co, nil
}

// Fail marks a checkout abandoned or rejected by the provider.
func (s *CheckoutService) Fail(ctx context.Context, providerOrderID, reason string) (*domain.Checkout, error) {
	claims, err := s.resolver.Claims(ctx, opCheckoutFail)
	if err != nil {
		return nil, err
	}
	if _, err := s.owned(ctx, providerOrderID, claims.ID); err != nil {
		return nil, err
	}
	co, err := s.transition(ctx, providerOrderID, domain.CheckoutFailed, reason, 0)
	if err != nil {
		return nil, err
	}
	s.release(ctx, providerOrderID)
	s.rec.CheckoutFinished(string(domain.CheckoutFailed))
	s.log.Info().Str("checkout", providerOrderID).Str("reason", reason).Msg("checkout failed")
	return co, nil
}

func (s *CheckoutService) fail(ctx context.Context, id, reason string) {
	if _, err := s.transition(ctx, id, domain.CheckoutFailed, reason, 0); err != nil {
		s.log.Warn().Err(err).Str("checkout", id).Msg("failed to mark checkout failed")
	}
	s.release(ctx, id)
	s.rec.CheckoutFinished(string(domain.CheckoutFailed))
}

func (s *CheckoutService) release(ctx context.Context, id string) {
	if err := s.guard.Release(ctx, id); err != nil {
		s.log.Warn().Err(err).Str("checkout", id).Msg("failed to release capture guard")
	}
}

// owned loads the checkout and checks it belongs to userID.
func (s *CheckoutService) owned(ctx context.Context, id string, userID int) (*domain.Checkout, error) {
	all, _, err := s.checkouts.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	idx := domain.FindCheckout(all, id)
	if idx < 0 {
		return nil, domain.ErrCheckoutNotFound
	}
	if all[idx].UserID != userID {
		return nil, domain.ErrForbidden
	}
	co := all[idx]
	return &co, nil
}

func (s *CheckoutService) recorded(ctx context.Context, co *domain.Checkout) (*domain.Checkout, *ports.OrderSummary, error) {
	orders, _, err := s.orders.LoadAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range orders {
		if orders[i].ID == co.OrderID {
			return co, s.summary(ctx, orders[i]), nil
		}
	}
	return co, nil, nil
}

// summary enriches o with catalog names and images. A catalog read error
// only costs the enrichment.
func (s *CheckoutService) summary(ctx context.Context, o domain.Order) *ports.OrderSummary {
	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		s.log.Warn().Err(err).Int("order_id", o.ID).Msg("order lines not enriched")
	}
	return &ports.OrderSummary{
		Order:         o,
		FormattedDate: domain.FormatLongDate(o.Date.Time),
		Lines:         enrichLines(o.Lines, products),
	}
}

// transition moves checkout id to next under the state machine rules.
func (s *CheckoutService) transition(ctx context.Context, id string, next domain.CheckoutState, reason string, orderID int) (*domain.Checkout, error) {
	return s.update(ctx, id, func(co *domain.Checkout) error {
		if !co.CanMoveTo(next) {
			return fmt.Errorf("checkout %s: %w (from %s to %s)", id, domain.ErrInvalidTransition, co.State, next)
		}
		co.State = next
		if reason != "" {
			co.Error = reason
		}
		if next == domain.CheckoutRecorded {
			co.Error = ""
		}
		if orderID > 0 {
			co.OrderID = orderID
		}
		return nil
	})
}

// update applies fn to checkout id and persists the result.
func (s *CheckoutService) update(ctx context.Context, id string, fn func(*domain.Checkout) error) (*domain.Checkout, error) {
	var out domain.Checkout
	err := s.txn.Do(func() error {
		all, _, err := s.checkouts.LoadAll(ctx)
		if err != nil {
			return err
		}
		idx := domain.FindCheckout(all, id)
		if idx < 0 {
			return domain.ErrCheckoutNotFound
		}
		co := &all[idx]
		if err := fn(co); err != nil {
			return err
		}
		co.UpdatedAt = domain.NewDate(s.clock())
		if err := s.checkouts.SaveAll(ctx, all); err != nil {
			return err
		}
		out = *co
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

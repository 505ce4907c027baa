package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kompu/storefront/internal/core/domain"
)

func beginCheckout(t *testing.T, f *fixture) *domain.Checkout {
	t.Helper()
	ctx := context.Background()
	for _, id := range []int{2, 2} {
		if _, err := f.cart.Add(ctx, id); err != nil {
			t.Fatalf("add %d: %v", id, err)
		}
	}
	co, err := f.checkout.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	return co
}

func TestCheckoutService_Begin(t *testing.T) {
	f := newFixture(t)
	f.login(1)

	co := beginCheckout(t, f)
	if co.State != domain.CheckoutAwaitingProviderApproval {
		t.Fatalf("unexpected state %s", co.State)
	}
	if co.Amount != "39.98" || co.Currency != "EUR" {
		t.Fatalf("unexpected amount %s %s", co.Amount, co.Currency)
	}
	if len(f.gateway.created) != 1 || f.gateway.created[0].Amount != "39.98" {
		t.Fatalf("unexpected provider request: %+v", f.gateway.created)
	}
	if stored := f.checkouts.items(); len(stored) != 1 || stored[0].ID != co.ID {
		t.Fatalf("expected stored checkout")
	}
}

func TestCheckoutService_Begin_EmptyCart(t *testing.T) {
	f := newFixture(t)
	f.login(1)

	if _, err := f.checkout.Begin(context.Background()); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if len(f.gateway.created) != 0 {
		t.Fatalf("provider must not be called for an empty cart")
	}
}

func TestCheckoutService_Begin_ProviderError(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	if _, err := f.cart.Add(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	f.gateway.createErr = errors.New("timeout")

	if _, err := f.checkout.Begin(ctx); !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
}

func TestCheckoutService_ApproveRecordsOnce(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	co := beginCheckout(t, f)

	done, order, err := f.checkout.Approve(ctx, co.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if done.State != domain.CheckoutRecorded || order == nil || done.OrderID != order.Order.ID {
		t.Fatalf("unexpected result %+v %+v", done, order)
	}
	if order.Order.Total != 39.98 {
		t.Fatalf("unexpected order total %v", order.Order.Total)
	}
	if len(order.Lines) != 1 || order.Lines[0].Name != "Ratón Óptico" {
		t.Fatalf("expected enriched lines, got %+v", order.Lines)
	}

	again, order2, err := f.checkout.Approve(ctx, co.ID)
	if err != nil {
		t.Fatalf("second approve: %v", err)
	}
	if again.State != domain.CheckoutRecorded || order2 == nil || order2.Order.ID != order.Order.ID {
		t.Fatalf("expected the same recorded order, got %+v", order2)
	}
	if f.gateway.captures != 1 {
		t.Fatalf("expected one capture, got %d", f.gateway.captures)
	}
	if n := len(f.orders.items()); n != 1 {
		t.Fatalf("expected exactly one order, got %d", n)
	}
	if len(f.rec.finished) != 1 || f.rec.finished[0] != "recorded" {
		t.Fatalf("unexpected checkout metrics %v", f.rec.finished)
	}
}

func TestCheckoutService_ApproveWhileCaptureHeld(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	co := beginCheckout(t, f)
	f.guard.held[co.ID] = true

	_, _, err := f.checkout.Approve(context.Background(), co.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if f.gateway.captures != 0 {
		t.Fatalf("capture must not run twice")
	}
}

func TestCheckoutService_ApproveGuardErrorStillCaptures(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	co := beginCheckout(t, f)
	f.guard.acquireErr = errors.New("redis down")

	if _, _, err := f.checkout.Approve(context.Background(), co.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if f.gateway.captures != 1 {
		t.Fatalf("expected capture to proceed")
	}
}

func TestCheckoutService_ApproveCaptureFails(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	co := beginCheckout(t, f)
	f.gateway.captureErr = errors.New("declined")

	if _, _, err := f.checkout.Approve(ctx, co.ID); !errors.Is(err, domain.ErrPaymentFailed) {
		t.Fatalf("expected ErrPaymentFailed, got %v", err)
	}
	stored := f.checkouts.items()[0]
	if stored.State != domain.CheckoutFailed || stored.Error != "declined" {
		t.Fatalf("expected failed checkout, got %+v", stored)
	}
	if f.guard.held[co.ID] {
		t.Fatalf("expected guard released")
	}
	if len(f.user(1).Cart) != 1 || len(f.orders.items()) != 0 {
		t.Fatalf("a failed capture must not record an order")
	}
}

func TestCheckoutService_ApproveOtherUser(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	co := beginCheckout(t, f)
	f.login(2)

	if _, _, err := f.checkout.Approve(context.Background(), co.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCheckoutService_ApproveUnknown(t *testing.T) {
	f := newFixture(t)
	f.login(1)

	if _, _, err := f.checkout.Approve(context.Background(), "PAY-404"); !errors.Is(err, domain.ErrCheckoutNotFound) {
		t.Fatalf("expected ErrCheckoutNotFound, got %v", err)
	}
}

func TestCheckoutService_Fail(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	co := beginCheckout(t, f)

	failed, err := f.checkout.Fail(ctx, co.ID, "cancelado")
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if failed.State != domain.CheckoutFailed || failed.Error != "cancelado" {
		t.Fatalf("unexpected checkout %+v", failed)
	}

	if _, err := f.checkout.Fail(ctx, co.ID, "otra vez"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from failed, got %v", err)
	}
	if _, _, err := f.checkout.Approve(ctx, co.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("a failed checkout cannot be approved, got %v", err)
	}
}

func TestCheckoutService_ApproveRecordsPricedLinesWhenCartChanged(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	co := beginCheckout(t, f)
	if _, err := f.cart.Add(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := f.cart.Add(ctx, 2); err != nil {
		t.Fatalf("add: %v", err)
	}

	_, order, err := f.checkout.Approve(ctx, co.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got := domain.FormatAmount(order.Order.Total); got != co.Amount {
		t.Fatalf("order total %s differs from the charged amount %s", got, co.Amount)
	}
	if len(order.Order.Lines) != 1 || order.Order.Lines[0].ProductID != 2 || order.Order.Lines[0].Quantity != 2 {
		t.Fatalf("expected the lines priced at begin, got %+v", order.Order.Lines)
	}

	cart := f.user(1).Cart
	want := map[int]int{1: 1, 2: 1}
	if len(cart) != len(want) {
		t.Fatalf("expected the unpaid lines to stay in the cart, got %+v", cart)
	}
	for _, l := range cart {
		if want[l.ProductID] != l.Quantity {
			t.Fatalf("expected the unpaid lines to stay in the cart, got %+v", cart)
		}
	}
}

func TestCheckoutService_ApproveWithEmptiedCartStillRecords(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	co := beginCheckout(t, f)
	if _, err := f.cart.Remove(ctx, 2); err != nil {
		t.Fatalf("remove: %v", err)
	}

	done, order, err := f.checkout.Approve(ctx, co.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if done.State != domain.CheckoutRecorded || order == nil || order.Order.Total != 39.98 {
		t.Fatalf("expected the paid order to be recorded, got %+v %+v", done, order)
	}
	if len(f.user(1).Cart) != 0 {
		t.Fatalf("expected empty cart, got %+v", f.user(1).Cart)
	}
}

func TestCheckoutService_RecordFailureAfterCaptureIsRetryable(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()
	co := beginCheckout(t, f)
	f.orders.saveErr = errors.New("disk full")

	if _, _, err := f.checkout.Approve(ctx, co.ID); err == nil {
		t.Fatalf("expected record error")
	}
	stored := f.checkouts.items()[0]
	if stored.State != domain.CheckoutCapturing || !stored.Captured {
		t.Fatalf("a captured checkout must stay capturing, got %+v", stored)
	}
	if f.guard.held[co.ID] {
		t.Fatalf("expected guard released for a retry")
	}
	if _, err := f.checkout.Fail(ctx, co.ID, "cancelado"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("a captured checkout cannot fail, got %v", err)
	}

	f.orders.saveErr = nil
	done, order, err := f.checkout.Approve(ctx, co.ID)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if done.State != domain.CheckoutRecorded || done.Error != "" || order == nil {
		t.Fatalf("unexpected retry result %+v %+v", done, order)
	}
	if f.gateway.captures != 1 {
		t.Fatalf("the retry must not capture again, got %d captures", f.gateway.captures)
	}
	if n := len(f.orders.items()); n != 1 {
		t.Fatalf("expected one order, got %d", n)
	}
}

func TestCheckoutService_ApproveWithoutPricedLines(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	f.checkouts.put([]domain.Checkout{{ID: "PAY-9", UserID: 1, Amount: "10.00", State: domain.CheckoutAwaitingProviderApproval}})

	if _, _, err := f.checkout.Approve(context.Background(), "PAY-9"); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.gateway.captures != 0 {
		t.Fatalf("nothing must be captured without priced lines")
	}
	if stored := f.checkouts.items()[0]; stored.State != domain.CheckoutFailed {
		t.Fatalf("expected failed checkout, got %s", stored.State)
	}
}

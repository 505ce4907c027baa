package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const (
	opOrderRecord  = "order.record"
	opOrderHistory = "order.history"
	opOrderInvoice = "order.invoice"
)

// OrderService turns carts into orders and serves the order history.
type OrderService struct {
	resolver *Resolver
	users    ports.UserRepository
	products ports.ProductRepository
	orders   ports.OrderRepository
	invoices ports.InvoiceRenderer
	txn      *Txn
	rec      ports.Recorder
	clock    func() time.Time
	log      zerolog.Logger
}

func NewOrderService(
	resolver *Resolver,
	users ports.UserRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	invoices ports.InvoiceRenderer,
	txn *Txn,
	rec ports.Recorder,
	log zerolog.Logger,
) *OrderService {
	return &OrderService{
		resolver: resolver,
		users:    users,
		products: products,
		orders:   orders,
		invoices: invoices,
		txn:      txn,
		rec:      orNop(rec),
		clock:    time.Now,
		log:      log,
	}
}

// RecordFromCart snapshots the current cart at catalog prices, appends the
// order and empties the cart. The order collection is written before the
// user collection so a failure in between never loses a paid order.
func (s *OrderService) RecordFromCart(ctx context.Context) (*domain.Order, error) {
	return s.record(ctx, nil)
}

// RecordPurchase appends an order for lines priced earlier, at checkout
// start, and removes the purchased quantities from the cart. Whatever the
// cart holds now does not change the order.
func (s *OrderService) RecordPurchase(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	return s.record(ctx, lines)
}

// record appends an order for lines, or for the priced cart when lines is nil.
func (s *OrderService) record(ctx context.Context, lines []domain.OrderLine) (*domain.Order, error) {
	var order domain.Order
	err := s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opOrderRecord)
		if err != nil {
			return err
		}
		u := sess.User()
		if lines == nil && len(u.Cart) == 0 {
			return domain.ErrEmptyCart
		}

		orders, ok, err := s.orders.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opOrderRecord, domain.SkipNoOrderCollection)
		}

		if lines == nil {
			// An absent catalog prices every line at 0.
			products, _, err := s.products.LoadAll(ctx)
			if err != nil {
				return err
			}
			lines = domain.SnapshotLines(u.Cart, domain.PriceIndex(products))
		}
		order = domain.NewOrder(orders, u.ID, lines, s.clock())
		if err := s.orders.SaveAll(ctx, append(orders, order)); err != nil {
			return fmt.Errorf("record order: %w", err)
		}

		u.Cart = domain.DeductPurchased(u.Cart, lines)
		if err := s.users.SaveAll(ctx, sess.Users); err != nil {
			return fmt.Errorf("record order: update cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.rec.OrderRecorded(order.Total)
	s.log.Info().
		Int("order_id", order.ID).
		Int("user_id", order.UserID).
		Float64("total", order.Total).
		Msg("order recorded")
	return &order, nil
}

// History lists the current user's orders, newest first. Lines referencing
// deleted products keep their snapshot price and get a placeholder name.
func (s *OrderService) History(ctx context.Context) ([]ports.OrderSummary, error) {
	sess, err := s.resolver.Current(ctx, opOrderHistory)
	if err != nil {
		return nil, err
	}
	orders, _, err := s.orders.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	userID := sess.User().ID
	out := make([]ports.OrderSummary, 0)
	for _, o := range orders {
		if o.UserID != userID {
			continue
		}
		out = append(out, ports.OrderSummary{
			Order:         o,
			FormattedDate: domain.FormatLongDate(o.Date.Time),
			Lines:         enrichLines(o.Lines, products),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order.Date.After(out[j].Order.Date.Time)
	})
	return out, nil
}

func enrichLines(lines []domain.OrderLine, products []domain.Product) []ports.OrderLineView {
	out := make([]ports.OrderLineView, 0, len(lines))
	for _, l := range lines {
		v := ports.OrderLineView{
			ProductID: l.ProductID,
			Name:      domain.UnknownProductName,
			Quantity:  l.Quantity,
			Price:     l.Price,
		}
		if idx := domain.FindProduct(products, l.ProductID); idx >= 0 {
			v.Name = products[idx].Name
			v.Image = products[idx].Cover()
		}
		out = append(out, v)
	}
	return out
}

// Invoice renders one of the current user's orders as a document.
func (s *OrderService) Invoice(ctx context.Context, orderID int) ([]byte, error) {
	if s.invoices == nil {
		return nil, fmt.Errorf("invoice: no renderer configured")
	}
	sess, err := s.resolver.Current(ctx, opOrderInvoice)
	if err != nil {
		return nil, err
	}
	orders, _, err := s.orders.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	user := *sess.User()
	var order *domain.Order
	for i := range orders {
		if orders[i].ID == orderID && orders[i].UserID == user.ID {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}

	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	views := enrichLines(order.Lines, products)
	lines := make([]ports.InvoiceLine, 0, len(views))
	for _, v := range views {
		lines = append(lines, ports.InvoiceLine{
			Name:     v.Name,
			Quantity: v.Quantity,
			Price:    v.Price,
			Subtotal: domain.Round2(v.Price * float64(v.Quantity)),
		})
	}

	return s.invoices.RenderInvoice(ctx, ports.Invoice{
		Order:    *order,
		Customer: user,
		Lines:    lines,
		Date:     domain.FormatLongDate(order.Date.Time),
	})
}

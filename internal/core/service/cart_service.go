package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const (
	opCartAdd         = "cart.add"
	opCartSetQuantity = "cart.set_quantity"
	opCartRemove      = "cart.remove"
	opCartView        = "cart.view"

	fieldQuantity = "cantidad"
)

// CartService mutates the cart embedded in the current user's record.
type CartService struct {
	resolver *Resolver
	users    ports.UserRepository
	products ports.ProductRepository
	txn      *Txn
	rec      ports.Recorder
	log      zerolog.Logger
}

func NewCartService(
	resolver *Resolver,
	users ports.UserRepository,
	products ports.ProductRepository,
	txn *Txn,
	rec ports.Recorder,
	log zerolog.Logger,
) *CartService {
	return &CartService{
		resolver: resolver,
		users:    users,
		products: products,
		txn:      txn,
		rec:      orNop(rec),
		log:      log,
	}
}

// Add inserts productID with quantity 1, or increments the existing line.
func (s *CartService) Add(ctx context.Context, productID int) (ports.CartOutcome, error) {
	var outcome ports.CartOutcome
	err := s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opCartAdd)
		if err != nil {
			return err
		}
		if err := requireProduct(ctx, s.products, s.rec, opCartAdd, productID); err != nil {
			return err
		}

		u := sess.User()
		if i := u.CartLine(productID); i >= 0 {
			u.Cart[i].Quantity++
			outcome = ports.CartQuantityIncreased
		} else {
			u.Cart = append(u.Cart, domain.CartLine{ProductID: productID, Quantity: 1})
			outcome = ports.CartAdded
		}
		return s.users.SaveAll(ctx, sess.Users)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// SetQuantity overwrites the quantity of an existing line. Input that does
// not parse to an integer of at least 1 is replaced by 1.
func (s *CartService) SetQuantity(ctx context.Context, productID int, raw string) (*ports.CartView, error) {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || qty < 1 {
		s.rec.Defaulted(fieldQuantity)
		s.log.Debug().Str("raw", raw).Msg("quantity defaulted to 1")
		qty = 1
	}

	err = s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opCartSetQuantity)
		if err != nil {
			return err
		}
		u := sess.User()
		i := u.CartLine(productID)
		if i < 0 {
			return skip(s.rec, opCartSetQuantity, domain.SkipCartLineNotFound)
		}
		u.Cart[i].Quantity = qty
		return s.users.SaveAll(ctx, sess.Users)
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx)
}

// Remove deletes the line for productID.
func (s *CartService) Remove(ctx context.Context, productID int) (*ports.CartView, error) {
	err := s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opCartRemove)
		if err != nil {
			return err
		}
		u := sess.User()
		i := u.CartLine(productID)
		if i < 0 {
			return skip(s.rec, opCartRemove, domain.SkipCartLineNotFound)
		}
		u.Cart = append(u.Cart[:i], u.Cart[i+1:]...)
		return s.users.SaveAll(ctx, sess.Users)
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx)
}

// View joins the cart with the catalog. Lines whose product no longer exists
// are left out of the items and the total.
func (s *CartService) View(ctx context.Context) (*ports.CartView, error) {
	sess, err := s.resolver.Current(ctx, opCartView)
	if err != nil {
		return nil, err
	}
	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	u := sess.User()
	items := make([]ports.CartItem, 0, len(u.Cart))
	for _, l := range u.Cart {
		idx := domain.FindProduct(products, l.ProductID)
		if idx < 0 {
			continue
		}
		p := products[idx]
		items = append(items, ports.CartItem{
			Product:  p,
			Quantity: l.Quantity,
			Subtotal: domain.Round2(p.Price * float64(l.Quantity)),
		})
	}

	total := domain.Round2(domain.CartTotal(u.Cart, domain.PriceIndex(products)))
	return &ports.CartView{
		Items:          items,
		Total:          total,
		FormattedTotal: domain.FormatPrice(total),
	}, nil
}

// requireProduct fails with ErrProductNotFound when the catalog exists but
// lacks productID, and skips when there is no catalog at all.
func requireProduct(ctx context.Context, repo ports.ProductRepository, rec ports.Recorder, op string, productID int) error {
	products, ok, err := repo.LoadAll(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return skip(rec, op, domain.SkipNoProductCollection)
	}
	if domain.FindProduct(products, productID) < 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

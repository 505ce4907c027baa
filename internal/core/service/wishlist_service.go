package service

import (
	"context"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const (
	opWishlistToggle = "wishlist.toggle"
	opWishlistRemove = "wishlist.remove"
	opWishlistList   = "wishlist.list"
)

type WishlistService struct {
	resolver *Resolver
	users    ports.UserRepository
	products ports.ProductRepository
	txn      *Txn
	rec      ports.Recorder
}

func NewWishlistService(
	resolver *Resolver,
	users ports.UserRepository,
	products ports.ProductRepository,
	txn *Txn,
	rec ports.Recorder,
) *WishlistService {
	return &WishlistService{resolver: resolver, users: users, products: products, txn: txn, rec: orNop(rec)}
}

// Toggle adds productID unless it is already listed, in which case nothing
// is written.
func (s *WishlistService) Toggle(ctx context.Context, productID int) (ports.WishlistOutcome, error) {
	var outcome ports.WishlistOutcome
	err := s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opWishlistToggle)
		if err != nil {
			return err
		}
		u := sess.User()
		if u.InWishlist(productID) {
			outcome = ports.WishlistAlreadyPresent
			return nil
		}
		if err := requireProduct(ctx, s.products, s.rec, opWishlistToggle, productID); err != nil {
			return err
		}
		u.Wishlist = append(u.Wishlist, productID)
		outcome = ports.WishlistAdded
		return s.users.SaveAll(ctx, sess.Users)
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

func (s *WishlistService) Remove(ctx context.Context, productID int) error {
	return s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opWishlistRemove)
		if err != nil {
			return err
		}
		u := sess.User()
		for i, id := range u.Wishlist {
			if id == productID {
				u.Wishlist = append(u.Wishlist[:i], u.Wishlist[i+1:]...)
				return s.users.SaveAll(ctx, sess.Users)
			}
		}
		return skip(s.rec, opWishlistRemove, domain.SkipWishlistNotFound)
	})
}

// List returns the listed products in insertion order, omitting ids that no
// longer exist in the catalog.
func (s *WishlistService) List(ctx context.Context) ([]domain.Product, error) {
	sess, err := s.resolver.Current(ctx, opWishlistList)
	if err != nil {
		return nil, err
	}
	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	u := sess.User()
	out := make([]domain.Product, 0, len(u.Wishlist))
	for _, id := range u.Wishlist {
		if idx := domain.FindProduct(products, id); idx >= 0 {
			out = append(out, products[idx])
		}
	}
	return out, nil
}

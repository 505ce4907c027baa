package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const opReviewSubmit = "review.submit"

type ReviewService struct {
	resolver *Resolver
	products ports.ProductRepository
	txn      *Txn
	rec      ports.Recorder
	log      zerolog.Logger
}

func NewReviewService(resolver *Resolver, products ports.ProductRepository, txn *Txn, rec ports.Recorder, log zerolog.Logger) *ReviewService {
	return &ReviewService{resolver: resolver, products: products, txn: txn, rec: orNop(rec), log: log}
}

// Submit appends a review by the current user. Each user reviews a product at
// most once; a blank comment is stored as null.
func (s *ReviewService) Submit(ctx context.Context, productID, rating int, comment string) (*domain.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidRating
	}

	var updated domain.Product
	err := s.txn.Do(func() error {
		sess, err := s.resolver.Current(ctx, opReviewSubmit)
		if err != nil {
			return err
		}
		products, ok, err := s.products.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opReviewSubmit, domain.SkipNoProductCollection)
		}
		idx := domain.FindProduct(products, productID)
		if idx < 0 {
			return domain.ErrProductNotFound
		}

		userID := sess.User().ID
		p := &products[idx]
		if p.ReviewedBy(userID) {
			return domain.ErrDuplicateReview
		}

		review := domain.Review{UserID: userID, Rating: rating}
		if c := strings.TrimSpace(comment); c != "" {
			review.Comment = &c
		}
		p.Reviews = append(p.Reviews, review)
		if err := s.products.SaveAll(ctx, products); err != nil {
			return err
		}
		updated = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("product_id", productID).Int("rating", rating).Msg("review submitted")
	return &updated, nil
}

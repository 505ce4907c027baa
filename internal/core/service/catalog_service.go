package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/catalog"
	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// CatalogService serves read-only catalog queries. When a seeder is set an
// absent catalog is populated on first read; otherwise it reads as empty.
type CatalogService struct {
	products ports.ProductRepository
	seeder   *Seeder
	log      zerolog.Logger
}

func NewCatalogService(products ports.ProductRepository, seeder *Seeder, log zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, seeder: seeder, log: log}
}

func (s *CatalogService) load(ctx context.Context) ([]domain.Product, error) {
	products, ok, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		return products, nil
	}
	if s.seeder == nil {
		return []domain.Product{}, nil
	}
	s.log.Info().Msg("catalog absent, seeding")
	return s.seeder.seedCatalog(ctx)
}

func (s *CatalogService) Search(ctx context.Context, c catalog.Criteria, sort catalog.SortKey) ([]domain.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Query(products, c, sort), nil
}

func (s *CatalogService) Facets(ctx context.Context) (catalog.Facets, error) {
	products, err := s.load(ctx)
	if err != nil {
		return catalog.Facets{}, err
	}
	return catalog.FacetsOf(products), nil
}

func (s *CatalogService) Product(ctx context.Context, id int) (*ports.ProductDetail, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := domain.FindProduct(products, id)
	if idx < 0 {
		return nil, domain.ErrProductNotFound
	}
	p := products[idx]
	return &ports.ProductDetail{Product: p, AverageRating: p.AverageRating()}, nil
}

// Latest returns the n most recently released products.
func (s *CatalogService) Latest(ctx context.Context, n int) ([]domain.Product, error) {
	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Latest(products, n), nil
}

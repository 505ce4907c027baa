package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// SeedReport lists the collections written by a Seed call.
type SeedReport struct {
	Products bool
	Users    bool
	Orders   bool
}

// Seeder populates collections that have never been written. Existing
// collections, even empty ones, are left untouched.
type Seeder struct {
	products ports.ProductRepository
	users    ports.UserRepository
	orders   ports.OrderRepository
	source   ports.SeedSource
	hasher   PasswordHasher
	txn      *Txn
	log      zerolog.Logger
}

func NewSeeder(
	products ports.ProductRepository,
	users ports.UserRepository,
	orders ports.OrderRepository,
	source ports.SeedSource,
	hasher PasswordHasher,
	txn *Txn,
	log zerolog.Logger,
) *Seeder {
	if hasher == nil {
		hasher = base64Passwords{}
	}
	return &Seeder{
		products: products,
		users:    users,
		orders:   orders,
		source:   source,
		hasher:   hasher,
		txn:      txn,
		log:      log,
	}
}

// Seed writes every absent collection from the seed source.
func (s *Seeder) Seed(ctx context.Context) (SeedReport, error) {
	var report SeedReport
	err := s.txn.Do(func() error {
		var err error
		if report.Products, err = s.seedProducts(ctx); err != nil {
			return err
		}
		if report.Users, err = s.seedUsers(ctx); err != nil {
			return err
		}
		report.Orders, err = s.seedOrders(ctx)
		return err
	})
	if err != nil {
		return report, err
	}

	s.log.Info().
		Bool("products", report.Products).
		Bool("users", report.Users).
		Bool("orders", report.Orders).
		Msg("seed completed")
	return report, nil
}

// seedCatalog is used by CatalogService when the catalog is first read.
func (s *Seeder) seedCatalog(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := s.txn.Do(func() error {
		existing, ok, err := s.products.LoadAll(ctx)
		if err != nil {
			return err
		}
		if ok {
			products = existing
			return nil
		}
		if _, err := s.seedProducts(ctx); err != nil {
			return err
		}
		products, _, err = s.products.LoadAll(ctx)
		return err
	})
	return products, err
}

func (s *Seeder) seedProducts(ctx context.Context) (bool, error) {
	_, ok, err := s.products.LoadAll(ctx)
	if err != nil || ok {
		return false, err
	}
	products, err := s.source.Products(ctx)
	if err != nil {
		return false, fmt.Errorf("seed products: %w", err)
	}
	for i := range products {
		products[i].Normalize()
	}
	if err := s.products.SaveAll(ctx, products); err != nil {
		return false, err
	}
	s.log.Info().Int("count", len(products)).Msg("catalog seeded")
	return true, nil
}

// seedUsers encodes every seed password on ingest.
func (s *Seeder) seedUsers(ctx context.Context) (bool, error) {
	_, ok, err := s.users.LoadAll(ctx)
	if err != nil || ok {
		return false, err
	}
	users, err := s.source.Users(ctx)
	if err != nil {
		return false, fmt.Errorf("seed users: %w", err)
	}
	for i := range users {
		hashed, err := s.hasher.Hash(users[i].Password)
		if err != nil {
			return false, fmt.Errorf("seed users: hash %d: %w", users[i].ID, err)
		}
		users[i].Password = hashed
		users[i].Normalize()
	}
	if err := s.users.SaveAll(ctx, users); err != nil {
		return false, err
	}
	s.log.Info().Int("count", len(users)).Msg("users seeded")
	return true, nil
}

func (s *Seeder) seedOrders(ctx context.Context) (bool, error) {
	_, ok, err := s.orders.LoadAll(ctx)
	if err != nil || ok {
		return false, err
	}
	if err := s.orders.SaveAll(ctx, []domain.Order{}); err != nil {
		return false, err
	}
	return true, nil
}

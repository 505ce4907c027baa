package store

import (
	"context"

	"github.com/kompu/storefront/internal/core/domain"
)

// collection loads and saves a whole slice under one key.
type collection[T any] struct {
	a   *Accessor
	key string
}

func (c collection[T]) load(ctx context.Context) ([]T, bool, error) {
	return Read[[]T](ctx, c.a, c.key)
}

func (c collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	return c.a.Write(ctx, c.key, items)
}

// UserRepository stores the user collection.
type UserRepository struct {
	c collection[domain.User]
}

func NewUserRepository(a *Accessor) *UserRepository {
	return &UserRepository{c: collection[domain.User]{a: a, key: KeyUsers}}
}

func (r *UserRepository) LoadAll(ctx context.Context) ([]domain.User, bool, error) {
	users, ok, err := r.c.load(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, true, nil
}

func (r *UserRepository) SaveAll(ctx context.Context, users []domain.User) error {
	return r.c.save(ctx, users)
}

// ProductRepository stores the catalog.
type ProductRepository struct {
	c collection[domain.Product]
}

func NewProductRepository(a *Accessor) *ProductRepository {
	return &ProductRepository{c: collection[domain.Product]{a: a, key: KeyProducts}}
}

func (r *ProductRepository) LoadAll(ctx context.Context) ([]domain.Product, bool, error) {
	products, ok, err := r.c.load(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	for i := range products {
		products[i].Normalize()
	}
	return products, true, nil
}

func (r *ProductRepository) SaveAll(ctx context.Context, products []domain.Product) error {
	return r.c.save(ctx, products)
}

// OrderRepository stores the order collection.
type OrderRepository struct {
	c collection[domain.Order]
}

func NewOrderRepository(a *Accessor) *OrderRepository {
	return &OrderRepository{c: collection[domain.Order]{a: a, key: KeyOrders}}
}

func (r *OrderRepository) LoadAll(ctx context.Context) ([]domain.Order, bool, error) {
	return r.c.load(ctx)
}

func (r *OrderRepository) SaveAll(ctx context.Context, orders []domain.Order) error {
	return r.c.save(ctx, orders)
}

// CheckoutRepository stores payment checkout sessions.
type CheckoutRepository struct {
	c collection[domain.Checkout]
}

func NewCheckoutRepository(a *Accessor) *CheckoutRepository {
	return &CheckoutRepository{c: collection[domain.Checkout]{a: a, key: KeyCheckouts}}
}

func (r *CheckoutRepository) LoadAll(ctx context.Context) ([]domain.Checkout, bool, error) {
	return r.c.load(ctx)
}

func (r *CheckoutRepository) SaveAll(ctx context.Context, checkouts []domain.Checkout) error {
	return r.c.save(ctx, checkouts)
}

// TokenStore keeps the active session token under KeyToken.
type TokenStore struct {
	a *Accessor
}

func NewTokenStore(a *Accessor) *TokenStore {
	return &TokenStore{a: a}
}

func (s *TokenStore) Active(ctx context.Context) (string, bool, error) {
	tok, ok, err := Read[string](ctx, s.a, KeyToken)
	if err != nil || !ok || tok == "" {
		return "", false, err
	}
	return tok, true, nil
}

func (s *TokenStore) SetActive(ctx context.Context, token string) error {
	return s.a.Write(ctx, KeyToken, token)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	return s.a.Remove(ctx, KeyToken)
}

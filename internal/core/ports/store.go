package ports

import (
	"context"

	"github.com/kompu/storefront/internal/core/domain"
)

// KeyValueStore holds whole serialized values under string keys. It is the
// storefront's only database.
type KeyValueStore interface {
	// Get returns the stored bytes or domain.ErrAbsent when key is unset.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set overwrites the value under key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an unset key is not an error.
	Delete(ctx context.Context, key string) error
	// Ping checks backend connectivity.
	Ping(ctx context.Context) error
}

// UserRepository persists the user collection as a single value. The bool
// result of LoadAll is false when the collection has never been written,
// which is distinct from an empty collection.
type UserRepository interface {
	LoadAll(ctx context.Context) ([]domain.User, bool, error)
	SaveAll(ctx context.Context, users []domain.User) error
}

// ProductRepository persists the catalog as a single value.
type ProductRepository interface {
	LoadAll(ctx context.Context) ([]domain.Product, bool, error)
	SaveAll(ctx context.Context, products []domain.Product) error
}

// OrderRepository persists the order collection as a single value.
type OrderRepository interface {
	LoadAll(ctx context.Context) ([]domain.Order, bool, error)
	SaveAll(ctx context.Context, orders []domain.Order) error
}

// CheckoutRepository persists payment checkout sessions.
type CheckoutRepository interface {
	LoadAll(ctx context.Context) ([]domain.Checkout, bool, error)
	SaveAll(ctx context.Context, checkouts []domain.Checkout) error
}

// TokenStore holds the active session token.
type TokenStore interface {
	// Active returns the stored token and false when none is set.
	Active(ctx context.Context) (string, bool, error)
	SetActive(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// SeedSource provides the static catalog and user snapshots used to populate
// an empty store.
type SeedSource interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Users(ctx context.Context) ([]domain.User, error)
}

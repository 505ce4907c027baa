// Package store provides typed JSON access and per-entity repositories on
// top of any ports.KeyValueStore backend.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// Key names of the storefront collections.
const (
	KeyToken     = "token"
	KeyUsers     = "listaUsuarios"
	KeyProducts  = "listaProductos"
	KeyOrders    = "listaPedidos"
	KeyCheckouts = "checkouts"
)

// Accessor reads and writes JSON values under namespaced keys.
type Accessor struct {
	kv     ports.KeyValueStore
	prefix string
}

// NewAccessor wraps kv. A non-empty prefix is prepended to every key as
// "<prefix>:<key>".
func NewAccessor(kv ports.KeyValueStore, prefix string) *Accessor {
	return &Accessor{kv: kv, prefix: prefix}
}

func (a *Accessor) key(k string) string {
	if a.prefix == "" {
		return k
	}
	return a.prefix + ":" + k
}

// Read decodes the value under key into T. The bool result is false when the
// key is unset; that is not an error.
func Read[T any](ctx context.Context, a *Accessor, key string) (T, bool, error) {
	var v T
	raw, err := a.kv.Get(ctx, a.key(key))
	if errors.Is(err, domain.ErrAbsent) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("store read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("store decode %s: %w", key, err)
	}
	return v, true, nil
}

// Write encodes value and overwrites key.
func (a *Accessor) Write(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store encode %s: %w", key, err)
	}
	if err := a.kv.Set(ctx, a.key(key), raw); err != nil {
		return fmt.Errorf("store write %s: %w", key, err)
	}
	return nil
}

// Remove deletes key.
func (a *Accessor) Remove(ctx context.Context, key string) error {
	if err := a.kv.Delete(ctx, a.key(key)); err != nil {
		return fmt.Errorf("store remove %s: %w", key, err)
	}
	return nil
}

// Ping checks the underlying backend.
func (a *Accessor) Ping(ctx context.Context) error {
	return a.kv.Ping(ctx)
}

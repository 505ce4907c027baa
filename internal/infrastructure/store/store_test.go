package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kompu/storefront/internal/core/domain"
)

func newAccessor() (*Accessor, *Memory) {
	mem := NewMemory()
	return NewAccessor(mem, "kompu"), mem
}

func TestRead_AbsentIsNotEmpty(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccessor()
	orders := NewOrderRepository(a)

	got, ok, err := orders.LoadAll(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	require.NoError(t, orders.SaveAll(ctx, nil))
	got, ok, err = orders.LoadAll(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestAccessor_NamespacesKeys(t *testing.T) {
	ctx := context.Background()
	a, mem := newAccessor()

	require.NoError(t, a.Write(ctx, KeyUsers, []int{1}))

	raw, err := mem.Get(ctx, "kompu:listaUsuarios")
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(raw))

	_, err = mem.Get(ctx, KeyUsers)
	assert.ErrorIs(t, err, domain.ErrAbsent)
}

func TestRepositories_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccessor()
	comment := "Genial"
	released := domain.NewDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	users := []domain.User{{
		ID: 1, Name: "Ana", Email: "ana@mail.com", Password: "QWJjMTIzIQ==",
		Phone: "600000000", Address: "Calle Mayor 1", Role: domain.RoleUser, State: domain.StateEnabled,
		Cart: []domain.CartLine{{ProductID: 2, Quantity: 3}}, Wishlist: []int{4, 5},
	}}
	products := []domain.Product{{
		ID: 2, Name: "Teclado", Brand: "Logi", Category: "perifericos", Price: 75.5, Stock: 4,
		Images: []string{"a.jpg", "b.jpg"}, Description: "RGB",
		Reviews:    []domain.Review{{UserID: 1, Rating: 5, Comment: &comment}, {UserID: 2, Rating: 3}},
		ReleasedAt: released,
	}}
	orders := []domain.Order{{
		ID: 1, UserID: 1, Date: released, Lines: []domain.OrderLine{{ProductID: 2, Quantity: 3, Price: 75.5}},
		Total: 226.5, Net: 187.19, VAT: 39.31, State: domain.OrderPending, InvoiceNumber: 1001,
	}}
	checkouts := []domain.Checkout{{
		ID: "PAY-1", UserID: 1, Amount: "226.50", Currency: "EUR", State: domain.CheckoutRecorded,
		OrderID: 1, CreatedAt: released, UpdatedAt: released,
	}}

	userRepo := NewUserRepository(a)
	require.NoError(t, userRepo.SaveAll(ctx, users))
	gotUsers, ok, err := userRepo.LoadAll(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, users, gotUsers)

	productRepo := NewProductRepository(a)
	require.NoError(t, productRepo.SaveAll(ctx, products))
	gotProducts, _, err := productRepo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, gotProducts)

	orderRepo := NewOrderRepository(a)
	require.NoError(t, orderRepo.SaveAll(ctx, orders))
	gotOrders, _, err := orderRepo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, orders, gotOrders)

	checkoutRepo := NewCheckoutRepository(a)
	require.NoError(t, checkoutRepo.SaveAll(ctx, checkouts))
	gotCheckouts, _, err := checkoutRepo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, checkouts, gotCheckouts)
}

func TestUserRepository_NormalizesLegacyRecords(t *testing.T) {
	ctx := context.Background()
	a, mem := newAccessor()
	require.NoError(t, mem.Set(ctx, "kompu:listaUsuarios", []byte(`[{"id":3,"email":"x@y.z","carrito":null}]`)))

	users, ok, err := NewUserRepository(a).LoadAll(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []domain.CartLine{}, users[0].Cart)
	assert.Equal(t, []int{}, users[0].Wishlist)
	assert.Equal(t, domain.RoleUser, users[0].Role)
	assert.Equal(t, domain.StateEnabled, users[0].State)
}

func TestRead_CorruptValue(t *testing.T) {
	ctx := context.Background()
	a, mem := newAccessor()
	require.NoError(t, mem.Set(ctx, "kompu:listaProductos", []byte(`{not json`)))

	_, ok, err := NewProductRepository(a).LoadAll(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	a, _ := newAccessor()
	ts := NewTokenStore(a)

	_, ok, err := ts.Active(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ts.SetActive(ctx, "a.b.c"))
	tok, ok, err := ts.Active(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a.b.c", tok)

	require.NoError(t, ts.Clear(ctx))
	require.NoError(t, ts.Clear(ctx))
	_, ok, _ = ts.Active(ctx)
	assert.False(t, ok)
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	in := []byte("abc")
	require.NoError(t, mem.Set(ctx, "k", in))
	in[0] = 'z'

	out, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
}

func TestCaptureGuard(t *testing.T) {
	ctx := context.Background()
	g := NewCaptureGuard(time.Hour)
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	first, err := g.Acquire(ctx, "PAY-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, _ := g.Acquire(ctx, "PAY-1")
	assert.False(t, again)

	other, _ := g.Acquire(ctx, "PAY-2")
	assert.True(t, other)

	now = now.Add(2 * time.Hour)
	expired, _ := g.Acquire(ctx, "PAY-1")
	assert.True(t, expired)

	require.NoError(t, g.Release(ctx, "PAY-2"))
	released, _ := g.Acquire(ctx, "PAY-2")
	assert.True(t, released)
}

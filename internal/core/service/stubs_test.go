package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
	"github.com/kompu/storefront/internal/core/token"
)

var fixedNow = time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

// stubRepo stores a whole collection and hands out deep copies, like the
// key-value store does.
type stubRepo[T any] struct {
	data    []byte
	present bool
	saves   int
	loadErr error
	saveErr error
}

func newStubRepo[T any](items []T) *stubRepo[T] {
	r := &stubRepo[T]{}
	if items != nil {
		r.put(items)
	}
	return r
}

func (r *stubRepo[T]) put(items []T) {
	b, err := json.Marshal(items)
	if err != nil {
		panic(err)
	}
	r.data = b
	r.present = true
}

func (r *stubRepo[T]) items() []T {
	var out []T
	if !r.present {
		return nil
	}
	if err := json.Unmarshal(r.data, &out); err != nil {
		panic(err)
	}
	return out
}

func (r *stubRepo[T]) LoadAll(_ context.Context) ([]T, bool, error) {
	if r.loadErr != nil {
		return nil, false, r.loadErr
	}
	if !r.present {
		return nil, false, nil
	}
	return r.items(), true, nil
}

func (r *stubRepo[T]) SaveAll(_ context.Context, items []T) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.put(items)
	return nil
}

type stubTokens struct {
	tok     string
	cleared int
}

func (s *stubTokens) Active(_ context.Context) (string, bool, error) {
	return s.tok, s.tok != "", nil
}

func (s *stubTokens) SetActive(_ context.Context, tok string) error {
	s.tok = tok
	return nil
}

func (s *stubTokens) Clear(_ context.Context) error {
	s.tok = ""
	s.cleared++
	return nil
}

type stubRecorder struct {
	mu        sync.Mutex
	skips     []string
	defaulted []string
	orders    []float64
	finished  []string
}

func (r *stubRecorder) Skipped(op, reason string) {
	r.mu.Lock()
	r.skips = append(r.skips, op+":"+reason)
	r.mu.Unlock()
}

func (r *stubRecorder) Defaulted(field string) {
	r.mu.Lock()
	r.defaulted = append(r.defaulted, field)
	r.mu.Unlock()
}

func (r *stubRecorder) OrderRecorded(total float64) {
	r.mu.Lock()
	r.orders = append(r.orders, total)
	r.mu.Unlock()
}

func (r *stubRecorder) CheckoutFinished(state string) {
	r.mu.Lock()
	r.finished = append(r.finished, state)
	r.mu.Unlock()
}

type stubGateway struct {
	created    []ports.PaymentRequest
	captures   int
	createErr  error
	captureErr error
}

func (g *stubGateway) CreateOrder(_ context.Context, req ports.PaymentRequest) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	g.created = append(g.created, req)
	return fmt.Sprintf("PAY-%d", len(g.created)), nil
}

func (g *stubGateway) Capture(_ context.Context, id string) (*ports.PaymentCapture, error) {
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	g.captures++
	return &ports.PaymentCapture{ProviderOrderID: id, Status: "COMPLETED", CapturedAt: fixedNow}, nil
}

type stubGuard struct {
	held       map[string]bool
	acquireErr error
}

func newStubGuard() *stubGuard {
	return &stubGuard{held: make(map[string]bool)}
}

func (g *stubGuard) Acquire(_ context.Context, id string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	if g.held[id] {
		return false, nil
	}
	g.held[id] = true
	return true, nil
}

func (g *stubGuard) Release(_ context.Context, id string) error {
	delete(g.held, id)
	return nil
}

type stubNotifier struct {
	sent []ports.Notification
	err  error
}

func (n *stubNotifier) Send(_ context.Context, msg ports.Notification) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type stubQueue struct {
	queued []ports.Notification
}

func (q *stubQueue) Enqueue(msg ports.Notification) {
	q.queued = append(q.queued, msg)
}

type stubInvoices struct {
	last *ports.Invoice
}

func (s *stubInvoices) RenderInvoice(_ context.Context, inv ports.Invoice) ([]byte, error) {
	s.last = &inv
	return []byte("%PDF-stub"), nil
}

type stubSeedSource struct {
	products []domain.Product
	users    []domain.User
}

func (s stubSeedSource) Products(_ context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), s.products...), nil
}

func (s stubSeedSource) Users(_ context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), s.users...), nil
}

// fixture wires every service over stub collaborators. User 1 (Ana) is logged
// in; user 2 (Luis) is an administrator.
type fixture struct {
	users     *stubRepo[domain.User]
	products  *stubRepo[domain.Product]
	orders    *stubRepo[domain.Order]
	checkouts *stubRepo[domain.Checkout]
	tokens    *stubTokens
	rec       *stubRecorder
	gateway   *stubGateway
	guard     *stubGuard
	notifier  *stubNotifier
	queue     *stubQueue
	invoices  *stubInvoices
	codec     *token.Codec
	txn       *Txn
	resolver  *Resolver

	auth     *AuthService
	profile  *ProfileService
	catalog  *CatalogService
	cart     *CartService
	wishlist *WishlistService
	orderSvc *OrderService
	checkout *CheckoutService
	reviews  *ReviewService
	admin    *AdminService
}

const anaPassword = "Secreto1!"

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Portátil Zen", Brand: "Asus", Category: "portatiles", Price: 899.99, Stock: 4, Images: []string{"zen.jpg"}, ReleasedAt: domain.NewDate(fixedNow.AddDate(0, -3, 0))},
		{ID: 2, Name: "Ratón Óptico", Brand: "Logitech", Category: "perifericos", Price: 19.99, Stock: 50, ReleasedAt: domain.NewDate(fixedNow.AddDate(0, -1, 0))},
		{ID: 3, Name: "Monitor 27", Brand: "Asus", Category: "monitores", Price: 249.5, Stock: 0, ReleasedAt: domain.NewDate(fixedNow.AddDate(-1, 0, 0))},
	}
}

func seedUsers() []domain.User {
	hashed, _ := base64Passwords{}.Hash(anaPassword)
	return []domain.User{
		{ID: 1, Name: "Ana", Email: "ana@example.com", Password: hashed, Phone: "600000001", Address: "Calle Mayor 1", Role: domain.RoleUser, State: domain.StateEnabled, Cart: []domain.CartLine{}, Wishlist: []int{}},
		{ID: 2, Name: "Luis", Email: "luis@example.com", Password: hashed, Phone: "600000002", Address: "Calle Sol 2", Role: domain.RoleAdmin, State: domain.StateEnabled, Cart: []domain.CartLine{}, Wishlist: []int{}},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := zerolog.Nop()
	clock := func() time.Time { return fixedNow }

	f := &fixture{
		users:     newStubRepo(seedUsers()),
		products:  newStubRepo(seedProducts()),
		orders:    newStubRepo([]domain.Order{}),
		checkouts: newStubRepo[domain.Checkout](nil),
		tokens:    &stubTokens{},
		rec:       &stubRecorder{},
		gateway:   &stubGateway{},
		guard:     newStubGuard(),
		notifier:  &stubNotifier{},
		queue:     &stubQueue{},
		invoices:  &stubInvoices{},
		codec:     token.NewCodec("secreto", token.DefaultTTL, time.Hour),
		txn:       NewTxn(),
	}

	f.resolver = NewResolver(f.tokens, f.users, f.rec, log)
	f.resolver.clock = clock

	f.auth = NewAuthService(f.users, f.tokens, f.codec, base64Passwords{}, f.queue, f.notifier, MailSettings{
		ServiceID:       "service_1",
		PublicKey:       "pk",
		WelcomeTemplate: "plantilla_bienvenida",
		ResetTemplate:   "plantilla_restablecimiento",
		SiteURL:         "https://tienda.example.com",
		LogoURL:         "https://tienda.example.com/logo.png",
	}, f.txn, f.rec, log)
	f.auth.clock = clock

	f.profile = NewProfileService(f.resolver, f.users, f.txn)
	f.catalog = NewCatalogService(f.products, nil, log)
	f.cart = NewCartService(f.resolver, f.users, f.products, f.txn, f.rec, log)
	f.wishlist = NewWishlistService(f.resolver, f.users, f.products, f.txn, f.rec)

	f.orderSvc = NewOrderService(f.resolver, f.users, f.products, f.orders, f.invoices, f.txn, f.rec, log)
	f.orderSvc.clock = clock

	f.checkout = NewCheckoutService(f.resolver, f.products, f.checkouts, f.orders, f.gateway, f.orderSvc, f.guard, "EUR", f.txn, f.rec, log)
	f.checkout.clock = clock

	f.reviews = NewReviewService(f.resolver, f.products, f.txn, f.rec, log)

	f.admin = NewAdminService(f.users, f.products, nil, f.txn, f.rec, log)
	f.admin.clock = clock
	return f
}

// login stores a session token for userID as the active token.
func (f *fixture) login(userID int) {
	u := f.user(userID)
	f.tokens.tok = f.codec.Session(u.ID, u.Name, u.Role, fixedNow)
}

func (f *fixture) user(id int) domain.User {
	users := f.users.items()
	idx := domain.FindUser(users, id)
	if idx < 0 {
		panic(fmt.Sprintf("no user %d", id))
	}
	return users[idx]
}

func (f *fixture) product(id int) domain.Product {
	products := f.products.items()
	idx := domain.FindProduct(products, id)
	if idx < 0 {
		panic(fmt.Sprintf("no product %d", id))
	}
	return products[idx]
}

func assertSkip(t *testing.T, err error, reason domain.SkipReason) {
	t.Helper()
	if !errors.Is(err, domain.ErrSkipped) {
		t.Fatalf("expected skip %q, got %v", reason, err)
	}
	if got := domain.SkipReasonOf(err); got != reason {
		t.Fatalf("expected skip reason %q, got %q", reason, got)
	}
}

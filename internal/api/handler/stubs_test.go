package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kompu/storefront/internal/core/catalog"
	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// newContext builds an echo context with the validator installed. A non-empty
// body is sent as JSON.
func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	logoutFn   func(ctx context.Context) error
	forgotFn   func(ctx context.Context, email string) error
	resetFn    func(ctx context.Context, token, password, confirm string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context) error { return s.logoutFn(ctx) }

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	return s.resetFn(ctx, token, password, confirm)
}

type stubProfileService struct {
	getFn    func(ctx context.Context) (*domain.User, error)
	updateFn func(ctx context.Context, in ports.ProfileInput) (*domain.User, error)
}

func (s *stubProfileService) Get(ctx context.Context) (*domain.User, error) { return s.getFn(ctx) }

func (s *stubProfileService) Update(ctx context.Context, in ports.ProfileInput) (*domain.User, error) {
	return s.updateFn(ctx, in)
}

type stubCatalogService struct {
	searchFn  func(ctx context.Context, c catalog.Criteria, sort catalog.SortKey) ([]domain.Product, error)
	facetsFn  func(ctx context.Context) (catalog.Facets, error)
	productFn func(ctx context.Context, id int) (*ports.ProductDetail, error)
	latestFn  func(ctx context.Context, n int) ([]domain.Product, error)
}

func (s *stubCatalogService) Search(ctx context.Context, c catalog.Criteria, sort catalog.SortKey) ([]domain.Product, error) {
	return s.searchFn(ctx, c, sort)
}

func (s *stubCatalogService) Facets(ctx context.Context) (catalog.Facets, error) {
	return s.facetsFn(ctx)
}

func (s *stubCatalogService) Product(ctx context.Context, id int) (*ports.ProductDetail, error) {
	return s.productFn(ctx, id)
}

func (s *stubCatalogService) Latest(ctx context.Context, n int) ([]domain.Product, error) {
	return s.latestFn(ctx, n)
}

type stubCartService struct {
	addFn    func(ctx context.Context, productID int) (ports.CartOutcome, error)
	setFn    func(ctx context.Context, productID int, raw string) (*ports.CartView, error)
	removeFn func(ctx context.Context, productID int) (*ports.CartView, error)
	viewFn   func(ctx context.Context) (*ports.CartView, error)
}

func (s *stubCartService) Add(ctx context.Context, productID int) (ports.CartOutcome, error) {
	return s.addFn(ctx, productID)
}

func (s *stubCartService) SetQuantity(ctx context.Context, productID int, raw string) (*ports.CartView, error) {
	return s.setFn(ctx, productID, raw)
}

func (s *stubCartService) Remove(ctx context.Context, productID int) (*ports.CartView, error) {
	return s.removeFn(ctx, productID)
}

func (s *stubCartService) View(ctx context.Context) (*ports.CartView, error) { return s.viewFn(ctx) }

type stubWishlistService struct {
	toggleFn func(ctx context.Context, productID int) (ports.WishlistOutcome, error)
	removeFn func(ctx context.Context, productID int) error
	listFn   func(ctx context.Context) ([]domain.Product, error)
}

func (s *stubWishlistService) Toggle(ctx context.Context, productID int) (ports.WishlistOutcome, error) {
	return s.toggleFn(ctx, productID)
}

func (s *stubWishlistService) Remove(ctx context.Context, productID int) error {
	return s.removeFn(ctx, productID)
}

func (s *stubWishlistService) List(ctx context.Context) ([]domain.Product, error) {
	return s.listFn(ctx)
}

type stubReviewService struct {
	submitFn func(ctx context.Context, productID, rating int, comment string) (*domain.Product, error)
}

func (s *stubReviewService) Submit(ctx context.Context, productID, rating int, comment string) (*domain.Product, error) {
	return s.submitFn(ctx, productID, rating, comment)
}

type stubOrderService struct {
	historyFn func(ctx context.Context) ([]ports.OrderSummary, error)
	invoiceFn func(ctx context.Context, orderID int) ([]byte, error)
}

func (s *stubOrderService) RecordFromCart(context.Context) (*domain.Order, error) {
	return nil, nil
}

func (s *stubOrderService) History(ctx context.Context) ([]ports.OrderSummary, error) {
	return s.historyFn(ctx)
}

func (s *stubOrderService) Invoice(ctx context.Context, orderID int) ([]byte, error) {
	return s.invoiceFn(ctx, orderID)
}

type stubCheckoutService struct {
	beginFn   func(ctx context.Context) (*domain.Checkout, error)
	approveFn func(ctx context.Context, id string) (*domain.Checkout, *ports.OrderSummary, error)
	failFn    func(ctx context.Context, id, reason string) (*domain.Checkout, error)
}

func (s *stubCheckoutService) Begin(ctx context.Context) (*domain.Checkout, error) {
	return s.beginFn(ctx)
}

func (s *stubCheckoutService) Approve(ctx context.Context, id string) (*domain.Checkout, *ports.OrderSummary, error) {
	return s.approveFn(ctx, id)
}

func (s *stubCheckoutService) Fail(ctx context.Context, id, reason string) (*domain.Checkout, error) {
	return s.failFn(ctx, id, reason)
}

type stubAdminService struct {
	productsFn func(ctx context.Context) ([]domain.Product, error)
	createFn   func(ctx context.Context, in ports.NewProductInput) (*domain.Product, error)
	editFn     func(ctx context.Context, id int, edits map[string]any) (*domain.Product, error)
	deleteFn   func(ctx context.Context, id int) error
	usersFn    func(ctx context.Context) ([]domain.User, error)
	toggleFn   func(ctx context.Context, id int) (*domain.User, error)
}

func (s *stubAdminService) Products(ctx context.Context) ([]domain.Product, error) {
	return s.productsFn(ctx)
}

func (s *stubAdminService) CreateProduct(ctx context.Context, in ports.NewProductInput) (*domain.Product, error) {
	return s.createFn(ctx, in)
}

func (s *stubAdminService) EditProduct(ctx context.Context, id int, edits map[string]any) (*domain.Product, error) {
	return s.editFn(ctx, id, edits)
}

func (s *stubAdminService) DeleteProduct(ctx context.Context, id int) error {
	return s.deleteFn(ctx, id)
}

func (s *stubAdminService) Users(ctx context.Context) ([]domain.User, error) {
	return s.usersFn(ctx)
}

func (s *stubAdminService) ToggleUserState(ctx context.Context, id int) (*domain.User, error) {
	return s.toggleFn(ctx, id)
}

package ports

import (
	"context"

	"github.com/kompu/storefront/internal/core/catalog"
	"github.com/kompu/storefront/internal/core/domain"
)

// RegisterInput carries the registration form. All fields are required.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Address         string
}

// AuthResult is returned by a successful login or registration.
type AuthResult struct {
	Token string
	User  domain.User
}

// AuthService handles account creation, sessions and password resets.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password, confirm string) error
}

// ProfileInput carries the editable personal data.
type ProfileInput struct {
	Name    string
	Phone   string
	Address string
}

// ProfileService reads and edits the current user's personal data.
type ProfileService interface {
	Get(ctx context.Context) (*domain.User, error)
	Update(ctx context.Context, in ProfileInput) (*domain.User, error)
}

// ProductDetail is a product with its computed rating.
type ProductDetail struct {
	Product       domain.Product
	AverageRating float64
}

// CatalogService serves the product listing pages.
type CatalogService interface {
	Search(ctx context.Context, c catalog.Criteria, sort catalog.SortKey) ([]domain.Product, error)
	Facets(ctx context.Context) (catalog.Facets, error)
	Product(ctx context.Context, id int) (*ProductDetail, error)
	Latest(ctx context.Context, n int) ([]domain.Product, error)
}

// CartOutcome distinguishes the two results of adding a product.
type CartOutcome string

const (
	CartAdded             CartOutcome = "added"
	CartQuantityIncreased CartOutcome = "quantity_increased"
)

// WishlistOutcome distinguishes the two results of toggling a product.
type WishlistOutcome string

const (
	WishlistAdded          WishlistOutcome = "added"
	WishlistAlreadyPresent WishlistOutcome = "already_present"
)

// CartItem is a cart line joined with its catalog product.
type CartItem struct {
	Product  domain.Product
	Quantity int
	Subtotal float64
}

// CartView is the cart as shown to the user.
type CartView struct {
	Items          []CartItem
	Total          float64
	FormattedTotal string
}

// CartService mutates the current user's cart.
type CartService interface {
	Add(ctx context.Context, productID int) (CartOutcome, error)
	SetQuantity(ctx context.Context, productID int, raw string) (*CartView, error)
	Remove(ctx context.Context, productID int) (*CartView, error)
	View(ctx context.Context) (*CartView, error)
}

// WishlistService mutates the current user's wish-list.
type WishlistService interface {
	Toggle(ctx context.Context, productID int) (WishlistOutcome, error)
	Remove(ctx context.Context, productID int) error
	List(ctx context.Context) ([]domain.Product, error)
}

// ReviewService records product reviews.
type ReviewService interface {
	Submit(ctx context.Context, productID, rating int, comment string) (*domain.Product, error)
}

// OrderLineView is an order line enriched with catalog data.
type OrderLineView struct {
	ProductID int
	Name      string
	Image     string
	Quantity  int
	Price     float64
}

// OrderSummary is an order as shown in the history page.
type OrderSummary struct {
	Order         domain.Order
	FormattedDate string
	Lines         []OrderLineView
}

// OrderService records and lists orders.
type OrderService interface {
	RecordFromCart(ctx context.Context) (*domain.Order, error)
	History(ctx context.Context) ([]OrderSummary, error)
	Invoice(ctx context.Context, orderID int) ([]byte, error)
}

// CheckoutService drives the payment provider state machine.
type CheckoutService interface {
	Begin(ctx context.Context) (*domain.Checkout, error)
	Approve(ctx context.Context, providerOrderID string) (*domain.Checkout, *OrderSummary, error)
	Fail(ctx context.Context, providerOrderID, reason string) (*domain.Checkout, error)
}

// NewProductInput is a partial product plus an optional image to upload.
type NewProductInput struct {
	Product     domain.Product
	ImageBase64 string
}

// AdminService manages the catalog and user accounts.
type AdminService interface {
	Products(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, in NewProductInput) (*domain.Product, error)
	EditProduct(ctx context.Context, id int, edits map[string]any) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int) error
	Users(ctx context.Context) ([]domain.User, error)
	ToggleUserState(ctx context.Context, id int) (*domain.User, error)
}

package handler

import (
	"encoding/json"

	"github.com/kompu/storefront/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// --- Request types ---

type registerRequest struct {
	Name            string `json:"nombre"`
	Email           string `json:"email"`
	Password        string `json:"clave"`
	ConfirmPassword string `json:"confirmarClave"`
	Phone           string `json:"telefono"`
	Address         string `json:"direccion"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"clave"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"clave"`
	Confirm  string `json:"confirmarClave"`
}

type profileRequest struct {
	Name    string `json:"nombre"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
}

type cartAddRequest struct {
	ProductID int `json:"idProducto" validate:"required,gt=0"`
}

// cartQuantityRequest keeps the quantity raw so both 3 and "3" are accepted;
// malformed values are defaulted by the service.
type cartQuantityRequest struct {
	Quantity json.RawMessage `json:"cantidad"`
}

type wishlistRequest struct {
	ProductID int `json:"idProducto" validate:"required,gt=0"`
}

type reviewRequest struct {
	Rating  int    `json:"nota"`
	Comment string `json:"comentario"`
}

type failCheckoutRequest struct {
	Reason string `json:"motivo"`
}

type productRequest struct {
	Name        string      `json:"nombre"`
	Brand       string      `json:"marca"`
	Category    string      `json:"categoria"`
	Price       float64     `json:"precio"`
	Stock       int         `json:"stock"`
	Images      []string    `json:"listaImagenes"`
	Description string      `json:"descripcion"`
	ReleasedAt  domain.Date `json:"fechaLanzamiento"`
	// ImageBase64 is uploaded and appended to the image list.
	ImageBase64 string `json:"imagenBase64"`
}

// --- Response types ---

// Response-only types owned by the transport layer. They never expose the
// stored password.

type userResponse struct {
	ID       int                `json:"id"`
	Name     string             `json:"nombre"`
	Email    string             `json:"email"`
	Phone    string             `json:"telefono"`
	Address  string             `json:"direccion"`
	Role     string             `json:"rol"`
	State    string             `json:"estado"`
	Cart     []cartLineResponse `json:"carrito"`
	Wishlist []int              `json:"listaDeseos"`
}

type cartLineResponse struct {
	ProductID int `json:"idProducto"`
	Quantity  int `json:"cantidad"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"usuario"`
}

type messageResponse struct {
	Message string `json:"mensaje"`
}

type reviewResponse struct {
	UserID  int     `json:"idUsuario"`
	Rating  int     `json:"nota"`
	Comment *string `json:"comentario"`
}

type productResponse struct {
	ID             int              `json:"id"`
	Name           string           `json:"nombre"`
	Brand          string           `json:"marca"`
	Category       string           `json:"categoria"`
	Price          float64          `json:"precio"`
	FormattedPrice string           `json:"precioFormateado"`
	Stock          int              `json:"stock"`
	Images         []string         `json:"listaImagenes"`
	Description    string           `json:"descripcion"`
	Reviews        []reviewResponse `json:"valoraciones"`
	ReleasedAt     string           `json:"fechaLanzamiento"`
}

type productDetailResponse struct {
	productResponse
	AverageRating float64 `json:"valoracionMedia"`
}

type cartItemResponse struct {
	Product  productResponse `json:"producto"`
	Quantity int             `json:"cantidad"`
	Subtotal float64         `json:"subtotal"`
}

type cartResponse struct {
	Items          []cartItemResponse `json:"productos"`
	Total          float64            `json:"total"`
	FormattedTotal string             `json:"totalFormateado"`
}

type cartAddResponse struct {
	Outcome string `json:"resultado"`
}

type wishlistToggleResponse struct {
	Outcome string `json:"resultado"`
}

type orderLineResponse struct {
	ProductID int     `json:"idProducto"`
	Name      string  `json:"nombre"`
	Image     string  `json:"imagen"`
	Quantity  int     `json:"cantidad"`
	Price     float64 `json:"precio"`
}

type orderResponse struct {
	ID            int                 `json:"id"`
	Date          string              `json:"fecha"`
	FormattedDate string              `json:"fechaFormateada,omitempty"`
	Lines         []orderLineResponse `json:"listaProductos"`
	Total         float64             `json:"precioTotal"`
	Net           float64             `json:"subprecio"`
	VAT           float64             `json:"iva"`
	State         string              `json:"estado"`
	InvoiceNumber int                 `json:"numFactura"`
}

type checkoutResponse struct {
	ID       string         `json:"id"`
	Amount   string         `json:"importe"`
	Currency string         `json:"moneda"`
	State    string         `json:"estado"`
	Error    string         `json:"error,omitempty"`
	Order    *orderResponse `json:"pedido,omitempty"`
}

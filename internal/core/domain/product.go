package domain

import "time"

// Product defaults applied on creation when a field is missing.
const (
	DefaultProductName     = "Nuevo producto"
	DefaultProductBrand    = "Sin marca"
	DefaultProductCategory = "general"
	UnknownProductName     = "Producto desconocido"
)

// Review is a single user rating on a product. Comment is nil when the user
// left no text.
type Review struct {
	UserID  int     `json:"idUsuario"`
	Rating  int     `json:"nota"`
	Comment *string `json:"comentario"`
}

// Product is a catalog entry.
type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"nombre"`
	Brand       string   `json:"marca"`
	Category    string   `json:"categoria"`
	Price       float64  `json:"precio"`
	Stock       int      `json:"stock"`
	Images      []string `json:"listaImagenes"`
	Description string   `json:"descripcion"`
	Reviews     []Review `json:"valoraciones"`
	ReleasedAt  Date     `json:"fechaLanzamiento"`
}

// AverageRating is the arithmetic mean of all review ratings, 0 when there
// are none.
func (p *Product) AverageRating() float64 {
	if len(p.Reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(p.Reviews))
}

// ReviewedBy reports whether userID already reviewed the product.
func (p *Product) ReviewedBy(userID int) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Cover returns the first image URL or "".
func (p *Product) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Normalize replaces nil slices so the record always encodes as [].
func (p *Product) Normalize() {
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Reviews == nil {
		p.Reviews = []Review{}
	}
}

// FindProduct returns the index of the product with the given id, or -1.
func FindProduct(products []Product, id int) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

// NextProductID returns max(id, 0)+1.
func NextProductID(products []Product) int {
	max := 0
	for _, p := range products {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// NewProduct builds a product from a partial one, filling every missing
// field with its default.
func NewProduct(id int, partial Product, now time.Time) Product {
	p := partial
	p.ID = id
	if p.Name == "" {
		p.Name = DefaultProductName
	}
	if p.Brand == "" {
		p.Brand = DefaultProductBrand
	}
	if p.Category == "" {
		p.Category = DefaultProductCategory
	}
	if p.Price < 0 {
		p.Price = 0
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	if p.ReleasedAt.IsZero() {
		p.ReleasedAt = NewDate(now)
	}
	p.Reviews = nil
	p.Normalize()
	return p
}

// PriceIndex maps product id to price for total calculations.
func PriceIndex(products []Product) map[int]float64 {
	idx := make(map[int]float64, len(products))
	for _, p := range products {
		idx[p.ID] = p.Price
	}
	return idx
}

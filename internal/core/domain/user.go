package domain

import "strings"

const (
	RoleUser  = "usuario"
	RoleAdmin = "administrador"
	// RoleAdminAlias is accepted wherever RoleAdmin is.
	RoleAdminAlias = "admin"
)

const (
	StateEnabled  = "activado"
	StateDisabled = "desactivado"
)

// CartLine is a product/quantity pair embedded in a user record.
type CartLine struct {
	ProductID int `json:"idProducto"`
	Quantity  int `json:"cantidad"`
}

// User models a storefront account. The cart and wish-list live inside the
// record, so every mutation persists the whole user collection.
type User struct {
	ID       int        `json:"id"`
	Name     string     `json:"nombre"`
	Email    string     `json:"email"`
	Password string     `json:"clave"`
	Phone    string     `json:"telefono"`
	Address  string     `json:"direccion"`
	Role     string     `json:"rol"`
	State    string     `json:"estado"`
	Cart     []CartLine `json:"carrito"`
	Wishlist []int      `json:"listaDeseos"`
}

// IsAdmin reports whether the role grants access to the admin pages.
func IsAdmin(role string) bool {
	return role == RoleAdmin || role == RoleAdminAlias
}

// Enabled reports whether the account may log in.
func (u *User) Enabled() bool {
	return u.State != StateDisabled
}

// CartLine returns the index of the cart line holding productID, or -1.
func (u *User) CartLine(productID int) int {
	for i, l := range u.Cart {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// InWishlist reports whether productID is in the wish-list.
func (u *User) InWishlist(productID int) bool {
	for _, id := range u.Wishlist {
		if id == productID {
			return true
		}
	}
	return false
}

// FindUser returns the index of the user with the given id, or -1.
func FindUser(users []User, id int) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// FindUserByEmail matches case-insensitively and returns the index, or -1.
func FindUserByEmail(users []User, email string) int {
	email = strings.TrimSpace(email)
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return i
		}
	}
	return -1
}

// NextUserID returns max(id)+1, starting at 1.
func NextUserID(users []User) int {
	max := 0
	for _, u := range users {
		if u.ID > max {
			max = u.ID
		}
	}
	return max + 1
}

// Normalize replaces nil slices so the record always encodes as [] rather
// than null.
func (u *User) Normalize() {
	if u.Cart == nil {
		u.Cart = []CartLine{}
	}
	if u.Wishlist == nil {
		u.Wishlist = []int{}
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	if u.State == "" {
		u.State = StateEnabled
	}
}

package handler

import (
	"time"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

// --- Response mappers ---
// Convert domain and port types into transport-layer response types.

func toUserResponse(u domain.User) userResponse {
	cart := make([]cartLineResponse, 0, len(u.Cart))
	for _, l := range u.Cart {
		cart = append(cart, cartLineResponse{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	wishlist := u.Wishlist
	if wishlist == nil {
		wishlist = []int{}
	}
	return userResponse{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Address:  u.Address,
		Role:     u.Role,
		State:    u.State,
		Cart:     cart,
		Wishlist: wishlist,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toProductResponse(p domain.Product) productResponse {
	reviews := make([]reviewResponse, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		reviews = append(reviews, reviewResponse{UserID: r.UserID, Rating: r.Rating, Comment: r.Comment})
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	resp := productResponse{
		ID:             p.ID,
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       p.Category,
		Price:          p.Price,
		FormattedPrice: domain.FormatPrice(p.Price),
		Stock:          p.Stock,
		Images:         images,
		Description:    p.Description,
		Reviews:        reviews,
	}
	if !p.ReleasedAt.IsZero() {
		resp.ReleasedAt = p.ReleasedAt.Format(time.DateOnly)
	}
	return resp
}

func toProductResponses(products []domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toCartResponse(v *ports.CartView) cartResponse {
	items := make([]cartItemResponse, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, cartItemResponse{
			Product:  toProductResponse(it.Product),
			Quantity: it.Quantity,
			Subtotal: it.Subtotal,
		})
	}
	return cartResponse{Items: items, Total: v.Total, FormattedTotal: v.FormattedTotal}
}

func toOrderResponse(o domain.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, orderLineResponse{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
	}
	return orderResponse{
		ID:            o.ID,
		Date:          o.Date.Format(time.RFC3339),
		Lines:         lines,
		Total:         o.Total,
		Net:           o.Net,
		VAT:           o.VAT,
		State:         o.State,
		InvoiceNumber: o.InvoiceNumber,
	}
}

func toOrderSummaryResponse(s ports.OrderSummary) orderResponse {
	resp := toOrderResponse(s.Order)
	resp.FormattedDate = s.FormattedDate
	resp.Lines = make([]orderLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID: l.ProductID,
			Name:      l.Name,
			Image:     l.Image,
			Quantity:  l.Quantity,
			Price:     l.Price,
		})
	}
	return resp
}

func toCheckoutResponse(co *domain.Checkout, order *ports.OrderSummary) checkoutResponse {
	resp := checkoutResponse{
		ID:       co.ID,
		Amount:   co.Amount,
		Currency: co.Currency,
		State:    string(co.State),
		Error:    co.Error,
	}
	if order != nil {
		o := toOrderSummaryResponse(*order)
		resp.Order = &o
	}
	return resp
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order states. New orders start as pending fulfilment.
const (
	OrderPending   = "pendiente"
	OrderShipped   = "enviado"
	OrderDelivered = "entregado"
)

// firstInvoiceNumber is the base for numFactura; the first order gets 1001.
const firstInvoiceNumber = 1000

// OrderLine snapshots a cart line with the price paid at checkout.
type OrderLine struct {
	ProductID int     `json:"idProducto"`
	Quantity  int     `json:"cantidad"`
	Price     float64 `json:"precio"`
}

// Order is an immutable purchase record created at payment capture.
type Order struct {
	ID            int         `json:"id"`
	UserID        int         `json:"idUsuario"`
	Date          Date        `json:"fecha"`
	Lines         []OrderLine `json:"listaProductos"`
	Total         float64     `json:"precioTotal"`
	Net           float64     `json:"subprecio"`
	VAT           float64     `json:"iva"`
	State         string      `json:"estado"`
	InvoiceNumber int         `json:"numFactura"`
}

// CartTotal sums price*quantity over lines present in the price index. Lines
// referencing unknown products contribute 0.
func CartTotal(lines []CartLine, prices map[int]float64) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		price, ok := prices[l.ProductID]
		if !ok {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	f, _ := sum.Float64()
	return f
}

// SnapshotLines resolves the current catalog price for every cart line (0
// when the product no longer exists).
func SnapshotLines(lines []CartLine, prices map[int]float64) []OrderLine {
	out := make([]OrderLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     prices[l.ProductID],
		})
	}
	return out
}

// DeductPurchased removes the purchased quantities from cart. Lines left with
// no quantity are dropped; products added after pricing stay.
func DeductPurchased(cart []CartLine, purchased []OrderLine) []CartLine {
	bought := make(map[int]int, len(purchased))
	for _, l := range purchased {
		bought[l.ProductID] += l.Quantity
	}
	out := make([]CartLine, 0, len(cart))
	for _, l := range cart {
		l.Quantity -= bought[l.ProductID]
		delete(bought, l.ProductID)
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}

// LinesTotal sums price*quantity over order lines, rounded to two decimals.
func LinesTotal(lines []OrderLine) float64 {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	f, _ := sum.Round(2).Float64()
	return f
}

// NewOrder builds the next order for userID from snapshot lines, assigning
// id and invoice number from the existing collection.
func NewOrder(existing []Order, userID int, lines []OrderLine, now time.Time) Order {
	total := LinesTotal(lines)
	net, vat := SplitVAT(total)

	maxID, maxInvoice := 0, firstInvoiceNumber
	for _, o := range existing {
		if o.ID > maxID {
			maxID = o.ID
		}
		if o.InvoiceNumber > maxInvoice {
			maxInvoice = o.InvoiceNumber
		}
	}

	return Order{
		ID:            maxID + 1,
		UserID:        userID,
		Date:          NewDate(now),
		Lines:         lines,
		Total:         total,
		Net:           net,
		VAT:           vat,
		State:         OrderPending,
		InvoiceNumber: maxInvoice + 1,
	}
}

// Package catalog filters, sorts and summarizes product lists. Every function
// is pure and returns new slices; inputs are never reordered in place.
package catalog

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/kompu/storefront/internal/core/domain"
)

// SortKey selects the ordering applied by Sort.
type SortKey string

const (
	SortNone      SortKey = ""
	SortPriceDesc SortKey = "price-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortNameAsc   SortKey = "name-asc"
)

var sortAliases = map[string]SortKey{
	"precio-desc": SortPriceDesc,
	"precio-asc":  SortPriceAsc,
	"nombre-asc":  SortNameAsc,
}

// ParseSortKey normalizes user input, accepting the Spanish aliases. Unknown
// values map to SortNone.
func ParseSortKey(s string) SortKey {
	s = strings.ToLower(strings.TrimSpace(s))
	switch k := SortKey(s); k {
	case SortPriceDesc, SortPriceAsc, SortNameAsc:
		return k
	}
	if k, ok := sortAliases[s]; ok {
		return k
	}
	return SortNone
}

// Criteria is the conjunctive product filter. Empty Category, Brand and Search
// match everything; PriceMax <= 0 means no upper bound.
type Criteria struct {
	Category string
	Brand    string
	PriceMin float64
	PriceMax float64
	Search   string
}

// ToggleCategory selects v, or clears the category facet when v is already
// selected.
func (c *Criteria) ToggleCategory(v string) {
	if c.Category == v {
		c.Category = ""
		return
	}
	c.Category = v
}

// ToggleBrand selects v, or clears the brand facet when v is already selected.
func (c *Criteria) ToggleBrand(v string) {
	if c.Brand == v {
		c.Brand = ""
		return
	}
	c.Brand = v
}

// Clear resets every filter, keeping the full price range up to priceMax.
func (c *Criteria) Clear(priceMax float64) {
	*c = Criteria{PriceMax: priceMax}
}

// Match reports whether p satisfies every predicate of c.
func (c Criteria) Match(p domain.Product) bool {
	if c.Category != "" && p.Category != c.Category {
		return false
	}
	if c.Brand != "" && p.Brand != c.Brand {
		return false
	}
	if p.Price < c.PriceMin {
		return false
	}
	if c.PriceMax > 0 && p.Price > c.PriceMax {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(c.Search)); term != "" {
		return containsFold(term, p.Name, p.Description, p.Brand, p.Category)
	}
	return true
}

func containsFold(term string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Filter returns the products matching c, preserving input order.
func Filter(products []domain.Product, c Criteria) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if c.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a stably sorted copy. Names are compared with Spanish
// collation; an unknown key leaves the order unchanged.
func Sort(products []domain.Product, key SortKey) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortNameAsc:
		col := newCollator()
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}

// Query filters then sorts.
func Query(products []domain.Product, c Criteria, key SortKey) []domain.Product {
	return Sort(Filter(products, c), key)
}

// Facets summarizes the filterable attributes of a product list.
type Facets struct {
	Categories []string `json:"categorias"`
	Brands     []string `json:"marcas"`
	PriceMax   float64  `json:"precioMaximo"`
}

// FacetsOf returns the sorted distinct categories and brands and the ceiling
// of the highest price (0 for an empty list).
func FacetsOf(products []domain.Product) Facets {
	cats := make(map[string]struct{})
	brands := make(map[string]struct{})
	top := 0.0
	for _, p := range products {
		if p.Category != "" {
			cats[p.Category] = struct{}{}
		}
		if p.Brand != "" {
			brands[p.Brand] = struct{}{}
		}
		if p.Price > top {
			top = p.Price
		}
	}

	col := newCollator()
	f := Facets{
		Categories: keys(cats),
		Brands:     keys(brands),
		PriceMax:   math.Ceil(top),
	}
	col.SortStrings(f.Categories)
	col.SortStrings(f.Brands)
	return f
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// Latest returns up to n products, newest release first.
func Latest(products []domain.Product, n int) []domain.Product {
	out := make([]domain.Product, len(products))
	copy(out, products)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ReleasedAt.After(out[j].ReleasedAt.Time)
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// newCollator builds a case-insensitive Spanish collator. Collators are not
// safe for concurrent use, so each call gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.Spanish, collate.IgnoreCase)
}

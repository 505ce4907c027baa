package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

const (
	opAdminToggleUser = "admin.toggle_user"
	opAdminEdit       = "admin.edit_product"
	opAdminDelete     = "admin.delete_product"
)

// Editable product fields, keyed by their stored JSON names.
const (
	fieldName        = "nombre"
	fieldBrand       = "marca"
	fieldCategory    = "categoria"
	fieldDescription = "descripcion"
	fieldPrice       = "precio"
	fieldStock       = "stock"
	fieldImages      = "listaImagenes"
	fieldReleased    = "fechaLanzamiento"
)

// AdminService implements the catalog and account mutators. Role checks are
// done by the HTTP layer.
type AdminService struct {
	users    ports.UserRepository
	products ports.ProductRepository
	uploader ports.ImageUploader
	txn      *Txn
	rec      ports.Recorder
	clock    func() time.Time
	log      zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	products ports.ProductRepository,
	uploader ports.ImageUploader,
	txn *Txn,
	rec ports.Recorder,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		users:    users,
		products: products,
		uploader: uploader,
		txn:      txn,
		rec:      orNop(rec),
		clock:    time.Now,
		log:      log,
	}
}

func (s *AdminService) Products(ctx context.Context) ([]domain.Product, error) {
	products, _, err := s.products.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

// CreateProduct appends a product with id max+1, defaulting missing fields.
// The image upload happens before the lock is taken.
func (s *AdminService) CreateProduct(ctx context.Context, in ports.NewProductInput) (*domain.Product, error) {
	partial := in.Product
	if in.ImageBase64 != "" {
		if s.uploader == nil {
			s.log.Warn().Msg("image upload requested but no uploader configured")
		} else {
			url, err := s.uploader.Upload(ctx, in.ImageBase64)
			if err != nil {
				return nil, fmt.Errorf("create product: upload image: %w", err)
			}
			partial.Images = append(append([]string{}, partial.Images...), url)
		}
	}

	var created domain.Product
	err := s.txn.Do(func() error {
		products, _, err := s.products.LoadAll(ctx)
		if err != nil {
			return err
		}
		created = domain.NewProduct(domain.NextProductID(products), partial, s.clock())
		return s.products.SaveAll(ctx, append(products, created))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("product_id", created.ID).Str("name", created.Name).Msg("product created")
	return &created, nil
}

// EditProduct applies a partial update. Unknown keys are ignored; numeric
// fields that fail to parse or are negative become 0.
func (s *AdminService) EditProduct(ctx context.Context, id int, edits map[string]any) (*domain.Product, error) {
	var updated domain.Product
	err := s.txn.Do(func() error {
		products, ok, err := s.products.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opAdminEdit, domain.SkipNoProductCollection)
		}
		idx := domain.FindProduct(products, id)
		if idx < 0 {
			return domain.ErrProductNotFound
		}

		p := &products[idx]
		for key, v := range edits {
			if err := s.apply(p, key, v); err != nil {
				return err
			}
		}
		p.Normalize()
		if err := s.products.SaveAll(ctx, products); err != nil {
			return err
		}
		updated = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AdminService) apply(p *domain.Product, key string, v any) error {
	switch key {
	case fieldName:
		p.Name = asString(v)
	case fieldBrand:
		p.Brand = asString(v)
	case fieldCategory:
		p.Category = asString(v)
	case fieldDescription:
		p.Description = asString(v)
	case fieldPrice:
		f, ok := asFloat(v)
		if !ok || f < 0 {
			s.rec.Defaulted(fieldPrice)
			f = 0
		}
		p.Price = domain.Round2(f)
	case fieldStock:
		f, ok := asFloat(v)
		if !ok || f < 0 {
			s.rec.Defaulted(fieldStock)
			f = 0
		}
		p.Stock = int(math.Trunc(f))
	case fieldImages:
		p.Images = asStrings(v)
	case fieldReleased:
		var d domain.Date
		raw, err := json.Marshal(v)
		if err == nil {
			err = d.UnmarshalJSON(raw)
		}
		if err != nil {
			return domain.Invalid("Fecha de lanzamiento no válida")
		}
		p.ReleasedAt = d
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(t, ",", ".")), 64)
		return f, err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return 0, false
	}
}

func asStrings(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, e := range t {
			if s := asString(e); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// DeleteProduct removes a product. Carts, wish-lists and orders that
// reference it are left as they are.
func (s *AdminService) DeleteProduct(ctx context.Context, id int) error {
	return s.txn.Do(func() error {
		products, ok, err := s.products.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opAdminDelete, domain.SkipNoProductCollection)
		}
		idx := domain.FindProduct(products, id)
		if idx < 0 {
			return domain.ErrProductNotFound
		}
		products = append(products[:idx], products[idx+1:]...)
		if err := s.products.SaveAll(ctx, products); err != nil {
			return err
		}
		s.log.Info().Int("product_id", id).Msg("product deleted")
		return nil
	})
}

func (s *AdminService) Users(ctx context.Context) ([]domain.User, error) {
	users, _, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// ToggleUserState flips an account between activado and desactivado.
func (s *AdminService) ToggleUserState(ctx context.Context, id int) (*domain.User, error) {
	var updated domain.User
	err := s.txn.Do(func() error {
		users, ok, err := s.users.LoadAll(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return skip(s.rec, opAdminToggleUser, domain.SkipNoUserCollection)
		}
		idx := domain.FindUser(users, id)
		if idx < 0 {
			return skip(s.rec, opAdminToggleUser, domain.SkipUserNotFound)
		}
		u := &users[idx]
		if u.Enabled() {
			u.State = domain.StateDisabled
		} else {
			u.State = domain.StateEnabled
		}
		if err := s.users.SaveAll(ctx, users); err != nil {
			return err
		}
		updated = *u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("user_id", id).Str("state", updated.State).Msg("user state toggled")
	return &updated, nil
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kompu/storefront/internal/core/domain"
	"github.com/kompu/storefront/internal/core/ports"
)

type stubUploader struct {
	calls int
}

func (u *stubUploader) Upload(_ context.Context, _ string) (string, error) {
	u.calls++
	return "https://cdn.example.com/p.png", nil
}

func TestAdminService_CreateProduct(t *testing.T) {
	f := newFixture(t)
	up := &stubUploader{}
	f.admin.uploader = up

	p, err := f.admin.CreateProduct(context.Background(), ports.NewProductInput{
		Product:     domain.Product{Name: "Teclado", Price: 45},
		ImageBase64: "data:image/png;base64,AAAA",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 4 || p.Brand != domain.DefaultProductBrand || p.Category != domain.DefaultProductCategory {
		t.Fatalf("unexpected product %+v", p)
	}
	if !p.ReleasedAt.Equal(fixedNow) || len(p.Reviews) != 0 {
		t.Fatalf("unexpected defaults %+v", p)
	}
	if up.calls != 1 || len(p.Images) != 1 || p.Images[0] != "https://cdn.example.com/p.png" {
		t.Fatalf("expected uploaded image, got %v", p.Images)
	}
	if len(f.products.items()) != 4 {
		t.Fatalf("expected product stored")
	}
}

func TestAdminService_CreateProduct_EmptyCatalog(t *testing.T) {
	f := newFixture(t)
	f.products.present = false

	p, err := f.admin.CreateProduct(context.Background(), ports.NewProductInput{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID != 1 || p.Name != domain.DefaultProductName {
		t.Fatalf("unexpected product %+v", p)
	}
}

func TestAdminService_EditProduct(t *testing.T) {
	f := newFixture(t)

	p, err := f.admin.EditProduct(context.Background(), 2, map[string]any{
		"nombre":           " Ratón Pro ",
		"precio":           "24,5",
		"stock":            -3.0,
		"listaImagenes":    []any{"a.jpg", "", "b.jpg"},
		"fechaLanzamiento": "2024-05-01",
		"desconocido":      true,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if p.Name != "Ratón Pro" || p.Price != 24.5 || p.Stock != 0 {
		t.Fatalf("unexpected product %+v", p)
	}
	if len(p.Images) != 2 || p.ReleasedAt.Month() != 5 {
		t.Fatalf("unexpected images/date %+v", p)
	}
	if len(f.rec.defaulted) != 1 || f.rec.defaulted[0] != "stock" {
		t.Fatalf("expected stock default recorded, got %v", f.rec.defaulted)
	}
	if f.product(2).Brand != "Logitech" {
		t.Fatalf("untouched fields must be kept")
	}
}

func TestAdminService_EditProduct_BadPrice(t *testing.T) {
	f := newFixture(t)

	p, err := f.admin.EditProduct(context.Background(), 1, map[string]any{"precio": "gratis"})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if p.Price != 0 {
		t.Fatalf("expected price 0, got %v", p.Price)
	}
}

func TestAdminService_EditProduct_NotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.admin.EditProduct(context.Background(), 9, map[string]any{"nombre": "x"}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAdminService_DeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.admin.DeleteProduct(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.products.items()) != 2 {
		t.Fatalf("expected 2 products left")
	}
	if err := f.admin.DeleteProduct(ctx, 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAdminService_ToggleUserState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.admin.ToggleUserState(ctx, 1)
	if err != nil || u.State != domain.StateDisabled {
		t.Fatalf("toggle: %v %+v", err, u)
	}
	u, err = f.admin.ToggleUserState(ctx, 1)
	if err != nil || u.State != domain.StateEnabled {
		t.Fatalf("toggle back: %v %+v", err, u)
	}

	_, err = f.admin.ToggleUserState(ctx, 50)
	assertSkip(t, err, domain.SkipUserNotFound)
}

func TestReviewService_Submit(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()

	p, err := f.reviews.Submit(ctx, 1, 4, "  Muy bueno ")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(p.Reviews) != 1 || *p.Reviews[0].Comment != "Muy bueno" || p.AverageRating() != 4 {
		t.Fatalf("unexpected reviews %+v", p.Reviews)
	}

	if _, err := f.reviews.Submit(ctx, 1, 2, ""); !errors.Is(err, domain.ErrDuplicateReview) {
		t.Fatalf("expected ErrDuplicateReview, got %v", err)
	}

	f.login(2)
	p, err = f.reviews.Submit(ctx, 1, 1, "   ")
	if err != nil {
		t.Fatalf("second reviewer: %v", err)
	}
	if p.Reviews[1].Comment != nil || p.AverageRating() != 2.5 {
		t.Fatalf("unexpected second review %+v", p.Reviews[1])
	}
}

func TestReviewService_Validation(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()

	for _, rating := range []int{0, 6, -1} {
		if _, err := f.reviews.Submit(ctx, 1, rating, ""); !errors.Is(err, domain.ErrInvalidRating) {
			t.Fatalf("rating %d: expected ErrInvalidRating, got %v", rating, err)
		}
	}
	if _, err := f.reviews.Submit(ctx, 99, 3, ""); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProfileService_Update(t *testing.T) {
	f := newFixture(t)
	f.login(1)
	ctx := context.Background()

	u, err := f.profile.Update(ctx, ports.ProfileInput{Name: "Ana María", Phone: "611111111", Address: "Calle Luna 4"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Name != "Ana María" || f.user(1).Address != "Calle Luna 4" || f.user(1).Email != "ana@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	var ve *domain.ValidationError
	if _, err := f.profile.Update(ctx, ports.ProfileInput{Name: "Ana"}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// Package seed provides the static catalog and user snapshots used to
// populate an empty store.
package seed

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kompu/storefront/internal/core/domain"
)

const (
	ProductsFile = "productos.json"
	UsersFile    = "usuarios.json"
)

//go:embed data/*.json
var embedded embed.FS

// Source reads seed snapshots from, in order of preference, a base URL, a
// directory or the files built into the binary.
type Source struct {
	baseURL string
	files   fs.FS
	client  *http.Client
}

// Option customizes a Source.
type Option func(*Source)

// WithDir reads the snapshots from dir instead of the embedded copies.
func WithDir(dir string) Option {
	return func(s *Source) {
		if dir != "" {
			s.files = os.DirFS(dir)
		}
	}
}

// WithBaseURL fetches <url>/productos.json and <url>/usuarios.json.
func WithBaseURL(url string) Option {
	return func(s *Source) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

func NewSource(opts ...Option) *Source {
	sub, _ := fs.Sub(embedded, "data")
	s := &Source{files: sub, client: &http.Client{Timeout: 10 * time.Second}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) Products(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := s.load(ctx, ProductsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Users returns the seed accounts with plain-text passwords; they are
// encoded on ingest.
func (s *Source) Users(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	if err := s.load(ctx, UsersFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) load(ctx context.Context, name string, v any) error {
	raw, err := s.read(ctx, name)
	if err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("seed %s: decode: %w", name, err)
	}
	return nil
}

func (s *Source) read(ctx context.Context, name string) ([]byte, error) {
	if s.baseURL == "" {
		return fs.ReadFile(s.files, name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+name, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

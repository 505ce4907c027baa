// Package app wires configuration, backends, services and the HTTP router
// into a runnable storefront.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/kompu/storefront/internal/api"
	"github.com/kompu/storefront/internal/api/handler"
	"github.com/kompu/storefront/internal/api/metrics"
	"github.com/kompu/storefront/internal/core/ports"
	"github.com/kompu/storefront/internal/core/service"
	"github.com/kompu/storefront/internal/core/token"
	"github.com/kompu/storefront/internal/infrastructure/db/mongo"
	"github.com/kompu/storefront/internal/infrastructure/db/postgres"
	"github.com/kompu/storefront/internal/infrastructure/db/redis"
	"github.com/kompu/storefront/internal/infrastructure/media"
	"github.com/kompu/storefront/internal/infrastructure/notify"
	"github.com/kompu/storefront/internal/infrastructure/payment"
	"github.com/kompu/storefront/internal/infrastructure/pdf"
	"github.com/kompu/storefront/internal/infrastructure/queue"
	"github.com/kompu/storefront/internal/infrastructure/seed"
	"github.com/kompu/storefront/internal/infrastructure/store"
	"github.com/kompu/storefront/internal/pkg/config"
)

// App is a fully wired storefront.
type App struct {
	Echo   *echo.Echo
	Seeder *service.Seeder

	dispatcher *queue.Dispatcher
	closers    []func(context.Context) error
	log        zerolog.Logger
}

// Backend is an opened key-value store plus the resources to release on
// shutdown.
type Backend struct {
	KV      ports.KeyValueStore
	Redis   *goredis.Client
	closers []func(context.Context) error
}

// OpenBackend connects the store backend selected by cfg. A Redis client is
// also opened when the capture guard is enabled.
func OpenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.KV = store.NewMemory()
	case config.BackendRedis:
		if err := b.openRedis(ctx, cfg); err != nil {
			return nil, err
		}
		b.KV = redis.NewStore(b.Redis)
	case config.BackendMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(ctx context.Context) error { return client.Disconnect(ctx) })
		b.KV = mongo.NewStore(db)
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func(context.Context) error {
			pool.Close()
			return nil
		})
		pg := postgres.NewStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.KV = pg
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Redis.Guard && b.Redis == nil {
		if err := b.openRedis(ctx, cfg); err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
	}

	log.Info().Str("backend", cfg.Store.Backend).Bool("redis_guard", b.Redis != nil).Msg("store backend ready")
	return b, nil
}

func (b *Backend) openRedis(ctx context.Context, cfg *config.Config) error {
	client, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	b.Redis = client
	b.closers = append(b.closers, func(context.Context) error { return client.Close() })
	return nil
}

// Close releases every connection in reverse opening order.
func (b *Backend) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Repositories are the per-entity views over one backend.
type Repositories struct {
	Users     *store.UserRepository
	Products  *store.ProductRepository
	Orders    *store.OrderRepository
	Checkouts *store.CheckoutRepository
	Tokens    *store.TokenStore
}

func NewRepositories(kv ports.KeyValueStore, prefix string) Repositories {
	acc := store.NewAccessor(kv, prefix)
	return Repositories{
		Users:     store.NewUserRepository(acc),
		Products:  store.NewProductRepository(acc),
		Orders:    store.NewOrderRepository(acc),
		Checkouts: store.NewCheckoutRepository(acc),
		Tokens:    store.NewTokenStore(acc),
	}
}

// NewSeeder builds the seeder over repos using the configured snapshots.
func NewSeeder(cfg *config.Config, repos Repositories, txn *service.Txn, log zerolog.Logger) *service.Seeder {
	source := seed.NewSource(seed.WithDir(cfg.Seed.Dir), seed.WithBaseURL(cfg.Seed.BaseURL))
	hasher := service.NewPasswordHasher(cfg.Token.PasswordScheme)
	return service.NewSeeder(repos.Products, repos.Users, repos.Orders, source, hasher, txn, log)
}

// New wires the storefront over an opened backend. The returned App owns the
// backend and closes it in Close.
func New(cfg *config.Config, backend *Backend, log zerolog.Logger) (*App, error) {
	repos := NewRepositories(backend.KV, cfg.Store.Prefix)
	txn := service.NewTxn()
	rec := metrics.Recorder{}

	notifier, err := newNotifier(cfg, log)
	if err != nil {
		return nil, err
	}
	dispatcher := queue.NewDispatcher(cfg.Mail.Workers, notifier, metrics.QueueObserver{}, log)

	var uploader ports.ImageUploader
	if cfg.Media.CloudinaryURL != "" {
		cld, err := media.NewCloudinary(cfg.Media.CloudinaryURL, cfg.Media.Folder)
		if err != nil {
			return nil, err
		}
		uploader = cld
	}

	var guard service.CaptureGuard = store.NewCaptureGuard(cfg.Payment.GuardTTL)
	if backend.Redis != nil {
		guard = redis.NewCaptureGuard(backend.Redis, cfg.Payment.GuardTTL)
	}

	codec := token.NewCodec(cfg.Token.Secret, cfg.Token.TTL, cfg.Token.ResetTTL)
	hasher := service.NewPasswordHasher(cfg.Token.PasswordScheme)
	seeder := NewSeeder(cfg, repos, txn, log)
	resolver := service.NewResolver(repos.Tokens, repos.Users, rec, log)

	mail := service.MailSettings{
		ServiceID:       cfg.Mail.ServiceID,
		PublicKey:       cfg.Mail.PublicKey,
		WelcomeTemplate: cfg.Mail.WelcomeTemplate,
		ResetTemplate:   cfg.Mail.ResetTemplate,
		SiteURL:         cfg.SiteURL,
		LogoURL:         cfg.LogoURL,
	}

	orders := service.NewOrderService(resolver, repos.Users, repos.Products, repos.Orders,
		pdf.NewInvoiceRenderer(cfg.ShopName), txn, rec, log)

	checkout := service.NewCheckoutService(resolver, repos.Products, repos.Checkouts, repos.Orders,
		newGateway(cfg, log), orders, guard, cfg.Payment.Currency, txn, rec, log)
	auth := service.NewAuthService(repos.Users, repos.Tokens, codec, hasher, dispatcher, notifier, mail, txn, rec, log)

	e := api.NewRouter(api.RouterDeps{
		Auth:      auth,
		Profile:   service.NewProfileService(resolver, repos.Users, txn),
		Catalog:   service.NewCatalogService(repos.Products, seeder, log),
		Cart:      service.NewCartService(resolver, repos.Users, repos.Products, txn, rec, log),
		Wishlist:  service.NewWishlistService(resolver, repos.Users, repos.Products, txn, rec),
		Reviews:   service.NewReviewService(resolver, repos.Products, txn, rec, log),
		Orders:    orders,
		Checkout:  checkout,
		Admin:     service.NewAdminService(repos.Users, repos.Products, uploader, txn, rec, log),
		Resolver:  resolver,
		Readiness: map[string]handler.Pinger{"store": backend.KV},
		AuthRate:  cfg.RateLimit.AuthRPS,
		AuthBurst: cfg.RateLimit.AuthBurst,
		Log:       log,
	})

	return &App{
		Echo:       e,
		Seeder:     seeder,
		dispatcher: dispatcher,
		closers:    []func(context.Context) error{backend.Close},
		log:        log,
	}, nil
}

// Start seeds absent collections and starts the notification workers. The
// workers stop when ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	report, err := a.Seeder.Seed(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	a.log.Info().
		Bool("products", report.Products).
		Bool("users", report.Users).
		Bool("orders", report.Orders).
		Msg("seed complete")

	a.dispatcher.Start(ctx)
	return nil
}

// Close waits until queued notifications are delivered and releases the backend.
// Cancel the Start context first.
func (a *App) Close(ctx context.Context) error {
	a.dispatcher.Wait()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}

func newNotifier(cfg *config.Config, log zerolog.Logger) (ports.Notifier, error) {
	switch cfg.Mail.Provider {
	case "emailjs":
		return notify.NewEmailJS(notify.EmailJSEndpoint, cfg.Mail.PrivateKey, cfg.Mail.Timeout), nil
	case "smtp":
		if cfg.Mail.SMTPHost == "" {
			return nil, errors.New("SMTP_HOST is required for the smtp mail provider")
		}
		return notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
			From:     cfg.Mail.SMTPFrom,
		}), nil
	default:
		return notify.NewLog(log), nil
	}
}

func newGateway(cfg *config.Config, log zerolog.Logger) ports.PaymentGateway {
	if cfg.Payment.Provider == "paypal" {
		return payment.NewPayPal(payment.PayPalConfig{
			BaseURL:      cfg.Payment.PayPalURL,
			ClientID:     cfg.Payment.ClientID,
			ClientSecret: cfg.Payment.ClientSecret,
			Timeout:      cfg.Payment.Timeout,
		}, log)
	}
	return payment.NewSandbox(log)
}

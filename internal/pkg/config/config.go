package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	SiteURL  string `env:"SITE_URL,  default=http://localhost:8080"`
	LogoURL  string `env:"LOGO_URL"`
	ShopName string `env:"SHOP_NAME, default=Kompu"`

	Token     TokenConfig
	Store     StoreConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Postgres  PostgresConfig
	Seed      SeedConfig
	Payment   PaymentConfig
	Mail      MailConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
}

type TokenConfig struct {
	Secret   string        `env:"TOKEN_SECRET,    default=kompu-secret"`
	TTL      time.Duration `env:"TOKEN_TTL,       default=24h"`
	ResetTTL time.Duration `env:"TOKEN_RESET_TTL, default=1h"`
	// PasswordScheme is "base64" (compatible with seeded data) or "bcrypt".
	PasswordScheme string `env:"PASSWORD_SCHEME, default=base64"`
}

type StoreConfig struct {
	Backend string `env:"STORE_BACKEND, default=memory"`
	Prefix  string `env:"STORE_PREFIX"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
	// Guard enables the Redis capture guard even when Redis is not the store.
	Guard bool `env:"REDIS_CAPTURE_GUARD, default=false"`
}

type PostgresConfig struct {
	URL      string `env:"DATABASE_URL, default=postgres://localhost:5432/storefront"`
	MaxConns int32  `env:"DATABASE_MAX_CONNS, default=10"`
}

type SeedConfig struct {
	Dir     string `env:"SEED_DIR"`
	BaseURL string `env:"SEED_BASE_URL"`
}

type PaymentConfig struct {
	// Provider is "sandbox" or "paypal".
	Provider     string        `env:"PAYMENT_PROVIDER,      default=sandbox"`
	Currency     string        `env:"PAYMENT_CURRENCY,      default=EUR"`
	PayPalURL    string        `env:"PAYPAL_BASE_URL,       default=https://api-m.sandbox.paypal.com"`
	ClientID     string        `env:"PAYPAL_CLIENT_ID"`
	ClientSecret string        `env:"PAYPAL_CLIENT_SECRET"`
	Timeout      time.Duration `env:"PAYMENT_TIMEOUT,       default=15s"`
	GuardTTL     time.Duration `env:"PAYMENT_GUARD_TTL,     default=10m"`
}

type MailConfig struct {
	// Provider is "log", "emailjs" or "smtp".
	Provider        string        `env:"MAIL_PROVIDER,         default=log"`
	Workers         int           `env:"MAIL_WORKERS,          default=2"`
	ServiceID       string        `env:"EMAILJS_SERVICE_ID"`
	PublicKey       string        `env:"EMAILJS_PUBLIC_KEY"`
	PrivateKey      string        `env:"EMAILJS_PRIVATE_KEY"`
	WelcomeTemplate string        `env:"EMAILJS_WELCOME_TEMPLATE, default=template_bienvenida"`
	ResetTemplate   string        `env:"EMAILJS_RESET_TEMPLATE,   default=template_restablecer"`
	Timeout         time.Duration `env:"MAIL_TIMEOUT,          default=10s"`
	SMTPHost        string        `env:"SMTP_HOST"`
	SMTPPort        int           `env:"SMTP_PORT,             default=587"`
	SMTPUsername    string        `env:"SMTP_USERNAME"`
	SMTPPassword    string        `env:"SMTP_PASSWORD"`
	SMTPFrom        string        `env:"SMTP_FROM,             default=no-reply@kompu.es"`
}

type MediaConfig struct {
	CloudinaryURL string `env:"CLOUDINARY_URL"`
	Folder        string `env:"CLOUDINARY_FOLDER, default=kompu/productos"`
}

type RateLimitConfig struct {
	AuthRPS   float64 `env:"AUTH_RATE_LIMIT_RPS,   default=5"`
	AuthBurst int     `env:"AUTH_RATE_LIMIT_BURST, default=10"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom reads configuration through l and validates the selected
// backends.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendRedis, BackendMongo, BackendPostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	switch c.Payment.Provider {
	case "sandbox":
	case "paypal":
		if c.Payment.ClientID == "" || c.Payment.ClientSecret == "" {
			return fmt.Errorf("PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET are required for the paypal provider")
		}
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.Payment.Provider)
	}
	switch c.Mail.Provider {
	case "log", "emailjs", "smtp":
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
	}
	return nil
}

// Development reports whether ENV selects the development profile.
func (c *Config) Development() bool {
	return c.Env == "development"
}

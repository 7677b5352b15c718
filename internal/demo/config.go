package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

const (
	NonceStoreMemory = "memory"
	NonceStoreRedis  = "redis"
	NonceStoreSQLite = "sqlite"
)

// Config holds the demo's settings. The IDKIT_ variables are shared with
// idctl.
type Config struct {
	BaseURL         string `env:"IDKIT_BASE_URL,required" validate:"url"`
	APIKeyID        string `env:"IDKIT_API_KEY_ID,required" validate:"required"`
	APIKeySecret    string `env:"IDKIT_API_KEY_SECRET,required" validate:"required"`
	ApplicationHref string `env:"IDKIT_APPLICATION_HREF,required" validate:"url"`

	// IDSiteURL is where the hosted login page lives. Defaults to BaseURL.
	IDSiteURL string `env:"IDKIT_IDSITE_URL" validate:"omitempty,url"`

	// PublicURL is this app's externally visible base, used for the
	// callback URI.
	PublicURL string `env:"DEMO_PUBLIC_URL" envDefault:"http://localhost:3000" validate:"url"`
	Port      int    `env:"DEMO_PORT" envDefault:"3000" validate:"min=1,max=65535"`

	NonceStore        string        `env:"DEMO_NONCE_STORE" envDefault:"memory" validate:"oneof=memory redis sqlite"`
	RedisURL          string        `env:"DEMO_REDIS_URL" validate:"required_if=NonceStore redis"`
	NonceDatabaseFile string        `env:"DEMO_NONCE_DATABASE_FILE" envDefault:"nonces.db"`
	NonceTTL          time.Duration `env:"DEMO_NONCE_TTL" envDefault:"1h" validate:"gt=0"`

	SessionTTL  time.Duration `env:"DEMO_SESSION_TTL" envDefault:"12h" validate:"gt=0"`
	TokenScopes []string      `env:"DEMO_TOKEN_SCOPES" envSeparator:"," envDefault:"profile:read"`

	// ShowResetLinks renders the reset link after /forgot instead of
	// relying on mail delivery. For local development against idstub.
	ShowResetLinks bool `env:"DEMO_SHOW_RESET_LINKS"`

	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json text"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// Credentials is the tenant API key.
func (c Config) Credentials() idsdk.Credentials {
	return idsdk.Credentials{ID: c.APIKeyID, Secret: c.APIKeySecret}
}

func (c Config) idSiteURL() string {
	if c.IDSiteURL != "" {
		return c.IDSiteURL
	}
	return c.BaseURL
}

func (c Config) callbackURI() string {
	return strings.TrimRight(c.PublicURL, "/") + "/idsite/callback"
}

// Validate checks field constraints.
func (c Config) Validate() error {
	return validator.New(validator.WithRequiredStructEnabled()).Struct(c)
}

// LoadConfig parses and validates the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/caarlos0/env/v10"
)

// Config is read from IDSTUB_ prefixed environment variables.
type Config struct {
	// Tenant API key. Every /v1 call authenticates with it and ID Site
	// messages are signed with its secret.
	TenantKeyID     string `env:"TENANT_KEY_ID,required"`
	TenantKeySecret string `env:"TENANT_KEY_SECRET,required"`

	// PublicURL is the base of every href. Derived per request when empty.
	PublicURL string `env:"PUBLIC_URL"`

	BootstrapToken string `env:"BOOTSTRAP_TOKEN"` // empty disables /v1/bootstrap
	DatabaseFile   string `env:"DATABASE_FILE" envDefault:"idstub.db"`
	PepperFile     string `env:"PEPPER_FILE" envDefault:"pepper"`
	MasterKeyPath  string `env:"MASTER_KEY_PATH"` // API key secret encryption key

	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"24h"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// Tenant returns the tenant credentials.
func (c Config) Tenant() idsdk.Credentials {
	return idsdk.Credentials{ID: c.TenantKeyID, Secret: c.TenantKeySecret}
}

// LoadConfig parses the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "IDSTUB_"}); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.ResetTokenTTL <= 0 {
		return Config{}, errors.New("reset token ttl must be positive")
	}
	return cfg, nil
}

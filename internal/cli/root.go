// Package cli implements idctl, a command line client for the identity
// service built on the idkit SDK.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
)

// Version is injected during build.
var Version = "dev"

// Config is read from the same IDKIT_ variables the demo uses. Flags
// override it.
type Config struct {
	BaseURL         string `env:"IDKIT_BASE_URL" validate:"required,url"`
	APIKeyID        string `env:"IDKIT_API_KEY_ID" validate:"required"`
	APIKeySecret    string `env:"IDKIT_API_KEY_SECRET" validate:"required"`
	ApplicationHref string `env:"IDKIT_APPLICATION_HREF" validate:"required,url"`
	IDSiteURL       string `env:"IDKIT_IDSITE_URL" validate:"omitempty,url"`

	Timeout time.Duration `env:"IDKIT_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

func (c Config) credentials() idsdk.Credentials {
	return idsdk.Credentials{ID: c.APIKeyID, Secret: c.APIKeySecret}
}

// Option configures the root command.
type Option func(*state)

// WithHTTPClient sets the client used to reach the service.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *state) { s.httpClient = hc }
}

// state is shared by every subcommand of one root command.
type state struct {
	cfg        Config
	envErr     error
	jsonOutput bool
	httpClient *http.Client

	client *idsdk.Client
}

// sdk validates the configuration and returns a client for it.
func (s *state) sdk() (*idsdk.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	if s.envErr != nil {
		return nil, fmt.Errorf("invalid environment: %w", s.envErr)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(s.cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return nil, err
	}

	hc := s.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: s.cfg.Timeout}
	}
	s.client = idsdk.NewClient(s.cfg.BaseURL, s.cfg.credentials(), idsdk.WithHTTPClient(hc))
	return s.client, nil
}

func (s *state) application(ctx context.Context) (*idsdk.Application, error) {
	c, err := s.sdk()
	if err != nil {
		return nil, err
	}
	app, err := c.GetApplication(ctx, s.cfg.ApplicationHref)
	if err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}
	return app, nil
}

// NewRootCmd builds the idctl command tree.
func NewRootCmd(opts ...Option) *cobra.Command {
	s := &state{}
	for _, opt := range opts {
		opt(s)
	}

	// Flag defaults come from the environment. A malformed environment is
	// reported by the first command that needs the service.
	s.envErr = env.Parse(&s.cfg)

	root := &cobra.Command{
		Use:           "idctl",
		Short:         "Manage accounts, API keys and tokens of an identity service application",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&s.cfg.BaseURL, "base-url", s.cfg.BaseURL, "Service base URL ($IDKIT_BASE_URL)")
	pf.StringVar(&s.cfg.APIKeyID, "api-key-id", s.cfg.APIKeyID, "Tenant API key id ($IDKIT_API_KEY_ID)")
	pf.StringVar(&s.cfg.APIKeySecret, "api-key-secret", s.cfg.APIKeySecret, "Tenant API key secret ($IDKIT_API_KEY_SECRET)")
	pf.StringVar(&s.cfg.ApplicationHref, "app", s.cfg.ApplicationHref, "Application href ($IDKIT_APPLICATION_HREF)")
	pf.StringVar(&s.cfg.IDSiteURL, "idsite-url", s.cfg.IDSiteURL, "Hosted login page base URL, defaults to --base-url ($IDKIT_IDSITE_URL)")
	pf.DurationVar(&s.cfg.Timeout, "timeout", s.cfg.Timeout, "Request timeout ($IDKIT_TIMEOUT)")
	pf.BoolVar(&s.jsonOutput, "json", false, "Output results as JSON")

	root.AddCommand(
		newAccountCmd(s),
		newAPIKeyCmd(s),
		newLoginCmd(s),
		newResetCmd(s),
		newTokenCmd(s),
		newIDSiteCmd(s),
		newHealthCmd(s),
	)
	return root
}

// Execute runs idctl with the process arguments.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// printer writes either a JSON document or aligned key/value lines.
type printer struct {
	out  io.Writer
	json bool
}

func (s *state) printer(cmd *cobra.Command) printer {
	return printer{out: cmd.OutOrStdout(), json: s.jsonOutput}
}

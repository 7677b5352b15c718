package cli

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/spf13/cobra"
)

func newAPIKeyCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apikey",
		Aliases: []string{"apikeys", "key"},
		Short:   "Inspect and manage account API keys",
	}
	cmd.AddCommand(newAPIKeyGetCmd(s), newAPIKeyCreateCmd(s), newAPIKeyStatusCmd(s))
	return cmd
}

func newAPIKeyGetCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Look up an API key of the application by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			key, err := app.GetAPIKey(cmd.Context(), args[0], idsdk.WithAccount())
			if err != nil {
				return err
			}
			if key == nil {
				return fmt.Errorf("api key %s not found", args[0])
			}
			return s.printer(cmd).apiKey(key)
		},
	}
}

func newAPIKeyCreateCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "create <account-href>",
		Short: "Create an API key for an account and print its secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.sdk()
			if err != nil {
				return err
			}
			acct, err := c.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			key, err := acct.CreateAPIKey(cmd.Context())
			if err != nil {
				return err
			}
			return s.printer(cmd).apiKey(key)
		},
	}
}

func newAPIKeyStatusCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <ENABLED|DISABLED>",
		Short: "Enable or disable an API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := idsdk.APIKeyStatus(strings.ToUpper(args[1]))
			if status != idsdk.APIKeyStatusEnabled && status != idsdk.APIKeyStatusDisabled {
				return fmt.Errorf("unknown api key status %q", args[1])
			}

			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			key, err := app.GetAPIKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if key == nil {
				return fmt.Errorf("api key %s not found", args[0])
			}
			if err := key.SetStatus(cmd.Context(), status); err != nil {
				return err
			}
			key.Secret = ""
			return s.printer(cmd).apiKey(key)
		},
	}
}

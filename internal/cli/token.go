package cli

import (
	"github.com/aussiebroadwan/idkit/pkg/oauth"
	"github.com/spf13/cobra"
)

func newTokenCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with OAuth access tokens",
	}
	cmd.AddCommand(newTokenVerifyCmd(s))
	return cmd
}

type verifiedToken struct {
	APIKeyID string   `json:"apiKeyId"`
	Scope    []string `json:"scope"`
	Account  string   `json:"account,omitempty"`
}

func newTokenVerifyCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <access-token>",
		Short: "Authenticate an access token the way a resource server would",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			auth, err := oauth.NewResourceRequestAuthenticator(s.cfg.credentials())
			if err != nil {
				return err
			}

			res, err := auth.AuthenticateToken(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}

			out := verifiedToken{APIKeyID: res.APIKey.ID, Scope: res.Scope.Slice()}
			if acct := res.Account(); acct != nil {
				out.Account = acct.Href
			}
			return s.printer(cmd).print(out,
				field{"api key", out.APIKeyID},
				field{"scope", res.Scope.String()},
				field{"account", out.Account},
			)
		},
	}
}

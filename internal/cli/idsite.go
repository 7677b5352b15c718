package cli

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/idkit/pkg/idsite"
	"github.com/spf13/cobra"
)

func newIDSiteCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "idsite",
		Short: "Hosted login page helpers",
	}
	cmd.AddCommand(newIDSiteURLCmd(s))
	return cmd
}

func newIDSiteURLCmd(s *state) *cobra.Command {
	var (
		callback string
		echo     string
		path     string
		org      string
		logout   bool
	)

	cmd := &cobra.Command{
		Use:   "url",
		Short: "Print a signed redirect URL to the hosted login page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := s.sdk(); err != nil {
				return err
			}
			if callback == "" {
				return errors.New("--callback is required")
			}

			base := s.cfg.IDSiteURL
			if base == "" {
				base = s.cfg.BaseURL
			}
			b, err := idsite.NewURLBuilder(base, s.cfg.ApplicationHref, s.cfg.credentials())
			if err != nil {
				return err
			}
			b.SetCallbackURI(callback).SetState(echo).SetPath(path)
			if org != "" {
				b.SetOrganizationNameKey(org)
			}
			if logout {
				b.ForLogout()
			}

			u, err := b.Build()
			if err != nil {
				return err
			}
			if s.jsonOutput {
				return s.printer(cmd).print(map[string]string{"url": u})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), u)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&callback, "callback", "", "Callback URI the hosted page redirects back to")
	f.StringVar(&echo, "state", "", "Opaque state echoed back in the response")
	f.StringVar(&path, "path", "", "Hosted page path, e.g. /#/register")
	f.StringVar(&org, "organization", "", "Organization name key")
	f.BoolVar(&logout, "logout", false, "Build a logout URL")
	return cmd
}

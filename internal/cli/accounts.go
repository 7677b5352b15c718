package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/spf13/cobra"
)

func newAccountCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Inspect and manage accounts",
	}
	cmd.AddCommand(newAccountGetCmd(s), newAccountCreateCmd(s), newAccountStatusCmd(s))
	return cmd
}

func newAccountGetCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "get <href>",
		Short: "Show an account",
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
			return s.printer(cmd).account(acct)
		},
	}
}

func newAccountCreateCmd(s *state) *cobra.Command {
	var req idsdk.AccountRequest
	var status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account in the application's default store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			req.Status = idsdk.AccountStatus(strings.ToUpper(status))
			acct, err := app.CreateAccount(cmd.Context(), req)
			if err != nil {
				return err
			}
			return s.printer(cmd).account(acct)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.Username, "username", "", "Username")
	f.StringVar(&req.Email, "email", "", "Email address")
	f.StringVar(&req.Password, "password", "", "Initial password")
	f.StringVar(&req.GivenName, "given-name", "", "Given name")
	f.StringVar(&req.Surname, "surname", "", "Surname")
	f.StringVar(&status, "status", "", "ENABLED, DISABLED or UNVERIFIED")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAccountStatusCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:       "set-status <href> <ENABLED|DISABLED|UNVERIFIED>",
		Short:     "Enable or disable an account",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(idsdk.AccountStatusEnabled), string(idsdk.AccountStatusDisabled), string(idsdk.AccountStatusUnverified)},
		RunE: func(cmd *cobra.Command, args []string) error {
			status := idsdk.AccountStatus(strings.ToUpper(args[1]))
			switch status {
			case idsdk.AccountStatusEnabled, idsdk.AccountStatusDisabled, idsdk.AccountStatusUnverified:
			default:
				return fmt.Errorf("unknown account status %q", args[1])
			}

			c, err := s.sdk()
			if err != nil {
				return err
			}
			acct, err := c.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := acct.SetStatus(cmd.Context(), status); err != nil {
				return err
			}
			return s.printer(cmd).account(acct)
		},
	}
}

func newLoginCmd(s *state) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Check a username and password against the application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}

			res, err := app.AuthenticateAccount(cmd.Context(), idsdk.UsernamePasswordRequest{
				Username: args[0],
				Password: password,
			})
			var re *idsdk.ResourceError
			if errors.As(err, &re) && re.Code == idsdk.CodeInvalidLogin {
				return errors.New("invalid username or password")
			}
			if err != nil {
				return err
			}
			return s.printer(cmd).print(res, field{"account", res.Account.Href})
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
)

func newResetCmd(s *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Run the password reset workflow",
	}
	cmd.AddCommand(newResetSendCmd(s), newResetVerifyCmd(s), newResetApplyCmd(s))
	return cmd
}

func newResetSendCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "send <email>",
		Short: "Start a password reset and print the token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			tok, err := app.SendPasswordResetEmail(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}

			var acct string
			if tok.Account != nil {
				acct = tok.Account.Href
			}
			return s.printer(cmd).print(tok,
				field{"token", tok.Token()},
				field{"email", tok.Email},
				field{"account", acct},
			)
		},
	}
}

func newResetVerifyCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a reset token and show its account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			acct, err := app.VerifyPasswordResetToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.printer(cmd).account(acct)
		},
	}
}

func newResetApplyCmd(s *state) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "apply <token>",
		Short: "Consume a reset token and set a new password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := s.application(cmd.Context())
			if err != nil {
				return err
			}
			acct, err := app.ResetPassword(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			return s.printer(cmd).account(acct)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "New password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd(s *state) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the service is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.sdk()
			if err != nil {
				return err
			}
			h, err := c.GetLiveness(cmd.Context())
			if err != nil {
				return err
			}
			return s.printer(cmd).print(h,
				field{"status", h.Status},
				field{"version", h.Version},
				field{"uptime", h.Uptime},
			)
		},
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLoginCmd verifies the configured credentials against the API.
func newLoginCmd(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify Plaud.ai credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := openSession(cmd.Context(), state.cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", state.cfg.Email)
			return nil
		},
	}
}

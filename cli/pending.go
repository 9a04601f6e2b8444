package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Wicz-Cloud/pai-note-exporter/tracker"
)

// newPendingCmd inspects the local tracking file of in-flight
// generation jobs. Works entirely offline.
func newPendingCmd(state *rootState) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show generation jobs that were triggered but not yet confirmed done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs := tracker.New(state.cfg.TrackingFile)
			out := cmd.OutOrStdout()

			if clear {
				if err := jobs.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Cleared pending jobs.")
				return nil
			}

			pending, err := jobs.ListPending(state.cfg.MaxPendingAge)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(out, "No pending generation jobs.")
				return nil
			}
			for _, job := range pending {
				fmt.Fprintf(out, "%s  %s  (triggered %s)\n",
					job.RecordingID, job.Filename,
					job.TriggeredAt.Local().Format(time.RFC1123))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "remove all tracked jobs")
	return cmd
}

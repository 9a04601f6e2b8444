package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Wicz-Cloud/pai-note-exporter/generation"
	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
	"github.com/Wicz-Cloud/pai-note-exporter/tracker"
)

type generateFlags struct {
	limit   int
	force   bool
	wait    bool
	maxWait time.Duration
}

// newGenerateCmd triggers transcription and summary generation for
// recordings that do not have them yet, without exporting anything.
func newGenerateCmd(state *rootState) *cobra.Command {
	flags := generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Trigger AI generation for recordings missing transcripts or summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg
			ctx := cmd.Context()

			client, err := openSession(ctx, cfg)
			if err != nil {
				return err
			}

			recordings, err := client.ListRecordings(ctx, plaud.ListOptions{Limit: flags.limit})
			if err != nil {
				return fmt.Errorf("list recordings: %w", err)
			}

			// Candidates: untranscribed audio files, plus anything that
			// has a transcript but no summary yet.
			var pending []plaud.Recording
			for _, rec := range recordings {
				if flags.force || rec.IsAudioOnly() || (rec.HasTranscription && !rec.HasSummary) {
					pending = append(pending, rec)
				}
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "All recordings already have transcripts and summaries.")
				return nil
			}

			gen := generation.NewService(client, tracker.New(cfg.TrackingFile))
			gen.PollInterval = cfg.PollInterval
			gen.MaxWait = cfg.MaxWait
			if cmd.Flags().Changed("max-wait-time") {
				gen.MaxWait = flags.maxWait
			}

			out := cmd.OutOrStdout()
			var failed int
			for _, rec := range pending {
				if !flags.wait {
					if err := gen.TriggerOnly(ctx, rec, flags.force); err != nil {
						failed++
						fmt.Fprintf(out, "FAIL %s: %v\n", rec.Filename, err)
						continue
					}
					fmt.Fprintf(out, "triggered %s\n", rec.Filename)
					continue
				}

				status, err := gen.EnsureGenerated(ctx, rec, flags.force)
				switch {
				case err == nil && status == plaud.StatusCompleted:
					fmt.Fprintf(out, "done %s\n", rec.Filename)
				case errors.As(err, new(*generation.TimeoutError)):
					fmt.Fprintf(out, "still generating %s\n", rec.Filename)
				case err != nil:
					failed++
					fmt.Fprintf(out, "FAIL %s: %v\n", rec.Filename, err)
				default:
					failed++
					fmt.Fprintf(out, "FAIL %s: status %s\n", rec.Filename, status)
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d generations failed", failed, len(pending))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.limit, "limit", 50, "maximum recordings to list")
	f.BoolVar(&flags.force, "force", false, "re-trigger even when artifacts exist")
	f.BoolVar(&flags.wait, "wait", false, "wait for each generation to finish")
	f.DurationVar(&flags.maxWait, "max-wait-time", generation.DefaultMaxWait, "per-recording wait bound")

	return cmd
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Wicz-Cloud/pai-note-exporter/export"
	"github.com/Wicz-Cloud/pai-note-exporter/generation"
	"github.com/Wicz-Cloud/pai-note-exporter/plaud"
	"github.com/Wicz-Cloud/pai-note-exporter/tracker"
	"github.com/Wicz-Cloud/pai-note-exporter/workflow"
)

type exportFlags struct {
	limit             int
	format            string
	outputDir         string
	includeAudio      bool
	skipTranscription bool
	force             bool
	selectAll         bool
	wait              bool
	maxWait           time.Duration
}

// newExportCmd lists recordings, lets the user pick a subset, and runs
// the export workflow over the selection.
func newExportCmd(state *rootState) *cobra.Command {
	flags := exportFlags{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transcripts, summaries and audio for selected recordings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := state.cfg
			if flags.outputDir != "" {
				cfg.OutputDir = flags.outputDir
			}
			format, err := export.ParseFormat(flags.format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := openSession(ctx, cfg)
			if err != nil {
				return err
			}

			recordings, err := client.ListRecordings(ctx, plaud.ListOptions{Limit: flags.limit})
			if err != nil {
				return fmt.Errorf("list recordings: %w", err)
			}
			if len(recordings) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recordings found.")
				return nil
			}

			selected := recordings
			if !flags.selectAll {
				selected, err = promptSelection(cmd.InOrStdin(), cmd.OutOrStdout(), recordings)
				if err != nil {
					return err
				}
			}

			jobs := tracker.New(cfg.TrackingFile)
			gen := generation.NewService(client, jobs)
			gen.PollInterval = cfg.PollInterval
			gen.MaxWait = cfg.MaxWait
			if cmd.Flags().Changed("max-wait-time") {
				gen.MaxWait = flags.maxWait
			}

			runner := workflow.NewRunner(gen, export.New(client, cfg.OutputDir), workflow.Options{
				Format:            format,
				IncludeAudio:      flags.includeAudio,
				SkipTranscription: flags.skipTranscription,
				Force:             flags.force,
				Wait:              flags.wait,
				Workers:           cfg.Workers,
			})

			report := runner.Run(ctx, selected)
			fmt.Fprintln(cmd.OutOrStdout(), report.Summary())
			if report.Succeeded == 0 && report.Failed > 0 {
				return fmt.Errorf("all %d recordings failed", report.Failed)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&flags.limit, "limit", 50, "maximum recordings to list")
	f.StringVar(&flags.format, "format", "txt", "document format (txt, docx, pdf, srt)")
	f.StringVar(&flags.outputDir, "output-dir", "", "directory for exported files")
	f.BoolVar(&flags.includeAudio, "include-audio", false, "also download original audio")
	f.BoolVar(&flags.skipTranscription, "skip-transcription", false, "skip document export (audio-only runs)")
	f.BoolVar(&flags.force, "force", false, "re-trigger generation even when artifacts exist")
	f.BoolVar(&flags.selectAll, "all", false, "export every listed recording without prompting")
	f.BoolVar(&flags.wait, "wait", true, "wait for triggered generations to finish")
	f.DurationVar(&flags.maxWait, "max-wait-time", generation.DefaultMaxWait, "per-recording wait bound")

	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/speak-o-meter/internal/config"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/monitoring"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/report"
	"github.com/ZanzyTHEbar/speak-o-meter/internal/toolkit"
)

type scoreOptions struct {
	file     string
	duration float64
	format   string
}

func newScoreCmd(configPath *string) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one transcript from a file or stdin",
		Example: `  introscore score --file intro.txt --duration 52
  cat intro.txt | introscore score --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "transcript file (default: stdin)")
	cmd.Flags().Float64VarP(&opts.duration, "duration", "d", 0, "recording length in seconds (default: estimated at 150 WPM)")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text or json")

	return cmd
}

func runScore(ctx context.Context, cfg *config.Config, opts *scoreOptions, stdin io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.format != "text" && opts.format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", opts.format)
	}

	transcript, err := readTranscript(opts.file, stdin)
	if err != nil {
		return err
	}

	logger := monitoring.NewLogger("warn", "console")
	defer func() { _ = logger.Sync() }()

	tk, err := toolkit.Build(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	defer tk.Close()

	scorer, err := tk.NewScorer(ctx)
	if err != nil {
		return err
	}

	var duration *float64
	if opts.duration != 0 {
		duration = &opts.duration
	}

	r, err := scorer.Score(ctx, transcript, duration)
	if err != nil {
		return err
	}

	if opts.format == "json" {
		return report.WriteJSON(out, r)
	}
	return report.WriteText(out, r)
}

func readTranscript(path string, stdin io.Reader) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}
	return string(data), nil
}

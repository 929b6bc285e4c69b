package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"resume-insights/internal/analyses"
	"resume-insights/internal/bootstrap"
	"resume-insights/internal/courses"
	"resume-insights/internal/extract"
	"resume-insights/internal/shared/config"
	"resume-insights/internal/shared/telemetry"
)

type rootOptions struct {
	logLevel string
	pretty   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "analyze",
		Short:         "Run the résumé analysis pipeline on local files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Logs go to stderr so stdout stays machine-readable.
			logger, err := telemetry.NewTo(opts.logLevel, "console", "stderr")
			if err != nil {
				return err
			}
			telemetry.SetLogger(logger)
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			telemetry.Sync()
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "indent JSON output")

	root.AddCommand(newRunCmd(opts), newExtractCmd(opts), newCoursesCmd(opts))
	return root
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		jobRole  string
		password string
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Extract a document and analyze it for a job role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			cfg := config.Load()
			providers, err := bootstrap.BuildProviders(ctx, cfg)
			if err != nil {
				return err
			}
			svc, err := bootstrap.NewAnalysisService(ctx, cfg, providers, analyses.NewMemoryRepo())
			if err != nil {
				return err
			}

			analysis, err := svc.Analyze(ctx, analyses.AnalyzeInput{
				UserID:   "cli",
				FileName: filepath.Base(args[0]),
				MimeHint: filepath.Base(args[0]),
				Password: password,
				JobRole:  jobRole,
				Data:     data,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), analysis, root.pretty)
		},
	}
	cmd.Flags().StringVarP(&jobRole, "role", "r", "", "target job role (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for encrypted PDFs")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall deadline")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the extracted text, sections and metadata of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			doc, err := extract.Extract(cmd.Context(), data, filepath.Base(args[0]), password)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), doc, root.pretty)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for encrypted PDFs")
	return cmd
}

func newCoursesCmd(root *rootOptions) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "courses <skill>...",
		Short: "Recommend learning resources for missing skills",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxResults <= 0 {
				maxResults = courses.DefaultMaxResults
			}
			return writeJSON(cmd.OutOrStdout(), courses.Match(args, maxResults), root.pretty)
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max", "n", courses.DefaultMaxResults, "maximum number of recommendations")
	return cmd
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

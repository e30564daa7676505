// Package commands implements the vcxstrip command line.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/output"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/project"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/version"
	"github.com/willibrandon/vcxstrip/observability"
)

const usageLine = "Usage: vcxstrip <vcxproj_file> [<vcxproj_file> ...]"

// Output formats accepted by --format.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// StripOptions holds the configuration for a vcxstrip run.
type StripOptions struct {
	Platform       string
	Configurations []string
	Solutions      []string
	Verbosity      string
	Format         string
	MetricsFile    string
	TraceExporter  string
	OTLPEndpoint   string
}

// DefaultStripOptions returns options that reproduce the classic Win32 cleanup.
func DefaultStripOptions() *StripOptions {
	tracing := observability.DefaultTracerConfig()
	return &StripOptions{
		Platform:       project.DefaultPlatform,
		Configurations: project.DefaultConfigurations(),
		Verbosity:      "normal",
		Format:         FormatText,
		TraceExporter:  tracing.ExporterType,
		OTLPEndpoint:   tracing.OTLPEndpoint,
	}
}

// Validate checks flag values before any file is touched.
func (o *StripOptions) Validate() error {
	if _, err := output.ParseVerbosity(o.Verbosity); err != nil {
		return err
	}
	if o.Format != FormatText && o.Format != FormatJSON {
		return fmt.Errorf("invalid format %q (expected text or json)", o.Format)
	}
	return observability.ValidateExporterType(o.TraceExporter)
}

// NewRootCommand creates the vcxstrip root command.
func NewRootCommand(console *output.Console) *cobra.Command {
	opts := DefaultStripOptions()

	cmd := &cobra.Command{
		Use:   "vcxstrip <vcxproj_file> [<vcxproj_file> ...]",
		Short: "Remove platform configurations from Visual C++ project files",
		Long: `vcxstrip removes the build configurations of one platform (Win32 by default)
from Visual Studio C++ project files (.vcxproj).

For every file it deletes the ProjectConfiguration declarations, the
Configuration property groups, the PropertySheets import groups and the
item definition groups whose condition names the platform. Files are
rewritten only when something was removed.

Examples:
  vcxstrip app/app.vcxproj lib/lib.vcxproj
  vcxstrip "**/*.vcxproj"
  vcxstrip --solution 11_vs.sln
  vcxstrip --platform ARM64 app.vcxproj`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunStrip(cmd.Context(), console, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Platform, "platform", opts.Platform, "Platform whose configurations are removed")
	cmd.Flags().StringSliceVar(&opts.Configurations, "configuration", opts.Configurations, "Build configurations matched in ProjectConfiguration declarations")
	cmd.Flags().StringArrayVar(&opts.Solutions, "solution", nil, "Solution file (.sln, .slnx) whose C++ projects are processed too (repeatable)")
	cmd.Flags().StringVarP(&opts.Verbosity, "verbosity", "v", opts.Verbosity, "Display verbosity (quiet, normal, detailed, diagnostic)")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format, "Output format (text, json)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write run counters in Prometheus text format to this file")
	cmd.Flags().StringVar(&opts.TraceExporter, "trace-exporter", opts.TraceExporter, "Trace exporter (none, stdout, otlp)")
	cmd.Flags().StringVar(&opts.OTLPEndpoint, "otlp-endpoint", opts.OTLPEndpoint, "OTLP gRPC collector endpoint")

	return cmd
}

// RunStrip processes every project path in args and prints one result line per path
// followed by the number of modified files.
func RunStrip(ctx context.Context, console *output.Console, args []string, opts *StripOptions) error {
	start := time.Now()

	verbosity, err := output.ParseVerbosity(opts.Verbosity)
	if err != nil {
		return err
	}
	console.SetVerbosity(verbosity)

	if len(args) == 0 && len(opts.Solutions) == 0 {
		console.Println(usageLine)
		return ErrNoFiles
	}

	paths := expandArgs(args)
	fromSolutions, err := solutionProjects(opts.Solutions)
	if err != nil {
		return err
	}
	paths = append(paths, fromSolutions...)

	runID := uuid.NewString()
	logger := observability.NewLogger(console.ErrOut(), logLevelFor(verbosity)).
		ForContext("RunId", runID)
	console.Debug("run %s: %d arguments expanded to %d paths", runID, len(args), len(paths))

	tracerConfig := observability.DefaultTracerConfig()
	tracerConfig.ServiceVersion = version.Version
	tracerConfig.ExporterType = opts.TraceExporter
	tracerConfig.OTLPEndpoint = opts.OTLPEndpoint
	tracerConfig.Writer = console.ErrOut()
	tp, err := observability.SetupTracing(ctx, tracerConfig)
	if err != nil {
		return err
	}
	defer func() {
		if err := observability.ShutdownTracing(context.Background(), tp); err != nil {
			logger.Warn("Trace export failed: {Error}", err)
		}
	}()

	ctx, span := observability.StartRunSpan(ctx, runID, opts.Platform, len(paths))
	defer span.End()

	stripper, err := project.NewStripper(project.StripOptions{
		Platform:       opts.Platform,
		Configurations: opts.Configurations,
	}, logger)
	if err != nil {
		return err
	}

	b := &batch{
		console:  console,
		logger:   logger,
		stripper: stripper,
		metrics:  observability.NewRunMetrics(),
		json:     opts.Format == FormatJSON,
		run:      output.NewStripRunOutput(opts.Platform),
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.process(ctx, path)
	}

	if b.json {
		b.run.TotalModified = b.modified
		b.run.ElapsedMs = output.MeasureElapsed(start)
		if err := output.WriteJSON(console.Out(), b.run); err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
	} else {
		console.Println()
		console.Printf("Total files modified: %d\n", b.modified)
	}

	if opts.MetricsFile != "" {
		if err := b.metrics.WriteTextfile(opts.MetricsFile); err != nil {
			return err
		}
	}

	observability.RecordRunTotals(ctx, b.modified, b.failed)
	logger.Info("Processed {Count} paths: {Modified} modified, {Failed} failed", len(paths), b.modified, b.failed)

	if b.failed > 0 {
		return &BatchError{Failed: b.failed, Total: len(paths)}
	}
	return nil
}

// batch accumulates per-file outcomes of one run.
type batch struct {
	console  *output.Console
	logger   observability.Logger
	stripper *project.Stripper
	metrics  *observability.RunMetrics
	json     bool
	run      *output.StripRunOutput

	modified int
	failed   int
}

func (b *batch) process(ctx context.Context, path string) {
	shown := displayPath(path)

	if !isProjectFile(path) {
		b.logger.DebugContext(ctx, "Skipping {Path}: not an existing {Extension} file", shown, project.Extension)
		b.record(output.StripFileResult{Path: shown, Status: output.StatusSkipped})
		if !b.json {
			b.console.Notice("Skipped: %s (not found or not a %s file)", shown, project.Extension)
		}
		return
	}

	result, err := b.stripper.StripFile(ctx, path)
	if err != nil {
		b.failed++
		b.console.Error("failed to process %s: %v", shown, err)
		b.record(output.StripFileResult{Path: shown, Status: output.StatusFailed, Error: err.Error()})
		return
	}

	removed := make(map[string]int, len(result.Removed))
	for _, kind := range project.BlockKinds {
		if n := result.Removed[kind]; n > 0 {
			removed[kind.String()] = n
			b.metrics.RecordBlocks(kind.String(), n)
		}
	}

	if result.Modified {
		b.modified++
		b.record(output.StripFileResult{Path: shown, Status: output.StatusModified, BlocksRemoved: removed})
		if !b.json {
			b.console.Success("Modified: %s", shown)
		}
		return
	}

	b.record(output.StripFileResult{Path: shown, Status: output.StatusUnchanged})
	if !b.json {
		b.console.Info("No changes needed: %s", shown)
	}
}

func (b *batch) record(r output.StripFileResult) {
	b.run.Files = append(b.run.Files, r)
	switch r.Status {
	case output.StatusModified:
		b.metrics.RecordFile(observability.OutcomeModified)
	case output.StatusUnchanged:
		b.metrics.RecordFile(observability.OutcomeUnchanged)
	case output.StatusSkipped:
		b.metrics.RecordFile(observability.OutcomeSkipped)
	case output.StatusFailed:
		b.metrics.RecordFile(observability.OutcomeFailed)
	}
}

// logLevelFor maps console verbosity to the structured log level.
func logLevelFor(v output.Verbosity) observability.LogLevel {
	switch v {
	case output.VerbosityQuiet:
		return observability.ErrorLevel
	case output.VerbosityDetailed:
		return observability.InfoLevel
	case output.VerbosityDiagnostic:
		return observability.DebugLevel
	default:
		return observability.WarnLevel
	}
}

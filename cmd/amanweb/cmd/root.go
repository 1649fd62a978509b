// Package cmd provides the CLI commands for AmanWeb.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	amerrors "github.com/Aman-CERP/amanweb/internal/errors"
	"github.com/Aman-CERP/amanweb/internal/logging"
	"github.com/Aman-CERP/amanweb/internal/profiling"
	"github.com/Aman-CERP/amanweb/pkg/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	debug   bool
	noColor bool
	profile profiling.Options

	loggingCleanup func()
	session        *profiling.Session
}

// NewRootCmd creates the root command for the amanweb CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "amanweb",
		Short: "Query-adaptive web research for local LLMs",
		Long: `AmanWeb researches a question on the web through a self-hosted SearXNG
instance, ranks and filters the hits for the question's domain, fetches the
best pages and assembles a context block for a local Ollama model.

Run 'amanweb search "<question>"' to research from the terminal,
'amanweb serve' to expose the research tools over MCP stdio, or
'amanweb http' to serve the HTTP API for browser front ends.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("amanweb version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging to ~/.amanweb/logs/ and stderr")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	cmd.PersistentFlags().StringVar(&opts.profile.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&opts.profile.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = opts.start
	cmd.PersistentPostRunE = opts.stop

	cmd.AddCommand(newSearchCmd(opts))
	cmd.AddCommand(newAskCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newModelsCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newHTTPCmd(opts))
	cmd.AddCommand(newDoctorCmd(opts))
	cmd.AddCommand(newLogsCmd(opts))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// start sets up logging and profiling. The serve command installs its own
// file-only logger, so nothing here may write to stdout.
func (o *rootOptions) start(cmd *cobra.Command, _ []string) error {
	if cmd.Name() != serveCmdName {
		cfg := logging.DefaultConfig()
		if o.debug {
			cfg = logging.DebugConfig()
		}
		logger, cleanup, err := logging.Setup(cfg)
		if err != nil {
			return fmt.Errorf("failed to setup logging: %w", err)
		}
		o.loggingCleanup = cleanup
		slog.SetDefault(logger)
		if o.debug {
			slog.Info("debug_logging_enabled",
				slog.String("log_file", logging.DefaultLogPath()),
				slog.String("version", version.Version))
		}
	}

	if o.profile.Enabled() {
		session, err := profiling.Start(o.profile)
		if err != nil {
			return err
		}
		o.session = session
	}
	return nil
}

// stop flushes profiles and closes the log file.
func (o *rootOptions) stop(_ *cobra.Command, _ []string) error {
	err := o.session.Stop()
	o.session = nil

	if o.loggingCleanup != nil {
		o.loggingCleanup()
		o.loggingCleanup = nil
	}
	return err
}

// colorDisabled reports whether styling is off by flag or NO_COLOR.
func (o *rootOptions) colorDisabled() bool {
	return o.noColor || os.Getenv("NO_COLOR") != ""
}

// Execute runs the root command with Ctrl+C and SIGTERM canceling the
// command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprint(os.Stderr, formatError(err))
	}
	return err
}

// formatError renders structured errors with their hint and code, and
// anything else as a plain message.
func formatError(err error) string {
	var ae *amerrors.AmanError
	if errors.As(err, &ae) {
		return amerrors.FormatForCLI(err)
	}
	return "Error: " + err.Error() + "\n"
}

// Package cli wires the vcxstrip root command to the process console.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/commands"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/output"
)

var rootCmd *cobra.Command

// Console is the global console for CLI commands
var Console *output.Console

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which is canceled on shutdown
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Initialize console
	Console = output.DefaultConsole()
	rootCmd = commands.NewRootCommand(Console)
}

// SetupVersion configures version information after variables are set
func SetupVersion() {
	rootCmd.SetVersionTemplate(GetFullVersion() + "\n")
	rootCmd.Version = GetVersion()
}

// RootCommand returns the configured root command
func RootCommand() *cobra.Command {
	return rootCmd
}

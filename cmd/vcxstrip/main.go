package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/cli"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/commands"
	"github.com/willibrandon/vcxstrip/cmd/vcxstrip/version"
)

// Build information (set via ldflags during build)
var (
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	if commit != "unknown" {
		version.Commit = commit
	}
	if date != "unknown" {
		version.Date = date
	}
	cli.BuiltBy = builtBy

	// Setup version after variables are set
	cli.SetupVersion()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
		os.Exit(130) // 128 + SIGINT
	}()

	os.Exit(exitCode(cli.ExecuteContext(ctx)))
}

// exitCode reports err on stderr and maps it to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	// The usage line is already on stdout.
	if errors.Is(err, commands.ErrNoFiles) {
		return 1
	}
	// Per-file errors were printed as they happened.
	var batchErr *commands.BatchError
	if errors.As(err, &batchErr) {
		return 1
	}
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Verbosity levels
type Verbosity int

const (
	// VerbosityQuiet shows errors and the summary only
	VerbosityQuiet Verbosity = iota
	// VerbosityNormal shows one line per file (default)
	VerbosityNormal
	// VerbosityDetailed shows above + structured progress logs
	VerbosityDetailed
	// VerbosityDiagnostic shows above + per-pass removal counts
	VerbosityDiagnostic
)

var verbosityNames = map[string]Verbosity{
	"quiet":      VerbosityQuiet,
	"q":          VerbosityQuiet,
	"normal":     VerbosityNormal,
	"n":          VerbosityNormal,
	"detailed":   VerbosityDetailed,
	"d":          VerbosityDetailed,
	"diagnostic": VerbosityDiagnostic,
	"diag":       VerbosityDiagnostic,
}

// ParseVerbosity converts a --verbosity value into a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	if v, ok := verbosityNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	return VerbosityNormal, fmt.Errorf("invalid verbosity %q (expected quiet, normal, detailed or diagnostic)", s)
}

// Console provides output abstraction
type Console struct {
	out       io.Writer
	err       io.Writer
	verbosity Verbosity
	mu        sync.Mutex
	colors    bool
}

// NewConsole creates a new console
func NewConsole(out, err io.Writer, verbosity Verbosity) *Console {
	c := &Console{
		out:       out,
		err:       err,
		verbosity: verbosity,
		colors:    IsColorEnabled(out),
	}

	if !c.colors {
		DisableColors()
	}

	return c
}

// DefaultConsole creates a console with stdout/stderr and normal verbosity
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, os.Stderr, VerbosityNormal)
}

// SetVerbosity sets the verbosity level
func (c *Console) SetVerbosity(v Verbosity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verbosity = v
}

// GetVerbosity returns the current verbosity level
func (c *Console) GetVerbosity() Verbosity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.verbosity
}

// SetColors enables or disables color output
func (c *Console) SetColors(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colors = enabled
	if enabled {
		EnableColors()
	} else {
		DisableColors()
	}
}

// Out returns the writer used for regular output
func (c *Console) Out() io.Writer {
	return c.out
}

// ErrOut returns the writer used for errors and logs
func (c *Console) ErrOut() io.Writer {
	return c.err
}

// Println writes line to output
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

// Printf writes formatted output
func (c *Console) Printf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, a...)
}

// Success writes success message (green)
func (c *Console) Success(format string, a ...any) {
	c.status(ColorSuccess, format, a...)
}

// Info writes info message (cyan)
func (c *Console) Info(format string, a ...any) {
	c.status(ColorInfo, format, a...)
}

// Notice writes a message that needs attention but is not an error (yellow)
func (c *Console) Notice(format string, a ...any) {
	c.status(ColorWarning, format, a...)
}

func (c *Console) status(col *color.Color, format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verbosity < VerbosityNormal {
		return
	}
	if c.colors {
		col.Fprintf(c.out, format+"\n", a...)
	} else {
		fmt.Fprintf(c.out, format+"\n", a...)
	}
}

// Error writes error message (red)
func (c *Console) Error(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.colors {
		ColorError.Fprintf(c.err, "Error: "+format+"\n", a...)
	} else {
		fmt.Fprintf(c.err, "Error: "+format+"\n", a...)
	}
}

// Debug writes debug message (white)
func (c *Console) Debug(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.verbosity < VerbosityDiagnostic {
		return
	}
	if c.colors {
		ColorDebug.Fprintf(c.err, "[DEBUG] "+format+"\n", a...)
	} else {
		fmt.Fprintf(c.err, "[DEBUG] "+format+"\n", a...)
	}
}

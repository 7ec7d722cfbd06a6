// Package presenter renders user-facing CLI output: status lines, section
// headers and aligned tables, colored when the terminal allows it.
package presenter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// ColorEnv selects the color mode: always/force, never/off or auto
const ColorEnv = "CHATCMD_COLOR"

// ColorMode represents different color output modes
type ColorMode int

const (
	// ColorAuto lets the color package detect terminal support
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output
	ColorAlways
	// ColorNever disables colored output
	ColorNever
)

// Presenter is the CLI output surface
type Presenter interface {
	Error(err error, context string)
	Success(message string)
	Warning(message string)
	Info(message string)
	Section(title string)
	Field(name, value string)
	Table(headers []string, rows [][]string)
	Separator()
	SetQuiet(quiet bool)
	IsQuiet() bool
}

// TerminalPresenter writes to a pair of terminal streams
type TerminalPresenter struct {
	output      io.Writer
	errorOutput io.Writer
	quiet       bool
}

// New creates a presenter on stdout/stderr using the color mode from the
// environment
func New() *TerminalPresenter {
	return NewWithOptions(os.Stdout, os.Stderr, detectColorMode())
}

// NewForWriters creates a presenter on the given streams using the color
// mode from the environment
func NewForWriters(output, errorOutput io.Writer) *TerminalPresenter {
	return NewWithOptions(output, errorOutput, detectColorMode())
}

// NewWithOptions creates a presenter with explicit streams and color mode
func NewWithOptions(output, errorOutput io.Writer, colorMode ColorMode) *TerminalPresenter {
	switch colorMode {
	case ColorAlways:
		color.NoColor = false
	case ColorNever:
		color.NoColor = true
	}
	return &TerminalPresenter{output: output, errorOutput: errorOutput}
}

func detectColorMode() ColorMode {
	if os.Getenv("NO_COLOR") != "" {
		return ColorNever
	}
	switch strings.ToLower(os.Getenv(ColorEnv)) {
	case "always", "force":
		return ColorAlways
	case "never", "off":
		return ColorNever
	default:
		return ColorAuto
	}
}

// Error writes an error to the error stream. Errors are shown in quiet mode.
func (p *TerminalPresenter) Error(err error, context string) {
	if err == nil {
		return
	}
	errorColor := color.New(color.FgRed, color.Bold)
	if context != "" {
		errorColor.Fprintf(p.errorOutput, "[ERROR] %s: %v\n", context, err)
		return
	}
	errorColor.Fprintf(p.errorOutput, "[ERROR] %v\n", err)
}

// Success writes a success line
func (p *TerminalPresenter) Success(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgGreen, color.Bold).Fprintf(p.output, "✓ %s\n", message)
}

// Warning writes a warning line
func (p *TerminalPresenter) Warning(message string) {
	if p.quiet {
		return
	}
	color.New(color.FgYellow, color.Bold).Fprintf(p.output, "⚠ %s\n", message)
}

// Info writes a plain line
func (p *TerminalPresenter) Info(message string) {
	if p.quiet {
		return
	}
	fmt.Fprintln(p.output, message)
}

// Section writes an underlined header
func (p *TerminalPresenter) Section(title string) {
	if p.quiet {
		return
	}
	header := color.New(color.Bold)
	header.Fprintf(p.output, "%s\n", title)
	header.Fprintf(p.output, "%s\n", strings.Repeat("-", len(title)))
}

// Field writes a "name: value" line with the name highlighted
func (p *TerminalPresenter) Field(name, value string) {
	if p.quiet {
		return
	}
	color.New(color.FgCyan).Fprintf(p.output, "%s:", name)
	fmt.Fprintf(p.output, " %s\n", value)
}

// Table writes rows aligned under headers
func (p *TerminalPresenter) Table(headers []string, rows [][]string) {
	if p.quiet {
		return
	}
	w := tabwriter.NewWriter(p.output, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(w, strings.Join(headers, "\t"))
		dashes := make([]string, len(headers))
		for i, h := range headers {
			dashes[i] = strings.Repeat("-", len(h))
		}
		fmt.Fprintln(w, strings.Join(dashes, "\t"))
	}
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// Separator writes a horizontal rule
func (p *TerminalPresenter) Separator() {
	if p.quiet {
		return
	}
	color.New(color.Faint).Fprintf(p.output, "%s\n", strings.Repeat("-", 60))
}

// SetQuiet enables or disables quiet mode
func (p *TerminalPresenter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// IsQuiet reports whether quiet mode is enabled
func (p *TerminalPresenter) IsQuiet() bool {
	return p.quiet
}

var defaultPresenter = New()

// Error writes an error with the default presenter
func Error(err error, context string) { defaultPresenter.Error(err, context) }

// Success writes a success line with the default presenter
func Success(message string) { defaultPresenter.Success(message) }

// Warning writes a warning with the default presenter
func Warning(message string) { defaultPresenter.Warning(message) }

// Info writes a plain line with the default presenter
func Info(message string) { defaultPresenter.Info(message) }

// Section writes a header with the default presenter
func Section(title string) { defaultPresenter.Section(title) }

// Field writes a "name: value" line with the default presenter
func Field(name, value string) { defaultPresenter.Field(name, value) }

// Table writes a table with the default presenter
func Table(headers []string, rows [][]string) { defaultPresenter.Table(headers, rows) }

// Separator writes a rule with the default presenter
func Separator() { defaultPresenter.Separator() }

// SetQuiet toggles quiet mode on the default presenter
func SetQuiet(quiet bool) { defaultPresenter.SetQuiet(quiet) }

// IsQuiet reports quiet mode of the default presenter
func IsQuiet() bool { return defaultPresenter.IsQuiet() }

// Package output renders Fastly responses as tab-separated text, JSON, or an
// ASCII chart, and prints styled diagnostics using lipgloss.
package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/fastly-stats/internal/document"
	"golang.org/x/term"
)

var (
	// Styles
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

const defaultTerminalWidth = 80

// OutputMode determines output format
type OutputMode int

const (
	ModeText OutputMode = iota
	ModeJSON
)

func (m OutputMode) String() string {
	if m == ModeJSON {
		return "json"
	}
	return "text"
}

// ParseFormat maps a --format value onto an OutputMode.
func ParseFormat(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return ModeText, nil
	case "json":
		return ModeJSON, nil
	default:
		return ModeText, fmt.Errorf("invalid format %q (use text or json)", s)
	}
}

// Renderer writes command results to Out.
type Renderer struct {
	Out io.Writer
}

// New returns a renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{Out: w}
}

// JSON writes v as compact JSON followed by a newline.
func (r *Renderer) JSON(v document.Value) error {
	data, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.Out, string(data))
	return err
}

// StatsText writes one "<start_time>\t<requests>" line per data point. A
// response without a data array produces no output.
func (r *Renderer) StatsText(v document.Value) error {
	for _, p := range StatsPoints(v) {
		if _, err := fmt.Fprintf(r.Out, "%d\t%d\n", p.StartTime, p.Requests); err != nil {
			return err
		}
	}
	return nil
}

// Stats renders a stats response in the given mode.
func (r *Renderer) Stats(v document.Value, mode OutputMode) error {
	if mode == ModeJSON {
		return r.JSON(v)
	}
	return r.StatsText(v)
}

// Summary renders a summary response. The summary payload has no tabular
// projection, so both modes print the document as JSON.
func (r *Renderer) Summary(v document.Value, mode OutputMode) error {
	return r.JSON(v)
}

// Error writes an error line to w, styled when w is a terminal.
func Error(w io.Writer, format string, args ...any) {
	msg := "Error: " + fmt.Sprintf(format, args...)
	if IsTerminal(w) {
		msg = errorStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

// Warning writes a warning line to w, styled when w is a terminal.
func Warning(w io.Writer, format string, args ...any) {
	msg := "Warning: " + fmt.Sprintf(format, args...)
	if IsTerminal(w) {
		msg = warningStyle.Render(msg)
	}
	fmt.Fprintln(w, msg)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of the terminal behind w, then $COLUMNS,
// then fallback.
func TerminalWidth(w io.Writer, fallback int) int {
	if fallback <= 0 {
		fallback = defaultTerminalWidth
	}

	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

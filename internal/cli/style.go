package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Theme holds the color scheme for command output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Warning: lipgloss.Color("#FFAF00"), // amber
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// printer writes themed lines to w. Styling is dropped when w is not a terminal.
type printer struct {
	w     io.Writer
	theme Theme
	color bool
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w, theme: defaultTheme, color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) status(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.theme.statusStyle(), fmt.Sprintf(format, args...)))
}

func (p *printer) success(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.theme.successStyle(), "✓ "+fmt.Sprintf(format, args...)))
}

func (p *printer) warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.theme.warningStyle(), "! "+fmt.Sprintf(format, args...)))
}

func (p *printer) hint(format string, args ...any) {
	fmt.Fprintln(p.w, p.render(p.theme.hintStyle(), fmt.Sprintf(format, args...)))
}

// printError writes the single-line error message for a failed command.
// Missing files get their own wording; verbose mode adds the wrapped chain.
func (p *printer) printError(err error, verbose bool) {
	fmt.Fprintln(p.w, p.render(p.theme.errorStyle(), errorLine(err)))
	if !verbose {
		return
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintln(p.w, p.render(p.theme.hintStyle(), "  caused by: "+cause.Error()))
	}
}

func errorLine(err error) string {
	if errors.Is(err, fs.ErrNotExist) {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return "Error: file not found - " + pathErr.Path
		}
		return "Error: file not found - " + err.Error()
	}
	return "Error: " + err.Error()
}

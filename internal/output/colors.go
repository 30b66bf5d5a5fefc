package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// palette gives patch-status markers their colors in the log listing.
// Carried over from the teacher's branch-visualization
// palette, repurposed for patch rows instead of branch rows.
var palette = []string{
	"#4ccbf1", // applied / top
	"#4dca7d", // applied
	"#f5c800", // unapplied
	"#f86251", // conflict
	"#9f83e4", // hidden
}

// UseColor reports whether output should be colorized: stdout must be a
// terminal and NO_COLOR must be unset, matching the teacher's IsTTY check.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// Colorize applies the palette color at index to text, or returns text
// unchanged when color is disabled.
func Colorize(text string, index int) string {
	if !UseColor() {
		return text
	}
	c := palette[index%len(palette)]
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(text)
}

// Bold renders text bold when color is enabled.
func Bold(text string) string {
	if !UseColor() {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}

const (
	colorTop      = 0
	colorApplied  = 1
	colorUnapplied = 2
	colorConflict = 3
	colorHidden   = 4
)

package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/idilsaglam/todo/internal/model"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

func visibleWidth(s string) int { return runewidth.StringWidth(stripANSI(s)) }

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel draws a framed box using the current theme.
func Panel(lines []string) {
	t := Current()
	maxw := 0
	for _, ln := range lines {
		if w := visibleWidth(ln); w > maxw {
			maxw = w
		}
	}
	pad := func(s string) string {
		if vis := visibleWidth(s); vis < maxw {
			s = s + strings.Repeat(" ", maxw-vis)
		}
		return s
	}
	fmt.Fprintln(stdout, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(stdout, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(stdout, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}

// TaskLine renders one task as "#id box value", truncating long values.
func TaskLine(task model.Task) string {
	t := Current()
	box, color := t.BoxUnchecked, t.Muted
	if task.Done {
		box, color = t.BoxChecked, t.Success
	}
	value := runewidth.Truncate(task.Value, 80, "...")
	return fmt.Sprintf("%s %s %s", Dim(fmt.Sprintf("#%-3d", task.ID)), C(color, box), value)
}

// Section renders a heading followed by its tasks, or "(none)".
func Section(title string, tasks []model.Task) []string {
	lines := []string{C(Current().Accent, title)}
	if len(tasks) == 0 {
		return append(lines, C(Current().Muted, "(none)"))
	}
	for _, task := range tasks {
		lines = append(lines, TaskLine(task))
	}
	return lines
}

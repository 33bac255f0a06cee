package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/beltwright/pkg/assembler"
)

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // buildings, spinner
	colorGreen  = lipgloss.Color("35")  // verified, cached
	colorYellow = lipgloss.Color("220") // stale hashes, dropped parts
	colorBlue   = lipgloss.Color("75")  // suggested commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // keys
	colorDim    = lipgloss.Color("240") // details
)

var (
	// StyleTitle for table headers and headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for details and separators.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for stale or dropped parts.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	separator   = " · "
)

// stdout receives command output. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Status Lines
// =============================================================================

func emit(icon string, style lipgloss.Style, msg string) {
	fmt.Fprintln(stdout, style.Render(icon)+" "+msg)
}

func printSuccess(format string, args ...any) {
	emit(iconSuccess, styleIconSuccess, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	emit(iconWarning, StyleWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	emit(iconInfo, styleIconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented dim line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path a command wrote.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

func printNewline() {
	fmt.Fprintln(stdout)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// =============================================================================
// Pipeline Summaries
// =============================================================================

// printStats prints circuit size, elapsed time and cache status on one line.
func printStats(nodes, edges int, elapsed time.Duration, cached bool) {
	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d nodes", nodes)),
		StyleDim.Render(fmt.Sprintf("%d edges", edges)),
		StyleDim.Render(elapsed.Round(time.Millisecond).String()),
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		parts = append(parts, StyleDim.Render("fresh"))
	}
	fmt.Fprintln(stdout, "  "+strings.Join(parts, StyleDim.Render(separator)))
}

// printAssembly summarizes the buildings assembly produced and warns about
// parts it dropped.
func printAssembly(a *assembler.Result) {
	if a == nil {
		return
	}
	printDetail("%d buildings%s%d routers%s%d monitors%s%d sorters",
		len(a.Buildings), separator, a.Routers, separator, a.Monitors, separator, a.Sorters)
	if a.DroppedNodes > 0 || a.DroppedEdges > 0 {
		printWarning("Dropped %d unconnected nodes and %d edges", a.DroppedNodes, a.DroppedEdges)
	}
}

// printRewrites lists package address changes ordered by old address.
func printRewrites(rewrites map[string]string) {
	olds := make([]string, 0, len(rewrites))
	for old := range rewrites {
		olds = append(olds, old)
	}
	slices.Sort(olds)
	for _, old := range olds {
		printDetail("%s %s %s", old, iconArrow, rewrites[old])
	}
}

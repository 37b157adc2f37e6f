package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/gdatamvn/pkg/pom"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success, release
	colorYellow = lipgloss.Color("220") // warnings, snapshot
	colorRed    = lipgloss.Color("167") // errors
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	// StyleHighlight for versions and other emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for paths and data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	// modeStyles tag output directories by coordinate set.
	modeStyles = map[pom.Mode]lipgloss.Style{
		pom.Snapshot: lipgloss.NewStyle().Foreground(colorYellow).Width(9),
		pom.Release:  lipgloss.NewStyle().Foreground(colorGreen).Width(9),
	}
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints an output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value with the label padded to a column.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// versionSummary is what the run and poms commands report per version.
type versionSummary struct {
	version   string
	artifacts int
	edges     int
	cached    bool
	dirs      map[pom.Mode]string
}

// printVersion prints one version's mapping stats and descriptor
// directories, snapshot first.
func printVersion(s versionSummary) {
	printSuccess("gdata %s", StyleHighlight.Render(s.version))
	fmt.Println(statsLine(s.artifacts, s.edges, s.cached))
	for _, mode := range pom.Modes {
		if dir, ok := s.dirs[mode]; ok {
			fmt.Println(outputLine(mode, dir))
		}
	}
}

// outputLine renders "  → snapshot  <dir>".
func outputLine(mode pom.Mode, dir string) string {
	return "  " + StyleDim.Render(iconArrow) + " " + modeStyles[mode].Render(mode.String()) + " " + StyleValue.Render(dir)
}

// statsLine renders "<n> artifacts · <m> edges · cached|fresh". Zero counts
// are left out.
func statsLine(artifacts, edges int, cached bool) string {
	var parts []string
	if artifacts > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d artifacts", artifacts)))
	}
	if edges > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edges)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconFresh))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

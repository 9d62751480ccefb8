package cli

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/peerpin/pkg/constraints"
)

// Terminal palette. Numbers are ANSI 256 colors.
var (
	colorAccent  = lipgloss.Color("36")
	colorOK      = lipgloss.Color("35")
	colorWarn    = lipgloss.Color("220")
	colorFail    = lipgloss.Color("167")
	colorCommand = lipgloss.Color("75")
	colorBright  = lipgloss.Color("255")
	colorMuted   = lipgloss.Color("245")
	colorFaint   = lipgloss.Color("240")
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleAccent = lipgloss.NewStyle().Foreground(colorAccent)
	styleDim    = lipgloss.NewStyle().Foreground(colorFaint)
	styleValue  = lipgloss.NewStyle().Foreground(colorBright)
	styleWarn   = lipgloss.NewStyle().Foreground(colorWarn)
	styleOK     = lipgloss.NewStyle().Foreground(colorOK)
	styleFail   = lipgloss.NewStyle().Foreground(colorFail)
	styleMuted  = lipgloss.NewStyle().Foreground(colorMuted)
	styleCmd    = lipgloss.NewStyle().Foreground(colorCommand)
	styleKey    = lipgloss.NewStyle().Foreground(colorMuted).Width(12)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleTableBorder = lipgloss.NewStyle().Foreground(colorFaint)
)

const (
	glyphOK     = "✓"
	glyphFail   = "✗"
	glyphWarn   = "!"
	glyphInfo   = "›"
	glyphArrow  = "→"
	labelCached = "cached"
	labelFresh  = "fresh"
)

// statusLine prints msg behind a colored glyph.
func statusLine(glyph lipgloss.Style, mark, msg string) {
	fmt.Println(glyph.Render(mark) + " " + msg)
}

func printSuccess(format string, args ...any) {
	statusLine(styleOK, glyphOK, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	statusLine(styleFail, glyphFail, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	statusLine(styleWarn, glyphWarn, styleWarn.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	statusLine(styleMuted, glyphInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + styleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a file that was written.
func printFile(path string) {
	fmt.Println("  " + styleDim.Render(glyphArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

// printStats prints "N workspaces · M passes · fresh" below a result.
func printStats(workspaces, passes int, cached bool) {
	var parts []string
	if workspaces > 0 {
		parts = append(parts, styleDim.Render(fmt.Sprintf("%d workspaces", workspaces)))
	}
	if passes > 0 {
		parts = append(parts, styleDim.Render(fmt.Sprintf("%d passes", passes)))
	}
	if cached {
		parts = append(parts, styleOK.Render(labelCached))
	} else {
		parts = append(parts, styleMuted.Render(labelFresh))
	}
	fmt.Println("  " + strings.Join(parts, styleDim.Render(" · ")))
}

// printNextStep suggests the command to run next.
func printNextStep(description, cmd string) {
	fmt.Println(styleDim.Render(description+":") + " " + styleCmd.Render(cmd))
}

func printNewline() {
	fmt.Println()
}

// newTable returns a rounded table whose first column is highlighted.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleTableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleTableHeader
			case col == 0:
				return styleAccent
			default:
				return lipgloss.NewStyle()
			}
		})
}

// mutationTable renders pending changes grouped by workspace.
func mutationTable(muts []constraints.Mutation) string {
	sorted := slices.Clone(muts)
	slices.SortStableFunc(sorted, func(a, b constraints.Mutation) int { return strings.Compare(a.Workspace, b.Workspace) })

	t := newTable("Workspace", "Field", "Value")
	last := ""
	for _, m := range sorted {
		ident := m.Workspace
		if ident == last {
			ident = ""
		}
		last = m.Workspace
		t.Row(ident, strings.Join(m.Path, "."), m.Value)
	}
	return t.Render()
}

// requirementTable renders aggregated peer requirements.
func requirementTable(reqs constraints.Requirements) string {
	t := newTable("Peer", "Range", "Kind", "Requested by")
	for _, name := range reqs.Names() {
		req := reqs[name]
		kind := "optional"
		if req.Required {
			kind = "required"
		}
		var by []string
		for _, dep := range slices.Sorted(maps.Keys(req.RequestedBy)) {
			by = append(by, dep+" "+styleDim.Render(req.RequestedBy[dep]))
		}
		t.Row(name, req.Range, kind, strings.Join(by, "\n"))
	}
	return t.Render()
}

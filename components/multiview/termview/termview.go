// Package termview draws a rendered multiview layout as a terminal grid.
package termview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-multiview/components/multiview"
)

// Options tunes the grid.
type Options struct {
	// CellWidth is the inner width of a one-column panel.
	CellWidth int
	// MaxRows caps table rows printed per panel.
	MaxRows int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Render lays out view.Fragments in view.Layout.Cols columns.
func Render(view multiview.ActiveView, opts Options) string {
	if opts.CellWidth <= 0 {
		opts.CellWidth = 28
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = 4
	}
	cols := view.Layout.Cols
	if cols <= 0 {
		cols = 1
	}

	fragments := append([]multiview.Fragment{}, view.Fragments...)
	sort.SliceStable(fragments, func(i, j int) bool { return fragments[i].Position < fragments[j].Position })

	var rows []string
	var current []string
	used := 0
	for _, frag := range fragments {
		span := frag.ColSpan
		if span <= 0 {
			span = 1
		}
		if span > cols {
			span = cols
		}
		if used+span > cols && len(current) > 0 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current, used = nil, 0
		}
		current = append(current, renderPanel(frag, span, opts))
		used += span
	}
	if len(current) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
	}

	header := headerStyle.Render(fmt.Sprintf("%s  %dx%d", view.Layout.Name, view.Layout.Cols, view.Layout.Rows))
	if view.Layout.Audience != "" {
		header += mutedStyle.Render("audience: " + string(view.Layout.Audience))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header}, rows...)...)
}

func renderPanel(frag multiview.Fragment, span int, opts Options) string {
	width := opts.CellWidth*span + (span-1)*4
	var b strings.Builder
	b.WriteString(titleStyle.Render(frag.Title))

	switch frag.Kind {
	case multiview.FragmentHidden:
		b.WriteString("\n" + mutedStyle.Render("hidden"))
	case multiview.FragmentFallback:
		b.WriteString("\n" + mutedStyle.Render(string(frag.Type)))
	default:
		for _, m := range frag.Metrics {
			line := m.Label + ": " + m.Value
			if m.Trend != "" {
				line += " (" + m.Trend + ")"
			}
			b.WriteString("\n" + line)
		}
		if len(frag.Columns) > 0 {
			b.WriteString("\n" + mutedStyle.Render(strings.Join(frag.Columns, " | ")))
		}
		for i, row := range frag.Rows {
			if i >= opts.MaxRows {
				b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("+%d more", len(frag.Rows)-opts.MaxRows)))
				break
			}
			b.WriteString("\n" + strings.Join(row, " | "))
		}
		if frag.URL != "" {
			b.WriteString("\n" + frag.URL)
		}
		if frag.Message != "" {
			b.WriteString("\n" + mutedStyle.Render(frag.Message))
		}
	}
	return panelStyle.Width(width).Render(b.String())
}

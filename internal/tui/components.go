package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tptin07/blogscout/internal/discovery"
)

// renderHeader draws the app title above the active filters of q.
func renderHeader(title string, q discovery.Query, width int) string {
	return lipgloss.JoinVertical(lipgloss.Top,
		HeaderStyle.Render(truncateEnd(title, width-2)),
		renderFilterBar(q, width),
	)
}

// renderFilterBar shows the category as its badge, then sort and tag.
// The row is clipped to width.
func renderFilterBar(q discovery.Query, width int) string {
	category := renderMuted(string(discovery.CategoryAll))
	if q.Category != discovery.CategoryAll && q.Category != "" {
		category = categoryBadge(string(q.Category))
	}

	parts := []string{category, renderMuted("sort: " + string(q.Sort))}
	if q.Tag != "" {
		parts = append(parts, tagChip(q.Tag))
	}
	row := strings.Join(parts, renderMuted(" • "))
	if width > 2 {
		row = lipgloss.NewStyle().MaxWidth(width - 2).Render(row)
	}
	return row
}

func tagChip(tag string) string {
	return lipgloss.NewStyle().Foreground(AccentColor).Render("#" + tag)
}

// renderInputFrame draws a labelled rounded border around a rendered input.
func renderInputFrame(label, inputView string, focused bool, contentWidth int) string {
	borderColor := MutedColor
	labelView := renderMuted(label)
	if focused {
		borderColor = AccentColor
		labelView = lipgloss.NewStyle().Foreground(AccentColor).Bold(true).Render(label)
	}
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(contentWidth + 4).
		Render(inputView)
	if label == "" {
		return frame
	}
	return lipgloss.JoinVertical(lipgloss.Left, " "+labelView, frame)
}

func renderCentered(width, height int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func renderMuted(text string) string {
	return lipgloss.NewStyle().Foreground(MutedColor).Render(text)
}

func renderHelp(text string) string {
	return HelpStyle.Render(text)
}

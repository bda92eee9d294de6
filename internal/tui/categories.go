package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/tptin07/blogscout/internal/discovery"
)

var classColors = map[discovery.Class]lipgloss.Color{
	discovery.ClassMedicine:   lipgloss.Color("#3B82F6"),
	discovery.ClassSupplement: lipgloss.Color("#22C55E"),
	discovery.ClassNutrition:  lipgloss.Color("#F97316"),
	discovery.ClassWellness:   lipgloss.Color("#06B6D4"),
	discovery.ClassBeauty:     lipgloss.Color("#EC4899"),
	discovery.ClassFamily:     lipgloss.Color("#A855F7"),
}

// categoryStyle returns the badge style for a post's category name.
func categoryStyle(name string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if c, ok := classColors[discovery.CategoryClass(name)]; ok {
		return style.Foreground(BackgroundColor).Background(c)
	}
	return style.Foreground(TextColor).Background(SurfaceColor)
}

func categoryBadge(name string) string {
	if name == "" {
		return ""
	}
	return categoryStyle(name).Render(name)
}

package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/tptin07/blogscout/internal/config"
)

const AppName = "blogscout"

// LogoLines is the canonical ASCII logo
var LogoLines = []string{
	"█▀▄ █   ▄▀▄ ▄▀  ▄▀▀ ▄▀▀ ▄▀▄ █ █ ▀█▀",
	"█▀▄ █   █ █ █ ▄ ▀▄  █   █ █ █ █  █ ",
	"▀▀  ▀▀▀  ▀   ▀▀ ▀▀   ▀▀  ▀   ▀▀  ▀ ",
}

// Banner gradient colors
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#FF6B6B"),
	lipgloss.Color("#FFA86B"),
	lipgloss.Color("#95E1D3"),
	lipgloss.Color("#4ECDC4"),
}

var (
	PrimaryColor   = lipgloss.Color("#FF6B6B")
	SecondaryColor = lipgloss.Color("#4ECDC4")
	AccentColor    = lipgloss.Color("#95E1D3")

	BackgroundColor = lipgloss.Color("#1A1A2E")
	SurfaceColor    = lipgloss.Color("#16213E")
	TextColor       = lipgloss.Color("#EAEAEA")
	MutedColor      = lipgloss.Color("#94A3B8")

	HighlightColor = lipgloss.Color("#FFE66D")
	ErrorColor     = lipgloss.Color("#F87171")
	SuccessColor   = lipgloss.Color("#4ADE80")
)

// Styled components, rebuilt by ApplyTheme
var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	StatusBarStyle     lipgloss.Style
	SelectedItemStyle  lipgloss.Style
	HelpStyle          lipgloss.Style
	TimeStyle          lipgloss.Style
	AddressStyle       lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
	PopularTitleStyle  lipgloss.Style
	EmptyStyle         = lipgloss.NewStyle()
)

func init() {
	buildStyles()
}

// ApplyTheme replaces the palette with configured colors. Empty values keep
// the built-in color.
func ApplyTheme(colors config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, colors.Primary)
	set(&SecondaryColor, colors.Secondary)
	set(&AccentColor, colors.Accent)
	set(&TextColor, colors.Text)
	set(&MutedColor, colors.Muted)
	set(&ErrorColor, colors.Error)
	set(&SuccessColor, colors.Success)
	buildStyles()
}

func buildStyles() {
	LogoStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	TitleStyle = lipgloss.NewStyle().
		Foreground(TextColor).
		Background(SurfaceColor).
		Bold(true).
		Padding(0, 2)

	HeaderStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Padding(0, 1)

	SelectedItemStyle = lipgloss.NewStyle().
		Foreground(BackgroundColor).
		Background(AccentColor).
		Bold(true)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	TimeStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Faint(true)

	AddressStyle = lipgloss.NewStyle().
		Foreground(AccentColor)

	ErrorMessageStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	SeparatorStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusInfoStyle = lipgloss.NewStyle().
		Foreground(MutedColor)

	StatusSuccessStyle = lipgloss.NewStyle().
		Foreground(SuccessColor)

	StatusWarnStyle = lipgloss.NewStyle().
		Foreground(HighlightColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)

	PopularTitleStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)
}

// ContentWrapper returns a style for wrapping content with width and height constraints
func ContentWrapper(width, height int) lipgloss.Style {
	return EmptyStyle.Width(width).Height(height).MaxHeight(height)
}

// GetEmptyMessage is the empty-state banner naming the clear-filters key.
func GetEmptyMessage(clearKey string) string {
	if clearKey == "" {
		return GetCompactBanner(MsgNoResults)
	}
	return GetCompactBanner(MsgNoResults + " • press " + clearKey + " to clear filters")
}

func GetCompactBanner(message string) string {
	var coloredLines []string
	for _, line := range LogoLines {
		coloredLines = append(coloredLines, LogoStyle.Render(line))
	}

	logo := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	return lipgloss.JoinVertical(
		lipgloss.Center,
		logo,
		"",
		HelpStyle.Render(message),
	)
}

// ShowBanner writes the startup banner to w.
func ShowBanner(w io.Writer, version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("Blog Discovery %s", versionTag))
	} else {
		lines = append(lines, "Blog Discovery")
	}

	var coloredLines []string
	for i, line := range lines {
		if line == "" {
			coloredLines = append(coloredLines, line)
			continue
		}

		colorIdx := i % len(BannerColors)
		style := lipgloss.NewStyle().
			Foreground(BannerColors[colorIdx]).
			Bold(i < len(LogoLines))

		coloredLines = append(coloredLines, style.Render(line))
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)

	fmt.Fprintln(w, lipgloss.NewStyle().
		Width(60).
		Align(lipgloss.Center).
		Render(borderStyle.Render(banner)))
}

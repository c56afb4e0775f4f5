package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/larder/internal/config"
)

const AppName = "larder"

// ASCII art logo lines for larder
var LogoLines = []string{
	"██                  ██                ",
	"██   ▄▀▀▀▄  █▄▀▀▀  ▄▀▀▀██  ▄▀▀▀▄  █▄▀▀▀",
	"██   ▄▄▄▄█  █▀     █   ██  █▄▄▄█  █▀   ",
	"██  █▀   █  █      █   ██  █▀▀▀   █    ",
	"▀▀▀▀ ▀▀▀▀▀  ▀      ▀▀▀▀▀▀  ▀▀▀▀▀  ▀    ",
}

const CompactLogo = `larder ›`

// Banner gradient colors, terracotta through sage to saffron
var BannerColors = []lipgloss.Color{
	lipgloss.Color("#E07A5F"),
	lipgloss.Color("#E9A178"),
	lipgloss.Color("#F2CC8F"),
	lipgloss.Color("#81B29A"),
	lipgloss.Color("#E07A5F"),
}

// Brand colors. ApplyColors replaces them from the [ui.colors] config section.
var (
	PrimaryColor   = lipgloss.Color("#E07A5F") // Terracotta
	SecondaryColor = lipgloss.Color("#81B29A") // Sage
	AccentColor    = lipgloss.Color("#F2CC8F") // Saffron

	BackgroundColor = lipgloss.Color("#1F1B24")
	SurfaceColor    = lipgloss.Color("#2A2433")
	TextColor       = lipgloss.Color("#F4F1DE")
	MutedColor      = lipgloss.Color("#A8A29E")

	ErrorColor   = lipgloss.Color("#F87171")
	SuccessColor = lipgloss.Color("#4ADE80")
)

// Styled components
var (
	LogoStyle          lipgloss.Style
	TitleStyle         lipgloss.Style
	HeaderStyle        lipgloss.Style
	StatusBarStyle     lipgloss.Style
	CardTitleStyle     lipgloss.Style
	RatingStyle        lipgloss.Style
	HelpStyle          lipgloss.Style
	ErrorMessageStyle  lipgloss.Style
	SeparatorStyle     lipgloss.Style
	StatusInfoStyle    lipgloss.Style
	StatusSuccessStyle lipgloss.Style
	StatusWarnStyle    lipgloss.Style
	StatusErrorStyle   lipgloss.Style
)

func init() {
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

	CardTitleStyle = lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)

	RatingStyle = lipgloss.NewStyle().
		Foreground(AccentColor)

	HelpStyle = lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

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
		Foreground(AccentColor)

	StatusErrorStyle = lipgloss.NewStyle().
		Foreground(ErrorColor).
		Bold(true)
}

// ApplyColors swaps the palette for the configured one. Empty entries keep
// the built-in color.
func ApplyColors(c config.UIColors) {
	set := func(dst *lipgloss.Color, v string) {
		if v != "" {
			*dst = lipgloss.Color(v)
		}
	}
	set(&PrimaryColor, c.Primary)
	set(&SecondaryColor, c.Secondary)
	set(&AccentColor, c.Accent)
	set(&BackgroundColor, c.Background)
	set(&SurfaceColor, c.Surface)
	set(&TextColor, c.Text)
	set(&MutedColor, c.Muted)
	set(&ErrorColor, c.Error)
	set(&SuccessColor, c.Success)
	buildStyles()
}

func GetWelcomeMessage() string {
	return GetCompactBanner("Fetching today's recipes")
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

func ShowBanner(version string) {
	lines := make([]string, len(LogoLines)+1)
	copy(lines, LogoLines)
	lines[len(LogoLines)] = ""

	versionTag := version
	if versionTag != "" && versionTag != "dev" {
		if versionTag[0] != 'v' && versionTag[0] != 'V' {
			versionTag = "v" + versionTag
		}
		lines = append(lines, fmt.Sprintf("    Recipe Catalog %s", versionTag))
	} else {
		lines = append(lines, "    Recipe Catalog")
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

	borderChars := lipgloss.Border{
		Top:         "═",
		Bottom:      "═",
		Left:        "║",
		Right:       "║",
		TopLeft:     "╔",
		TopRight:    "╗",
		BottomLeft:  "╚",
		BottomRight: "╝",
	}

	borderStyle := lipgloss.NewStyle().
		Border(borderChars).
		BorderForeground(SecondaryColor).
		Padding(1, 3).
		MarginTop(1)

	banner := lipgloss.JoinVertical(lipgloss.Center, coloredLines...)
	output := borderStyle.Render(banner)

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		Render(output))

	separator := lipgloss.NewStyle().
		Foreground(AccentColor).
		Render("✻ ✼ ✻ ✼ ✻")

	fmt.Println(lipgloss.NewStyle().
		Width(70).
		Align(lipgloss.Center).
		MarginBottom(1).
		Render(separator))
}

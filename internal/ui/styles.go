package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// Design System Colors - picked from the editor theme
var (
	// Brand colors
	ColorPrimary   lipgloss.Color
	ColorSecondary lipgloss.Color
	ColorAccent    lipgloss.Color

	// Semantic colors
	ColorSuccess lipgloss.Color
	ColorWarning lipgloss.Color
	ColorError   lipgloss.Color
	ColorInfo    lipgloss.Color

	// Neutral colors
	ColorText       lipgloss.Color
	ColorTextMuted  lipgloss.Color
	ColorTextDim    lipgloss.Color
	ColorBorder     lipgloss.Color
	ColorBackground lipgloss.Color
	ColorSurface    lipgloss.Color
)

// initializeColors sets the palette for the configured theme. GLAMOUR_STYLE
// still wins when it names light or dark.
func initializeColors(dark bool) {
	switch os.Getenv("GLAMOUR_STYLE") {
	case "light":
		dark = false
	case "dark":
		dark = true
	}

	if dark {
		setDarkThemeColors()
	} else {
		setLightThemeColors()
	}
	buildStyles()
}

func setDarkThemeColors() {
	ColorPrimary = lipgloss.Color("214")  // KubeJS orange
	ColorSecondary = lipgloss.Color("33") // Bright cyan/blue
	ColorAccent = lipgloss.Color("205")   // Magenta

	ColorSuccess = lipgloss.Color("10")
	ColorWarning = lipgloss.Color("11")
	ColorError = lipgloss.Color("9")
	ColorInfo = lipgloss.Color("12")

	ColorText = lipgloss.Color("252")
	ColorTextMuted = lipgloss.Color("244")
	ColorTextDim = lipgloss.Color("240")
	ColorBorder = lipgloss.Color("238")
	ColorBackground = lipgloss.Color("235")
	ColorSurface = lipgloss.Color("236")
}

func setLightThemeColors() {
	ColorPrimary = lipgloss.Color("130")
	ColorSecondary = lipgloss.Color("24")
	ColorAccent = lipgloss.Color("125")

	ColorSuccess = lipgloss.Color("22")
	ColorWarning = lipgloss.Color("136")
	ColorError = lipgloss.Color("160")
	ColorInfo = lipgloss.Color("24")

	ColorText = lipgloss.Color("232")
	ColorTextMuted = lipgloss.Color("240")
	ColorTextDim = lipgloss.Color("244")
	ColorBorder = lipgloss.Color("248")
	ColorBackground = lipgloss.Color("255")
	ColorSurface = lipgloss.Color("254")
}

// Component Styles
var (
	StyleTitle           lipgloss.Style
	StyleCategory        lipgloss.Style
	StyleText            lipgloss.Style
	StyleTextMuted       lipgloss.Style
	StyleTextDim         lipgloss.Style
	StyleFocused         lipgloss.Style
	StyleActive          lipgloss.Style
	StyleUnselected      lipgloss.Style
	StyleSuccess         lipgloss.Style
	StyleError           lipgloss.Style
	StyleModal           lipgloss.Style
	StylePopup           lipgloss.Style
	StylePane            lipgloss.Style
	StylePaneFocused     lipgloss.Style
	StyleStatusBar       lipgloss.Style
	StyleSearchInput     lipgloss.Style
	StyleScrollIndicator lipgloss.Style
)

// buildStyles derives the component styles from the current palette
func buildStyles() {
	StyleTitle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true).
		Padding(0, 1)

	StyleCategory = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Bold(true)

	StyleText = lipgloss.NewStyle().Foreground(ColorText)
	StyleTextMuted = lipgloss.NewStyle().Foreground(ColorTextMuted)
	StyleTextDim = lipgloss.NewStyle().Foreground(ColorTextDim)

	StyleFocused = lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(ColorSecondary).
		Bold(true)

	// The active template keeps its highlight while the cursor moves on
	StyleActive = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)

	StyleUnselected = lipgloss.NewStyle().
		Foreground(ColorTextMuted)

	StyleSuccess = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Bold(true).
		Padding(0, 1)

	StyleError = lipgloss.NewStyle().
		Foreground(ColorError).
		Bold(true).
		Padding(0, 1)

	StyleModal = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 3)

	StylePopup = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorAccent).
		Padding(0, 1)

	StylePane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StylePaneFocused = StylePane.
		BorderForeground(ColorSecondary)

	StyleStatusBar = lipgloss.NewStyle().
		Foreground(ColorTextMuted).
		Padding(0, 1)

	StyleSearchInput = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	StyleScrollIndicator = lipgloss.NewStyle().
		Foreground(ColorTextDim).
		Align(lipgloss.Center)
}

func init() {
	initializeColors(true)
}

// CreateHeader renders the title bar with the current file name
func CreateHeader(titleText, filename string, width int) string {
	title := StyleTitle.Render(titleText)
	if filename == "" {
		return title
	}
	file := StyleTextDim.Render(Truncate(filename, max(width-lipgloss.Width(title)-2, 1)))
	return lipgloss.JoinHorizontal(lipgloss.Left, title, " ", file)
}

// CreateStatus renders a status line message
func CreateStatus(text string, isError bool, width int) string {
	if width > 4 {
		text = Truncate(text, width-4)
	}
	if isError {
		return StyleError.Render(text)
	}
	if text == "Ready" {
		return StyleStatusBar.Render(text)
	}
	return StyleSuccess.Render(text)
}

// CreateScrollIndicators returns the marks shown above and below a viewport
func CreateScrollIndicators(canScrollUp, canScrollDown bool) (string, string) {
	top := StyleScrollIndicator.Render("─────────")
	if canScrollUp {
		top = StyleScrollIndicator.Render("...")
	}
	bottom := StyleScrollIndicator.Render("─────────")
	if canScrollDown {
		bottom = StyleScrollIndicator.Render("...")
	}
	return top, bottom
}

// CenterModal places content in the middle of the screen
func CenterModal(content string, width, height int) string {
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// Truncate shortens s to width cells, keeping ANSI sequences intact
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return truncate.StringWithTail(s, uint(width), "…")
}

// padRight fills s with spaces up to width cells
func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

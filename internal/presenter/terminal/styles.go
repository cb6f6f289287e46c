package terminal

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
)

var (
	ColorPrimary = lipgloss.Color("#7aa2f7")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorWarning = lipgloss.Color("#e0af68")
	ColorError   = lipgloss.Color("#f7768e")
	ColorMuted   = lipgloss.Color("#565f89")
	ColorFg      = lipgloss.Color("#c0caf5")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	HeadingStyle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Bold(true).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	BarEmptyStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)
)

func bucketColor(b presenter.Bucket) lipgloss.Color {
	switch b {
	case presenter.BucketStrong:
		return ColorSuccess
	case presenter.BucketModerate:
		return ColorWarning
	default:
		return ColorError
	}
}

func scoreStyle(b presenter.Bucket) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(bucketColor(b)).Bold(true)
}

func highlightColor(k presenter.HighlightKind) lipgloss.Color {
	switch k {
	case presenter.HighlightStrength:
		return ColorSuccess
	case presenter.HighlightPriority:
		return ColorWarning
	default:
		return ColorPrimary
	}
}

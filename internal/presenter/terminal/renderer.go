package terminal

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
)

const (
	defaultBarCells = 30
	defaultWidth    = 80
)

// Renderer draws a view for a terminal. Colors follow the score buckets; on
// a terminal without color support lipgloss drops them.
type Renderer struct {
	barCells int
	width    int
}

func NewRenderer() *Renderer {
	return &Renderer{barCells: defaultBarCells, width: defaultWidth}
}

func (r *Renderer) SupportedFormat() presenter.Format {
	return presenter.FormatText
}

func (r *Renderer) Render(view *presenter.View) (string, error) {
	if view == nil || view.Empty {
		return r.renderEmpty(), nil
	}

	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("Pitch Analysis Results"))
	sb.WriteString("\n")

	if view.Overall != nil {
		o := view.Overall
		block := fmt.Sprintf("%s %s\n%s",
			scoreStyle(o.Bucket).Render(o.Display+"/10"),
			LabelStyle.Render("Overall Score"),
			scoreStyle(o.Bucket).Render(o.Label+" Pitch"))
		sb.WriteString(PanelStyle.Render(block))
		sb.WriteString("\n")

		sb.WriteString(HeadingStyle.Render("Detailed Scoring"))
		sb.WriteString("\n")
		for _, d := range view.Dimensions {
			sb.WriteString(r.scoreLine(d))
			sb.WriteString("\n")
		}
	}

	sb.WriteString(HeadingStyle.Render("Key Insights"))
	sb.WriteString("\n")
	for _, h := range view.Highlights {
		label := lipgloss.NewStyle().Foreground(highlightColor(h.Kind)).Bold(true).Render(h.Title + ":")
		sb.WriteString(fmt.Sprintf("  %s %s\n", label, excerptText(h.Text)))
	}

	if len(view.Sections) > 0 {
		sb.WriteString(HeadingStyle.Render("Detailed Analysis"))
		sb.WriteString("\n")
		body := lipgloss.NewStyle().Width(r.width - 4).PaddingLeft(2)
		for _, s := range view.Sections {
			sb.WriteString(lipgloss.NewStyle().Foreground(highlightColor(s.Kind)).Bold(true).Render(s.Title))
			sb.WriteString("\n")
			sb.WriteString(body.Render(orPlaceholder(s.Text)))
			sb.WriteString("\n")
		}
		sb.WriteString(HeadingStyle.Render("Overall Assessment"))
		sb.WriteString("\n")
		sb.WriteString(body.Render(orPlaceholder(view.Assessment)))
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func (r *Renderer) scoreLine(row presenter.ScoreRow) string {
	filled := int(math.Round(row.BarWidth / 100 * float64(r.barCells)))
	bar := scoreStyle(row.Bucket).Render(strings.Repeat("█", filled)) +
		BarEmptyStyle.Render(strings.Repeat("░", r.barCells-filled))

	return fmt.Sprintf("  %-16s %s %s %s",
		row.Title,
		bar,
		scoreStyle(row.Bucket).Render(fmt.Sprintf("%5s/10", row.Display)),
		LabelStyle.Render(row.Label))
}

func (r *Renderer) renderEmpty() string {
	return PanelStyle.Render(
		lipgloss.NewStyle().Foreground(ColorWarning).Bold(true).Render(presenter.EmptyTitle) + "\n" +
			LabelStyle.Render(presenter.EmptyMessage)) + "\n"
}

func excerptText(text string) string {
	if text == presenter.Placeholder {
		return LabelStyle.Render(text)
	}
	return text + "..."
}

func orPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return LabelStyle.Render(presenter.Placeholder)
	}
	return text
}

package presenter

import (
	"strings"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
)

type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
)

// Renderer turns a view into a document of one format.
type Renderer interface {
	Render(view *View) (string, error)
	SupportedFormat() Format
}

const (
	EmptyTitle   = "No Analysis Found"
	EmptyMessage = "We couldn't find your analysis results."
)

// View is the display model of an analysis result. Renderers only read it.
type View struct {
	// Empty is set when there is no result at all.
	Empty bool

	Pitch *analysis.Pitch

	// Overall is nil when the result carries no score.
	Overall    *ScoreRow
	Dimensions []ScoreRow

	// Highlights are always present for a non-empty view.
	Highlights []Highlight

	// Sections and Assessment are only set when the result carries feedback.
	Sections   []Section
	Assessment string
}

type ScoreRow struct {
	Name     string
	Title    string
	Value    float64
	Display  string
	Bucket   Bucket
	Label    string
	BarWidth float64
}

type HighlightKind string

const (
	HighlightStrength    HighlightKind = "strength"
	HighlightPriority    HighlightKind = "priority"
	HighlightOpportunity HighlightKind = "opportunity"
)

type Highlight struct {
	Kind  HighlightKind
	Title string
	Text  string
}

type Section struct {
	Kind  HighlightKind
	Title string
	Text  string
}

// Present builds the view of result. A nil result gives the empty view.
func Present(result *analysis.Result) *View {
	if result == nil {
		return &View{Empty: true}
	}

	v := &View{Pitch: result.Pitch}

	if result.Score != nil {
		overall := newScoreRow("overall", result.Score.Overall)
		v.Overall = &overall
		for _, d := range result.Score.Dimensions() {
			v.Dimensions = append(v.Dimensions, newScoreRow(d.Name, d.Value))
		}
	}

	var fb analysis.Feedback
	if result.Feedback != nil {
		fb = *result.Feedback
	}
	v.Highlights = []Highlight{
		{Kind: HighlightStrength, Title: "Top Strength", Text: Excerpt(fb.Strengths)},
		{Kind: HighlightPriority, Title: "Priority Area", Text: Excerpt(fb.Weaknesses)},
		{Kind: HighlightOpportunity, Title: "Growth Opportunity", Text: Excerpt(fb.Opportunities)},
	}

	if result.Feedback != nil {
		v.Sections = []Section{
			{Kind: HighlightStrength, Title: "Strengths", Text: fb.Strengths},
			{Kind: HighlightOpportunity, Title: "Opportunities", Text: fb.Opportunities},
			{Kind: HighlightPriority, Title: "Areas for Improvement", Text: fb.Weaknesses},
			{Kind: HighlightPriority, Title: "Threats", Text: fb.Threats},
			{Kind: HighlightOpportunity, Title: "Recommendations", Text: fb.Suggestions},
		}
		v.Assessment = fb.Overall
	}

	return v
}

func newScoreRow(name string, value float64) ScoreRow {
	return ScoreRow{
		Name:     name,
		Title:    title(name),
		Value:    value,
		Display:  FormatScore(value),
		Bucket:   ScoreColorBucket(value),
		Label:    ScoreLabel(value),
		BarWidth: BarWidth(value),
	}
}

func title(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

package analysis

// Result is the analysis returned by the service. Every top-level field is
// optional and consumers must handle any subset being absent.
type Result struct {
	Pitch    *Pitch    `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	Feedback *Feedback `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Score    *Score    `json:"score,omitempty" yaml:"score,omitempty"`
}

// Pitch echoes the text the service extracted from the document.
type Pitch struct {
	PitchText string `json:"pitch_text" yaml:"pitch_text"`
	UserQuery string `json:"user_query,omitempty" yaml:"user_query,omitempty"`
}

type Feedback struct {
	Overall       string `json:"overall_feedback" yaml:"overall_feedback"`
	Strengths     string `json:"strengths" yaml:"strengths"`
	Weaknesses    string `json:"weaknesses" yaml:"weaknesses"`
	Opportunities string `json:"opportunities" yaml:"opportunities"`
	Threats       string `json:"threats" yaml:"threats"`
	Suggestions   string `json:"suggestions" yaml:"suggestions"`
}

// Score values are conventionally in [0,10]. They are not validated here.
type Score struct {
	Clarity         float64 `json:"clarity" yaml:"clarity"`
	Differentiation float64 `json:"differentiation" yaml:"differentiation"`
	Traction        float64 `json:"traction" yaml:"traction"`
	Scalability     float64 `json:"scalability" yaml:"scalability"`
	Overall         float64 `json:"overall" yaml:"overall"`
}

// Dimension is a named score value, used to render score breakdowns in a
// stable order.
type Dimension struct {
	Name  string
	Value float64
}

// Dimensions returns the per-dimension scores without the overall score.
func (s *Score) Dimensions() []Dimension {
	if s == nil {
		return nil
	}
	return []Dimension{
		{Name: "clarity", Value: s.Clarity},
		{Name: "differentiation", Value: s.Differentiation},
		{Name: "traction", Value: s.Traction},
		{Name: "scalability", Value: s.Scalability},
	}
}

func (r *Result) IsEmpty() bool {
	return r == nil || (r.Pitch == nil && r.Feedback == nil && r.Score == nil)
}

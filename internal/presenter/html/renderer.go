package html

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
)

type Renderer struct {
	page *template.Template
}

type templateData struct {
	CSS          template.CSS
	View         *presenter.View
	EmptyTitle   string
	EmptyMessage string
	Placeholder  string
}

func NewRenderer() *Renderer {
	return &Renderer{
		page: template.Must(template.New("results").Funcs(template.FuncMap{
			"bucketClass":    bucketClass,
			"highlightClass": highlightClass,
			"width":          func(w float64) string { return fmt.Sprintf("%.1f%%", w) },
			"blank":          func(s string) bool { return s == "" },
		}).Parse(resultsTemplate)),
	}
}

func (r *Renderer) SupportedFormat() presenter.Format {
	return presenter.FormatHTML
}

func (r *Renderer) Render(view *presenter.View) (string, error) {
	if view == nil {
		view = &presenter.View{Empty: true}
	}

	data := templateData{
		CSS:          template.CSS(styles),
		View:         view,
		EmptyTitle:   presenter.EmptyTitle,
		EmptyMessage: presenter.EmptyMessage,
		Placeholder:  presenter.Placeholder,
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render results page: %w", err)
	}
	return buf.String(), nil
}

func bucketClass(b presenter.Bucket) string {
	switch b {
	case presenter.BucketStrong:
		return "score-strong"
	case presenter.BucketModerate:
		return "score-moderate"
	default:
		return "score-weak"
	}
}

func highlightClass(k presenter.HighlightKind) string {
	return "insight-" + string(k)
}

const styles = `
body { margin: 0; background: #020617; color: #f8fafc; font-family: system-ui, sans-serif; }
main { max-width: 72rem; margin: 0 auto; padding: 3rem 1.5rem; }
.card { background: rgba(15, 23, 42, .5); border: 1px solid rgba(30, 41, 59, .5); border-radius: 1rem; padding: 2rem; margin-bottom: 2rem; }
.overall { text-align: center; }
.overall .value { font-size: 2.5rem; font-weight: 700; }
.muted { color: #94a3b8; }
.score-strong { color: #4ade80; }
.score-moderate { color: #facc15; }
.score-weak { color: #f87171; }
.bar { background: #334155; border-radius: 9999px; height: .75rem; }
.bar > div { height: .75rem; border-radius: 9999px; }
.bar .score-strong { background: #22c55e; }
.bar .score-moderate { background: #eab308; }
.bar .score-weak { background: #ef4444; }
.row { display: flex; justify-content: space-between; margin: 1.5rem 0 .75rem; }
.insight-strength { border-left: 4px solid #22c55e; padding-left: 1rem; }
.insight-priority { border-left: 4px solid #eab308; padding-left: 1rem; }
.insight-opportunity { border-left: 4px solid #3b82f6; padding-left: 1rem; }
`

const resultsTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Pitch Analysis Results</title>
<style>{{ .CSS }}</style>
</head>
<body>
<main>
{{- if .View.Empty }}
<section class="card overall">
<h2>{{ .EmptyTitle }}</h2>
<p class="muted">{{ .EmptyMessage }}</p>
</section>
{{- else }}
<h1>Pitch Analysis Results</h1>
{{- with .View.Pitch }}{{ if .UserQuery }}
<p class="muted">Focus: {{ .UserQuery }}</p>
{{- end }}{{ end }}
{{- with .View.Overall }}
<section class="card overall">
<div class="value {{ bucketClass .Bucket }}">{{ .Display }}/10</div>
<div class="muted">Overall Score</div>
<h2>{{ .Label }} Pitch</h2>
</section>
{{- end }}
{{- if .View.Dimensions }}
<section class="card">
<h2>Detailed Scoring</h2>
{{- range .View.Dimensions }}
<div class="row"><span>{{ .Title }}</span><span class="{{ bucketClass .Bucket }}">{{ .Display }}/10 <small class="muted">{{ .Label }}</small></span></div>
<div class="bar"><div class="{{ bucketClass .Bucket }}" style="width: {{ width .BarWidth }}"></div></div>
{{- end }}
</section>
{{- end }}
<section class="card">
<h2>Key Insights</h2>
{{- range .View.Highlights }}
<div class="{{ highlightClass .Kind }}">
<strong>{{ .Title }}</strong>
<p>{{ if eq .Text $.Placeholder }}<span class="muted">{{ .Text }}</span>{{ else }}{{ .Text }}...{{ end }}</p>
</div>
{{- end }}
</section>
{{- if .View.Sections }}
<section class="card">
<h2>Detailed Analysis</h2>
{{- range .View.Sections }}
<div class="{{ highlightClass .Kind }}">
<h3>{{ .Title }}</h3>
<p>{{ if blank .Text }}<span class="muted">{{ $.Placeholder }}</span>{{ else }}{{ .Text }}{{ end }}</p>
</div>
{{- end }}
<h3>Overall Assessment</h3>
<p>{{ if blank .View.Assessment }}<span class="muted">{{ .Placeholder }}</span>{{ else }}{{ .View.Assessment }}{{ end }}</p>
</section>
{{- end }}
{{- end }}
</main>
</body>
</html>
`

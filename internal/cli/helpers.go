package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pitchpilot/pitch-analyzer/internal/analysis"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter/csv"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter/html"
	"github.com/pitchpilot/pitch-analyzer/internal/presenter/terminal"
	"github.com/thoas/go-funk"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
	textFormat = string(presenter.FormatText)
	htmlFormat = string(presenter.FormatHTML)
	csvFormat  = string(presenter.FormatCSV)
)

var (
	legalOutputTypes = []string{textFormat, jsonFormat, yamlFormat, htmlFormat, csvFormat}
)

func validateOutput(output string) error {
	if len(output) > 0 && !funk.Contains(legalOutputTypes, output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}
	return nil
}

func outputUsage() string {
	return fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", "))
}

func renderers() map[string]presenter.Renderer {
	out := map[string]presenter.Renderer{}
	for _, r := range []presenter.Renderer{terminal.NewRenderer(), html.NewRenderer(), csv.NewRenderer()} {
		out[string(r.SupportedFormat())] = r
	}
	return out
}

// printResult writes result to w in the given output format. The empty
// format is the terminal view.
func printResult(w io.Writer, result *analysis.Result, output string) error {
	switch output {
	case jsonFormat:
		marshalled, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling result: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", string(marshalled))
		return err
	case yamlFormat:
		marshalled, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshalling result: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s", string(marshalled))
		return err
	}

	if output == "" {
		output = textFormat
	}
	renderer, ok := renderers()[output]
	if !ok {
		return fmt.Errorf("unsupported output format %q", output)
	}

	body, err := renderer.Render(presenter.Present(result))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, body)
	return err
}

// viewerBase returns the viewer address from the results view URL, dropping
// the /results path and any query.
func viewerBase(resultsURL string) (string, error) {
	u, err := url.Parse(resultsURL)
	if err != nil {
		return "", fmt.Errorf("invalid results url %q: %w", resultsURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid results url %q: no host", resultsURL)
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/results")
	return strings.TrimRight(u.String(), "/"), nil
}

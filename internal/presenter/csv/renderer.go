package csv

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/pitchpilot/pitch-analyzer/internal/presenter"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) SupportedFormat() presenter.Format {
	return presenter.FormatCSV
}

// Render writes one row per score followed by the feedback sections.
func (r *Renderer) Render(view *presenter.View) (string, error) {
	rows := [][]string{{"section", "name", "value", "label", "text"}}

	if view == nil || view.Empty {
		rows = append(rows, []string{"status", "", "", "", presenter.EmptyTitle})
		return r.convertRowsToCSV(rows)
	}

	if view.Overall != nil {
		rows = append(rows, scoreRow(*view.Overall))
		for _, d := range view.Dimensions {
			rows = append(rows, scoreRow(d))
		}
	}

	for _, h := range view.Highlights {
		rows = append(rows, []string{"highlight", string(h.Kind), "", "", h.Text})
	}

	for _, s := range view.Sections {
		rows = append(rows, []string{"feedback", s.Title, "", "", s.Text})
	}
	if len(view.Sections) > 0 {
		rows = append(rows, []string{"feedback", "Overall Assessment", "", "", view.Assessment})
	}

	return r.convertRowsToCSV(rows)
}

func scoreRow(row presenter.ScoreRow) []string {
	return []string{"score", row.Name, row.Display, row.Label, ""}
}

func (r *Renderer) convertRowsToCSV(rows [][]string) (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("error writing CSV row: %v", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV writer: %v", err)
	}

	return buf.String(), nil
}

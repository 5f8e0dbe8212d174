package report

import (
	"github.com/splitstat/splitstat/internal/dataset"
	"github.com/splitstat/splitstat/internal/pipeline"
)

// Artifacts lists everything a full render run produced on disk.
type Artifacts struct {
	JSONPath string
	TextPath string
	PDFPath  string
	Plots    []string
}

// WriteAll renders every report format plus the plots under dir.
func WriteAll(r pipeline.Report, records []dataset.Record, dir string) (Artifacts, error) {
	var a Artifacts
	var err error

	if a.JSONPath, err = WriteJSON(r, dir); err != nil {
		return a, err
	}
	if a.TextPath, err = WriteText(r, dir); err != nil {
		return a, err
	}
	if a.PDFPath, err = WritePDF(r, dir); err != nil {
		return a, err
	}
	if a.Plots, err = WritePlots(records, dir); err != nil {
		return a, err
	}

	return a, nil
}

// Package report renders an analysis report as JSON, text and PDF documents
// and draws the comparison plots. It owns all file I/O for report artifacts;
// the pipeline itself never touches the disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/splitstat/splitstat/internal/pipeline"
)

const (
	JSONFileName = "report.json"
	TextFileName = "report.txt"
	PDFFileName  = "report.pdf"
	PlotsDirName = "plots"
)

// WriteJSON saves the report under dir as indented JSON and returns the path.
func WriteJSON(r pipeline.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(dir, JSONFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"

	"github.com/splitstat/splitstat/internal/pipeline"
)

// WritePDF renders a one-document PDF summary under dir and returns the path.
func WritePDF(r pipeline.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("A/B Testing Analysis Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "A/B Testing Analysis Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", r.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	sectionTitle(pdf, "Dataset")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d users (%d control, %d variant), %s",
		r.DatasetInfo.TotalRows, r.MetricsSummary.Control.NUsers, r.MetricsSummary.Variant.NUsers,
		r.DatasetInfo.DateRange), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	sectionTitle(pdf, "Metrics Summary")
	metricsTable(pdf, r)
	pdf.Ln(2)

	sectionTitle(pdf, "Hypothesis Tests")
	testsTable(pdf, r)
	pdf.Ln(2)

	sectionTitle(pdf, "Recommendation")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, string(r.BusinessInsights.Recommendation), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, r.BusinessInsights.Rationale, "", "L", false)

	path := filepath.Join(dir, PDFFileName)
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write PDF report: %w", err)
	}
	return path, nil
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func metricsTable(pdf *fpdf.Fpdf, r pipeline.Report) {
	m := r.MetricsSummary

	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range []string{"Metric", "Control", "Variant", "Difference"} {
		pdf.CellFormat(45, 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	rows := [][4]string{
		{"Conversion Rate",
			fmt.Sprintf("%.2f%%", m.Control.ConversionRate*100),
			fmt.Sprintf("%.2f%%", m.Variant.ConversionRate*100),
			fmt.Sprintf("%.2f%%", m.Differences.ConversionRateDiff*100)},
		{"Avg Time Spent (min)",
			fmt.Sprintf("%.4f", m.Control.AvgTimeSpent),
			fmt.Sprintf("%.4f", m.Variant.AvgTimeSpent),
			fmt.Sprintf("%.4f", m.Differences.TimeSpentDiff)},
		{"Avg Clicks",
			fmt.Sprintf("%.4f", m.Control.AvgClicks),
			fmt.Sprintf("%.4f", m.Variant.AvgClicks),
			fmt.Sprintf("%.4f", m.Differences.ClicksDiff)},
	}
	for _, row := range rows {
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(45, 7, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func testsTable(pdf *fpdf.Fpdf, r pipeline.Report) {
	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range []string{"Metric", "Statistic", "P-value", "Result"} {
		pdf.CellFormat(45, 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, key := range metricOrder {
		t, ok := r.HypothesisTests[key]
		if !ok {
			continue
		}
		verdict := "not significant"
		if t.Significant {
			verdict = "significant"
		}
		pdf.CellFormat(45, 7, key, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%g", t.Statistic), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, fmt.Sprintf("%g", t.PValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, verdict, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
}

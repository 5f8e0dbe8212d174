package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/splitstat/splitstat/internal/pipeline"
)

// metricOrder fixes the section order; report maps are keyed by metric name.
var metricOrder = []string{"conversion_rate", "time_spent", "clicks"}

// RenderText produces the fixed-layout plain-text report.
func RenderText(r pipeline.Report) string {
	var b strings.Builder

	line := strings.Repeat("=", 70)
	rule := func(title string) string {
		return fmt.Sprintf("-- %s %s", title, strings.Repeat("-", 64-len(title)))
	}

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "       A/B TESTING ANALYSIS REPORT")
	fmt.Fprintf(&b, "       Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b)

	m := r.MetricsSummary
	fmt.Fprintln(&b, rule("DATASET SUMMARY"))
	fmt.Fprintf(&b, "  Total Users     : %d\n", r.DatasetInfo.TotalRows)
	fmt.Fprintf(&b, "  Control Users   : %d\n", m.Control.NUsers)
	fmt.Fprintf(&b, "  Variant Users   : %d\n", m.Variant.NUsers)
	fmt.Fprintf(&b, "  Date Range      : %s\n", r.DatasetInfo.DateRange)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule("METRICS SUMMARY"))
	fmt.Fprintf(&b, "  %-25s %12s %12s %12s\n", "Metric", "Control", "Variant", "Difference")
	fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", 62))
	fmt.Fprintf(&b, "  %-25s %11.2f%% %11.2f%% %11.2f%%\n", "Conversion Rate",
		m.Control.ConversionRate*100, m.Variant.ConversionRate*100, m.Differences.ConversionRateDiff*100)
	fmt.Fprintf(&b, "  %-25s %12.4f %12.4f %12.4f\n", "Avg Time Spent (min)",
		m.Control.AvgTimeSpent, m.Variant.AvgTimeSpent, m.Differences.TimeSpentDiff)
	fmt.Fprintf(&b, "  %-25s %12.4f %12.4f %12.4f\n", "Avg Clicks",
		m.Control.AvgClicks, m.Variant.AvgClicks, m.Differences.ClicksDiff)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule("HYPOTHESIS TEST RESULTS"))
	for _, key := range metricOrder {
		t, ok := r.HypothesisTests[key]
		if !ok {
			continue
		}
		verdict := "NOT SIGNIFICANT"
		if t.Significant {
			verdict = "SIGNIFICANT"
		}
		fmt.Fprintf(&b, "  Metric   : %s\n", key)
		fmt.Fprintf(&b, "  Test     : %s\n", t.TestType)
		fmt.Fprintf(&b, "  Statistic: %g\n", t.Statistic)
		fmt.Fprintf(&b, "  P-value  : %g\n", t.PValue)
		fmt.Fprintf(&b, "  Result   : %s (alpha=%g)\n", verdict, t.Alpha)
		fmt.Fprintf(&b, "  Notes    : %s\n", t.Interpretation)
		fmt.Fprintln(&b)
	}

	fmt.Fprintln(&b, rule("CONFIDENCE INTERVALS (95%)"))
	for _, key := range metricOrder {
		ci, ok := r.ConfidenceIntervals[key]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: [%g, %g]  Point estimate: %g\n", key, ci.Lower, ci.Upper, ci.PointEstimate)
	}
	fmt.Fprintln(&b)

	p := r.PowerAnalysis
	fmt.Fprintln(&b, rule("POWER ANALYSIS"))
	fmt.Fprintf(&b, "  Conversion Rate Uplift : %g%%\n", p.ConversionUpliftPct)
	fmt.Fprintf(&b, "  Actual sample per group: %d\n", p.ActualSampleSizePerGroup)
	fmt.Fprintf(&b, "  Required (conversion)  : %s\n", requiredText(p.ConversionRate.RequiredSampleSizePerGroup))
	fmt.Fprintf(&b, "  Required (time_spent)  : %s\n", requiredText(p.TimeSpent.RequiredSampleSizePerGroup))
	fmt.Fprintf(&b, "  Required (clicks)      : %s\n", requiredText(p.Clicks.RequiredSampleSizePerGroup))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule("BUSINESS INSIGHTS"))
	for _, insight := range r.BusinessInsights.Insights {
		fmt.Fprintf(&b, "  * %s\n", insight)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, rule("FINAL RECOMMENDATION"))
	fmt.Fprintf(&b, "  >>> %s <<<\n", r.BusinessInsights.Recommendation)
	fmt.Fprintf(&b, "  %s\n", r.BusinessInsights.Rationale)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, line)

	return b.String()
}

// WriteText saves the text report under dir and returns the path.
func WriteText(r pipeline.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(dir, TextFileName)
	if err := os.WriteFile(path, []byte(RenderText(r)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write text report: %w", err)
	}
	return path, nil
}

func requiredText(n int) string {
	if n < 0 {
		return "unbounded (no observed effect)"
	}
	return fmt.Sprintf("%d", n)
}

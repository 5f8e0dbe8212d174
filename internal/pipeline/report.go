package pipeline

import (
	"time"

	"github.com/splitstat/splitstat/internal/insights"
	"github.com/splitstat/splitstat/internal/stats"
)

// Report is the single artifact of an analysis run. Its field names and
// nesting are the wire contract consumed by the dashboard and the report
// renderers; do not rename fields without versioning the API.
type Report struct {
	ReportID            string                             `json:"report_id"`
	GeneratedAt         time.Time                          `json:"generated_at"`
	DatasetInfo         DatasetInfo                        `json:"dataset_info"`
	MetricsSummary      MetricsSummary                     `json:"metrics_summary"`
	HypothesisTests     map[string]stats.TestResult        `json:"hypothesis_tests"`
	ConfidenceIntervals map[string]stats.ConfidenceInterval `json:"confidence_intervals"`
	PowerAnalysis       PowerAnalysis                      `json:"power_analysis"`
	BusinessInsights    insights.Insights                  `json:"business_insights"`
}

type DatasetInfo struct {
	TotalRows    int      `json:"total_rows"`
	TotalColumns int      `json:"total_columns"`
	Columns      []string `json:"columns"`
	DateRange    string   `json:"date_range"`
}

type MetricsSummary struct {
	Control     GroupMetrics `json:"control"`
	Variant     GroupMetrics `json:"variant"`
	Differences Differences  `json:"differences"`
}

type GroupMetrics struct {
	NUsers           int     `json:"n_users"`
	ConversionRate   float64 `json:"conversion_rate"`
	AvgTimeSpent     float64 `json:"avg_time_spent"`
	AvgClicks        float64 `json:"avg_clicks"`
	AvgSessionCount  float64 `json:"avg_session_count"`
	TotalConversions int     `json:"total_conversions"`
}

type Differences struct {
	ConversionRateDiff float64 `json:"conversion_rate_diff"`
	TimeSpentDiff      float64 `json:"time_spent_diff"`
	ClicksDiff         float64 `json:"clicks_diff"`
}

type PowerAnalysis struct {
	ConversionRate           stats.PowerResult `json:"conversion_rate"`
	TimeSpent                stats.PowerResult `json:"time_spent"`
	Clicks                   stats.PowerResult `json:"clicks"`
	ConversionUpliftPct      float64           `json:"conversion_uplift_pct"`
	ActualSampleSizePerGroup int               `json:"actual_sample_size_per_group"`
}

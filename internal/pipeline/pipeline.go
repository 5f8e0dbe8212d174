// Package pipeline sequences the full analysis: group summaries, hypothesis
// tests, confidence intervals and power analysis per metric, and the final
// recommendation, assembled into one immutable Report.
package pipeline

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/splitstat/splitstat/internal/config"
	"github.com/splitstat/splitstat/internal/dataset"
	"github.com/splitstat/splitstat/internal/insights"
	"github.com/splitstat/splitstat/internal/stats"
)

// ErrNoDataset means analysis was requested before any data exists.
var ErrNoDataset = errors.New("dataset not found, generate first")

// Run computes a full Report from an already-loaded record snapshot. The
// records are never mutated, so concurrent runs over the same snapshot are
// safe. Statistical edge cases inside the metric loop surface as sentinel
// results in the report, never as errors; only missing or malformed input
// aborts the run.
func Run(cfg config.AnalysisConfig, records []dataset.Record) (Report, error) {
	if len(records) == 0 {
		return Report{}, ErrNoDataset
	}

	control, variant := dataset.Summarize(records)
	if control.Count == 0 || variant.Count == 0 {
		return Report{}, fmt.Errorf("%w: dataset must contain both groups (control=%d, variant=%d)",
			stats.ErrInvalidParameter, control.Count, variant.Count)
	}

	tests := make(map[string]stats.TestResult, len(stats.Metrics))
	intervals := make(map[string]stats.ConfidenceInterval, len(stats.Metrics))
	power := make(map[string]stats.PowerResult, len(stats.Metrics))

	for _, m := range stats.Metrics {
		switch m.Kind {
		case stats.KindProportion:
			t, err := stats.TestProportions(m.Name, control.Conversions, control.Count, variant.Conversions, variant.Count, cfg.Alpha)
			if err != nil {
				return Report{}, err
			}
			ci, err := stats.ProportionDiffInterval(control.Conversions, control.Count, variant.Conversions, variant.Count, cfg.ConfidenceLevel)
			if err != nil {
				return Report{}, err
			}
			tests[m.Name] = roundTest(t)
			intervals[m.Name] = roundInterval(ci, 6)
			power[m.Name] = roundPower(stats.AnalyzeProportions(control.ConversionRate, variant.ConversionRate, cfg.Alpha, cfg.Power))

		case stats.KindMean:
			ctrlVals, varVals := metricSamples(m, control, variant)
			t, err := stats.TestMeans(m.Name, ctrlVals, varVals, cfg.Alpha)
			if err != nil {
				return Report{}, err
			}
			ci, err := stats.MeanDiffInterval(m.Name, ctrlVals, varVals, cfg.ConfidenceLevel)
			if err != nil {
				return Report{}, err
			}
			tests[m.Name] = roundTest(t)
			intervals[m.Name] = roundInterval(ci, 4)
			power[m.Name] = roundPower(stats.AnalyzeMeans(
				m.Name,
				mean(ctrlVals), stddev(ctrlVals),
				mean(varVals), stddev(varVals),
				cfg.Alpha, cfg.Power))
		}
	}

	uplift := round(stats.ConversionUplift(control.ConversionRate, variant.ConversionRate), 2)
	summary := buildSummary(control, variant)

	biz := insights.Recommend(insights.Inputs{
		Tests:                    tests,
		Intervals:                intervals,
		Power:                    power,
		ActualSampleSizePerGroup: control.Count,
		ConversionUpliftPct:      uplift,
		ControlConversionRate:    control.ConversionRate,
		VariantConversionRate:    variant.ConversionRate,
		TimeSpentDiff:            summary.Differences.TimeSpentDiff,
		ClicksDiff:               summary.Differences.ClicksDiff,
	})

	return Report{
		ReportID:            uuid.NewString(),
		GeneratedAt:         time.Now().UTC(),
		DatasetInfo:         buildDatasetInfo(records),
		MetricsSummary:      summary,
		HypothesisTests:     tests,
		ConfidenceIntervals: intervals,
		PowerAnalysis: PowerAnalysis{
			ConversionRate:           power["conversion_rate"],
			TimeSpent:                power["time_spent"],
			Clicks:                   power["clicks"],
			ConversionUpliftPct:      uplift,
			ActualSampleSizePerGroup: control.Count,
		},
		BusinessInsights: biz,
	}, nil
}

func metricSamples(m stats.Metric, control, variant dataset.GroupSummary) (ctrlVals, varVals []float64) {
	switch m.Name {
	case "time_spent":
		return control.TimeSpent, variant.TimeSpent
	case "clicks":
		return control.Clicks, variant.Clicks
	}
	return nil, nil
}

func buildDatasetInfo(records []dataset.Record) DatasetInfo {
	minTS, maxTS := records[0].Timestamp, records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(minTS) {
			minTS = r.Timestamp
		}
		if r.Timestamp.After(maxTS) {
			maxTS = r.Timestamp
		}
	}

	return DatasetInfo{
		TotalRows:    len(records),
		TotalColumns: len(dataset.Columns),
		Columns:      dataset.Columns,
		DateRange:    fmt.Sprintf("%s to %s", minTS.Format("2006-01-02"), maxTS.Format("2006-01-02")),
	}
}

func buildSummary(control, variant dataset.GroupSummary) MetricsSummary {
	return MetricsSummary{
		Control: GroupMetrics{
			NUsers:           control.Count,
			ConversionRate:   round(control.ConversionRate, 4),
			AvgTimeSpent:     round(control.TimeSpentMean, 4),
			AvgClicks:        round(control.ClicksMean, 4),
			AvgSessionCount:  round(control.SessionsMean, 4),
			TotalConversions: control.Conversions,
		},
		Variant: GroupMetrics{
			NUsers:           variant.Count,
			ConversionRate:   round(variant.ConversionRate, 4),
			AvgTimeSpent:     round(variant.TimeSpentMean, 4),
			AvgClicks:        round(variant.ClicksMean, 4),
			AvgSessionCount:  round(variant.SessionsMean, 4),
			TotalConversions: variant.Conversions,
		},
		Differences: Differences{
			ConversionRateDiff: round(variant.ConversionRate-control.ConversionRate, 4),
			TimeSpentDiff:      round(variant.TimeSpentMean-control.TimeSpentMean, 4),
			ClicksDiff:         round(variant.ClicksMean-control.ClicksMean, 4),
		},
	}
}

func roundTest(t stats.TestResult) stats.TestResult {
	t.Statistic = round(t.Statistic, 4)
	t.PValue = round(t.PValue, 6)
	return t
}

func roundInterval(ci stats.ConfidenceInterval, places int) stats.ConfidenceInterval {
	ci.Lower = round(ci.Lower, places)
	ci.Upper = round(ci.Upper, places)
	ci.PointEstimate = round(ci.PointEstimate, places)
	return ci
}

func roundPower(p stats.PowerResult) stats.PowerResult {
	p.EffectSize = round(p.EffectSize, 4)
	return p
}

func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

func mean(vals []float64) float64 {
	return stat.Mean(vals, nil)
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	return stat.StdDev(vals, nil)
}

package stats

import "github.com/splitstat/splitstat/internal/dataset"

type MetricKind int

const (
	KindProportion MetricKind = iota
	KindMean
)

// Metric declares one tested metric. The pipeline iterates this table
// uniformly for tests, intervals and power, so adding a metric is a data
// change rather than new control flow.
type Metric struct {
	Name string
	Kind MetricKind

	// Value extracts the observation for mean metrics. Nil for proportions,
	// which are computed from group conversion counts.
	Value func(r dataset.Record) float64
}

// Metrics is the fixed set of tested metrics, in report order.
var Metrics = []Metric{
	{
		Name: "conversion_rate",
		Kind: KindProportion,
	},
	{
		Name:  "time_spent",
		Kind:  KindMean,
		Value: func(r dataset.Record) float64 { return r.TimeSpent },
	},
	{
		Name:  "clicks",
		Kind:  KindMean,
		Value: func(r dataset.Record) float64 { return float64(r.Clicks) },
	},
}

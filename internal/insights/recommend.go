// Package insights turns test, interval and power results into a rollout
// recommendation. The policy is an ordered list of predicate/outcome rules;
// the first matching rule wins, which keeps the decision auditable and each
// rule independently testable.
package insights

import (
	"fmt"

	"github.com/splitstat/splitstat/internal/stats"
)

type Decision string

const (
	Rollout      Decision = "ROLLOUT"
	Monitor      Decision = "MONITOR"
	DoNotRollout Decision = "DO_NOT_ROLLOUT"
)

// Inputs is everything the engine needs from the rest of the pipeline, keyed
// by metric name (conversion_rate, time_spent, clicks).
type Inputs struct {
	Tests     map[string]stats.TestResult
	Intervals map[string]stats.ConfidenceInterval
	Power     map[string]stats.PowerResult

	ActualSampleSizePerGroup int
	ConversionUpliftPct      float64

	ControlConversionRate float64
	VariantConversionRate float64
	TimeSpentDiff         float64
	ClicksDiff            float64
}

// Insights is the business readout attached to every report.
type Insights struct {
	Insights           []string `json:"insights"`
	Recommendation     Decision `json:"recommendation"`
	Rationale          string   `json:"rationale"`
	SignificantMetrics int      `json:"significant_metrics"`
	TotalMetricsTested int      `json:"total_metrics_tested"`
}

type rule struct {
	name    string
	matches func(ev evidence) bool
	decide  func(ev evidence) (Decision, string)
}

// evidence pre-digests Inputs so each rule stays a one-line predicate.
type evidence struct {
	in Inputs

	conversion   stats.TestResult
	conversionCI stats.ConfidenceInterval

	significantCount   int
	secondarySignificant bool
	mixedDirections      bool
	underpowered         bool
	requiredSample       int
}

// rules apply in order; a regressing primary metric is checked right after
// the rollout rule so it can never be reported as merely "mixed".
var rules = []rule{
	{
		name: "significant positive conversion",
		matches: func(ev evidence) bool {
			return ev.conversion.Significant && ev.conversionCI.Lower > 0 && ev.conversionCI.PointEstimate > 0
		},
		decide: func(ev evidence) (Decision, string) {
			return Rollout, fmt.Sprintf(
				"Conversion rate improved significantly (p=%.6g) with a %.0f%% confidence interval [%.4f, %.4f] entirely above zero (uplift %.2f%%). %d of %d metrics reached significance; the evidence supports deploying the variant to all users.",
				ev.conversion.PValue, ev.conversionCI.ConfidenceLevel*100,
				ev.conversionCI.Lower, ev.conversionCI.Upper,
				ev.in.ConversionUpliftPct, ev.significantCount, len(ev.in.Tests))
		},
	},
	{
		name: "significant negative conversion",
		matches: func(ev evidence) bool {
			return ev.conversion.Significant && ev.conversionCI.PointEstimate < 0
		},
		decide: func(ev evidence) (Decision, string) {
			return DoNotRollout, fmt.Sprintf(
				"Conversion rate regressed significantly in the variant (p=%.6g, difference %.4f). Rolling out would harm the primary metric.",
				ev.conversion.PValue, ev.conversionCI.PointEstimate)
		},
	},
	{
		name: "secondary or mixed significance",
		matches: func(ev evidence) bool {
			return ev.secondarySignificant && (!ev.conversion.Significant || ev.mixedDirections)
		},
		decide: func(ev evidence) (Decision, string) {
			if ev.mixedDirections {
				return Monitor, fmt.Sprintf(
					"Signals are mixed: significant metrics move in opposite directions (%s). Extend the experiment before deciding.",
					significantSecondaries(ev))
			}
			return Monitor, fmt.Sprintf(
				"Signals are mixed: %s moved significantly but the primary conversion-rate test did not reach significance (p=%.6g). Engagement alone does not justify a rollout; extend the experiment.",
				significantSecondaries(ev), ev.conversion.PValue)
		},
	},
	{
		name: "no significance, underpowered",
		matches: func(ev evidence) bool {
			return ev.significantCount == 0 && ev.underpowered
		},
		decide: func(ev evidence) (Decision, string) {
			return Monitor, fmt.Sprintf(
				"No metric shows a significant difference (conversion p=%.6g), and the achieved sample of %d per group is below the %s required to detect the observed effect at the target power. Keep the experiment running to collect more data.",
				ev.conversion.PValue, ev.in.ActualSampleSizePerGroup, requiredSampleText(ev.requiredSample))
		},
	},
	{
		name: "no detectable effect",
		matches: func(ev evidence) bool {
			return true
		},
		decide: func(ev evidence) (Decision, string) {
			return Monitor, fmt.Sprintf(
				"No metric shows a significant difference at adequate power (%d per group, %d required for conversion rate). The experiment is effectively a null result; monitor before making changes.",
				ev.in.ActualSampleSizePerGroup, ev.requiredSample)
		},
	},
}

// Recommend applies the decision table and assembles the insight sentences.
func Recommend(in Inputs) Insights {
	ev := digest(in)

	var decision Decision
	var rationale string
	for _, r := range rules {
		if r.matches(ev) {
			decision, rationale = r.decide(ev)
			break
		}
	}

	return Insights{
		Insights:           buildInsights(in, ev),
		Recommendation:     decision,
		Rationale:          rationale,
		SignificantMetrics: ev.significantCount,
		TotalMetricsTested: len(in.Tests),
	}
}

func digest(in Inputs) evidence {
	ev := evidence{
		in:           in,
		conversion:   in.Tests["conversion_rate"],
		conversionCI: in.Intervals["conversion_rate"],
	}

	positive, negative := false, false
	for name, t := range in.Tests {
		if !t.Significant {
			continue
		}
		ev.significantCount++
		if name != "conversion_rate" {
			ev.secondarySignificant = true
		}
		if ci, ok := in.Intervals[name]; ok {
			if ci.PointEstimate > 0 {
				positive = true
			}
			if ci.PointEstimate < 0 {
				negative = true
			}
		}
	}
	ev.mixedDirections = positive && negative

	ev.requiredSample = in.Power["conversion_rate"].RequiredSampleSizePerGroup
	ev.underpowered = ev.requiredSample == stats.RequiredSampleInfinite ||
		in.ActualSampleSizePerGroup < ev.requiredSample

	return ev
}

func significantSecondaries(ev evidence) string {
	names := ""
	for _, name := range []string{"time_spent", "clicks"} {
		if t, ok := ev.in.Tests[name]; ok && t.Significant {
			if names != "" {
				names += " and "
			}
			names += fmt.Sprintf("%s (p=%.6g)", name, t.PValue)
		}
	}
	if names == "" {
		names = "a secondary metric"
	}
	return names
}

func requiredSampleText(required int) string {
	if required == stats.RequiredSampleInfinite {
		return "unbounded sample"
	}
	return fmt.Sprintf("%d", required)
}

func buildInsights(in Inputs, ev evidence) []string {
	var out []string

	if ev.conversion.Significant {
		out = append(out, fmt.Sprintf(
			"The variant group achieved a statistically significant lift of %.2f%% in conversion rate (%.2f%% to %.2f%%). This directly impacts revenue.",
			in.ConversionUpliftPct, in.ControlConversionRate*100, in.VariantConversionRate*100))
	} else {
		out = append(out, "Conversion rate difference is not statistically significant. No reliable evidence the variant improves conversions.")
	}

	if t, ok := in.Tests["time_spent"]; ok && t.Significant {
		out = append(out, fmt.Sprintf(
			"Users in the variant spent on average %.2f more minutes per session, indicating improved engagement.",
			in.TimeSpentDiff))
	}
	if t, ok := in.Tests["clicks"]; ok && t.Significant {
		out = append(out, fmt.Sprintf(
			"Variant users averaged %.2f more clicks, suggesting better interaction with the product.",
			in.ClicksDiff))
	}

	return out
}

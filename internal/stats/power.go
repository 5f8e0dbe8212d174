package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// RequiredSampleInfinite is the serialized stand-in for an infinite required
// sample size: with a zero observed effect no sample can reach the target
// power, and +Inf is not representable in JSON.
const RequiredSampleInfinite = -1

// PowerResult reports the observed effect size for one metric and the
// per-group sample size required to detect it at the target power.
type PowerResult struct {
	Metric                     string  `json:"metric"`
	TestType                   string  `json:"test"`
	EffectSize                 float64 `json:"effect_size"`
	RequiredSampleSizePerGroup int     `json:"required_sample_size_per_group"`
	Alpha                      float64 `json:"alpha"`
	Power                      float64 `json:"power"`
}

// CohensH is the arcsine-transformed effect size for two proportions.
func CohensH(pControl, pVariant float64) float64 {
	return math.Abs(2*math.Asin(math.Sqrt(pVariant)) - 2*math.Asin(math.Sqrt(pControl)))
}

// CohensD is the standardized effect size for two independent means.
func CohensD(meanControl, stdControl, meanVariant, stdVariant float64) float64 {
	pooled := math.Sqrt((stdControl*stdControl + stdVariant*stdVariant) / 2)
	if pooled == 0 {
		return 0
	}
	return math.Abs(meanVariant-meanControl) / pooled
}

// ConversionUplift is the relative change in conversion rate, in percent.
// Undefined (reported as 0) when the control rate is zero.
func ConversionUplift(pControl, pVariant float64) float64 {
	if pControl <= 0 {
		return 0
	}
	return (pVariant - pControl) / pControl * 100
}

// AnalyzeProportions solves the closed-form two-sample size formula for the
// z-test on the arcsine-stabilized scale: n = ((z_{a/2} + z_{pow}) / h)^2.
func AnalyzeProportions(pControl, pVariant, alpha, power float64) PowerResult {
	h := CohensH(pControl, pVariant)
	return PowerResult{
		Metric:                     "conversion_rate",
		TestType:                   "Two-Proportion Z-Test",
		EffectSize:                 h,
		RequiredSampleSizePerGroup: requiredSample(h, alpha, power, 1),
		Alpha:                      alpha,
		Power:                      power,
	}
}

// AnalyzeMeans solves the d-based two-sample formula for the t-test:
// n = 2 * ((z_{a/2} + z_{pow}) / d)^2 per group.
func AnalyzeMeans(metric string, meanControl, stdControl, meanVariant, stdVariant, alpha, power float64) PowerResult {
	d := CohensD(meanControl, stdControl, meanVariant, stdVariant)
	return PowerResult{
		Metric:                     metric,
		TestType:                   "Independent T-Test (Welch)",
		EffectSize:                 d,
		RequiredSampleSizePerGroup: requiredSample(d, alpha, power, 2),
		Alpha:                      alpha,
		Power:                      power,
	}
}

func requiredSample(effect, alpha, power float64, scaling float64) int {
	if effect == 0 {
		return RequiredSampleInfinite
	}
	zAlpha := distuv.UnitNormal.Quantile(1 - alpha/2)
	zPower := distuv.UnitNormal.Quantile(power)
	n := scaling * math.Pow((zAlpha+zPower)/effect, 2)
	return int(math.Ceil(n))
}

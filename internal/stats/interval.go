package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConfidenceInterval bounds the difference of a metric between groups
// (variant minus control). Lower <= PointEstimate <= Upper always holds.
type ConfidenceInterval struct {
	Metric          string  `json:"metric"`
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	PointEstimate   float64 `json:"point_estimate"`
	ConfidenceLevel float64 `json:"confidence_level"`
}

// ProportionDiffInterval builds a normal-approximation interval for the
// difference in conversion rates using the unpooled standard error.
func ProportionDiffInterval(convControl, nControl, convVariant, nVariant int, level float64) (ConfidenceInterval, error) {
	if err := validateCounts(convControl, nControl, convVariant, nVariant); err != nil {
		return ConfidenceInterval{}, err
	}

	rateControl := float64(convControl) / float64(nControl)
	rateVariant := float64(convVariant) / float64(nVariant)
	diff := rateVariant - rateControl

	se := math.Sqrt(rateControl*(1-rateControl)/float64(nControl) + rateVariant*(1-rateVariant)/float64(nVariant))
	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)

	return newInterval("conversion_rate", diff, z*se, level), nil
}

// MeanDiffInterval builds a Welch interval for the difference in means: the
// standard error does not pool variances and the critical value comes from
// the Students-t distribution at the Welch-Satterthwaite degrees of freedom.
// Degenerate samples (fewer than two observations, zero variance) collapse
// the interval onto the point estimate.
func MeanDiffInterval(metric string, control, variant []float64, level float64) (ConfidenceInterval, error) {
	if len(control) < 1 || len(variant) < 1 {
		return ConfidenceInterval{}, fmt.Errorf("%w: both samples must be non-empty (control=%d, variant=%d)", ErrInvalidParameter, len(control), len(variant))
	}

	diff := stat.Mean(variant, nil) - stat.Mean(control, nil)

	if len(control) < 2 || len(variant) < 2 {
		return newInterval(metric, diff, 0, level), nil
	}

	nControl := float64(len(control))
	nVariant := float64(len(variant))
	varControl := stat.Variance(control, nil)
	varVariant := stat.Variance(variant, nil)

	se2 := varControl/nControl + varVariant/nVariant
	if se2 == 0 {
		return newInterval(metric, diff, 0, level), nil
	}

	df := welchDF(varControl, nControl, varVariant, nVariant)
	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}.Quantile(1 - (1-level)/2)

	return newInterval(metric, diff, tCrit*math.Sqrt(se2), level), nil
}

func newInterval(metric string, estimate, margin float64, level float64) ConfidenceInterval {
	lower := estimate - margin
	upper := estimate + margin
	// Margin is non-negative, but the ordering is a post-condition the rest
	// of the pipeline relies on.
	if lower > upper {
		lower, upper = upper, lower
	}
	return ConfidenceInterval{
		Metric:          metric,
		Lower:           lower,
		Upper:           upper,
		PointEstimate:   estimate,
		ConfidenceLevel: level,
	}
}

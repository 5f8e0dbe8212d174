package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestMeans runs a two-sided Welch's t-test on two independent samples.
// Equal population variances are not assumed; the degrees of freedom come
// from the Welch-Satterthwaite equation and are generally non-integer.
//
// With fewer than two observations in either group, or zero variance in
// both, the sentinel result (statistic 0, p-value 1, not significant) is
// returned: there is no evidence either way and the pipeline must not abort.
func TestMeans(metric string, control, variant []float64, alpha float64) (TestResult, error) {
	if len(control) < 1 || len(variant) < 1 {
		return TestResult{}, fmt.Errorf("%w: both samples must be non-empty (control=%d, variant=%d)", ErrInvalidParameter, len(control), len(variant))
	}

	result := TestResult{
		Metric:   metric,
		TestType: "Independent T-Test (Welch)",
		Alpha:    alpha,
	}

	nControl := float64(len(control))
	nVariant := float64(len(variant))
	meanControl := stat.Mean(control, nil)
	meanVariant := stat.Mean(variant, nil)

	if len(control) < 2 || len(variant) < 2 {
		result.PValue = 1
		result.Interpretation = degenerateInterpretation(metric)
		return result, nil
	}

	varControl := stat.Variance(control, nil)
	varVariant := stat.Variance(variant, nil)

	se2 := varControl/nControl + varVariant/nVariant
	if se2 == 0 {
		result.PValue = 1
		result.Interpretation = degenerateInterpretation(metric)
		return result, nil
	}

	t := (meanVariant - meanControl) / math.Sqrt(se2)
	df := welchDF(varControl, nControl, varVariant, nVariant)

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	result.Statistic = t
	result.PValue = p
	result.Significant = p < alpha
	result.Interpretation = meanInterpretation(metric, meanControl, meanVariant, result.Significant)

	return result, nil
}

// welchDF is the Welch-Satterthwaite approximation of the degrees of
// freedom for unequal variances.
func welchDF(varControl, nControl, varVariant, nVariant float64) float64 {
	a := varControl / nControl
	b := varVariant / nVariant
	return (a + b) * (a + b) / (a*a/(nControl-1) + b*b/(nVariant-1))
}

func meanInterpretation(metric string, meanControl, meanVariant float64, significant bool) string {
	verdict := "No statistically significant difference detected."
	if significant {
		verdict = "Statistically significant difference detected."
	}
	return fmt.Sprintf("%s: Control mean=%.4f, Variant mean=%.4f. Difference=%.4f. %s",
		metric, meanControl, meanVariant, meanVariant-meanControl, verdict)
}

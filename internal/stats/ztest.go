// Package stats implements the hypothesis tests, confidence intervals and
// power analysis behind an A/B experiment readout. All functions are pure:
// degenerate numeric inputs (zero variance, zero standard error) produce a
// safe sentinel result rather than an error, so a pipeline run always
// completes with a full report.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter marks inputs that are rejected before any computation:
// negative counts, sample sizes below one, successes exceeding trials.
var ErrInvalidParameter = errors.New("invalid parameter")

// TestResult is one hypothesis test outcome. Immutable once produced.
type TestResult struct {
	Metric         string  `json:"metric"`
	TestType       string  `json:"test_type"`
	Statistic      float64 `json:"statistic"`
	PValue         float64 `json:"p_value"`
	Alpha          float64 `json:"alpha"`
	Significant    bool    `json:"significant"`
	Interpretation string  `json:"interpretation"`
}

// TestProportions runs a two-sided two-proportion z-test on conversion
// counts. H0: the control and variant conversion rates are equal.
//
// When the pooled standard error is zero (pooled rate 0 or 1) the null
// cannot be rejected and the sentinel result (statistic 0, p-value 1) is
// returned instead of dividing by zero.
func TestProportions(metric string, convControl, nControl, convVariant, nVariant int, alpha float64) (TestResult, error) {
	if err := validateCounts(convControl, nControl, convVariant, nVariant); err != nil {
		return TestResult{}, err
	}

	rateControl := float64(convControl) / float64(nControl)
	rateVariant := float64(convVariant) / float64(nVariant)

	result := TestResult{
		Metric:   metric,
		TestType: "Two-Proportion Z-Test",
		Alpha:    alpha,
	}

	pooled := float64(convControl+convVariant) / float64(nControl+nVariant)
	se := math.Sqrt(pooled * (1 - pooled) * (1/float64(nControl) + 1/float64(nVariant)))

	if se == 0 {
		result.PValue = 1
		result.Interpretation = degenerateInterpretation(metric)
		return result, nil
	}

	z := (rateVariant - rateControl) / se
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))

	result.Statistic = z
	result.PValue = p
	result.Significant = p < alpha
	result.Interpretation = proportionInterpretation(rateControl, rateVariant, result.Significant)

	return result, nil
}

func validateCounts(convControl, nControl, convVariant, nVariant int) error {
	if nControl < 1 || nVariant < 1 {
		return fmt.Errorf("%w: sample sizes must be at least 1 (control=%d, variant=%d)", ErrInvalidParameter, nControl, nVariant)
	}
	if convControl < 0 || convVariant < 0 {
		return fmt.Errorf("%w: conversion counts must be non-negative (control=%d, variant=%d)", ErrInvalidParameter, convControl, convVariant)
	}
	if convControl > nControl || convVariant > nVariant {
		return fmt.Errorf("%w: conversion counts cannot exceed sample sizes", ErrInvalidParameter)
	}
	return nil
}

func proportionInterpretation(rateControl, rateVariant float64, significant bool) string {
	uplift := 0.0
	if rateControl > 0 {
		uplift = (rateVariant - rateControl) / rateControl * 100
	}
	verdict := "No statistically significant difference detected."
	if significant {
		verdict = "Statistically significant difference detected."
	}
	return fmt.Sprintf("Conversion rate: Control=%.4f (%.2f%%), Variant=%.4f (%.2f%%). Uplift=%.2f%%. %s",
		rateControl, rateControl*100, rateVariant, rateVariant*100, uplift, verdict)
}

func degenerateInterpretation(metric string) string {
	return fmt.Sprintf("No variation observed in %s; the test cannot distinguish the groups.", metric)
}

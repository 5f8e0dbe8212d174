package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstat/splitstat/internal/stats"
)

func TestProportionDiffInterval_PlantedEffect(t *testing.T) {
	ci, err := stats.ProportionDiffInterval(1200, 10000, 1480, 10000, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 0.028, ci.PointEstimate, 1e-9)
	assert.InDelta(t, 0.0186, ci.Lower, 5e-4)
	assert.InDelta(t, 0.0374, ci.Upper, 5e-4)
	assert.Greater(t, ci.Lower, 0.0, "interval should exclude zero for a strong effect")
	assert.Equal(t, 0.95, ci.ConfidenceLevel)
}

func TestProportionDiffInterval_Ordering(t *testing.T) {
	cases := []struct {
		name               string
		convC, nC, convV, nV int
	}{
		{"positive diff", 100, 1000, 150, 1000},
		{"negative diff", 150, 1000, 100, 1000},
		{"zero diff", 120, 1000, 120, 1000},
		{"degenerate", 0, 10, 0, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ci, err := stats.ProportionDiffInterval(tc.convC, tc.nC, tc.convV, tc.nV, 0.95)
			require.NoError(t, err)

			assert.LessOrEqual(t, ci.Lower, ci.PointEstimate)
			assert.LessOrEqual(t, ci.PointEstimate, ci.Upper)
		})
	}
}

func TestProportionDiffInterval_WidthShrinksWithSampleSize(t *testing.T) {
	// Same rates, growing samples: the interval must tighten monotonically.
	prevWidth := 0.0
	for i, scale := range []int{1, 10, 100} {
		ci, err := stats.ProportionDiffInterval(12*scale, 100*scale, 15*scale, 100*scale, 0.95)
		require.NoError(t, err)

		width := ci.Upper - ci.Lower
		if i > 0 {
			assert.Less(t, width, prevWidth, "width should shrink as n grows")
		}
		prevWidth = width
	}
}

func TestProportionDiffInterval_InvalidParameters(t *testing.T) {
	_, err := stats.ProportionDiffInterval(-1, 100, 10, 100, 0.95)
	require.ErrorIs(t, err, stats.ErrInvalidParameter)
}

func TestMeanDiffInterval_ContainsPointEstimate(t *testing.T) {
	control := twoPoint(7.5, 3.0, 500)
	variant := twoPoint(8.9, 3.2, 500)

	ci, err := stats.MeanDiffInterval("time_spent", control, variant, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 1.4, ci.PointEstimate, 1e-9)
	assert.LessOrEqual(t, ci.Lower, ci.PointEstimate)
	assert.LessOrEqual(t, ci.PointEstimate, ci.Upper)
	assert.Greater(t, ci.Lower, 0.0)
}

func TestMeanDiffInterval_WidthShrinksWithSampleSize(t *testing.T) {
	prevWidth := 0.0
	for i, n := range []int{100, 1000, 10000} {
		ci, err := stats.MeanDiffInterval("time_spent", twoPoint(7.5, 3.0, n), twoPoint(8.9, 3.2, n), 0.95)
		require.NoError(t, err)

		width := ci.Upper - ci.Lower
		if i > 0 {
			assert.Less(t, width, prevWidth)
		}
		prevWidth = width
	}
}

func TestMeanDiffInterval_DegenerateCollapsesToPoint(t *testing.T) {
	// One observation per group: no variance estimate, the interval
	// collapses onto the point estimate.
	ci, err := stats.MeanDiffInterval("time_spent", []float64{5.0}, []float64{9.0}, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 4.0, ci.PointEstimate)
	assert.Equal(t, ci.PointEstimate, ci.Lower)
	assert.Equal(t, ci.PointEstimate, ci.Upper)
}

func TestMeanDiffInterval_ZeroVarianceCollapsesToPoint(t *testing.T) {
	ci, err := stats.MeanDiffInterval("clicks", []float64{3, 3, 3}, []float64{5, 5, 5}, 0.95)
	require.NoError(t, err)

	assert.Equal(t, 2.0, ci.PointEstimate)
	assert.Equal(t, ci.Lower, ci.Upper)
}

func TestMeanDiffInterval_EmptySampleRejected(t *testing.T) {
	_, err := stats.MeanDiffInterval("time_spent", []float64{}, []float64{1.0}, 0.95)
	require.ErrorIs(t, err, stats.ErrInvalidParameter)
}

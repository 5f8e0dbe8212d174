package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstat/splitstat/internal/stats"
)

func TestTestProportions_EqualCounts(t *testing.T) {
	// Identical groups carry no evidence at all.
	result, err := stats.TestProportions("conversion_rate", 120, 1000, 120, 1000, 0.05)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Statistic)
	assert.Equal(t, 1.0, result.PValue)
	assert.False(t, result.Significant)
}

func TestTestProportions_PlantedEffect(t *testing.T) {
	// 12% vs 14.8% at 10k per group is overwhelmingly significant.
	result, err := stats.TestProportions("conversion_rate", 1200, 10000, 1480, 10000, 0.05)
	require.NoError(t, err)

	assert.InDelta(t, 5.81, result.Statistic, 0.01)
	assert.Less(t, result.PValue, 1e-6)
	assert.True(t, result.Significant)
	assert.Contains(t, result.Interpretation, "significant")
}

func TestTestProportions_SmallSampleNotSignificant(t *testing.T) {
	result, err := stats.TestProportions("conversion_rate", 50, 500, 51, 500, 0.05)
	require.NoError(t, err)

	assert.False(t, result.Significant)
	assert.Greater(t, result.PValue, 0.05)
}

func TestTestProportions_ZeroStandardError(t *testing.T) {
	// Pooled rate of 0 (and of 1) makes the standard error vanish; the test
	// reports the sentinel instead of dividing by zero.
	for _, tc := range []struct {
		name               string
		convC, nC, convV, nV int
	}{
		{"no conversions", 0, 100, 0, 100},
		{"all conversions", 100, 100, 100, 100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			result, err := stats.TestProportions("conversion_rate", tc.convC, tc.nC, tc.convV, tc.nV, 0.05)
			require.NoError(t, err)

			assert.Equal(t, 0.0, result.Statistic)
			assert.Equal(t, 1.0, result.PValue)
			assert.False(t, result.Significant)
		})
	}
}

func TestTestProportions_InvalidParameters(t *testing.T) {
	cases := []struct {
		name               string
		convC, nC, convV, nV int
	}{
		{"zero sample size", 0, 0, 10, 100},
		{"negative count", -1, 100, 10, 100},
		{"count exceeds sample", 101, 100, 10, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stats.TestProportions("conversion_rate", tc.convC, tc.nC, tc.convV, tc.nV, 0.05)
			require.ErrorIs(t, err, stats.ErrInvalidParameter)
		})
	}
}

func TestTestProportions_DirectionDoesNotMatter(t *testing.T) {
	up, err := stats.TestProportions("conversion_rate", 100, 1000, 150, 1000, 0.05)
	require.NoError(t, err)
	down, err := stats.TestProportions("conversion_rate", 150, 1000, 100, 1000, 0.05)
	require.NoError(t, err)

	// Two-sided test: same p-value, mirrored statistic.
	assert.InDelta(t, up.PValue, down.PValue, 1e-12)
	assert.InDelta(t, up.Statistic, -down.Statistic, 1e-12)
}

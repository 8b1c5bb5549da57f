package chaos

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsistentUnitsScoreZero(t *testing.T) {
	t.Parallel()

	values := []string{"100 mm", "200 mm", "350 mm"}

	require.Empty(t, DetectUnitInconsistencies(values))
	require.Nil(t, DetectTemperatureFormats(values))
	require.InDelta(t, 0.0, CalculateChaosScore(values), 0)
}

func TestMixedLengthUnitsFlagged(t *testing.T) {
	t.Parallel()

	values := []string{"100 mm", "50cm", "2 m"}

	inconsistencies := DetectUnitInconsistencies(values)
	require.Len(t, inconsistencies, 1)
	require.Equal(t, "length", inconsistencies[0].Category)
	require.GreaterOrEqual(t, len(inconsistencies[0].Units), 2)
	require.Greater(t, CalculateChaosScore(values), 0.0)
}

func TestUnitTokenBoundaries(t *testing.T) {
	t.Parallel()

	// "mm" must not additionally count as "m".
	values := []string{"100 mm", "200 mm"}
	require.Empty(t, DetectUnitInconsistencies(values))
}

func TestSpacingDetection(t *testing.T) {
	t.Parallel()

	require.Nil(t, DetectSpacingIssues([]string{"100 mm", "200 mm"}))
	require.Nil(t, DetectSpacingIssues([]string{"100mm", "200mm"}))

	issue := DetectSpacingIssues([]string{"100 mm", "200mm"})
	require.NotNil(t, issue)
	require.Equal(t, 1, issue.WithSpace)
	require.Equal(t, 1, issue.WithoutSpace)
}

func TestTemperatureFormats(t *testing.T) {
	t.Parallel()

	require.Nil(t, DetectTemperatureFormats([]string{"100°C", "250°C"}))

	variation := DetectTemperatureFormats([]string{"100°C", "100 Grad", "80 bis 120"})
	require.NotNil(t, variation)
	require.Contains(t, variation.Formats, "degree_symbol")
	require.Contains(t, variation.Formats, "grad_word")
	require.Contains(t, variation.Formats, "dash_range")
}

func TestChaosScoreComposition(t *testing.T) {
	t.Parallel()

	// One flagged unit category (10) + spacing (20).
	values := []string{"100 mm", "50cm"}
	require.InDelta(t, 30.0, CalculateChaosScore(values), 0.01)
}

func TestChaosScoreBareNumericRatio(t *testing.T) {
	t.Parallel()

	// Two of four digit-bearing values are bare numbers: 20 * 2/4 = 10.
	values := []string{"100 mm", "200 mm", "300", "400"}
	require.InDelta(t, 10.0, CalculateChaosScore(values), 0.01)
}

func TestChaosScoreClamp(t *testing.T) {
	t.Parallel()

	values := []string{
		"100 mm", "50cm", "2in",
		"5 kg", "3000g",
		"12 V", "5mv",
		"1 l", "500ml",
		"100 W", "2kw",
		"100°C", "90 Grad", "80 bis 120", "70/90", "60 Celsius",
		"42",
	}

	score := CalculateChaosScore(values)
	require.LessOrEqual(t, score, 100.0)
	require.Greater(t, score, 50.0)
}

func TestMostFrequent(t *testing.T) {
	t.Parallel()

	require.Equal(t, "mm", mostFrequent(map[string]int{"mm": 5, "cm": 2}))
	require.Equal(t, "cm", mostFrequent(map[string]int{"mm": 2, "cm": 2}))
	require.Equal(t, "", mostFrequent(nil))
}

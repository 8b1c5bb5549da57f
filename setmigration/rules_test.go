package setmigration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateScoreAdditiveSignals(t *testing.T) {
	t.Parallel()

	rule := SetRule{
		SetName:            "Lighting",
		MarkerAttributes:   []string{"lumen", "color_temperature"},
		CategorySubstrings: []string{"lampe", "light"},
		Manufacturers:      []string{"Osram"},
		SKUPrefixes:        []string{"LED-"},
	}

	score, reasons := calculateScore(rule, EntitySignals{})
	require.Zero(t, score)
	require.Empty(t, reasons)

	score, _ = calculateScore(rule, EntitySignals{FilledAttributes: []string{"lumen"}})
	require.InDelta(t, 30.0, score, 0.001)

	score, _ = calculateScore(rule, EntitySignals{
		FilledAttributes: []string{"lumen", "color_temperature"},
	})
	require.InDelta(t, 60.0, score, 0.001)

	score, reasons = calculateScore(rule, EntitySignals{Categories: []string{"Deckenlampen"}})
	require.InDelta(t, 25.0, score, 0.001)
	require.Len(t, reasons, 1)

	score, _ = calculateScore(rule, EntitySignals{Manufacturer: "osram"})
	require.InDelta(t, 40.0, score, 0.001)

	score, _ = calculateScore(rule, EntitySignals{SKU: "LED-0042"})
	require.InDelta(t, 20.0, score, 0.001)
}

func TestCalculateScoreFirstMatchOnly(t *testing.T) {
	t.Parallel()

	rule := SetRule{
		CategorySubstrings: []string{"lampe", "light"},
		SKUPrefixes:        []string{"LED-", "LAMP-"},
	}

	// Both substrings match, only one category bonus.
	score, _ := calculateScore(rule, EntitySignals{
		Categories: []string{"Lampen", "Outdoor Lighting"},
	})
	require.InDelta(t, 25.0, score, 0.001)

	// Prefixes are first-match too; a SKU can only carry one anyway.
	score, _ = calculateScore(rule, EntitySignals{SKU: "LED-LAMP-1"})
	require.InDelta(t, 20.0, score, 0.001)
}

func TestCalculateScoreClamp(t *testing.T) {
	t.Parallel()

	rule := SetRule{
		MarkerAttributes:   []string{"a", "b", "c"},
		CategorySubstrings: []string{"x"},
		Manufacturers:      []string{"Acme"},
		SKUPrefixes:        []string{"A-"},
	}

	// 3*30 + 25 + 40 + 20 = 175, clamped.
	score, reasons := calculateScore(rule, EntitySignals{
		SKU:              "A-1",
		Manufacturer:     "Acme",
		Categories:       []string{"xyz"},
		FilledAttributes: []string{"a", "b", "c"},
	})
	require.InDelta(t, 100.0, score, 0.001)
	require.Len(t, reasons, 6)
}

func TestRuleForSet(t *testing.T) {
	t.Parallel()

	rule, ok := RuleForSet("lighting")
	require.True(t, ok)
	require.Equal(t, "Lighting", rule.SetName)

	_, ok = RuleForSet("Nonexistent")
	require.False(t, ok)
}

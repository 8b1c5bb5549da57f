package similarity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeSimilarityIdentity(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"color", "attr_color", "heat_resistance", "größe"} {
		require.InDelta(t, 1.0, CodeSimilarity(code, code), 0, code)
	}
}

func TestCodeSimilaritySymmetry(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"color", "colour"},
		{"attr_material", "material_text"},
		{"weight", "length"},
		{"", "weight"},
	}

	for _, pair := range pairs {
		require.InDelta(t, CodeSimilarity(pair[0], pair[1]), CodeSimilarity(pair[1], pair[0]), 1e-12)
	}
}

func TestCodeSimilarityNormalization(t *testing.T) {
	t.Parallel()

	// Prefix/suffix stripping and underscore removal collapse these to the
	// same stem.
	require.InDelta(t, 1.0, CodeSimilarity("attr_color", "color_select"), 0)
	require.InDelta(t, 1.0, CodeSimilarity("custom_heat_resistance", "heatresistance"), 0)
}

func TestCodeSimilarityContainsBonus(t *testing.T) {
	t.Parallel()

	with := CodeSimilarity("display_size", "size")
	without := CodeSimilarity("display_size", "heat")
	require.Greater(t, with, without)
	require.LessOrEqual(t, with, 1.0)
}

func TestCodeSimilarityBounds(t *testing.T) {
	t.Parallel()

	pairs := [][2]string{
		{"a", "b"}, {"color", "colour"}, {"", ""}, {"x", ""},
	}

	for _, pair := range pairs {
		score := CodeSimilarity(pair[0], pair[1])
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)
	}
}

func TestLabelSimilarity(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.0, LabelSimilarity("", "Color"), 0)
	require.InDelta(t, 0.0, LabelSimilarity("Color", ""), 0)
	require.InDelta(t, 1.0, LabelSimilarity("  Color ", "color"), 0)
	require.Greater(t, LabelSimilarity("Colour", "Color"), 0.5)
}

func TestSetOverlap(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0.0, SetOverlap(nil, nil), 0)
	require.InDelta(t, 1.0, SetOverlap([]string{"Red", "Blue"}, []string{"blue", "red"}), 0)
	require.InDelta(t, 1.0/3.0, SetOverlap([]string{"red", "blue"}, []string{"red", "green"}), 1e-12)
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, levenshtein("abc", "abc"))
	require.Equal(t, 1, levenshtein("abc", "abd"))
	require.Equal(t, 3, levenshtein("", "abc"))
	require.Equal(t, levenshtein("kitten", "sitting"), levenshtein("sitting", "kitten"))
}

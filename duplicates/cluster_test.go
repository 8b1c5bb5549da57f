package duplicates

import (
	"testing"

	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/similarity"
	"github.com/stretchr/testify/require"
)

func attrRow(id int64, code string) schema.EavAttributeRow {
	return schema.EavAttributeRow{
		ID:            id,
		Code:          code,
		FrontendInput: schema.FrontendInputText,
		BackendType:   schema.BackendTypeVarchar,
	}
}

func codeScore(a, b schema.EavAttributeRow) float64 {
	return similarity.CodeSimilarity(a.Code, b.Code)
}

func TestClusterDropsSingletons(t *testing.T) {
	t.Parallel()

	rows := []schema.EavAttributeRow{
		attrRow(1, "color"),
		attrRow(2, "weight"),
		attrRow(3, "voltage"),
	}

	groups := clusterAttributes(rows, 0.8, codeScore)
	require.Empty(t, groups)
}

func TestClusterGroupsSimilarCodes(t *testing.T) {
	t.Parallel()

	rows := []schema.EavAttributeRow{
		attrRow(1, "color"),
		attrRow(2, "attr_color"),
		attrRow(3, "weight"),
		attrRow(4, "color_select"),
	}

	groups := clusterAttributes(rows, 0.9, codeScore)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 3)
	require.Equal(t, int64(1), groups[0][0].ID) // first seed wins
}

func TestClusterDeterministic(t *testing.T) {
	t.Parallel()

	rows := []schema.EavAttributeRow{
		attrRow(1, "colour"), attrRow(2, "color"), attrRow(3, "farbe"),
		attrRow(4, "size"), attrRow(5, "groesse"), attrRow(6, "attr_size"),
	}

	first := clusterAttributes(rows, 0.7, codeScore)
	second := clusterAttributes(rows, 0.7, codeScore)
	require.Equal(t, first, second)

	for _, group := range first {
		require.GreaterOrEqual(t, len(group), 2)
	}
}

func TestClusterSeedNotRegrouped(t *testing.T) {
	t.Parallel()

	// Once an attribute lands in a group it never seeds or joins another.
	rows := []schema.EavAttributeRow{
		attrRow(1, "color"),
		attrRow(2, "color_select"),
		attrRow(3, "attr_color"),
	}

	groups := clusterAttributes(rows, 0.9, codeScore)
	require.Len(t, groups, 1)
	require.Equal(t, "1,2,3", groupKey(groups[0]))
}

func TestGroupKeyOrderIndependent(t *testing.T) {
	t.Parallel()

	a := []schema.EavAttributeRow{attrRow(3, "c"), attrRow(1, "a"), attrRow(2, "b")}
	b := []schema.EavAttributeRow{attrRow(1, "a"), attrRow(2, "b"), attrRow(3, "c")}
	require.Equal(t, groupKey(a), groupKey(b))
}

func TestMatchKnownPattern(t *testing.T) {
	t.Parallel()

	category, ok := MatchKnownPattern("product_Colour_code")
	require.True(t, ok)
	require.Equal(t, "color", category)

	category, ok = MatchKnownPattern("hersteller_name")
	require.True(t, ok)
	require.Equal(t, "manufacturer", category)

	_, ok = MatchKnownPattern("warranty_months")
	require.True(t, ok)

	_, ok = MatchKnownPattern("resolution")
	require.False(t, ok)
}

func TestRecommendationTiers(t *testing.T) {
	t.Parallel()

	require.Equal(t, RecommendationStrongMerge, recommend(0.9, 0.1, true))
	require.Equal(t, RecommendationReview, recommend(0.65, 0.1, true))
	require.Equal(t, RecommendationReview, recommend(0.1, 0.75, false))
	require.Equal(t, RecommendationNoMerge, recommend(0.1, 0.1, false))
	require.Equal(t, RecommendationLowSimilarity, recommend(0.1, 0.1, true))
}

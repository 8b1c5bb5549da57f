package merge

import (
	"testing"

	"github.com/attrcare/attrcare/schema"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestResolveConflictNoExistingRow(t *testing.T) {
	t.Parallel()

	for _, strategy := range []ConflictStrategy{
		StrategyDefault, StrategyKeepTarget, StrategyKeepSource, StrategyConcatenate, StrategySkip,
	} {
		res := resolveConflict(strategy, schema.BackendTypeVarchar, nil, "B")
		require.True(t, res.write, string(strategy))
		require.Equal(t, "B", res.value, string(strategy))
	}
}

func TestResolveConflictKeepTarget(t *testing.T) {
	t.Parallel()

	res := resolveConflict(StrategyKeepTarget, schema.BackendTypeVarchar, strPtr("A"), "B")
	require.False(t, res.write)

	res = resolveConflict(StrategyKeepTarget, schema.BackendTypeVarchar, strPtr(""), "B")
	require.False(t, res.write)
}

func TestResolveConflictKeepSource(t *testing.T) {
	t.Parallel()

	res := resolveConflict(StrategyKeepSource, schema.BackendTypeVarchar, strPtr("A"), "B")
	require.True(t, res.write)
	require.Equal(t, "B", res.value)
}

func TestResolveConflictConcatenate(t *testing.T) {
	t.Parallel()

	res := resolveConflict(StrategyConcatenate, schema.BackendTypeVarchar, strPtr("A"), "B")
	require.True(t, res.write)
	require.Equal(t, "A | B", res.value)

	res = resolveConflict(StrategyConcatenate, schema.BackendTypeText, strPtr("A"), "B")
	require.True(t, res.write)
	require.Equal(t, "A | B", res.value)

	res = resolveConflict(StrategyConcatenate, schema.BackendTypeVarchar, strPtr(""), "B")
	require.True(t, res.write)
	require.Equal(t, "B", res.value)

	// Non-text backends fall back to default behavior.
	res = resolveConflict(StrategyConcatenate, schema.BackendTypeInt, strPtr("1"), "2")
	require.False(t, res.write)
}

func TestResolveConflictSkipAndDefault(t *testing.T) {
	t.Parallel()

	res := resolveConflict(StrategySkip, schema.BackendTypeVarchar, strPtr("A"), "B")
	require.False(t, res.write)

	res = resolveConflict(StrategyDefault, schema.BackendTypeVarchar, strPtr("A"), "B")
	require.False(t, res.write)

	res = resolveConflict(StrategyDefault, schema.BackendTypeVarchar, strPtr(""), "B")
	require.True(t, res.write)
	require.Equal(t, "B", res.value)
}

func TestValuesEqualDecimal(t *testing.T) {
	t.Parallel()

	require.True(t, valuesEqual(schema.BackendTypeDecimal, "1.50", "1.5000"))
	require.False(t, valuesEqual(schema.BackendTypeDecimal, "1.50", "1.51"))
	require.False(t, valuesEqual(schema.BackendTypeVarchar, "1.50", "1.5000"))
	require.True(t, valuesEqual(schema.BackendTypeVarchar, "abc", "abc"))
}

func TestCheckCompatibility(t *testing.T) {
	t.Parallel()

	base := schema.EavAttributeRow{
		EntityTypeID:  4,
		FrontendInput: schema.FrontendInputText,
		BackendType:   schema.BackendTypeVarchar,
	}

	target := base
	require.NoError(t, CheckCompatibility(base, target))

	target = base
	target.FrontendInput = schema.FrontendInputTextarea
	require.NoError(t, CheckCompatibility(base, target))

	source := base
	source.FrontendInput = schema.FrontendInputBoolean
	source.BackendType = schema.BackendTypeInt
	target = base
	target.FrontendInput = schema.FrontendInputSelect
	target.BackendType = schema.BackendTypeInt
	require.NoError(t, CheckCompatibility(source, target))

	// One-directional: select does not narrow back into boolean.
	require.ErrorIs(t, CheckCompatibility(target, source), ErrInputMismatch)

	target = base
	target.BackendType = schema.BackendTypeText
	require.ErrorIs(t, CheckCompatibility(base, target), ErrBackendMismatch)

	target = base
	target.EntityTypeID = 7
	require.ErrorIs(t, CheckCompatibility(base, target), ErrDifferentEntityType)

	target = base
	target.BackendType = schema.BackendTypeStatic
	require.ErrorIs(t, CheckCompatibility(base, target), ErrStaticAttribute)
}

func TestRemapValue(t *testing.T) {
	t.Parallel()

	optionMap := map[int64]int64{10: 20, 11: 21}

	require.Equal(t, "20", remapValue(schema.FrontendInputSelect, "10", optionMap))
	require.Equal(t, "20,21", remapValue(schema.FrontendInputMultiselect, "10,11", optionMap))
	require.Equal(t, "20,99", remapValue(schema.FrontendInputMultiselect, "10,99", optionMap))
	require.Equal(t, "10", remapValue(schema.FrontendInputText, "10", optionMap))
	require.Equal(t, "x", remapValue(schema.FrontendInputSelect, "x", optionMap))
}

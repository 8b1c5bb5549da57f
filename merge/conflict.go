package merge

import (
	"github.com/attrcare/attrcare/schema"
	"github.com/shopspring/decimal"
)

// ConflictStrategy governs what happens when the target already holds a
// value for the same entity and store scope.
type ConflictStrategy string

const (
	// StrategyDefault overwrites only when the target slot is empty.
	StrategyDefault ConflictStrategy = "default"
	// StrategyKeepTarget never touches a slot the target already has.
	StrategyKeepTarget ConflictStrategy = "keep_target"
	// StrategyKeepSource always overwrites.
	StrategyKeepSource ConflictStrategy = "keep_source"
	// StrategyConcatenate joins existing and incoming with " | "
	// (text/varchar backends only; other backends fall back to default).
	StrategyConcatenate ConflictStrategy = "concatenate"
	// StrategySkip never overwrites.
	StrategySkip ConflictStrategy = "skip"

	concatSeparator = " | "
)

// resolution is the outcome of one value-slot conflict.
type resolution struct {
	write bool
	value string
}

func concatenatable(backend schema.BackendType) bool {
	return backend == schema.BackendTypeVarchar || backend == schema.BackendTypeText
}

// resolveConflict applies the strategy to one target slot. existing is nil
// when the target has no row for the entity/store pair.
func resolveConflict(
	strategy ConflictStrategy, backend schema.BackendType, existing *string, incoming string,
) resolution {
	if existing == nil {
		return resolution{write: true, value: incoming}
	}

	switch strategy {
	case StrategyKeepTarget, StrategySkip:
		return resolution{write: false}

	case StrategyKeepSource:
		return resolution{write: true, value: incoming}

	case StrategyConcatenate:
		if !concatenatable(backend) {
			break
		}

		if *existing == "" {
			return resolution{write: true, value: incoming}
		}

		return resolution{write: true, value: *existing + concatSeparator + incoming}

	case StrategyDefault:
	}

	// Default: overwrite only an empty slot.
	if *existing == "" {
		return resolution{write: true, value: incoming}
	}

	return resolution{write: false}
}

// valuesEqual compares two raw values per backend family. Decimal values
// compare numerically so "1.50" and "1.5000" do not count as a conflict.
func valuesEqual(backend schema.BackendType, a, b string) bool {
	if backend == schema.BackendTypeDecimal {
		da, errA := decimal.NewFromString(a)
		db, errB := decimal.NewFromString(b)

		if errA == nil && errB == nil {
			return da.Equal(db)
		}
	}

	return a == b
}

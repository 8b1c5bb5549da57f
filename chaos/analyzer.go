// Package chaos quantifies formatting inconsistency across the observed
// values of a free-text attribute.
package chaos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/schema"
)

const valuesLimit = 1000

// Report is the result of analyzing one attribute.
type Report struct {
	AttributeID   int64
	AttributeCode string
	ChaosScore    float64
	ValueCount    int
	Units         []UnitInconsistency
	Spacing       *SpacingIssue
	Temperature   *TemperatureVariation
	Examples      []string
	Note          string
}

// FormatSuggestion is the advisory standardization rule derived from the
// detectors that fired. No mutation happens here.
type FormatSuggestion struct {
	TargetUnits       map[string]string // category -> most frequent token
	PreferSpace       *bool             // nil when spacing did not fire
	TemperatureFormat string
}

// Analyzer orchestrates the pure detectors per attribute.
type Analyzer struct {
	repo *attrs.Repository
}

// NewAnalyzer constructor.
func NewAnalyzer(repo *attrs.Repository) *Analyzer {
	return &Analyzer{
		repo: repo,
	}
}

// AnalyzeAttribute loads up to 1000 distinct non-empty values and scores
// them. Static attributes and missing value tables yield a zero score with a
// note instead of an error.
func (s *Analyzer) AnalyzeAttribute(ctx context.Context, code string, entityType string) (*Report, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &Report{AttributeCode: code, Note: "unknown entity type"}, nil
		}

		return nil, err
	}

	success, attribute, err := s.repo.AttributeByCode(ctx, entityTypeID, code)
	if err != nil {
		return nil, err
	}

	if !success {
		return &Report{AttributeCode: code, Note: "attribute not found"}, nil
	}

	report := &Report{
		AttributeID:   attribute.ID,
		AttributeCode: attribute.Code,
	}

	if attribute.BackendType == schema.BackendTypeStatic {
		report.Note = "static attribute has no value storage"

		return report, nil
	}

	hasTable, err := s.repo.HasValueTable(ctx, attribute.BackendType)
	if err != nil {
		return nil, err
	}

	if !hasTable {
		report.Note = "value table missing"

		return report, nil
	}

	values, err := s.repo.DistinctValues(ctx, attribute.BackendType, attribute.ID, valuesLimit)
	if err != nil {
		return nil, err
	}

	report.ValueCount = len(values)
	report.Units = DetectUnitInconsistencies(values)
	report.Spacing = DetectSpacingIssues(values)
	report.Temperature = DetectTemperatureFormats(values)
	report.ChaosScore = CalculateChaosScore(values)

	if len(values) > maxExamples {
		report.Examples = values[:maxExamples]
	} else {
		report.Examples = values
	}

	return report, nil
}

// SuggestStandardFormat derives one standardization rule per detector that
// fired in the report.
func (s *Analyzer) SuggestStandardFormat(ctx context.Context, code string, entityType string) (*FormatSuggestion, error) {
	report, err := s.AnalyzeAttribute(ctx, code, entityType)
	if err != nil {
		return nil, err
	}

	suggestion := &FormatSuggestion{TargetUnits: make(map[string]string)}

	for _, inconsistency := range report.Units {
		suggestion.TargetUnits[inconsistency.Category] = mostFrequent(inconsistency.Units)
	}

	if report.Spacing != nil {
		prefer := report.Spacing.WithSpace >= report.Spacing.WithoutSpace
		suggestion.PreferSpace = &prefer
	}

	if report.Temperature != nil {
		suggestion.TemperatureFormat = mostFrequent(report.Temperature.Formats)
	}

	return suggestion, nil
}

// mostFrequent picks the token with the highest count; ties resolve to the
// lexicographically smaller token for determinism.
func mostFrequent(counts map[string]int) string {
	best := ""
	bestCount := -1

	for token, count := range counts {
		if count > bestCount || (count == bestCount && token < best) {
			best = token
			bestCount = count
		}
	}

	return best
}

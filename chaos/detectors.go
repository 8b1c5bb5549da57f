package chaos

import (
	"regexp"

	"github.com/attrcare/attrcare/util"
)

// UnitCategory is one family of measurement tokens checked for mixed usage.
type UnitCategory struct {
	Name  string
	Units []string
}

// unitCategories is the fixed detector seed data. Tokens are matched on word
// boundaries, case-insensitively.
var unitCategories = []UnitCategory{
	{Name: "length", Units: []string{"mm", "cm", "m", "km", "in", "inch", "zoll"}},
	{Name: "power", Units: []string{"w", "kw", "watt", "kilowatt", "hp", "ps"}},
	{Name: "temperature", Units: []string{"°c", "celsius", "grad", "°f", "fahrenheit"}},
	{Name: "volume", Units: []string{"ml", "cl", "l", "liter", "litre"}},
	{Name: "weight", Units: []string{"mg", "g", "kg", "t", "lb", "oz"}},
	{Name: "voltage", Units: []string{"mv", "v", "kv", "volt"}},
}

var (
	unitPatterns = buildUnitPatterns()

	spacedPattern   = regexp.MustCompile(`[0-9]\s+[A-Za-z°]`)
	unspacedPattern = regexp.MustCompile(`[0-9][A-Za-z°]`)

	bareNumericPattern = regexp.MustCompile(`^\s*-?[0-9]+([.,][0-9]+)?\s*$`)
	anyDigitPattern    = regexp.MustCompile(`[0-9]`)
)

// Temperature formats are independent sub-patterns; mixing any two of them
// across a value set counts as variation.
var temperaturePatterns = []struct {
	Name    string
	Pattern *regexp.Regexp
}{
	{Name: "degree_symbol", Pattern: regexp.MustCompile(`(?i)[0-9]\s*°\s*C`)},
	{Name: "celsius_word", Pattern: regexp.MustCompile(`(?i)celsius`)},
	{Name: "grad_word", Pattern: regexp.MustCompile(`(?i)\bgrad\b`)},
	{Name: "dash_range", Pattern: regexp.MustCompile(`(?i)[0-9]\s*bis\s*[0-9]`)},
	{Name: "slash_range", Pattern: regexp.MustCompile(`[0-9]\s*/\s*[0-9]`)},
}

func buildUnitPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)

	for _, category := range unitCategories {
		for _, unit := range category.Units {
			if _, ok := patterns[unit]; ok {
				continue
			}

			// \b does not separate "50" from "cm", so tokens anchor on
			// non-letter neighbors instead of word boundaries.
			quoted := regexp.QuoteMeta(unit)
			patterns[unit] = regexp.MustCompile(`(?i)(?:^|[^a-zA-Z°])` + quoted + `(?:[^a-zA-Z°]|$)`)
		}
	}

	return patterns
}

// UnitInconsistency reports one unit category observed with multiple
// distinct tokens.
type UnitInconsistency struct {
	Category string
	Units    map[string]int // token -> occurrences
}

// DetectUnitInconsistencies counts unit-token occurrences per category across
// the value set and flags categories with more than one distinct token.
func DetectUnitInconsistencies(values []string) []UnitInconsistency {
	result := make([]UnitInconsistency, 0)

	for _, category := range unitCategories {
		counts := make(map[string]int)

		for _, unit := range category.Units {
			pattern := unitPatterns[unit]

			for _, value := range values {
				if n := len(pattern.FindAllStringIndex(value, -1)); n > 0 {
					counts[unit] += n
				}
			}
		}

		if len(counts) > 1 {
			result = append(result, UnitInconsistency{Category: category.Name, Units: counts})
		}
	}

	return result
}

// SpacingIssue reports a mix of "100mm" and "100 mm" style values.
type SpacingIssue struct {
	WithSpace    int
	WithoutSpace int
	Examples     []string
}

// DetectSpacingIssues classifies every value as spaced or unspaced
// number-unit notation and flags the set when both classes occur.
func DetectSpacingIssues(values []string) *SpacingIssue {
	issue := SpacingIssue{}

	for _, value := range values {
		switch {
		case spacedPattern.MatchString(value):
			issue.WithSpace++

			if len(issue.Examples) < maxExamples {
				issue.Examples = append(issue.Examples, value)
			}
		case unspacedPattern.MatchString(value):
			issue.WithoutSpace++

			if len(issue.Examples) < maxExamples {
				issue.Examples = append(issue.Examples, value)
			}
		}
	}

	if issue.WithSpace == 0 || issue.WithoutSpace == 0 {
		return nil
	}

	return &issue
}

// TemperatureVariation reports which temperature notations occur and how
// often.
type TemperatureVariation struct {
	Formats map[string]int
}

// DetectTemperatureFormats flags a value set using more than one temperature
// notation.
func DetectTemperatureFormats(values []string) *TemperatureVariation {
	counts := make(map[string]int)

	for _, entry := range temperaturePatterns {
		for _, value := range values {
			if entry.Pattern.MatchString(value) {
				counts[entry.Name]++
			}
		}
	}

	if len(counts) <= 1 {
		return nil
	}

	return &TemperatureVariation{Formats: counts}
}

// Chaos score weights.
const (
	unitCategoryPoints     = 10.0
	spacingPoints          = 20.0
	temperaturePointsPer   = 7.0
	temperaturePointsCap   = 20.0
	bareNumericPointsScale = 20.0
	maxScore               = 100.0
	maxExamples            = 10
)

// CalculateChaosScore folds the detector outputs into a 0-100 score.
func CalculateChaosScore(values []string) float64 {
	score := 0.0

	score += unitCategoryPoints * float64(len(DetectUnitInconsistencies(values)))

	if DetectSpacingIssues(values) != nil {
		score += spacingPoints
	}

	if variation := DetectTemperatureFormats(values); variation != nil {
		score += min(temperaturePointsCap, temperaturePointsPer*float64(len(variation.Formats)))
	}

	withDigit := 0
	bareNumeric := 0

	for _, value := range values {
		if !anyDigitPattern.MatchString(value) {
			continue
		}

		withDigit++

		if bareNumericPattern.MatchString(value) {
			bareNumeric++
		}
	}

	if withDigit > 0 {
		score += bareNumericPointsScale * float64(bareNumeric) / float64(withDigit)
	}

	if score > maxScore {
		score = maxScore
	}

	return util.Round2(score)
}

package duplicates

import "strings"

// KnownPattern groups attribute codes that historically accumulate
// duplicates. Matching is substring-based and independent of the similarity
// threshold. Seed data, not a rule engine.
type KnownPattern struct {
	Category   string
	Substrings []string
}

var knownPatterns = []KnownPattern{
	{Category: "color", Substrings: []string{"color", "colour", "farbe"}},
	{Category: "material", Substrings: []string{"material", "fabric", "stoff"}},
	{Category: "size", Substrings: []string{"size", "groesse", "grosse", "dimension"}},
	{Category: "manufacturer", Substrings: []string{"manufacturer", "brand", "vendor", "hersteller"}},
	{Category: "weight", Substrings: []string{"weight", "gewicht"}},
	{Category: "warranty", Substrings: []string{"warranty", "garantie"}},
	{Category: "energy", Substrings: []string{"energy", "energie", "power_class"}},
}

// MatchKnownPattern returns the first pattern category whose substring occurs
// in the code, case-insensitively.
func MatchKnownPattern(code string) (string, bool) {
	lower := strings.ToLower(code)

	for _, pattern := range knownPatterns {
		for _, substring := range pattern.Substrings {
			if strings.Contains(lower, substring) {
				return pattern.Category, true
			}
		}
	}

	return "", false
}

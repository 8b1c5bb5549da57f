// Package setmigration recommends and executes reassignment of catalog
// entities between attribute sets, scored against a fixed rule table.
package setmigration

import (
	"fmt"
	"strings"

	"github.com/attrcare/attrcare/util"
)

const (
	markerScore       = 30
	categoryScore     = 25
	manufacturerScore = 40
	skuPrefixScore    = 20

	misassignedThreshold = 50
)

// SetRule describes the signals that make an entity belong to one target
// attribute set. The table is domain seed data, not a rule engine.
type SetRule struct {
	SetName            string
	MarkerAttributes   []string
	CategorySubstrings []string
	Manufacturers      []string
	SKUPrefixes        []string
}

var setRules = []SetRule{
	{
		SetName:            "Lighting",
		MarkerAttributes:   []string{"lumen", "color_temperature", "socket_type"},
		CategorySubstrings: []string{"lampe", "leuchte", "lighting", "light"},
		Manufacturers:      []string{"Osram", "Philips Lighting", "Paulmann"},
		SKUPrefixes:        []string{"LED-", "LAMP-", "LT-"},
	},
	{
		SetName:            "Cables",
		MarkerAttributes:   []string{"cable_length", "connector_type", "awg"},
		CategorySubstrings: []string{"kabel", "cable", "leitung"},
		Manufacturers:      []string{"Lapp", "Helukabel"},
		SKUPrefixes:        []string{"CBL-", "KAB-"},
	},
	{
		SetName:            "Power Tools",
		MarkerAttributes:   []string{"power_watt", "rpm", "chuck_size"},
		CategorySubstrings: []string{"werkzeug", "tool", "bohr"},
		Manufacturers:      []string{"Bosch", "Makita", "DeWalt"},
		SKUPrefixes:        []string{"PT-", "TOOL-"},
	},
	{
		SetName:            "Batteries",
		MarkerAttributes:   []string{"capacity_mah", "voltage", "battery_chemistry"},
		CategorySubstrings: []string{"akku", "batterie", "battery"},
		Manufacturers:      []string{"Varta", "Duracell"},
		SKUPrefixes:        []string{"BAT-", "AKK-"},
	},
}

// RuleForSet returns the rule for an attribute set name, if one is seeded.
func RuleForSet(setName string) (SetRule, bool) {
	for _, rule := range setRules {
		if strings.EqualFold(rule.SetName, setName) {
			return rule, true
		}
	}

	return SetRule{}, false
}

// EntitySignals is everything the scoring function looks at for one entity.
// Gathering the signals is I/O; scoring them is pure.
type EntitySignals struct {
	SKU              string
	Manufacturer     string
	Categories       []string
	FilledAttributes []string // attribute codes with a non-empty value
}

// calculateScore applies one rule to one entity. Signals are independent and
// additive: +30 per filled marker attribute, +25 for the first category
// substring match, +40 for an exact manufacturer match, +20 for the first
// identifier prefix match. Clamped to 100.
func calculateScore(rule SetRule, signals EntitySignals) (float64, []string) {
	score := 0.0
	reasons := make([]string, 0)

	for _, marker := range rule.MarkerAttributes {
		if util.Contains(signals.FilledAttributes, marker) {
			score += markerScore
			reasons = append(reasons, fmt.Sprintf("attribute %s has a value", marker))
		}
	}

	for _, substring := range rule.CategorySubstrings {
		matched := false

		for _, category := range signals.Categories {
			if strings.Contains(strings.ToLower(category), strings.ToLower(substring)) {
				reasons = append(reasons, fmt.Sprintf("category %q matches %q", category, substring))
				matched = true

				break
			}
		}

		if matched {
			score += categoryScore

			break
		}
	}

	for _, manufacturer := range rule.Manufacturers {
		if signals.Manufacturer != "" && strings.EqualFold(signals.Manufacturer, manufacturer) {
			score += manufacturerScore
			reasons = append(reasons, fmt.Sprintf("manufacturer %s", manufacturer))

			break
		}
	}

	for _, prefix := range rule.SKUPrefixes {
		if strings.HasPrefix(signals.SKU, prefix) {
			score += skuPrefixScore
			reasons = append(reasons, fmt.Sprintf("identifier prefix %s", prefix))

			break
		}
	}

	if score > 100 {
		score = 100
	}

	return score, reasons
}

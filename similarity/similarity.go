// Package similarity holds the pure scoring functions behind duplicate
// detection. All functions are total, deterministic and symmetric in their
// two inputs.
package similarity

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var codePrefixes = []string{"attr_", "attribute_", "custom_", "product_"}

var codeSuffixes = []string{"_dropdown", "_select", "_multiselect", "_text", "_textarea"}

const (
	distanceWeight = 0.4
	overlapWeight  = 0.4
	containsBonus  = 0.2
)

// NormalizeCode folds an attribute code down to its conceptual stem:
// ASCII-fold, lowercase, strip the conventional prefixes/suffixes, drop
// underscores.
func NormalizeCode(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(unidecode.Unidecode(code)))

	for _, prefix := range codePrefixes {
		if strings.HasPrefix(normalized, prefix) {
			normalized = strings.TrimPrefix(normalized, prefix)

			break
		}
	}

	for _, suffix := range codeSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)

			break
		}
	}

	return strings.ReplaceAll(normalized, "_", "")
}

// CodeSimilarity scores two attribute codes in [0,1]. Equal normalized stems
// score 1.0; otherwise edit distance and character overlap are combined with
// a flat bonus when one stem contains the other.
func CodeSimilarity(code1, code2 string) float64 {
	norm1 := NormalizeCode(code1)
	norm2 := NormalizeCode(code2)

	if norm1 == norm2 {
		return 1.0
	}

	maxLen := max(len([]rune(norm1)), len([]rune(norm2)))
	if maxLen == 0 {
		return 1.0
	}

	score := distanceWeight*(1.0-float64(levenshtein(norm1, norm2))/float64(maxLen)) +
		overlapWeight*charOverlap(norm1, norm2)

	if norm1 != "" && norm2 != "" &&
		(strings.Contains(norm1, norm2) || strings.Contains(norm2, norm1)) {
		score += containsBonus
	}

	return min(score, 1.0)
}

// LabelSimilarity scores two human labels in [0,1].
func LabelSimilarity(label1, label2 string) float64 {
	norm1 := strings.ToLower(strings.TrimSpace(label1))
	norm2 := strings.ToLower(strings.TrimSpace(label2))

	if norm1 == "" || norm2 == "" {
		return 0
	}

	if norm1 == norm2 {
		return 1.0
	}

	return charOverlap(norm1, norm2)
}

// SetOverlap is the Jaccard index over two collections of strings, compared
// case-insensitively. An empty union scores 0.
func SetOverlap(setA, setB []string) float64 {
	a := make(map[string]struct{}, len(setA))
	for _, v := range setA {
		a[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	b := make(map[string]struct{}, len(setB))
	for _, v := range setB {
		b[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}

	intersection := 0

	for v := range a {
		if _, ok := b[v]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// charOverlap is the multiset character intersection of the two strings,
// scaled by the longer length.
func charOverlap(a, b string) float64 {
	runesA := []rune(a)
	runesB := []rune(b)

	maxLen := max(len(runesA), len(runesB))
	if maxLen == 0 {
		return 0
	}

	countsA := make(map[rune]int, len(runesA))
	for _, r := range runesA {
		countsA[r]++
	}

	shared := 0

	for _, r := range runesB {
		if countsA[r] > 0 {
			countsA[r]--
			shared++
		}
	}

	return float64(shared) / float64(maxLen)
}

func levenshtein(a, b string) int {
	runesA := []rune(a)
	runesB := []rune(b)

	if len(runesA) == 0 {
		return len(runesB)
	}

	if len(runesB) == 0 {
		return len(runesA)
	}

	prev := make([]int, len(runesB)+1)
	curr := make([]int, len(runesB)+1)

	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(runesA); i++ {
		curr[0] = i

		for j := 1; j <= len(runesB); j++ {
			cost := 1
			if runesA[i-1] == runesB[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(runesB)]
}

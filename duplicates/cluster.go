package duplicates

import (
	"sort"
	"strconv"
	"strings"

	"github.com/attrcare/attrcare/schema"
)

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// clusterAttributes runs greedy single-linkage grouping: walk the candidate
// list in order, seed a group with the first unprocessed attribute, pull in
// every later unprocessed attribute whose score against the seed reaches the
// threshold. Groups of size 1 are dropped. The left-to-right, first-seed-wins
// order is part of the contract.
func clusterAttributes(
	rows []schema.EavAttributeRow,
	threshold float64,
	score func(a, b schema.EavAttributeRow) float64,
) [][]schema.EavAttributeRow {
	processed := make(map[int64]struct{}, len(rows))
	groups := make([][]schema.EavAttributeRow, 0)

	for i, seed := range rows {
		if _, ok := processed[seed.ID]; ok {
			continue
		}

		processed[seed.ID] = struct{}{}
		group := []schema.EavAttributeRow{seed}

		for _, candidate := range rows[i+1:] {
			if _, ok := processed[candidate.ID]; ok {
				continue
			}

			if score(seed, candidate) >= threshold {
				processed[candidate.ID] = struct{}{}
				group = append(group, candidate)
			}
		}

		if len(group) > 1 {
			groups = append(groups, group)
		}
	}

	return groups
}

// groupKey identifies a group by its attribute-id set, order-independent.
func groupKey(rows []schema.EavAttributeRow) string {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	return strings.Join(parts, ",")
}

package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/attrcare/attrcare/schema"
)

// SourcePreview is the dry-run analysis for one source attribute.
type SourcePreview struct {
	SourceID        int64
	Code            string
	Compatible      bool
	Reason          string
	ValueCount      int
	Conflicts       int
	WouldMigrate    int
	WouldSkip       int
	OptionsToCreate int
	OptionsMatched  int
}

// PreviewResult aggregates a read-only merge dry run. Calling Preview any
// number of times mutates nothing.
type PreviewResult struct {
	TargetID     int64
	TargetCode   string
	Sources      []SourcePreview
	Warnings     []string
	TotalValues  int
	TotalMigrate int
	TotalSkip    int
}

// Preview computes the same compatibility, option and conflict analysis as
// Execute without writing.
func (s *Merger) Preview(ctx context.Context, req Request) (*PreviewResult, error) {
	found, target, err := s.repo.Attribute(ctx, req.TargetID)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrTargetNotFound
	}

	result := &PreviewResult{
		TargetID:   target.ID,
		TargetCode: target.Code,
	}

	targetLabels := map[int64]string{}
	if target.FrontendInput.HasOptions() {
		targetLabels, err = s.repo.BaseOptionLabels(ctx, target.ID)
		if err != nil {
			return nil, err
		}
	}

	byNormalized := make(map[string]struct{}, len(targetLabels))
	for _, label := range targetLabels {
		byNormalized[strings.ToLower(strings.TrimSpace(label))] = struct{}{}
	}

	for _, sourceID := range req.SourceIDs {
		preview := SourcePreview{SourceID: sourceID}

		found, source, err := s.repo.Attribute(ctx, sourceID)
		if err != nil {
			return nil, err
		}

		if !found {
			preview.Reason = "source attribute not found"
			result.Sources = append(result.Sources, preview)
			result.Warnings = append(result.Warnings, fmt.Sprintf("attribute %d not found", sourceID))

			continue
		}

		preview.Code = source.Code

		if err := CheckCompatibility(source, target); err != nil {
			preview.Reason = err.Error()
			result.Sources = append(result.Sources, preview)
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("%s: not compatible: %s", source.Code, err.Error()))

			continue
		}

		preview.Compatible = true

		if target.FrontendInput.HasOptions() {
			sourceLabels, err := s.repo.BaseOptionLabels(ctx, source.ID)
			if err != nil {
				return nil, err
			}

			for _, label := range sourceLabels {
				if _, ok := byNormalized[strings.ToLower(strings.TrimSpace(label))]; ok {
					preview.OptionsMatched++
				} else {
					preview.OptionsToCreate++
				}
			}
		}

		sourceRows, err := s.repo.Values(ctx, source.BackendType, source.ID)
		if err != nil {
			return nil, err
		}

		targetRows, err := s.repo.Values(ctx, target.BackendType, target.ID)
		if err != nil {
			return nil, err
		}

		targetBySlot := make(map[[2]int64]schema.CatalogProductValueRow, len(targetRows))
		for _, row := range targetRows {
			targetBySlot[[2]int64{row.EntityID, row.StoreID}] = row
		}

		for _, sourceRow := range sourceRows {
			if !sourceRow.Value.Valid || sourceRow.Value.String == "" {
				preview.WouldSkip++

				continue
			}

			preview.ValueCount++

			existingRow, hasExisting := targetBySlot[[2]int64{sourceRow.EntityID, sourceRow.StoreID}]

			var existing *string

			if hasExisting {
				value := ""
				if existingRow.Value.Valid {
					value = existingRow.Value.String
				}

				existing = &value

				if value != "" {
					preview.Conflicts++
				}
			}

			if hasExisting && existingRow.Value.Valid &&
				valuesEqual(target.BackendType, existingRow.Value.String, sourceRow.Value.String) {
				preview.WouldSkip++

				continue
			}

			if resolveConflict(req.Strategy, target.BackendType, existing, sourceRow.Value.String).write {
				preview.WouldMigrate++
			} else {
				preview.WouldSkip++
			}
		}

		if preview.Conflicts > 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s: %d value conflicts resolved by strategy %q",
				source.Code, preview.Conflicts, req.Strategy))
		}

		if req.DeleteSources {
			result.Warnings = append(result.Warnings, fmt.Sprintf(
				"%s: attribute will be deleted after migration; a merge rollback cannot restore it",
				source.Code))
		}

		result.Sources = append(result.Sources, preview)
	}

	for _, preview := range result.Sources {
		result.TotalValues += preview.ValueCount
		result.TotalMigrate += preview.WouldMigrate
		result.TotalSkip += preview.WouldSkip
	}

	return result, nil
}

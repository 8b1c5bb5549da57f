// Package duplicates discovers groups of catalog attributes that likely
// describe the same concept.
package duplicates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/similarity"
	"github.com/attrcare/attrcare/util"
)

var ErrAttributeNotFound = errors.New("attribute not found")

// Strategy selects a pairwise scoring signal for FindDuplicates. The
// known-pattern pass always runs in addition.
type Strategy string

const (
	StrategyCode   Strategy = "code"
	StrategyLabel  Strategy = "label"
	StrategyValues Strategy = "values"

	// Weights of FindSimilarTo's combined score.
	similarCodeWeight      = 0.4
	similarLabelWeight     = 0.3
	similarInputTypeWeight = 0.3

	reasonThreshold = 0.5
)

// AttributeInfo is the outward descriptor of one attribute in a result.
type AttributeInfo struct {
	ID            int64
	Code          string
	Label         string
	FrontendInput schema.FrontendInput
	BackendType   schema.BackendType
}

// Group is one set of likely-duplicate attributes.
type Group struct {
	Strategy   Strategy
	Category   string // set for known-pattern groups
	Attributes []AttributeInfo
}

// SimilarAttribute is one FindSimilarTo hit.
type SimilarAttribute struct {
	Attribute  AttributeInfo
	Similarity float64
	Reasons    []string
}

// ValueOverlap describes shared select options between two attributes.
type ValueOverlap struct {
	OptionCount1 int
	OptionCount2 int
	Shared       int
	Overlap      float64
}

// Recommendation tiers of CompareTwoAttributes.
const (
	RecommendationStrongMerge   = "strong_merge"
	RecommendationReview        = "review"
	RecommendationNoMerge       = "no_merge"
	RecommendationLowSimilarity = "low_similarity"
)

// Comparison is the structured result of comparing two attributes.
type Comparison struct {
	Attribute1      AttributeInfo
	Attribute2      AttributeInfo
	CodeSimilarity  float64 // percent
	LabelSimilarity float64 // percent
	SameInput       bool
	SameBackend     bool
	ValueOverlap    *ValueOverlap // select-type attributes only
	Recommendation  string
}

// Detector orchestrates duplicate scans over the attribute catalog.
type Detector struct {
	repo          *attrs.Repository
	cfg           config.DuplicatesConfig
	includeSystem bool
}

// NewDetector constructor.
func NewDetector(repo *attrs.Repository, cfg config.DuplicatesConfig, includeSystem bool) *Detector {
	return &Detector{
		repo:          repo,
		cfg:           cfg,
		includeSystem: includeSystem,
	}
}

func attributeInfo(row schema.EavAttributeRow) AttributeInfo {
	return AttributeInfo{
		ID:            row.ID,
		Code:          row.Code,
		Label:         row.Label(),
		FrontendInput: row.FrontendInput,
		BackendType:   row.BackendType,
	}
}

// normalizeThreshold maps a 0-100 threshold to 0-1, falling back to the
// configured default.
func (s *Detector) normalizeThreshold(threshold int) float64 {
	if threshold <= 0 {
		threshold = s.cfg.Threshold
	}

	if threshold > 100 {
		threshold = 100
	}

	return float64(threshold) / 100.0
}

// FindDuplicates scans all attributes of the entity type with the requested
// strategies plus the always-on known-pattern pass. Result groups are
// de-duplicated by attribute-id set, first seen wins.
func (s *Detector) FindDuplicates(
	ctx context.Context, entityType string, threshold int, strategies []Strategy,
) ([]Group, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Group{}, nil
		}

		return nil, err
	}

	rows, err := s.repo.Attributes(ctx, entityTypeID, s.includeSystem)
	if err != nil {
		return nil, err
	}

	normalized := s.normalizeThreshold(threshold)
	result := make([]Group, 0)
	seen := make(map[string]struct{})

	appendGroups := func(strategy Strategy, category string, groups [][]schema.EavAttributeRow) {
		for _, group := range groups {
			key := groupKey(group)
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}

			infos := make([]AttributeInfo, 0, len(group))
			for _, row := range group {
				infos = append(infos, attributeInfo(row))
			}

			result = append(result, Group{Strategy: strategy, Category: category, Attributes: infos})
		}
	}

	for _, strategy := range strategies {
		switch strategy {
		case StrategyCode:
			appendGroups(StrategyCode, "", clusterAttributes(rows, normalized,
				func(a, b schema.EavAttributeRow) float64 {
					return similarity.CodeSimilarity(a.Code, b.Code)
				}))

		case StrategyLabel:
			if !s.cfg.CheckLabels {
				continue
			}

			appendGroups(StrategyLabel, "", clusterAttributes(rows, normalized,
				func(a, b schema.EavAttributeRow) float64 {
					return similarity.LabelSimilarity(a.Label(), b.Label())
				}))

		case StrategyValues:
			labels, err := s.optionLabels(ctx, rows)
			if err != nil {
				return nil, err
			}

			appendGroups(StrategyValues, "", clusterAttributes(rows, normalized,
				func(a, b schema.EavAttributeRow) float64 {
					if !a.FrontendInput.HasOptions() || !b.FrontendInput.HasOptions() {
						return 0
					}

					return similarity.SetOverlap(labels[a.ID], labels[b.ID])
				}))
		}
	}

	// Known-pattern pass, regardless of threshold.
	for _, pattern := range knownPatterns {
		group := make([]schema.EavAttributeRow, 0)

		for _, row := range rows {
			if category, ok := MatchKnownPattern(row.Code); ok && category == pattern.Category {
				group = append(group, row)
			}
		}

		if len(group) > 1 {
			appendGroups("", pattern.Category, [][]schema.EavAttributeRow{group})
		}
	}

	return result, nil
}

// optionLabels loads base-scope option labels for every select-type
// attribute in the list.
func (s *Detector) optionLabels(
	ctx context.Context, rows []schema.EavAttributeRow,
) (map[int64][]string, error) {
	labels := make(map[int64][]string, len(rows))

	for _, row := range rows {
		if !row.FrontendInput.HasOptions() {
			continue
		}

		byOption, err := s.repo.BaseOptionLabels(ctx, row.ID)
		if err != nil {
			return nil, err
		}

		values := make([]string, 0, len(byOption))
		for _, label := range byOption {
			values = append(values, label)
		}

		labels[row.ID] = values
	}

	return labels, nil
}

// FindSimilarTo ranks every other attribute of the same entity type by a
// weighted combination of code, label and input-type similarity.
func (s *Detector) FindSimilarTo(
	ctx context.Context, attributeID int64, threshold int,
) ([]SimilarAttribute, error) {
	success, subject, err := s.repo.Attribute(ctx, attributeID)
	if err != nil {
		return nil, err
	}

	if !success {
		return []SimilarAttribute{}, nil
	}

	rows, err := s.repo.Attributes(ctx, subject.EntityTypeID, s.includeSystem)
	if err != nil {
		return nil, err
	}

	normalized := s.normalizeThreshold(threshold)
	subjectCategory, subjectMatches := MatchKnownPattern(subject.Code)
	result := make([]SimilarAttribute, 0)

	for _, row := range rows {
		if row.ID == subject.ID {
			continue
		}

		codeScore := similarity.CodeSimilarity(subject.Code, row.Code)
		labelScore := similarity.LabelSimilarity(subject.Label(), row.Label())

		overall := similarCodeWeight*codeScore + similarLabelWeight*labelScore
		if row.FrontendInput == subject.FrontendInput {
			overall += similarInputTypeWeight
		}

		if overall < normalized {
			continue
		}

		reasons := make([]string, 0, 3)

		if codeScore > reasonThreshold {
			reasons = append(reasons, fmt.Sprintf("similar code (%.0f%%)", codeScore*100))
		}

		if labelScore > reasonThreshold {
			reasons = append(reasons, fmt.Sprintf("similar label (%.0f%%)", labelScore*100))
		}

		if row.FrontendInput == subject.FrontendInput {
			reasons = append(reasons, fmt.Sprintf("same input type (%s)", row.FrontendInput))
		}

		if category, ok := MatchKnownPattern(row.Code); ok && subjectMatches && category == subjectCategory {
			reasons = append(reasons, fmt.Sprintf("both match known pattern %q", category))
		}

		result = append(result, SimilarAttribute{
			Attribute:  attributeInfo(row),
			Similarity: util.Round2(overall),
			Reasons:    reasons,
		})
	}

	// Stable descending order; ties keep catalog order.
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j-1].Similarity < result[j].Similarity; j-- {
			result[j-1], result[j] = result[j], result[j-1]
		}
	}

	return result, nil
}

// CompareTwoAttributes produces a side-by-side comparison and a merge
// recommendation.
func (s *Detector) CompareTwoAttributes(ctx context.Context, id1, id2 int64) (*Comparison, error) {
	success1, row1, err := s.repo.Attribute(ctx, id1)
	if err != nil {
		return nil, err
	}

	success2, row2, err := s.repo.Attribute(ctx, id2)
	if err != nil {
		return nil, err
	}

	if !success1 || !success2 {
		return nil, ErrAttributeNotFound
	}

	codeScore := similarity.CodeSimilarity(row1.Code, row2.Code)
	labelScore := similarity.LabelSimilarity(row1.Label(), row2.Label())
	sameInput := row1.FrontendInput == row2.FrontendInput

	comparison := &Comparison{
		Attribute1:      attributeInfo(row1),
		Attribute2:      attributeInfo(row2),
		CodeSimilarity:  util.Round2(codeScore * 100),
		LabelSimilarity: util.Round2(labelScore * 100),
		SameInput:       sameInput,
		SameBackend:     row1.BackendType == row2.BackendType,
	}

	if row1.FrontendInput.HasOptions() && row2.FrontendInput.HasOptions() {
		labels1, err := s.repo.BaseOptionLabels(ctx, row1.ID)
		if err != nil {
			return nil, err
		}

		labels2, err := s.repo.BaseOptionLabels(ctx, row2.ID)
		if err != nil {
			return nil, err
		}

		values1 := make([]string, 0, len(labels1))
		for _, label := range labels1 {
			values1 = append(values1, label)
		}

		values2 := make([]string, 0, len(labels2))
		for _, label := range labels2 {
			values2 = append(values2, label)
		}

		overlap := similarity.SetOverlap(values1, values2)
		shared := 0

		lower := make(map[string]struct{}, len(values1))
		for _, v := range values1 {
			lower[normalizeLabel(v)] = struct{}{}
		}

		for _, v := range values2 {
			if _, ok := lower[normalizeLabel(v)]; ok {
				shared++
			}
		}

		comparison.ValueOverlap = &ValueOverlap{
			OptionCount1: len(values1),
			OptionCount2: len(values2),
			Shared:       shared,
			Overlap:      util.Round2(overlap),
		}
	}

	comparison.Recommendation = recommend(codeScore, labelScore, sameInput)

	return comparison, nil
}

func recommend(codeScore, labelScore float64, sameInput bool) string {
	switch {
	case codeScore > 0.8 && sameInput:
		return RecommendationStrongMerge
	case codeScore > 0.6 || labelScore > 0.7:
		return RecommendationReview
	case !sameInput:
		return RecommendationNoMerge
	default:
		return RecommendationLowSimilarity
	}
}

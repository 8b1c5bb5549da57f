// Package fillrate computes, per attribute, the fraction of catalog entities
// carrying a non-empty value.
package fillrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/util"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Status classifies a fill rate against the configured thresholds.
type Status string

const (
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusHealthy  Status = "healthy"

	unusedRateThreshold = 0.01

	summaryCacheKeyPrefix = "attrcare:fillrate-summary:"
	summaryCacheTTL       = 5 * time.Minute
)

// FillRate is the computed rate of one attribute.
type FillRate struct {
	AttributeID int64
	Code        string
	Label       string
	BackendType schema.BackendType
	Filled      int64
	Total       int64
	Rate        float64 // percent, two decimals
	Status      Status
}

// SetFillRates bundles the rates of one attribute set.
type SetFillRates struct {
	Set         schema.EavAttributeSetRow
	EntityCount int64
	Rates       []FillRate
}

// Summary aggregates status buckets across all attributes.
type Summary struct {
	TotalAttributes int     `json:"total_attributes"`
	Critical        int     `json:"critical"`
	Warning         int     `json:"warning"`
	Healthy         int     `json:"healthy"`
	MeanRate        float64 `json:"mean_rate"`
}

// Analyzer Main Object.
type Analyzer struct {
	repo          *attrs.Repository
	cfg           config.FillRateConfig
	redis         *redis.Client
	includeSystem bool
}

// NewAnalyzer constructor. redis may be nil; caching is then skipped.
func NewAnalyzer(
	repo *attrs.Repository, cfg config.FillRateConfig, redisClient *redis.Client, includeSystem bool,
) *Analyzer {
	return &Analyzer{
		repo:          repo,
		cfg:           cfg,
		redis:         redisClient,
		includeSystem: includeSystem,
	}
}

func classify(rate float64, cfg config.FillRateConfig) Status {
	switch {
	case rate <= cfg.CriticalThreshold:
		return StatusCritical
	case rate < cfg.WarningThreshold:
		return StatusWarning
	default:
		return StatusHealthy
	}
}

// AttributeFillRates computes rates for every non-static attribute of the
// entity type, optionally scoped to one attribute set. Zero entities in
// scope yields an empty result. Sorted ascending by rate, worst first.
func (s *Analyzer) AttributeFillRates(
	ctx context.Context, entityType string, attributeSetID int64,
) ([]FillRate, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []FillRate{}, nil
		}

		return nil, err
	}

	return s.fillRates(ctx, entityTypeID, attributeSetID)
}

func (s *Analyzer) fillRates(
	ctx context.Context, entityTypeID int64, attributeSetID int64,
) ([]FillRate, error) {
	total, err := s.repo.TotalProducts(ctx, attributeSetID)
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return []FillRate{}, nil
	}

	attributes, err := s.repo.Attributes(ctx, entityTypeID, s.includeSystem)
	if err != nil {
		return nil, err
	}

	if attributeSetID > 0 {
		memberIDs, err := s.repo.SetAttributeIDs(ctx, attributeSetID)
		if err != nil {
			return nil, err
		}

		scoped := make([]schema.EavAttributeRow, 0, len(attributes))

		for _, attribute := range attributes {
			if util.Contains(memberIDs, attribute.ID) {
				scoped = append(scoped, attribute)
			}
		}

		attributes = scoped
	}

	// Request-scoped existence lookup, one probe per backend family.
	tableExists := make(map[schema.BackendType]bool)

	result := make([]FillRate, 0, len(attributes))

	for _, attribute := range attributes {
		if attribute.BackendType == schema.BackendTypeStatic {
			continue
		}

		exists, ok := tableExists[attribute.BackendType]
		if !ok {
			exists, err = s.repo.HasValueTable(ctx, attribute.BackendType)
			if err != nil {
				return nil, err
			}

			tableExists[attribute.BackendType] = exists
		}

		if !exists {
			// Missing value table: skipped by contract, not an error.
			continue
		}

		filled, err := s.repo.CountFilled(ctx, attribute.BackendType, attribute.ID, attributeSetID)
		if err != nil {
			return nil, err
		}

		rate := util.Round2(float64(filled) / float64(total) * 100)

		result = append(result, FillRate{
			AttributeID: attribute.ID,
			Code:        attribute.Code,
			Label:       attribute.Label(),
			BackendType: attribute.BackendType,
			Filled:      filled,
			Total:       total,
			Rate:        rate,
			Status:      classify(rate, s.cfg),
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Rate < result[j].Rate })

	return result, nil
}

// FillRatesBySet computes rates once per attribute set, descending by entity
// count.
func (s *Analyzer) FillRatesBySet(ctx context.Context, entityType string) ([]SetFillRates, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []SetFillRates{}, nil
		}

		return nil, err
	}

	sets, err := s.repo.AttributeSets(ctx, entityTypeID)
	if err != nil {
		return nil, err
	}

	result := make([]SetFillRates, 0, len(sets))

	for _, set := range sets {
		count, err := s.repo.TotalProducts(ctx, set.ID)
		if err != nil {
			return nil, err
		}

		rates, err := s.fillRates(ctx, entityTypeID, set.ID)
		if err != nil {
			return nil, err
		}

		result = append(result, SetFillRates{Set: set, EntityCount: count, Rates: rates})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].EntityCount > result[j].EntityCount })

	return result, nil
}

// CriticalAttributes filters the full rate list to rate < threshold.
func (s *Analyzer) CriticalAttributes(
	ctx context.Context, entityType string, threshold float64,
) ([]FillRate, error) {
	rates, err := s.AttributeFillRates(ctx, entityType, 0)
	if err != nil {
		return nil, err
	}

	result := make([]FillRate, 0)

	for _, rate := range rates {
		if rate.Rate < threshold {
			result = append(result, rate)
		}
	}

	return result, nil
}

// UnusedAttributes lists attributes with effectively no values.
func (s *Analyzer) UnusedAttributes(ctx context.Context, entityType string) ([]FillRate, error) {
	return s.CriticalAttributes(ctx, entityType, unusedRateThreshold)
}

// SummaryStatistics aggregates status buckets and the mean rate. Results are
// cached briefly in redis when available.
func (s *Analyzer) SummaryStatistics(ctx context.Context, entityType string) (*Summary, error) {
	cacheKey := summaryCacheKeyPrefix + entityType

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			summary := &Summary{}
			if err = json.Unmarshal(cached, summary); err == nil {
				return summary, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logrus.Warnf("fillrate summary cache read: %v", err)
		}
	}

	rates, err := s.AttributeFillRates(ctx, entityType, 0)
	if err != nil {
		return nil, err
	}

	summary := &Summary{TotalAttributes: len(rates)}
	sum := 0.0

	for _, rate := range rates {
		sum += rate.Rate

		switch rate.Status {
		case StatusCritical:
			summary.Critical++
		case StatusWarning:
			summary.Warning++
		case StatusHealthy:
			summary.Healthy++
		}
	}

	if len(rates) > 0 {
		summary.MeanRate = util.Round2(sum / float64(len(rates)))
	}

	if s.redis != nil {
		encoded, err := json.Marshal(summary)
		if err == nil {
			if err = s.redis.Set(ctx, cacheKey, encoded, summaryCacheTTL).Err(); err != nil {
				logrus.Warnf("fillrate summary cache write: %v", err)
			}
		}
	}

	return summary, nil
}

package setmigration

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/util"
	"github.com/doug-martin/goqu/v9"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	defaultSetName = "Default"

	distributionCacheKeyPrefix = "attrcare:set-distribution:"
	distributionCacheTTL       = 5 * time.Minute
)

var ErrSetNotFound = errors.New("attribute set not found")

// Criteria narrows a candidate scan.
type Criteria struct {
	MinScore float64
	Limit    int
}

// Candidate is one entity recommended for reassignment.
type Candidate struct {
	EntityID     int64
	SKU          string
	CurrentSetID int64
	TargetSetID  int64
	TargetSet    string
	Score        float64
	Reasons      []string
}

// Migrator Main Object.
type Migrator struct {
	db         *goqu.Database
	repo       *attrs.Repository
	redis      *redis.Client
	entityType string
}

// NewMigrator constructor. redis may be nil; caching is then skipped.
func NewMigrator(
	db *goqu.Database, repo *attrs.Repository, redisClient *redis.Client, entityType string,
) *Migrator {
	return &Migrator{
		db:         db,
		repo:       repo,
		redis:      redisClient,
		entityType: entityType,
	}
}

// attributeLookup is a request-scoped cache of attribute metadata by code.
type attributeLookup struct {
	repo         *attrs.Repository
	entityTypeID int64
	byCode       map[string]*schema.EavAttributeRow
	byID         map[int64]*schema.EavAttributeRow
}

func newAttributeLookup(repo *attrs.Repository, entityTypeID int64) *attributeLookup {
	return &attributeLookup{
		repo:         repo,
		entityTypeID: entityTypeID,
		byCode:       make(map[string]*schema.EavAttributeRow),
		byID:         make(map[int64]*schema.EavAttributeRow),
	}
}

func (s *attributeLookup) ByCode(ctx context.Context, code string) (*schema.EavAttributeRow, error) {
	if row, ok := s.byCode[code]; ok {
		return row, nil
	}

	found, row, err := s.repo.AttributeByCode(ctx, s.entityTypeID, code)
	if err != nil {
		return nil, err
	}

	if !found {
		s.byCode[code] = nil

		return nil, nil //nolint: nilnil
	}

	s.byCode[code] = &row
	s.byID[row.ID] = &row

	return &row, nil
}

func (s *attributeLookup) ByID(ctx context.Context, id int64) (*schema.EavAttributeRow, error) {
	if row, ok := s.byID[id]; ok {
		return row, nil
	}

	found, row, err := s.repo.Attribute(ctx, id)
	if err != nil {
		return nil, err
	}

	if !found {
		s.byID[id] = nil

		return nil, nil //nolint: nilnil
	}

	s.byID[id] = &row

	return &row, nil
}

func (s *Migrator) entitySignals(
	ctx context.Context, product schema.CatalogProductRow, rule SetRule, lookup *attributeLookup,
) (EntitySignals, error) {
	signals := EntitySignals{
		SKU:          product.SKU,
		Manufacturer: product.Manufacturer.String,
	}

	err := s.db.Select(schema.CatalogProductCategoryTableCategoryNameCol).
		From(schema.CatalogProductCategoryTable).
		Where(schema.CatalogProductCategoryTableProductIDCol.Eq(product.ID)).
		ScanValsContext(ctx, &signals.Categories)
	if err != nil {
		return signals, err
	}

	for _, code := range rule.MarkerAttributes {
		attribute, err := lookup.ByCode(ctx, code)
		if err != nil {
			return signals, err
		}

		if attribute == nil || attribute.BackendType == schema.BackendTypeStatic {
			continue
		}

		filled, err := s.repo.HasValue(ctx, attribute.BackendType, attribute.ID, product.ID)
		if err != nil {
			return signals, err
		}

		if filled {
			signals.FilledAttributes = append(signals.FilledAttributes, code)
		}
	}

	return signals, nil
}

func (s *Migrator) products(ctx context.Context, sourceSetID int64, excludeSetID int64) (
	[]schema.CatalogProductRow, error,
) {
	sqSelect := s.db.Select(schema.CatalogProductTable.All()).
		From(schema.CatalogProductTable).
		Order(schema.CatalogProductTableIDCol.Asc())

	if sourceSetID > 0 {
		sqSelect = sqSelect.Where(schema.CatalogProductTableAttributeSetIDCol.Eq(sourceSetID))
	} else if excludeSetID > 0 {
		sqSelect = sqSelect.Where(schema.CatalogProductTableAttributeSetIDCol.Neq(excludeSetID))
	}

	rows := make([]schema.CatalogProductRow, 0)
	err := sqSelect.ScanStructsContext(ctx, &rows)

	return rows, err
}

// FindMigrationCandidates scans entities (all, one source set, or everything
// outside the target set) and scores each against the target set's rule.
// Unknown sets and sets without a seeded rule yield an empty result.
func (s *Migrator) FindMigrationCandidates(
	ctx context.Context, sourceSetID int64, targetSetID int64, criteria Criteria,
) ([]Candidate, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, s.entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Candidate{}, nil
		}

		return nil, err
	}

	found, targetSet, err := s.repo.AttributeSet(ctx, targetSetID)
	if err != nil {
		return nil, err
	}

	if !found {
		return []Candidate{}, nil
	}

	rule, ok := RuleForSet(targetSet.Name)
	if !ok {
		return []Candidate{}, nil
	}

	products, err := s.products(ctx, sourceSetID, targetSetID)
	if err != nil {
		return nil, err
	}

	lookup := newAttributeLookup(s.repo, entityTypeID)
	result := make([]Candidate, 0)

	for _, product := range products {
		if product.AttributeSetID == targetSetID {
			continue
		}

		signals, err := s.entitySignals(ctx, product, rule, lookup)
		if err != nil {
			return nil, err
		}

		score, reasons := calculateScore(rule, signals)
		if score <= 0 || score < criteria.MinScore {
			continue
		}

		result = append(result, Candidate{
			EntityID:     product.ID,
			SKU:          product.SKU,
			CurrentSetID: product.AttributeSetID,
			TargetSetID:  targetSet.ID,
			TargetSet:    targetSet.Name,
			Score:        score,
			Reasons:      reasons,
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })

	if criteria.Limit > 0 && len(result) > criteria.Limit {
		result = result[:criteria.Limit]
	}

	return result, nil
}

// LostAttribute is a current-set attribute absent from the target set.
type LostAttribute struct {
	AttributeID int64
	Code        string
	HasValues   bool
}

// EntityPreview is the membership diff for one entity.
type EntityPreview struct {
	EntityID       int64
	SKU            string
	CurrentSetID   int64
	Lost           []LostAttribute
	LostWithValues int
	Gained         []string
}

// MigrationPreview aggregates the per-entity diffs.
type MigrationPreview struct {
	TargetSetID      int64
	Entities         []EntityPreview
	NotFound         []int64
	Safe             int
	DataLossWarnings int
}

// PreviewMigration diffs each entity's current attribute-set membership
// against the target set's. Attributes lost with values mean silent data
// loss and are counted as warnings. Read-only.
func (s *Migrator) PreviewMigration(
	ctx context.Context, entityIDs []int64, targetSetID int64,
) (*MigrationPreview, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, s.entityType)
	if err != nil {
		return nil, err
	}

	targetAttrIDs, err := s.repo.SetAttributeIDs(ctx, targetSetID)
	if err != nil {
		return nil, err
	}

	lookup := newAttributeLookup(s.repo, entityTypeID)
	membership := map[int64][]int64{targetSetID: targetAttrIDs}
	result := &MigrationPreview{TargetSetID: targetSetID}

	for _, entityID := range entityIDs {
		product := schema.CatalogProductRow{}

		found, err := s.db.Select(schema.CatalogProductTable.All()).
			From(schema.CatalogProductTable).
			Where(schema.CatalogProductTableIDCol.Eq(entityID)).
			ScanStructContext(ctx, &product)
		if err != nil {
			return nil, err
		}

		if !found {
			result.NotFound = append(result.NotFound, entityID)

			continue
		}

		currentAttrIDs, ok := membership[product.AttributeSetID]
		if !ok {
			currentAttrIDs, err = s.repo.SetAttributeIDs(ctx, product.AttributeSetID)
			if err != nil {
				return nil, err
			}

			membership[product.AttributeSetID] = currentAttrIDs
		}

		preview := EntityPreview{
			EntityID:     product.ID,
			SKU:          product.SKU,
			CurrentSetID: product.AttributeSetID,
		}

		for _, attrID := range currentAttrIDs {
			if util.Contains(targetAttrIDs, attrID) {
				continue
			}

			attribute, err := lookup.ByID(ctx, attrID)
			if err != nil {
				return nil, err
			}

			if attribute == nil {
				continue
			}

			lost := LostAttribute{AttributeID: attribute.ID, Code: attribute.Code}

			if attribute.BackendType != schema.BackendTypeStatic {
				lost.HasValues, err = s.repo.HasValue(ctx, attribute.BackendType, attribute.ID, product.ID)
				if err != nil {
					return nil, err
				}
			}

			if lost.HasValues {
				preview.LostWithValues++
			}

			preview.Lost = append(preview.Lost, lost)
		}

		for _, attrID := range targetAttrIDs {
			if util.Contains(currentAttrIDs, attrID) {
				continue
			}

			attribute, err := lookup.ByID(ctx, attrID)
			if err != nil {
				return nil, err
			}

			if attribute != nil {
				preview.Gained = append(preview.Gained, attribute.Code)
			}
		}

		if preview.LostWithValues > 0 {
			result.DataLossWarnings++
		} else {
			result.Safe++
		}

		result.Entities = append(result.Entities, preview)
	}

	return result, nil
}

// EntityFailure records a per-entity soft failure inside a batch.
type EntityFailure struct {
	EntityID int64
	Error    string
}

// MigrationResult reports an executed batch.
type MigrationResult struct {
	TargetSetID int64
	Migrated    []int64
	Skipped     []int64
	Failed      []EntityFailure
}

// ExecuteMigration reassigns entities to the target set inside one
// transaction. Entities already in the target set are recorded as skipped
// without a write. When preserveValues is false, value rows of attributes
// not present in the target set are removed along the way.
func (s *Migrator) ExecuteMigration(
	ctx context.Context, entityIDs []int64, targetSetID int64, preserveValues bool,
) (*MigrationResult, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, s.entityType)
	if err != nil {
		return nil, err
	}

	found, _, err := s.repo.AttributeSet(ctx, targetSetID)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrSetNotFound
	}

	targetAttrIDs, err := s.repo.SetAttributeIDs(ctx, targetSetID)
	if err != nil {
		return nil, err
	}

	lookup := newAttributeLookup(s.repo, entityTypeID)
	membership := map[int64][]int64{targetSetID: targetAttrIDs}
	result := &MigrationResult{TargetSetID: targetSetID}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = tx.Wrap(func() error {
		for _, entityID := range entityIDs {
			product := schema.CatalogProductRow{}

			found, err := tx.Select(schema.CatalogProductTable.All()).
				From(schema.CatalogProductTable).
				Where(schema.CatalogProductTableIDCol.Eq(entityID)).
				ScanStructContext(ctx, &product)
			if err != nil {
				return err
			}

			if !found {
				result.Failed = append(result.Failed, EntityFailure{EntityID: entityID, Error: "entity not found"})

				continue
			}

			if product.AttributeSetID == targetSetID {
				result.Skipped = append(result.Skipped, entityID)

				continue
			}

			// Savepoint per entity: a soft-failed entity must not leave its
			// value deletes behind while the set assignment stays unchanged.
			if _, err := tx.ExecContext(ctx, "SAVEPOINT migrate_entity"); err != nil {
				return err
			}

			if err := s.migrateEntity(ctx, tx, product, targetSetID, preserveValues, lookup, membership); err != nil {
				if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT migrate_entity"); rbErr != nil {
					return rbErr
				}

				result.Failed = append(result.Failed, EntityFailure{EntityID: entityID, Error: err.Error()})

				continue
			}

			if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT migrate_entity"); err != nil {
				return err
			}

			result.Migrated = append(result.Migrated, entityID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof(
		"set migration to %d: %d migrated, %d skipped, %d failed",
		targetSetID, len(result.Migrated), len(result.Skipped), len(result.Failed),
	)

	return result, nil
}

func (s *Migrator) migrateEntity(
	ctx context.Context, tx *goqu.TxDatabase, product schema.CatalogProductRow,
	targetSetID int64, preserveValues bool,
	lookup *attributeLookup, membership map[int64][]int64,
) error {
	targetAttrIDs := membership[targetSetID]

	if !preserveValues {
		currentAttrIDs, ok := membership[product.AttributeSetID]
		if !ok {
			var err error

			currentAttrIDs, err = s.repo.SetAttributeIDs(ctx, product.AttributeSetID)
			if err != nil {
				return err
			}

			membership[product.AttributeSetID] = currentAttrIDs
		}

		for _, attrID := range currentAttrIDs {
			if util.Contains(targetAttrIDs, attrID) {
				continue
			}

			attribute, err := lookup.ByID(ctx, attrID)
			if err != nil {
				return err
			}

			if attribute == nil {
				continue
			}

			table, ok := schema.ValueTableFor(attribute.BackendType)
			if !ok {
				continue
			}

			_, err = tx.Delete(table.Table).
				Where(
					table.AttributeIDCol().Eq(attribute.ID),
					table.EntityIDCol().Eq(product.ID),
				).
				Executor().ExecContext(ctx)
			if err != nil {
				return err
			}
		}
	}

	_, err := tx.Update(schema.CatalogProductTable).
		Set(goqu.Record{"attribute_set_id": targetSetID}).
		Where(schema.CatalogProductTableIDCol.Eq(product.ID)).
		Executor().ExecContext(ctx)

	return err
}

// FindMisassignedProducts re-applies the whole rule table to every entity in
// the default set and flags strong matches (score >= 50) for any target set.
func (s *Migrator) FindMisassignedProducts(ctx context.Context) ([]Candidate, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, s.entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Candidate{}, nil
		}

		return nil, err
	}

	found, defaultSet, err := s.repo.AttributeSetByName(ctx, entityTypeID, defaultSetName)
	if err != nil {
		return nil, err
	}

	if !found {
		return []Candidate{}, nil
	}

	products, err := s.products(ctx, defaultSet.ID, 0)
	if err != nil {
		return nil, err
	}

	lookup := newAttributeLookup(s.repo, entityTypeID)
	result := make([]Candidate, 0)

	for _, rule := range setRules {
		ruleFound, ruleSet, err := s.repo.AttributeSetByName(ctx, entityTypeID, rule.SetName)
		if err != nil {
			return nil, err
		}

		if !ruleFound || ruleSet.ID == defaultSet.ID {
			continue
		}

		for _, product := range products {
			signals, err := s.entitySignals(ctx, product, rule, lookup)
			if err != nil {
				return nil, err
			}

			score, reasons := calculateScore(rule, signals)
			if score < misassignedThreshold {
				continue
			}

			result = append(result, Candidate{
				EntityID:     product.ID,
				SKU:          product.SKU,
				CurrentSetID: product.AttributeSetID,
				TargetSetID:  ruleSet.ID,
				TargetSet:    ruleSet.Name,
				Score:        score,
				Reasons:      reasons,
			})
		}
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })

	return result, nil
}

// SetDistribution is the entity spread of one attribute set.
type SetDistribution struct {
	SetID     int64   `json:"set_id"`
	SetName   string  `json:"set_name"`
	Total     int64   `json:"total"`
	Simple    int64   `json:"simple"`
	Composite int64   `json:"composite"`
	Percent   float64 `json:"percent"`
}

// Distribution aggregates per-set entity counts and simple/composite
// sub-counts. Pure read; results are cached briefly in redis when available.
func (s *Migrator) Distribution(ctx context.Context, entityType string) ([]SetDistribution, error) {
	cacheKey := distributionCacheKeyPrefix + entityType

	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Bytes()
		if err == nil {
			result := make([]SetDistribution, 0)
			if err = json.Unmarshal(cached, &result); err == nil {
				return result, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logrus.Warnf("set distribution cache read: %v", err)
		}
	}

	entityTypeID, err := s.repo.EntityTypeID(ctx, entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []SetDistribution{}, nil
		}

		return nil, err
	}

	sets, err := s.repo.AttributeSets(ctx, entityTypeID)
	if err != nil {
		return nil, err
	}

	grandTotal, err := s.repo.TotalProducts(ctx, 0)
	if err != nil {
		return nil, err
	}

	result := make([]SetDistribution, 0, len(sets))

	for _, set := range sets {
		entry := SetDistribution{SetID: set.ID, SetName: set.Name}

		entry.Total, err = s.repo.TotalProducts(ctx, set.ID)
		if err != nil {
			return nil, err
		}

		_, err = s.db.Select(goqu.COUNT(goqu.Star())).
			From(schema.CatalogProductTable).
			Where(
				schema.CatalogProductTableAttributeSetIDCol.Eq(set.ID),
				schema.CatalogProductTableTypeIDCol.Eq(schema.ProductTypeSimple),
			).
			ScanValContext(ctx, &entry.Simple)
		if err != nil {
			return nil, err
		}

		entry.Composite = entry.Total - entry.Simple

		if grandTotal > 0 {
			entry.Percent = util.Round2(float64(entry.Total) / float64(grandTotal) * 100)
		}

		result = append(result, entry)
	}

	if s.redis != nil {
		encoded, err := json.Marshal(result)
		if err == nil {
			if err = s.redis.Set(ctx, cacheKey, encoded, distributionCacheTTL).Err(); err != nil {
				logrus.Warnf("set distribution cache write: %v", err)
			}
		}
	}

	return result, nil
}

// Suggestion is one positive-score attribute set for an entity.
type Suggestion struct {
	SetID   int64
	SetName string
	Score   float64
	Reasons []string
}

// SuggestAttributeSet runs the whole rule table against one entity, skipping
// its current set, and returns positive scores best first.
func (s *Migrator) SuggestAttributeSet(ctx context.Context, entityID int64) ([]Suggestion, error) {
	entityTypeID, err := s.repo.EntityTypeID(ctx, s.entityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []Suggestion{}, nil
		}

		return nil, err
	}

	product := schema.CatalogProductRow{}

	found, err := s.db.Select(schema.CatalogProductTable.All()).
		From(schema.CatalogProductTable).
		Where(schema.CatalogProductTableIDCol.Eq(entityID)).
		ScanStructContext(ctx, &product)
	if err != nil {
		return nil, err
	}

	if !found {
		return []Suggestion{}, nil
	}

	lookup := newAttributeLookup(s.repo, entityTypeID)
	result := make([]Suggestion, 0)

	for _, rule := range setRules {
		ruleFound, ruleSet, err := s.repo.AttributeSetByName(ctx, entityTypeID, rule.SetName)
		if err != nil {
			return nil, err
		}

		if !ruleFound || ruleSet.ID == product.AttributeSetID {
			continue
		}

		signals, err := s.entitySignals(ctx, product, rule, lookup)
		if err != nil {
			return nil, err
		}

		score, reasons := calculateScore(rule, signals)
		if score <= 0 {
			continue
		}

		result = append(result, Suggestion{
			SetID:   ruleSet.ID,
			SetName: ruleSet.Name,
			Score:   score,
			Reasons: reasons,
		})
	}

	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })

	return result, nil
}

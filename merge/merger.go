// Package merge migrates values and options from source attributes into a
// target attribute under a conflict strategy, atomically.
package merge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/sirupsen/logrus"
)

var (
	ErrTargetNotFound   = errors.New("target attribute not found")
	ErrTargetIsSource   = errors.New("target attribute listed among sources")
	ErrNoValueTable     = errors.New("no value table for backend type")
	ErrNothingToRestore = errors.New("no merge log entries for operation")
)

// Request describes one merge invocation.
type Request struct {
	SourceIDs     []int64
	TargetID      int64
	Strategy      ConflictStrategy
	DeleteSources bool
}

// SourceResult reports the outcome for one source attribute. Incompatible
// sources are soft failures; they do not abort the batch.
type SourceResult struct {
	SourceID       int64
	Code           string
	Success        bool
	Incompatible   bool
	Reason         string
	OptionsCreated int
	OptionsMapped  int
	ValuesMigrated int
	ValuesSkipped  int
	Deleted        bool
}

// Result is the outcome of a whole merge operation.
type Result struct {
	OperationID    string
	TargetID       int64
	Success        bool
	Sources        []SourceResult
	ValuesMigrated int
}

// Merger Main Object.
type Merger struct {
	db   *goqu.Database
	repo *attrs.Repository
}

// NewMerger constructor.
func NewMerger(db *goqu.Database, repo *attrs.Repository) *Merger {
	return &Merger{
		db:   db,
		repo: repo,
	}
}

// Execute runs the merge inside one transaction. Per-source incompatibility
// is recorded and skipped; any other failure rolls back everything.
func (s *Merger) Execute(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		OperationID: fmt.Sprintf("merge-%d", time.Now().UnixNano()),
		TargetID:    req.TargetID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = tx.Wrap(func() error {
		return s.execute(ctx, tx, req, result)
	})
	if err != nil {
		return nil, err
	}

	result.Success = true

	for _, source := range result.Sources {
		result.ValuesMigrated += source.ValuesMigrated
	}

	logrus.Infof("merge %s: %d values migrated into attribute %d",
		result.OperationID, result.ValuesMigrated, result.TargetID)

	return result, nil
}

func (s *Merger) execute(ctx context.Context, tx *goqu.TxDatabase, req Request, result *Result) error {
	target := schema.EavAttributeRow{}

	// Lock the target row for the duration of the merge. Concurrent merges
	// into the same attribute serialize here.
	found, err := tx.Select(schema.EavAttributeTable.All()).
		From(schema.EavAttributeTable).
		Where(schema.EavAttributeTableIDCol.Eq(req.TargetID)).
		ForUpdate(exp.Wait).
		ScanStructContext(ctx, &target)
	if err != nil {
		return err
	}

	if !found {
		return ErrTargetNotFound
	}

	if _, ok := schema.ValueTableFor(target.BackendType); !ok {
		return fmt.Errorf("%w: %s", ErrNoValueTable, target.BackendType)
	}

	for _, sourceID := range req.SourceIDs {
		if sourceID == req.TargetID {
			return ErrTargetIsSource
		}

		sourceResult := SourceResult{SourceID: sourceID}

		source := schema.EavAttributeRow{}

		found, err := tx.Select(schema.EavAttributeTable.All()).
			From(schema.EavAttributeTable).
			Where(schema.EavAttributeTableIDCol.Eq(sourceID)).
			ScanStructContext(ctx, &source)
		if err != nil {
			return err
		}

		if !found {
			sourceResult.Reason = "source attribute not found"
			result.Sources = append(result.Sources, sourceResult)

			continue
		}

		sourceResult.Code = source.Code

		if err := CheckCompatibility(source, target); err != nil {
			sourceResult.Incompatible = true
			sourceResult.Reason = err.Error()
			result.Sources = append(result.Sources, sourceResult)

			continue
		}

		optionMap := map[int64]int64{}

		if target.FrontendInput.HasOptions() {
			optionMap, sourceResult.OptionsCreated, err = s.mergeOptions(ctx, tx, source.ID, target.ID)
			if err != nil {
				return err
			}

			sourceResult.OptionsMapped = len(optionMap) - sourceResult.OptionsCreated
		}

		migrated, skipped, err := s.migrateValues(
			ctx, tx, result.OperationID, source, target, optionMap, req.Strategy,
		)
		if err != nil {
			return err
		}

		sourceResult.ValuesMigrated = migrated
		sourceResult.ValuesSkipped = skipped

		if req.DeleteSources {
			if err := s.deleteAttributeTx(ctx, tx, source); err != nil {
				return err
			}

			sourceResult.Deleted = true
		}

		sourceResult.Success = true
		result.Sources = append(result.Sources, sourceResult)
	}

	return nil
}

// baseOptionLabels reads admin-scope labels inside the transaction.
func (s *Merger) baseOptionLabels(
	ctx context.Context, tx *goqu.TxDatabase, attributeID int64,
) (map[int64]string, error) {
	rows := make([]schema.EavAttributeOptionValueRow, 0)

	err := tx.Select(schema.EavAttributeOptionValueTable.All()).
		From(schema.EavAttributeOptionValueTable).
		Join(
			schema.EavAttributeOptionTable,
			goqu.On(schema.EavAttributeOptionValueTableOptionIDCol.Eq(schema.EavAttributeOptionTableIDCol)),
		).
		Where(
			schema.EavAttributeOptionTableAttributeIDCol.Eq(attributeID),
			schema.EavAttributeOptionValueTableStoreIDCol.Eq(schema.AdminStoreID),
		).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, err
	}

	labels := make(map[int64]string, len(rows))
	for _, row := range rows {
		labels[row.OptionID] = row.Value
	}

	return labels, nil
}

// mergeOptions matches source options to target options by normalized
// admin-scope label and creates target options, with all locale label rows
// copied, for the unmatched rest. Returns the source -> target option map.
func (s *Merger) mergeOptions(
	ctx context.Context, tx *goqu.TxDatabase, sourceID, targetID int64,
) (map[int64]int64, int, error) {
	targetLabels, err := s.baseOptionLabels(ctx, tx, targetID)
	if err != nil {
		return nil, 0, err
	}

	byNormalized := make(map[string]int64, len(targetLabels))
	for optionID, label := range targetLabels {
		byNormalized[strings.ToLower(strings.TrimSpace(label))] = optionID
	}

	sourceLabels, err := s.baseOptionLabels(ctx, tx, sourceID)
	if err != nil {
		return nil, 0, err
	}

	sourceOptions := make([]schema.EavAttributeOptionRow, 0)

	err = tx.Select(schema.EavAttributeOptionTable.All()).
		From(schema.EavAttributeOptionTable).
		Where(schema.EavAttributeOptionTableAttributeIDCol.Eq(sourceID)).
		Order(schema.EavAttributeOptionTableSortOrderCol.Asc(), schema.EavAttributeOptionTableIDCol.Asc()).
		ScanStructsContext(ctx, &sourceOptions)
	if err != nil {
		return nil, 0, err
	}

	optionMap := make(map[int64]int64, len(sourceOptions))
	created := 0

	for _, option := range sourceOptions {
		label := sourceLabels[option.ID]

		if targetOptionID, ok := byNormalized[strings.ToLower(strings.TrimSpace(label))]; ok && label != "" {
			optionMap[option.ID] = targetOptionID

			continue
		}

		insert, err := tx.Insert(schema.EavAttributeOptionTable).
			Rows(goqu.Record{
				"attribute_id": targetID,
				"sort_order":   option.SortOrder,
			}).
			Executor().ExecContext(ctx)
		if err != nil {
			return nil, 0, err
		}

		newOptionID, err := insert.LastInsertId()
		if err != nil {
			return nil, 0, err
		}

		// Copy every locale/store label row to the new option.
		valueRows := make([]schema.EavAttributeOptionValueRow, 0)

		err = tx.Select(schema.EavAttributeOptionValueTable.All()).
			From(schema.EavAttributeOptionValueTable).
			Where(schema.EavAttributeOptionValueTableOptionIDCol.Eq(option.ID)).
			ScanStructsContext(ctx, &valueRows)
		if err != nil {
			return nil, 0, err
		}

		for _, valueRow := range valueRows {
			_, err = tx.Insert(schema.EavAttributeOptionValueTable).
				Rows(goqu.Record{
					"option_id": newOptionID,
					"store_id":  valueRow.StoreID,
					"value":     valueRow.Value,
				}).
				Executor().ExecContext(ctx)
			if err != nil {
				return nil, 0, err
			}
		}

		optionMap[option.ID] = newOptionID
		created++
	}

	return optionMap, created, nil
}

// remapValue rewrites option ids through the option map. Multiselect values
// are comma-separated id lists; unmapped ids pass through unchanged.
func remapValue(input schema.FrontendInput, value string, optionMap map[int64]int64) string {
	if len(optionMap) == 0 {
		return value
	}

	remapOne := func(raw string) string {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return raw
		}

		if mapped, ok := optionMap[id]; ok {
			return strconv.FormatInt(mapped, 10)
		}

		return raw
	}

	switch input {
	case schema.FrontendInputMultiselect:
		parts := strings.Split(value, ",")
		for i, part := range parts {
			parts[i] = remapOne(part)
		}

		return strings.Join(parts, ",")

	case schema.FrontendInputSelect, schema.FrontendInputBoolean:
		return remapOne(value)
	}

	return value
}

// migrateValues moves every source value row into the target attribute,
// resolving conflicts per strategy and snapshotting each touched slot into
// the merge log.
func (s *Merger) migrateValues(
	ctx context.Context,
	tx *goqu.TxDatabase,
	operationID string,
	source, target schema.EavAttributeRow,
	optionMap map[int64]int64,
	strategy ConflictStrategy,
) (int, int, error) {
	table, ok := schema.ValueTableFor(source.BackendType)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNoValueTable, source.BackendType)
	}

	sourceRows := make([]schema.CatalogProductValueRow, 0)

	err := tx.Select(table.Table.All()).
		From(table.Table).
		Where(table.AttributeIDCol().Eq(source.ID)).
		Order(table.EntityIDCol().Asc(), table.StoreIDCol().Asc()).
		ScanStructsContext(ctx, &sourceRows)
	if err != nil {
		return 0, 0, err
	}

	migrated := 0
	skipped := 0

	for _, sourceRow := range sourceRows {
		if !sourceRow.Value.Valid || sourceRow.Value.String == "" {
			skipped++

			continue
		}

		incoming := remapValue(target.FrontendInput, sourceRow.Value.String, optionMap)

		existingRow := schema.CatalogProductValueRow{}

		hasExisting, err := tx.Select(table.Table.All()).
			From(table.Table).
			Where(
				table.AttributeIDCol().Eq(target.ID),
				table.EntityIDCol().Eq(sourceRow.EntityID),
				table.StoreIDCol().Eq(sourceRow.StoreID),
			).
			ScanStructContext(ctx, &existingRow)
		if err != nil {
			return 0, 0, err
		}

		var existing *string

		if hasExisting {
			value := ""
			if existingRow.Value.Valid {
				value = existingRow.Value.String
			}

			existing = &value
		}

		if hasExisting && existingRow.Value.Valid &&
			valuesEqual(target.BackendType, existingRow.Value.String, incoming) {
			skipped++

			continue
		}

		res := resolveConflict(strategy, target.BackendType, existing, incoming)
		if !res.write {
			skipped++

			continue
		}

		logRecord := goqu.Record{
			"operation_id":        operationID,
			"source_attribute_id": source.ID,
			"target_attribute_id": target.ID,
			"entity_id":           sourceRow.EntityID,
			"store_id":            sourceRow.StoreID,
			"backend_type":        string(target.BackendType),
			"had_target_value":    hasExisting,
			"old_target_value":    nil,
			"new_value":           res.value,
			"created_at":          time.Now(),
		}

		if hasExisting && existingRow.Value.Valid {
			logRecord["old_target_value"] = existingRow.Value.String
		}

		_, err = tx.Insert(schema.AttributeMergeLogTable).Rows(logRecord).Executor().ExecContext(ctx)
		if err != nil {
			return 0, 0, err
		}

		if hasExisting {
			_, err = tx.Update(table.Table).
				Set(goqu.Record{"value": res.value}).
				Where(table.IDCol().Eq(existingRow.ID)).
				Executor().ExecContext(ctx)
		} else {
			_, err = tx.Insert(table.Table).
				Rows(goqu.Record{
					"attribute_id": target.ID,
					"store_id":     sourceRow.StoreID,
					"entity_id":    sourceRow.EntityID,
					"value":        res.value,
				}).
				Executor().ExecContext(ctx)
		}

		if err != nil {
			return 0, 0, err
		}

		migrated++
	}

	return migrated, skipped, nil
}

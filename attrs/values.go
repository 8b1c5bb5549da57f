package attrs

import (
	"context"

	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
)

// HasValueTable reports whether the value table for a backend type exists in
// the current database. Attributes whose table is missing are silently
// skipped by the analyzers; static backends never have one.
func (s *Repository) HasValueTable(ctx context.Context, backend schema.BackendType) (bool, error) {
	table, ok := schema.ValueTableFor(backend)
	if !ok {
		return false, nil
	}

	var count int64

	success, err := s.db.Select(goqu.COUNT(goqu.Star())).
		From(goqu.T("tables").Schema("information_schema")).
		Where(
			goqu.C("table_schema").Eq(goqu.L("DATABASE()")),
			goqu.C("table_name").Eq(table.Name),
		).
		ScanValContext(ctx, &count)
	if err != nil {
		return false, err
	}

	return success && count > 0, nil
}

// TotalProducts counts entities, optionally scoped to one attribute set.
func (s *Repository) TotalProducts(ctx context.Context, attributeSetID int64) (int64, error) {
	sqSelect := s.db.Select(goqu.COUNT(goqu.Star())).From(schema.CatalogProductTable)

	if attributeSetID > 0 {
		sqSelect = sqSelect.Where(schema.CatalogProductTableAttributeSetIDCol.Eq(attributeSetID))
	}

	var count int64

	_, err := sqSelect.ScanValContext(ctx, &count)

	return count, err
}

// CountFilled counts distinct entities carrying a non-null, non-empty value
// for the attribute, optionally restricted to an attribute set.
func (s *Repository) CountFilled(
	ctx context.Context, backend schema.BackendType, attributeID int64, attributeSetID int64,
) (int64, error) {
	table, ok := schema.ValueTableFor(backend)
	if !ok {
		return 0, nil
	}

	sqSelect := s.db.Select(goqu.COUNT(goqu.DISTINCT(table.EntityIDCol()))).
		From(table.Table).
		Where(
			table.AttributeIDCol().Eq(attributeID),
			table.ValueCol().IsNotNull(),
			table.ValueCol().Neq(""),
		)

	if attributeSetID > 0 {
		sqSelect = sqSelect.Join(
			schema.CatalogProductTable,
			goqu.On(table.EntityIDCol().Eq(schema.CatalogProductTableIDCol)),
		).
			Where(schema.CatalogProductTableAttributeSetIDCol.Eq(attributeSetID))
	}

	var count int64

	_, err := sqSelect.ScanValContext(ctx, &count)

	return count, err
}

// DistinctValues loads up to limit distinct non-empty values of an attribute
// in the admin scope.
func (s *Repository) DistinctValues(
	ctx context.Context, backend schema.BackendType, attributeID int64, limit uint,
) ([]string, error) {
	table, ok := schema.ValueTableFor(backend)
	if !ok {
		return []string{}, nil
	}

	values := make([]string, 0)

	err := s.db.Select(goqu.DISTINCT(table.ValueCol())).
		From(table.Table).
		Where(
			table.AttributeIDCol().Eq(attributeID),
			table.ValueCol().IsNotNull(),
			table.ValueCol().Neq(""),
		).
		Limit(limit).
		ScanValsContext(ctx, &values)

	return values, err
}

// Values loads every value row of an attribute across all stores.
func (s *Repository) Values(
	ctx context.Context, backend schema.BackendType, attributeID int64,
) ([]schema.CatalogProductValueRow, error) {
	table, ok := schema.ValueTableFor(backend)
	if !ok {
		return []schema.CatalogProductValueRow{}, nil
	}

	rows := make([]schema.CatalogProductValueRow, 0)

	err := s.db.Select(table.Table.All()).
		From(table.Table).
		Where(table.AttributeIDCol().Eq(attributeID)).
		Order(table.EntityIDCol().Asc(), table.StoreIDCol().Asc()).
		ScanStructsContext(ctx, &rows)

	return rows, err
}

// HasValue reports whether the entity carries a non-empty value for the
// attribute in any store scope.
func (s *Repository) HasValue(
	ctx context.Context, backend schema.BackendType, attributeID int64, entityID int64,
) (bool, error) {
	table, ok := schema.ValueTableFor(backend)
	if !ok {
		return false, nil
	}

	var count int64

	_, err := s.db.Select(goqu.COUNT(goqu.Star())).
		From(table.Table).
		Where(
			table.AttributeIDCol().Eq(attributeID),
			table.EntityIDCol().Eq(entityID),
			table.ValueCol().IsNotNull(),
			table.ValueCol().Neq(""),
		).
		ScanValContext(ctx, &count)

	return count > 0, err
}

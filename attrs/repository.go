package attrs

import (
	"context"
	"database/sql"

	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
)

// Repository provides read access to attribute metadata: attributes, sets,
// set membership, options and option labels. Mutations belong to the merge
// and setmigration packages, which manage their own transactions.
type Repository struct {
	db *goqu.Database
}

// NewRepository constructor.
func NewRepository(db *goqu.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// EntityTypeID resolves an entity type code. Callers pass the result down
// explicitly; there is no per-instance lookup cache.
func (s *Repository) EntityTypeID(ctx context.Context, code string) (int64, error) {
	var id int64

	success, err := s.db.Select(schema.EavEntityTypeTableIDCol).
		From(schema.EavEntityTypeTable).
		Where(schema.EavEntityTypeTableCodeCol.Eq(code)).
		ScanValContext(ctx, &id)
	if err != nil {
		return 0, err
	}

	if !success {
		return 0, sql.ErrNoRows
	}

	return id, nil
}

func (s *Repository) Attribute(ctx context.Context, id int64) (bool, schema.EavAttributeRow, error) {
	row := schema.EavAttributeRow{}

	success, err := s.db.Select(schema.EavAttributeTable.All()).
		From(schema.EavAttributeTable).
		Where(schema.EavAttributeTableIDCol.Eq(id)).
		ScanStructContext(ctx, &row)

	return success, row, err
}

func (s *Repository) AttributeByCode(
	ctx context.Context, entityTypeID int64, code string,
) (bool, schema.EavAttributeRow, error) {
	row := schema.EavAttributeRow{}

	success, err := s.db.Select(schema.EavAttributeTable.All()).
		From(schema.EavAttributeTable).
		Where(
			schema.EavAttributeTableEntityTypeIDCol.Eq(entityTypeID),
			schema.EavAttributeTableCodeCol.Eq(code),
		).
		ScanStructContext(ctx, &row)

	return success, row, err
}

// Attributes lists attributes of an entity type in code order. System
// attributes are skipped unless includeSystem is set.
func (s *Repository) Attributes(
	ctx context.Context, entityTypeID int64, includeSystem bool,
) ([]schema.EavAttributeRow, error) {
	sqSelect := s.db.Select(schema.EavAttributeTable.All()).
		From(schema.EavAttributeTable).
		Where(schema.EavAttributeTableEntityTypeIDCol.Eq(entityTypeID)).
		Order(schema.EavAttributeTableCodeCol.Asc())

	if !includeSystem {
		sqSelect = sqSelect.Where(schema.EavAttributeTableIsUserDefinedCol.IsTrue())
	}

	rows := make([]schema.EavAttributeRow, 0)
	err := sqSelect.ScanStructsContext(ctx, &rows)

	return rows, err
}

func (s *Repository) AttributeSet(ctx context.Context, id int64) (bool, schema.EavAttributeSetRow, error) {
	row := schema.EavAttributeSetRow{}

	success, err := s.db.Select(schema.EavAttributeSetTable.All()).
		From(schema.EavAttributeSetTable).
		Where(schema.EavAttributeSetTableIDCol.Eq(id)).
		ScanStructContext(ctx, &row)

	return success, row, err
}

func (s *Repository) AttributeSetByName(
	ctx context.Context, entityTypeID int64, name string,
) (bool, schema.EavAttributeSetRow, error) {
	row := schema.EavAttributeSetRow{}

	success, err := s.db.Select(schema.EavAttributeSetTable.All()).
		From(schema.EavAttributeSetTable).
		Where(
			schema.EavAttributeSetTableEntityTypeIDCol.Eq(entityTypeID),
			schema.EavAttributeSetTableNameCol.Eq(name),
		).
		ScanStructContext(ctx, &row)

	return success, row, err
}

func (s *Repository) AttributeSets(ctx context.Context, entityTypeID int64) ([]schema.EavAttributeSetRow, error) {
	rows := make([]schema.EavAttributeSetRow, 0)

	err := s.db.Select(schema.EavAttributeSetTable.All()).
		From(schema.EavAttributeSetTable).
		Where(schema.EavAttributeSetTableEntityTypeIDCol.Eq(entityTypeID)).
		Order(schema.EavAttributeSetTableSortOrderCol.Asc(), schema.EavAttributeSetTableIDCol.Asc()).
		ScanStructsContext(ctx, &rows)

	return rows, err
}

// SetAttributeIDs returns the ordered attribute membership of a set.
func (s *Repository) SetAttributeIDs(ctx context.Context, attributeSetID int64) ([]int64, error) {
	ids := make([]int64, 0)

	err := s.db.Select(schema.EavEntityAttributeTableAttributeIDCol).
		From(schema.EavEntityAttributeTable).
		Where(schema.EavEntityAttributeTableAttributeSetIDCol.Eq(attributeSetID)).
		Order(schema.EavEntityAttributeTableSortOrderCol.Asc()).
		ScanValsContext(ctx, &ids)

	return ids, err
}

func (s *Repository) Options(ctx context.Context, attributeID int64) ([]schema.EavAttributeOptionRow, error) {
	rows := make([]schema.EavAttributeOptionRow, 0)

	err := s.db.Select(schema.EavAttributeOptionTable.All()).
		From(schema.EavAttributeOptionTable).
		Where(schema.EavAttributeOptionTableAttributeIDCol.Eq(attributeID)).
		Order(schema.EavAttributeOptionTableSortOrderCol.Asc(), schema.EavAttributeOptionTableIDCol.Asc()).
		ScanStructsContext(ctx, &rows)

	return rows, err
}

func (s *Repository) OptionValues(ctx context.Context, optionID int64) ([]schema.EavAttributeOptionValueRow, error) {
	rows := make([]schema.EavAttributeOptionValueRow, 0)

	err := s.db.Select(schema.EavAttributeOptionValueTable.All()).
		From(schema.EavAttributeOptionValueTable).
		Where(schema.EavAttributeOptionValueTableOptionIDCol.Eq(optionID)).
		ScanStructsContext(ctx, &rows)

	return rows, err
}

// BaseOptionLabels maps option id to its admin-scope label. Merge matching
// and value-overlap similarity both key on these labels.
func (s *Repository) BaseOptionLabels(ctx context.Context, attributeID int64) (map[int64]string, error) {
	rows := make([]schema.EavAttributeOptionValueRow, 0)

	err := s.db.Select(schema.EavAttributeOptionValueTable.All()).
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

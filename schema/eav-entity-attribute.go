package schema

import "github.com/doug-martin/goqu/v9"

const (
	EavEntityAttributeTableName = "eav_entity_attribute"
)

var (
	EavEntityAttributeTable                  = goqu.T(EavEntityAttributeTableName)
	EavEntityAttributeTableIDCol             = EavEntityAttributeTable.Col("entity_attribute_id")
	EavEntityAttributeTableEntityTypeIDCol   = EavEntityAttributeTable.Col("entity_type_id")
	EavEntityAttributeTableAttributeSetIDCol = EavEntityAttributeTable.Col("attribute_set_id")
	EavEntityAttributeTableAttributeIDCol    = EavEntityAttributeTable.Col("attribute_id")
	EavEntityAttributeTableSortOrderCol      = EavEntityAttributeTable.Col("sort_order")
)

type EavEntityAttributeRow struct {
	ID             int64 `db:"entity_attribute_id"`
	EntityTypeID   int64 `db:"entity_type_id"`
	AttributeSetID int64 `db:"attribute_set_id"`
	AttributeID    int64 `db:"attribute_id"`
	SortOrder      int32 `db:"sort_order"`
}

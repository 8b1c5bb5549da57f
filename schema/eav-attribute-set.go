package schema

import "github.com/doug-martin/goqu/v9"

const (
	EavAttributeSetTableName = "eav_attribute_set"
)

var (
	EavAttributeSetTable                = goqu.T(EavAttributeSetTableName)
	EavAttributeSetTableIDCol           = EavAttributeSetTable.Col("attribute_set_id")
	EavAttributeSetTableEntityTypeIDCol = EavAttributeSetTable.Col("entity_type_id")
	EavAttributeSetTableNameCol         = EavAttributeSetTable.Col("attribute_set_name")
	EavAttributeSetTableSortOrderCol    = EavAttributeSetTable.Col("sort_order")
)

type EavAttributeSetRow struct {
	ID           int64  `db:"attribute_set_id"`
	EntityTypeID int64  `db:"entity_type_id"`
	Name         string `db:"attribute_set_name"`
	SortOrder    int32  `db:"sort_order"`
}

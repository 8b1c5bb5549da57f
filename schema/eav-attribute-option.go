package schema

import "github.com/doug-martin/goqu/v9"

const (
	EavAttributeOptionTableName = "eav_attribute_option"
)

var (
	EavAttributeOptionTable               = goqu.T(EavAttributeOptionTableName)
	EavAttributeOptionTableIDCol          = EavAttributeOptionTable.Col("option_id")
	EavAttributeOptionTableAttributeIDCol = EavAttributeOptionTable.Col("attribute_id")
	EavAttributeOptionTableSortOrderCol   = EavAttributeOptionTable.Col("sort_order")
)

type EavAttributeOptionRow struct {
	ID          int64 `db:"option_id"`
	AttributeID int64 `db:"attribute_id"`
	SortOrder   int32 `db:"sort_order"`
}

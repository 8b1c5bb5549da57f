package schema

import "github.com/doug-martin/goqu/v9"

const (
	EavAttributeOptionValueTableName = "eav_attribute_option_value"

	// AdminStoreID is the base scope; option labels in this scope drive
	// merge matching.
	AdminStoreID int64 = 0
)

var (
	EavAttributeOptionValueTable            = goqu.T(EavAttributeOptionValueTableName)
	EavAttributeOptionValueTableIDCol       = EavAttributeOptionValueTable.Col("value_id")
	EavAttributeOptionValueTableOptionIDCol = EavAttributeOptionValueTable.Col("option_id")
	EavAttributeOptionValueTableStoreIDCol  = EavAttributeOptionValueTable.Col("store_id")
	EavAttributeOptionValueTableValueCol    = EavAttributeOptionValueTable.Col("value")
)

type EavAttributeOptionValueRow struct {
	ID       int64  `db:"value_id"`
	OptionID int64  `db:"option_id"`
	StoreID  int64  `db:"store_id"`
	Value    string `db:"value"`
}

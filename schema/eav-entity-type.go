package schema

import "github.com/doug-martin/goqu/v9"

const (
	EavEntityTypeTableName = "eav_entity_type"
)

var (
	EavEntityTypeTable        = goqu.T(EavEntityTypeTableName)
	EavEntityTypeTableIDCol   = EavEntityTypeTable.Col("entity_type_id")
	EavEntityTypeTableCodeCol = EavEntityTypeTable.Col("entity_type_code")
)

type EavEntityTypeRow struct {
	ID   int64  `db:"entity_type_id"`
	Code string `db:"entity_type_code"`
}

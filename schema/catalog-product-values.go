package schema

import (
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// One value table per backend type family. All five share the same column
// layout, so a single descriptor covers them.
const (
	CatalogProductValueVarcharTableName  = "catalog_product_entity_varchar"
	CatalogProductValueTextTableName     = "catalog_product_entity_text"
	CatalogProductValueIntTableName      = "catalog_product_entity_int"
	CatalogProductValueDecimalTableName  = "catalog_product_entity_decimal"
	CatalogProductValueDatetimeTableName = "catalog_product_entity_datetime"

	CatalogProductValueTableIDColName          = "value_id"
	CatalogProductValueTableAttributeIDColName = "attribute_id"
	CatalogProductValueTableStoreIDColName     = "store_id"
	CatalogProductValueTableEntityIDColName    = "entity_id"
	CatalogProductValueTableValueColName       = "value"
)

// ValueTable describes one backend value table for goqu queries.
type ValueTable struct {
	Name  string
	Table exp.IdentifierExpression
}

func (t ValueTable) Col(name string) exp.IdentifierExpression {
	return t.Table.Col(name)
}

func (t ValueTable) IDCol() exp.IdentifierExpression {
	return t.Col(CatalogProductValueTableIDColName)
}

func (t ValueTable) AttributeIDCol() exp.IdentifierExpression {
	return t.Col(CatalogProductValueTableAttributeIDColName)
}

func (t ValueTable) StoreIDCol() exp.IdentifierExpression {
	return t.Col(CatalogProductValueTableStoreIDColName)
}

func (t ValueTable) EntityIDCol() exp.IdentifierExpression {
	return t.Col(CatalogProductValueTableEntityIDColName)
}

func (t ValueTable) ValueCol() exp.IdentifierExpression {
	return t.Col(CatalogProductValueTableValueColName)
}

func newValueTable(name string) ValueTable {
	return ValueTable{Name: name, Table: goqu.T(name)}
}

var (
	CatalogProductValueVarcharTable  = newValueTable(CatalogProductValueVarcharTableName)
	CatalogProductValueTextTable     = newValueTable(CatalogProductValueTextTableName)
	CatalogProductValueIntTable      = newValueTable(CatalogProductValueIntTableName)
	CatalogProductValueDecimalTable  = newValueTable(CatalogProductValueDecimalTableName)
	CatalogProductValueDatetimeTable = newValueTable(CatalogProductValueDatetimeTableName)
)

// valueTables is the backend-type dispatch table. Static attributes have no
// entry: they store no separate values.
var valueTables = map[BackendType]ValueTable{
	BackendTypeVarchar:  CatalogProductValueVarcharTable,
	BackendTypeText:     CatalogProductValueTextTable,
	BackendTypeInt:      CatalogProductValueIntTable,
	BackendTypeDecimal:  CatalogProductValueDecimalTable,
	BackendTypeDatetime: CatalogProductValueDatetimeTable,
}

// ValueTableFor resolves the value table for a backend type.
func ValueTableFor(backend BackendType) (ValueTable, bool) {
	t, ok := valueTables[backend]

	return t, ok
}

// CatalogProductValueRow is a value row of any backend table. Values scan as
// strings regardless of the column type; writers pass them back verbatim.
type CatalogProductValueRow struct {
	ID          int64          `db:"value_id"`
	AttributeID int64          `db:"attribute_id"`
	StoreID     int64          `db:"store_id"`
	EntityID    int64          `db:"entity_id"`
	Value       sql.NullString `db:"value"`
}

package schema

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const (
	CatalogProductTableName = "catalog_product_entity"

	ProductTypeSimple       = "simple"
	ProductTypeConfigurable = "configurable"
)

var (
	CatalogProductTable                  = goqu.T(CatalogProductTableName)
	CatalogProductTableIDCol             = CatalogProductTable.Col("entity_id")
	CatalogProductTableSKUCol            = CatalogProductTable.Col("sku")
	CatalogProductTableAttributeSetIDCol = CatalogProductTable.Col("attribute_set_id")
	CatalogProductTableTypeIDCol         = CatalogProductTable.Col("type_id")
	CatalogProductTableManufacturerCol   = CatalogProductTable.Col("manufacturer")
	CatalogProductTableCreatedAtCol      = CatalogProductTable.Col("created_at")
)

type CatalogProductRow struct {
	ID             int64          `db:"entity_id"`
	SKU            string         `db:"sku"`
	AttributeSetID int64          `db:"attribute_set_id"`
	TypeID         string         `db:"type_id"`
	Manufacturer   sql.NullString `db:"manufacturer"`
	CreatedAt      time.Time      `db:"created_at"`
}

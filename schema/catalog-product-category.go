package schema

import "github.com/doug-martin/goqu/v9"

const (
	CatalogProductCategoryTableName = "catalog_product_category"
)

var (
	CatalogProductCategoryTable                = goqu.T(CatalogProductCategoryTableName)
	CatalogProductCategoryTableProductIDCol    = CatalogProductCategoryTable.Col("product_id")
	CatalogProductCategoryTableCategoryNameCol = CatalogProductCategoryTable.Col("category_name")
)

type CatalogProductCategoryRow struct {
	ProductID    int64  `db:"product_id"`
	CategoryName string `db:"category_name"`
}

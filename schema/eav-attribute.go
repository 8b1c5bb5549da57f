package schema

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const (
	EavAttributeTableName = "eav_attribute"
)

var (
	EavAttributeTable                 = goqu.T(EavAttributeTableName)
	EavAttributeTableIDCol            = EavAttributeTable.Col("attribute_id")
	EavAttributeTableEntityTypeIDCol  = EavAttributeTable.Col("entity_type_id")
	EavAttributeTableCodeCol          = EavAttributeTable.Col("attribute_code")
	EavAttributeTableFrontendLabelCol = EavAttributeTable.Col("frontend_label")
	EavAttributeTableFrontendInputCol = EavAttributeTable.Col("frontend_input")
	EavAttributeTableBackendTypeCol   = EavAttributeTable.Col("backend_type")
	EavAttributeTableIsUserDefinedCol = EavAttributeTable.Col("is_user_defined")
	EavAttributeTableSourceModelCol   = EavAttributeTable.Col("source_model")
	EavAttributeTableCreatedAtCol     = EavAttributeTable.Col("created_at")
)

type EavAttributeRow struct {
	ID            int64          `db:"attribute_id"`
	EntityTypeID  int64          `db:"entity_type_id"`
	Code          string         `db:"attribute_code"`
	FrontendLabel sql.NullString `db:"frontend_label"`
	FrontendInput FrontendInput  `db:"frontend_input"`
	BackendType   BackendType    `db:"backend_type"`
	IsUserDefined bool           `db:"is_user_defined"`
	SourceModel   sql.NullString `db:"source_model"`
	CreatedAt     time.Time      `db:"created_at"`
}

// Label returns the frontend label, falling back to the code.
func (r EavAttributeRow) Label() string {
	if r.FrontendLabel.Valid && r.FrontendLabel.String != "" {
		return r.FrontendLabel.String
	}

	return r.Code
}

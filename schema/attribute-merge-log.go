package schema

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const (
	AttributeMergeLogTableName = "attribute_merge_log"
)

var (
	AttributeMergeLogTable                  = goqu.T(AttributeMergeLogTableName)
	AttributeMergeLogTableIDCol             = AttributeMergeLogTable.Col("log_id")
	AttributeMergeLogTableOperationIDCol    = AttributeMergeLogTable.Col("operation_id")
	AttributeMergeLogTableSourceAttrIDCol   = AttributeMergeLogTable.Col("source_attribute_id")
	AttributeMergeLogTableTargetAttrIDCol   = AttributeMergeLogTable.Col("target_attribute_id")
	AttributeMergeLogTableEntityIDCol       = AttributeMergeLogTable.Col("entity_id")
	AttributeMergeLogTableStoreIDCol        = AttributeMergeLogTable.Col("store_id")
	AttributeMergeLogTableBackendTypeCol    = AttributeMergeLogTable.Col("backend_type")
	AttributeMergeLogTableHadTargetValueCol = AttributeMergeLogTable.Col("had_target_value")
	AttributeMergeLogTableOldTargetValueCol = AttributeMergeLogTable.Col("old_target_value")
	AttributeMergeLogTableNewValueCol       = AttributeMergeLogTable.Col("new_value")
	AttributeMergeLogTableCreatedAtCol      = AttributeMergeLogTable.Col("created_at")
)

// AttributeMergeLogRow is one pre-merge snapshot of a target value slot.
// Rollback replays these in reverse: rows with had_target_value restore the
// old value, rows without delete the inserted one.
type AttributeMergeLogRow struct {
	ID                int64          `db:"log_id"`
	OperationID       string         `db:"operation_id"`
	SourceAttributeID int64          `db:"source_attribute_id"`
	TargetAttributeID int64          `db:"target_attribute_id"`
	EntityID          int64          `db:"entity_id"`
	StoreID           int64          `db:"store_id"`
	BackendType       BackendType    `db:"backend_type"`
	HadTargetValue    bool           `db:"had_target_value"`
	OldTargetValue    sql.NullString `db:"old_target_value"`
	NewValue          sql.NullString `db:"new_value"`
	CreatedAt         time.Time      `db:"created_at"`
}

package schema

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const (
	LogEventsTableName = "log_events"
)

var (
	LogEventsTable               = goqu.T(LogEventsTableName)
	LogEventsTableIDCol          = LogEventsTable.Col("log_event_id")
	LogEventsTableAddDatetimeCol = LogEventsTable.Col("add_datetime")
	LogEventsTableActorCol       = LogEventsTable.Col("actor")
	LogEventsTableDescriptionCol = LogEventsTable.Col("description")
	LogEventsTableProposalIDCol  = LogEventsTable.Col("proposal_id")
	LogEventsTableAttributeIDCol = LogEventsTable.Col("attribute_id")
)

type LogEventRow struct {
	ID          int64         `db:"log_event_id"`
	AddDatetime time.Time     `db:"add_datetime"`
	Actor       string        `db:"actor"`
	Description string        `db:"description"`
	ProposalID  sql.NullInt64 `db:"proposal_id"`
	AttributeID sql.NullInt64 `db:"attribute_id"`
}

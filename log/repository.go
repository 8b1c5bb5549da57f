package log

import (
	"context"
	"database/sql"
	"time"

	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/util"
	"github.com/doug-martin/goqu/v9"
)

const eventsPerPage = 40

// Event is one audit trail entry. Every state-changing operation (proposal
// lifecycle transition, merge, migration, deletion) writes one.
type Event struct {
	ID          int64         `db:"log_event_id"`
	CreatedAt   time.Time     `db:"add_datetime"`
	Actor       string        `db:"actor"`
	Description string        `db:"description"`
	ProposalID  sql.NullInt64 `db:"proposal_id"`
	AttributeID sql.NullInt64 `db:"attribute_id"`
}

type ListOptions struct {
	ProposalID  int64
	AttributeID int64
	Actor       string
	Page        uint32
}

type Repository struct {
	db *goqu.Database
}

func NewRepository(db *goqu.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Write appends an audit event. Failures are the caller's to log and
// suppress; the sink itself never retries.
func (s *Repository) Write(
	ctx context.Context, actor string, description string, proposalID int64, attributeID int64,
) error {
	record := goqu.Record{
		"add_datetime": time.Now(),
		"actor":        actor,
		"description":  description,
		"proposal_id":  nil,
		"attribute_id": nil,
	}

	if proposalID != 0 {
		record["proposal_id"] = proposalID
	}

	if attributeID != 0 {
		record["attribute_id"] = attributeID
	}

	_, err := s.db.Insert(schema.LogEventsTable).Rows(record).Executor().ExecContext(ctx)

	return err
}

// Events lists audit entries, newest first, filtered by proposal, attribute
// or actor.
func (s *Repository) Events(ctx context.Context, options ListOptions) ([]Event, *util.Pages, error) {
	sqSelect := s.db.Select(schema.LogEventsTable.All()).
		From(schema.LogEventsTable).
		Order(schema.LogEventsTableAddDatetimeCol.Desc(), schema.LogEventsTableIDCol.Desc())

	if options.ProposalID != 0 {
		sqSelect = sqSelect.Where(schema.LogEventsTableProposalIDCol.Eq(options.ProposalID))
	}

	if options.AttributeID != 0 {
		sqSelect = sqSelect.Where(schema.LogEventsTableAttributeIDCol.Eq(options.AttributeID))
	}

	if options.Actor != "" {
		sqSelect = sqSelect.Where(schema.LogEventsTableActorCol.Eq(options.Actor))
	}

	var total int64

	_, err := sqSelect.ClearOrder().ClearSelect().
		Select(goqu.COUNT(goqu.Star())).
		ScanValContext(ctx, &total)
	if err != nil {
		return nil, nil, err
	}

	page := int32(options.Page)
	if page < 1 {
		page = 1
	}

	pages := util.NewPages(total, eventsPerPage, page)

	rows := make([]Event, 0)

	err = sqSelect.
		Limit(eventsPerPage).
		Offset(uint(pages.Current-1) * eventsPerPage).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, nil, err
	}

	return rows, pages, nil
}

package approval

import (
	"context"
	"time"

	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
)

// Repository persists proposals. Status transitions are guarded by
// conditional updates, so two admins racing on the same proposal cannot both
// win.
type Repository struct {
	db *goqu.Database
}

func NewRepository(db *goqu.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (s *Repository) Create(
	ctx context.Context, proposalType schema.ProposalType, payload []byte, reason string, creator string,
) (int64, error) {
	res, err := s.db.Insert(schema.AttributeProposalTable).
		Rows(goqu.Record{
			"proposal_type": string(proposalType),
			"payload":       payload,
			"status":        string(schema.ProposalStatusPending),
			"reason":        reason,
			"created_by":    creator,
			"created_at":    time.Now(),
		}).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (s *Repository) Proposal(ctx context.Context, id int64) (bool, schema.AttributeProposalRow, error) {
	row := schema.AttributeProposalRow{}

	success, err := s.db.Select(schema.AttributeProposalTable.All()).
		From(schema.AttributeProposalTable).
		Where(schema.AttributeProposalTableIDCol.Eq(id)).
		ScanStructContext(ctx, &row)

	return success, row, err
}

// Proposals lists proposals newest first, optionally filtered by status.
func (s *Repository) Proposals(
	ctx context.Context, status schema.ProposalStatus,
) ([]schema.AttributeProposalRow, error) {
	sqSelect := s.db.Select(schema.AttributeProposalTable.All()).
		From(schema.AttributeProposalTable).
		Order(schema.AttributeProposalTableCreatedAtCol.Desc(), schema.AttributeProposalTableIDCol.Desc())

	if status != "" {
		sqSelect = sqSelect.Where(schema.AttributeProposalTableStatusCol.Eq(string(status)))
	}

	rows := make([]schema.AttributeProposalRow, 0)
	err := sqSelect.ScanStructsContext(ctx, &rows)

	return rows, err
}

func (s *Repository) Pending(ctx context.Context) ([]schema.AttributeProposalRow, error) {
	return s.Proposals(ctx, schema.ProposalStatusPending)
}

// Approve flips pending to approved. Returns false when the proposal was not
// pending (or does not exist).
func (s *Repository) Approve(ctx context.Context, id int64, actor string, comment string) (bool, error) {
	res, err := s.db.Update(schema.AttributeProposalTable).
		Set(goqu.Record{
			"status":           string(schema.ProposalStatusApproved),
			"approved_by":      actor,
			"approved_at":      time.Now(),
			"approval_comment": comment,
		}).
		Where(
			schema.AttributeProposalTableIDCol.Eq(id),
			schema.AttributeProposalTableStatusCol.Eq(string(schema.ProposalStatusPending)),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()

	return affected > 0, err
}

// Reject flips pending to rejected, a terminal state.
func (s *Repository) Reject(ctx context.Context, id int64, actor string, comment string) (bool, error) {
	res, err := s.db.Update(schema.AttributeProposalTable).
		Set(goqu.Record{
			"status":            string(schema.ProposalStatusRejected),
			"rejected_by":       actor,
			"rejected_at":       time.Now(),
			"rejection_comment": comment,
		}).
		Where(
			schema.AttributeProposalTableIDCol.Eq(id),
			schema.AttributeProposalTableStatusCol.Eq(string(schema.ProposalStatusPending)),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()

	return affected > 0, err
}

// SetExecuted stores the execution outcome: executed or failed, plus the
// result snapshot.
func (s *Repository) SetExecuted(
	ctx context.Context, id int64, status schema.ProposalStatus, result []byte,
) error {
	_, err := s.db.Update(schema.AttributeProposalTable).
		Set(goqu.Record{
			"status":      string(status),
			"executed_at": time.Now(),
			"result":      result,
		}).
		Where(schema.AttributeProposalTableIDCol.Eq(id)).
		Executor().ExecContext(ctx)

	return err
}

// Delete removes a proposal. Manual housekeeping only; nothing in the
// workflow deletes proposals on its own.
func (s *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.Delete(schema.AttributeProposalTable).
		Where(schema.AttributeProposalTableIDCol.Eq(id)).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()

	return affected > 0, err
}

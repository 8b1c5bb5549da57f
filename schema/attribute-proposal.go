package schema

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const (
	AttributeProposalTableName = "attribute_proposals"
)

// ProposalStatus state machine: pending -> approved -> executed|failed,
// pending -> rejected. No transitions leave executed, rejected or failed.
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
	ProposalStatusExecuted ProposalStatus = "executed"
	ProposalStatusFailed   ProposalStatus = "failed"
)

// ProposalType tags the payload variant stored in the payload column.
type ProposalType string

const (
	ProposalTypeMerge     ProposalType = "merge"
	ProposalTypeMigration ProposalType = "migration"
	ProposalTypeDelete    ProposalType = "delete"
)

var (
	AttributeProposalTable                    = goqu.T(AttributeProposalTableName)
	AttributeProposalTableIDCol               = AttributeProposalTable.Col("proposal_id")
	AttributeProposalTableTypeCol             = AttributeProposalTable.Col("proposal_type")
	AttributeProposalTablePayloadCol          = AttributeProposalTable.Col("payload")
	AttributeProposalTableStatusCol           = AttributeProposalTable.Col("status")
	AttributeProposalTableReasonCol           = AttributeProposalTable.Col("reason")
	AttributeProposalTableCreatedByCol        = AttributeProposalTable.Col("created_by")
	AttributeProposalTableCreatedAtCol        = AttributeProposalTable.Col("created_at")
	AttributeProposalTableApprovedByCol       = AttributeProposalTable.Col("approved_by")
	AttributeProposalTableApprovedAtCol       = AttributeProposalTable.Col("approved_at")
	AttributeProposalTableApprovalCommentCol  = AttributeProposalTable.Col("approval_comment")
	AttributeProposalTableRejectedByCol       = AttributeProposalTable.Col("rejected_by")
	AttributeProposalTableRejectedAtCol       = AttributeProposalTable.Col("rejected_at")
	AttributeProposalTableRejectionCommentCol = AttributeProposalTable.Col("rejection_comment")
	AttributeProposalTableExecutedAtCol       = AttributeProposalTable.Col("executed_at")
	AttributeProposalTableResultCol           = AttributeProposalTable.Col("result")
)

type AttributeProposalRow struct {
	ID               int64          `db:"proposal_id"`
	Type             ProposalType   `db:"proposal_type"`
	Payload          []byte         `db:"payload"`
	Status           ProposalStatus `db:"status"`
	Reason           string         `db:"reason"`
	CreatedBy        string         `db:"created_by"`
	CreatedAt        time.Time      `db:"created_at"`
	ApprovedBy       sql.NullString `db:"approved_by"`
	ApprovedAt       sql.NullTime   `db:"approved_at"`
	ApprovalComment  sql.NullString `db:"approval_comment"`
	RejectedBy       sql.NullString `db:"rejected_by"`
	RejectedAt       sql.NullTime   `db:"rejected_at"`
	RejectionComment sql.NullString `db:"rejection_comment"`
	ExecutedAt       sql.NullTime   `db:"executed_at"`
	Result           []byte         `db:"result"`
}

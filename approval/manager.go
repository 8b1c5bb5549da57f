package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/log"
	"github.com/attrcare/attrcare/merge"
	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/setmigration"
	"github.com/attrcare/attrcare/util"
	"github.com/sirupsen/logrus"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrNotApproved      = errors.New("proposal is not approved")
)

// Notifier delivers proposal lifecycle mails. Failures are logged and
// suppressed, never surfaced to the triggering call.
type Notifier interface {
	ProposalEvent(proposal schema.AttributeProposalRow, action string) error
}

// ExecutionResult is the structured outcome of executing a proposal.
// Execution failures are captured here, not returned as errors.
type ExecutionResult struct {
	ProposalID int64
	Status     schema.ProposalStatus
	Success    bool
	Error      string
	Result     json.RawMessage
}

// Manager owns the proposal state machine and dispatches approved proposals
// to the merger and the set migrator.
type Manager struct {
	repo     *Repository
	merger   *merge.Merger
	migrator *setmigration.Migrator
	events   *log.Repository
	notifier Notifier
	cfg      config.ApprovalConfig
}

// NewManager constructor. notifier may be nil; mails are then skipped.
func NewManager(
	repo *Repository,
	merger *merge.Merger,
	migrator *setmigration.Migrator,
	events *log.Repository,
	notifier Notifier,
	cfg config.ApprovalConfig,
) *Manager {
	return &Manager{
		repo:     repo,
		merger:   merger,
		migrator: migrator,
		events:   events,
		notifier: notifier,
		cfg:      cfg,
	}
}

// NeedsApproval decides whether a payload must go through review. Disabled
// workflow means never; threshold zero means always; otherwise the payload's
// affected count is compared against the threshold.
func (s *Manager) NeedsApproval(payload Payload) bool {
	if !s.cfg.Enabled {
		return false
	}

	if s.cfg.AutoApproveThreshold == 0 {
		return true
	}

	return payload.AffectedCount() >= s.cfg.AutoApproveThreshold
}

// CreateProposal persists a new pending proposal and fires the created
// notification.
func (s *Manager) CreateProposal(
	ctx context.Context, payload Payload, reason string, creator string,
) (schema.AttributeProposalRow, error) {
	encoded, err := EncodePayload(payload)
	if err != nil {
		return schema.AttributeProposalRow{}, err
	}

	id, err := s.repo.Create(ctx, payload.ProposalType(), encoded, reason, creator)
	if err != nil {
		return schema.AttributeProposalRow{}, err
	}

	found, row, err := s.repo.Proposal(ctx, id)
	if err != nil {
		return schema.AttributeProposalRow{}, err
	}

	if !found {
		return schema.AttributeProposalRow{}, ErrProposalNotFound
	}

	s.audit(ctx, creator, fmt.Sprintf("%s proposal created: %s", row.Type, reason), row.ID, 0)
	s.notify(row, "created")

	return row, nil
}

func (s *Manager) Proposal(ctx context.Context, id int64) (bool, schema.AttributeProposalRow, error) {
	return s.repo.Proposal(ctx, id)
}

func (s *Manager) Proposals(
	ctx context.Context, status schema.ProposalStatus,
) ([]schema.AttributeProposalRow, error) {
	return s.repo.Proposals(ctx, status)
}

func (s *Manager) PendingProposals(ctx context.Context) ([]schema.AttributeProposalRow, error) {
	return s.repo.Pending(ctx)
}

// ApproveProposal moves a pending proposal to approved. Returns false when
// the proposal is in any other state.
func (s *Manager) ApproveProposal(ctx context.Context, id int64, actor string, comment string) (bool, error) {
	approved, err := s.repo.Approve(ctx, id, actor, comment)
	if err != nil || !approved {
		return false, err
	}

	s.audit(ctx, actor, "proposal approved", id, 0)

	if found, row, err := s.repo.Proposal(ctx, id); err == nil && found {
		s.notify(row, "approved")
	}

	return true, nil
}

// RejectProposal moves a pending proposal to rejected, a terminal state.
func (s *Manager) RejectProposal(ctx context.Context, id int64, actor string, comment string) (bool, error) {
	rejected, err := s.repo.Reject(ctx, id, actor, comment)
	if err != nil || !rejected {
		return false, err
	}

	s.audit(ctx, actor, "proposal rejected", id, 0)

	if found, row, err := s.repo.Proposal(ctx, id); err == nil && found {
		s.notify(row, "rejected")
	}

	return true, nil
}

// DeleteProposal removes a proposal record. Manual operation only.
func (s *Manager) DeleteProposal(ctx context.Context, id int64, actor string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil || !deleted {
		return false, err
	}

	s.audit(ctx, actor, "proposal deleted", id, 0)

	return true, nil
}

// History lists the audit trail of one proposal, newest first.
func (s *Manager) History(ctx context.Context, proposalID int64, page uint32) ([]log.Event, *util.Pages, error) {
	return s.events.Events(ctx, log.ListOptions{ProposalID: proposalID, Page: page})
}

type mergeSnapshot struct {
	OperationID    string `json:"operation_id"`
	TargetID       int64  `json:"target_attribute_id"`
	ValuesMigrated int    `json:"values_migrated"`
	SourcesMerged  int    `json:"sources_merged"`
	SourcesFailed  int    `json:"sources_failed"`
}

type migrationSnapshot struct {
	TargetSetID int64 `json:"target_set_id"`
	Migrated    int   `json:"migrated"`
	Skipped     int   `json:"skipped"`
	Failed      int   `json:"failed"`
}

type deleteSnapshot struct {
	Deleted int      `json:"deleted"`
	Errors  []string `json:"errors,omitempty"`
}

// ExecuteProposal runs an approved proposal. Execution failure is captured
// in the proposal record as status failed and reported in the result, not
// returned as an error; only precondition and storage problems error out.
func (s *Manager) ExecuteProposal(ctx context.Context, id int64, actor string) (*ExecutionResult, error) {
	found, row, err := s.repo.Proposal(ctx, id)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, ErrProposalNotFound
	}

	if row.Status != schema.ProposalStatusApproved {
		return nil, fmt.Errorf("%w: status is %s", ErrNotApproved, row.Status)
	}

	payload, err := DecodePayload(row.Type, row.Payload)
	if err != nil {
		return nil, err
	}

	snapshot, execErr := s.dispatch(ctx, payload)

	result := &ExecutionResult{ProposalID: id}

	if execErr != nil {
		result.Status = schema.ProposalStatusFailed
		result.Error = execErr.Error()
		result.Result, _ = json.Marshal(map[string]string{"error": execErr.Error()})

		logrus.Warnf("proposal %d execution failed: %v", id, execErr)
	} else {
		result.Status = schema.ProposalStatusExecuted
		result.Success = true

		result.Result, err = json.Marshal(snapshot)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetExecuted(ctx, id, result.Status, result.Result); err != nil {
		return nil, err
	}

	s.audit(ctx, actor, fmt.Sprintf("proposal execution finished with status %s", result.Status), id, 0)

	if found, updated, err := s.repo.Proposal(ctx, id); err == nil && found {
		s.notify(updated, "executed")
	}

	return result, nil
}

// dispatch runs the operation behind a payload variant.
func (s *Manager) dispatch(ctx context.Context, payload Payload) (interface{}, error) {
	switch p := payload.(type) {
	case MergePayload:
		res, err := s.merger.Execute(ctx, merge.Request{
			SourceIDs:     p.SourceAttributeIDs,
			TargetID:      p.TargetAttributeID,
			Strategy:      p.Strategy,
			DeleteSources: p.DeleteSources,
		})
		if err != nil {
			return nil, err
		}

		snapshot := mergeSnapshot{
			OperationID:    res.OperationID,
			TargetID:       res.TargetID,
			ValuesMigrated: res.ValuesMigrated,
		}

		for _, source := range res.Sources {
			if source.Success {
				snapshot.SourcesMerged++
			} else {
				snapshot.SourcesFailed++
			}
		}

		return snapshot, nil

	case MigrationPayload:
		res, err := s.migrator.ExecuteMigration(ctx, p.ProductIDs, p.TargetSetID, p.PreserveValues)
		if err != nil {
			return nil, err
		}

		return migrationSnapshot{
			TargetSetID: res.TargetSetID,
			Migrated:    len(res.Migrated),
			Skipped:     len(res.Skipped),
			Failed:      len(res.Failed),
		}, nil

	case DeletePayload:
		snapshot := deleteSnapshot{}

		for _, attributeID := range p.AttributeIDs {
			if err := s.merger.DeleteAttribute(ctx, attributeID); err != nil {
				snapshot.Errors = append(snapshot.Errors,
					fmt.Sprintf("attribute %d: %s", attributeID, err.Error()))

				continue
			}

			snapshot.Deleted++
		}

		return snapshot, nil
	}

	return nil, fmt.Errorf("unknown payload type %q", payload.ProposalType())
}

func (s *Manager) audit(ctx context.Context, actor, description string, proposalID, attributeID int64) {
	if err := s.events.Write(ctx, actor, description, proposalID, attributeID); err != nil {
		logrus.Warnf("audit write: %v", err)
	}
}

func (s *Manager) notify(row schema.AttributeProposalRow, action string) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.ProposalEvent(row, action); err != nil {
		logrus.Warnf("proposal %d notification %s: %v", row.ID, action, err)
	}
}

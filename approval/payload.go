// Package approval runs the proposal workflow: curation actions are captured
// as typed proposals, reviewed, and only then executed against the catalog.
package approval

import (
	"encoding/json"
	"fmt"

	"github.com/attrcare/attrcare/merge"
	"github.com/attrcare/attrcare/schema"
)

// Payload is the typed content of a proposal. Each proposal type has its own
// variant; execution dispatches on the concrete type.
type Payload interface {
	ProposalType() schema.ProposalType
	// AffectedCount feeds the approval threshold: sources for a merge,
	// products for a migration, attributes for a delete.
	AffectedCount() int
}

type MergePayload struct {
	SourceAttributeIDs []int64                `json:"source_attribute_ids"`
	TargetAttributeID  int64                  `json:"target_attribute_id"`
	Strategy           merge.ConflictStrategy `json:"strategy"`
	DeleteSources      bool                   `json:"delete_sources"`
}

func (p MergePayload) ProposalType() schema.ProposalType { return schema.ProposalTypeMerge }
func (p MergePayload) AffectedCount() int                { return len(p.SourceAttributeIDs) }

type MigrationPayload struct {
	ProductIDs     []int64 `json:"product_ids"`
	TargetSetID    int64   `json:"target_set_id"`
	PreserveValues bool    `json:"preserve_values"`
}

func (p MigrationPayload) ProposalType() schema.ProposalType { return schema.ProposalTypeMigration }
func (p MigrationPayload) AffectedCount() int                { return len(p.ProductIDs) }

type DeletePayload struct {
	AttributeIDs []int64 `json:"attribute_ids"`
}

func (p DeletePayload) ProposalType() schema.ProposalType { return schema.ProposalTypeDelete }
func (p DeletePayload) AffectedCount() int                { return len(p.AttributeIDs) }

func EncodePayload(payload Payload) ([]byte, error) {
	return json.Marshal(payload)
}

// DecodePayload reconstructs the variant stored for a proposal row.
func DecodePayload(proposalType schema.ProposalType, raw []byte) (Payload, error) {
	switch proposalType {
	case schema.ProposalTypeMerge:
		payload := MergePayload{}
		err := json.Unmarshal(raw, &payload)

		return payload, err

	case schema.ProposalTypeMigration:
		payload := MigrationPayload{}
		err := json.Unmarshal(raw, &payload)

		return payload, err

	case schema.ProposalTypeDelete:
		payload := DeletePayload{}
		err := json.Unmarshal(raw, &payload)

		return payload, err
	}

	return nil, fmt.Errorf("unknown proposal type %q", proposalType)
}

package approval

import (
	"testing"

	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/merge"
	"github.com/attrcare/attrcare/schema"
	"github.com/stretchr/testify/require"
)

func TestNeedsApprovalDisabledWorkflow(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil, nil, nil, nil, config.ApprovalConfig{
		Enabled:              false,
		AutoApproveThreshold: 0,
	})

	// Disabled wins over everything, including an always-approve threshold
	// and arbitrarily large payloads.
	require.False(t, manager.NeedsApproval(MergePayload{
		SourceAttributeIDs: []int64{1, 2, 3, 4, 5},
	}))
	require.False(t, manager.NeedsApproval(DeletePayload{AttributeIDs: []int64{1}}))
	require.False(t, manager.NeedsApproval(MigrationPayload{}))
}

func TestNeedsApprovalThresholdZeroMeansAlways(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil, nil, nil, nil, config.ApprovalConfig{
		Enabled:              true,
		AutoApproveThreshold: 0,
	})

	require.True(t, manager.NeedsApproval(MergePayload{}))
	require.True(t, manager.NeedsApproval(DeletePayload{}))
}

func TestNeedsApprovalCountAgainstThreshold(t *testing.T) {
	t.Parallel()

	manager := NewManager(nil, nil, nil, nil, nil, config.ApprovalConfig{
		Enabled:              true,
		AutoApproveThreshold: 2,
	})

	require.False(t, manager.NeedsApproval(MergePayload{SourceAttributeIDs: []int64{1}}))
	require.True(t, manager.NeedsApproval(MergePayload{SourceAttributeIDs: []int64{1, 2}}))
	require.True(t, manager.NeedsApproval(MergePayload{SourceAttributeIDs: []int64{1, 2, 3}}))

	require.False(t, manager.NeedsApproval(MigrationPayload{ProductIDs: []int64{10}}))
	require.True(t, manager.NeedsApproval(MigrationPayload{ProductIDs: []int64{10, 11}}))

	require.False(t, manager.NeedsApproval(DeletePayload{AttributeIDs: []int64{7}}))
	require.True(t, manager.NeedsApproval(DeletePayload{AttributeIDs: []int64{7, 8}}))
}

func TestPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	encoded, err := EncodePayload(MergePayload{
		SourceAttributeIDs: []int64{1, 2},
		TargetAttributeID:  3,
		Strategy:           merge.StrategyKeepTarget,
		DeleteSources:      true,
	})
	require.NoError(t, err)

	decoded, err := DecodePayload(schema.ProposalTypeMerge, encoded)
	require.NoError(t, err)

	mergePayload, ok := decoded.(MergePayload)
	require.True(t, ok)
	require.Equal(t, []int64{1, 2}, mergePayload.SourceAttributeIDs)
	require.Equal(t, int64(3), mergePayload.TargetAttributeID)
	require.Equal(t, merge.StrategyKeepTarget, mergePayload.Strategy)
	require.True(t, mergePayload.DeleteSources)
	require.Equal(t, 2, mergePayload.AffectedCount())

	_, err = DecodePayload(schema.ProposalType("unknown"), []byte("{}"))
	require.Error(t, err)
}

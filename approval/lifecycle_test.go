package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/log"
	"github.com/attrcare/attrcare/merge"
	"github.com/attrcare/attrcare/schema"
	"github.com/attrcare/attrcare/setmigration"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // enable mysql dialect
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func createManager(t *testing.T, goquDB *goqu.Database, entityType string) *Manager {
	t.Helper()

	attrsRepo := attrs.NewRepository(goquDB)

	return NewManager(
		NewRepository(goquDB),
		merge.NewMerger(goquDB, attrsRepo),
		setmigration.NewMigrator(goquDB, attrsRepo, nil, entityType),
		log.NewRepository(goquDB),
		nil,
		config.ApprovalConfig{Enabled: true},
	)
}

func seedRow(t *testing.T, ctx context.Context, db *goqu.Database, table interface{}, row goqu.Record) int64 {
	t.Helper()

	res, err := db.Insert(table).Rows(row).Executor().ExecContext(ctx)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)

	return id
}

func TestMergeProposalLifecycle(t *testing.T) {
	t.Parallel()

	cfg := config.LoadConfig("..")

	db, err := sql.Open("mysql", cfg.DSN)
	require.NoError(t, err)

	goquDB := goqu.New("mysql", db)
	ctx := context.Background()
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec

	entityType := fmt.Sprintf("approval-test-%d", random.Int())
	entityTypeID := seedRow(t, ctx, goquDB, schema.EavEntityTypeTable,
		goqu.Record{"entity_type_code": entityType})

	setID := seedRow(t, ctx, goquDB, schema.EavAttributeSetTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_name": fmt.Sprintf("Set %d", random.Int()),
	})

	sourceID := seedRow(t, ctx, goquDB, schema.EavAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_code": fmt.Sprintf("colour_%d", random.Int()),
		"backend_type": schema.BackendTypeVarchar, "frontend_input": schema.FrontendInputText,
		"is_user_defined": 1,
	})
	targetID := seedRow(t, ctx, goquDB, schema.EavAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_code": fmt.Sprintf("color_%d", random.Int()),
		"backend_type": schema.BackendTypeVarchar, "frontend_input": schema.FrontendInputText,
		"is_user_defined": 1,
	})

	productID := seedRow(t, ctx, goquDB, schema.CatalogProductTable, goqu.Record{
		"sku": fmt.Sprintf("SKU-%d", random.Int()), "attribute_set_id": setID,
	})

	table, ok := schema.ValueTableFor(schema.BackendTypeVarchar)
	require.True(t, ok)

	seedRow(t, ctx, goquDB, table.Table, goqu.Record{
		"attribute_id": sourceID, "store_id": 0, "entity_id": productID, "value": "red",
	})

	manager := createManager(t, goquDB, entityType)

	row, err := manager.CreateProposal(ctx, MergePayload{
		SourceAttributeIDs: []int64{sourceID},
		TargetAttributeID:  targetID,
		Strategy:           merge.StrategyKeepTarget,
	}, "consolidate colour spellings", "creator")
	require.NoError(t, err)
	require.Equal(t, schema.ProposalStatusPending, row.Status)

	// Not approved yet.
	_, err = manager.ExecuteProposal(ctx, row.ID, "operator")
	require.ErrorIs(t, err, ErrNotApproved)

	approved, err := manager.ApproveProposal(ctx, row.ID, "approver", "looks right")
	require.NoError(t, err)
	require.True(t, approved)

	result, err := manager.ExecuteProposal(ctx, row.ID, "operator")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, schema.ProposalStatusExecuted, result.Status)

	snapshot := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(result.Result, &snapshot))
	require.EqualValues(t, 1, snapshot["values_migrated"])
	require.EqualValues(t, 1, snapshot["sources_merged"])

	found, updated, err := manager.Proposal(ctx, row.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, schema.ProposalStatusExecuted, updated.Status)

	var migrated string

	valueFound, err := goquDB.Select(table.ValueCol()).
		From(table.Table).
		Where(table.AttributeIDCol().Eq(targetID), table.EntityIDCol().Eq(productID)).
		ScanValContext(ctx, &migrated)
	require.NoError(t, err)
	require.True(t, valueFound)
	require.Equal(t, "red", migrated)

	events, _, err := manager.History(ctx, row.ID, 1)
	require.NoError(t, err)
	require.NotEmpty(t, events)
}

func TestRejectedProposalCannotBeExecuted(t *testing.T) {
	t.Parallel()

	cfg := config.LoadConfig("..")

	db, err := sql.Open("mysql", cfg.DSN)
	require.NoError(t, err)

	goquDB := goqu.New("mysql", db)
	ctx := context.Background()

	manager := createManager(t, goquDB, "catalog_product")

	row, err := manager.CreateProposal(ctx, DeletePayload{AttributeIDs: []int64{0}},
		"stale attribute cleanup", "creator")
	require.NoError(t, err)

	rejected, err := manager.RejectProposal(ctx, row.ID, "approver", "not convinced")
	require.NoError(t, err)
	require.True(t, rejected)

	// Terminal state: neither approval nor execution may proceed.
	approved, err := manager.ApproveProposal(ctx, row.ID, "approver", "")
	require.NoError(t, err)
	require.False(t, approved)

	_, err = manager.ExecuteProposal(ctx, row.ID, "operator")
	require.ErrorIs(t, err, ErrNotApproved)
}

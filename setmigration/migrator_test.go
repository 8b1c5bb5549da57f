package setmigration

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/attrcare/attrcare/attrs"
	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // enable mysql dialect
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func createTestDB(t *testing.T) *goqu.Database {
	t.Helper()

	cfg := config.LoadConfig("..")

	db, err := sql.Open("mysql", cfg.DSN)
	require.NoError(t, err)

	return goqu.New("mysql", db)
}

func insertRow(t *testing.T, ctx context.Context, db *goqu.Database, table interface{}, row goqu.Record) int64 {
	t.Helper()

	res, err := db.Insert(table).Rows(row).Executor().ExecContext(ctx)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)

	return id
}

func productSetID(t *testing.T, ctx context.Context, db *goqu.Database, productID int64) int64 {
	t.Helper()

	var setID int64

	found, err := db.Select(schema.CatalogProductTableAttributeSetIDCol).
		From(schema.CatalogProductTable).
		Where(schema.CatalogProductTableIDCol.Eq(productID)).
		ScanValContext(ctx, &setID)
	require.NoError(t, err)
	require.True(t, found)

	return setID
}

func TestExecuteMigrationSkipsEntitiesAlreadyInTargetSet(t *testing.T) {
	t.Parallel()

	goquDB := createTestDB(t)
	ctx := context.Background()
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec

	entityType := fmt.Sprintf("migrator-test-%d", random.Int())
	entityTypeID := insertRow(t, ctx, goquDB, schema.EavEntityTypeTable,
		goqu.Record{"entity_type_code": entityType})

	sourceSetID := insertRow(t, ctx, goquDB, schema.EavAttributeSetTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_name": fmt.Sprintf("Source %d", random.Int()),
	})
	targetSetID := insertRow(t, ctx, goquDB, schema.EavAttributeSetTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_name": fmt.Sprintf("Target %d", random.Int()),
	})

	inTarget := insertRow(t, ctx, goquDB, schema.CatalogProductTable, goqu.Record{
		"sku": fmt.Sprintf("SKU-%d", random.Int()), "attribute_set_id": targetSetID,
	})
	inSource := insertRow(t, ctx, goquDB, schema.CatalogProductTable, goqu.Record{
		"sku": fmt.Sprintf("SKU-%d", random.Int()), "attribute_set_id": sourceSetID,
	})

	migrator := NewMigrator(goquDB, attrs.NewRepository(goquDB), nil, entityType)

	result, err := migrator.ExecuteMigration(ctx, []int64{inTarget, inSource, 0}, targetSetID, true)
	require.NoError(t, err)

	require.Equal(t, []int64{inTarget}, result.Skipped)
	require.Equal(t, []int64{inSource}, result.Migrated)
	require.Len(t, result.Failed, 1)
	require.Equal(t, int64(0), result.Failed[0].EntityID)

	require.Equal(t, targetSetID, productSetID(t, ctx, goquDB, inTarget))
	require.Equal(t, targetSetID, productSetID(t, ctx, goquDB, inSource))
}

func TestExecuteMigrationRemovesLostValuesUnlessPreserved(t *testing.T) {
	t.Parallel()

	goquDB := createTestDB(t)
	ctx := context.Background()
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec

	entityType := fmt.Sprintf("migrator-test-%d", random.Int())
	entityTypeID := insertRow(t, ctx, goquDB, schema.EavEntityTypeTable,
		goqu.Record{"entity_type_code": entityType})

	sourceSetID := insertRow(t, ctx, goquDB, schema.EavAttributeSetTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_name": fmt.Sprintf("Source %d", random.Int()),
	})
	targetSetID := insertRow(t, ctx, goquDB, schema.EavAttributeSetTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_name": fmt.Sprintf("Target %d", random.Int()),
	})

	lostAttrID := insertRow(t, ctx, goquDB, schema.EavAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_code": fmt.Sprintf("lost_%d", random.Int()),
		"backend_type": schema.BackendTypeVarchar, "frontend_input": schema.FrontendInputText,
		"is_user_defined": 1,
	})
	sharedAttrID := insertRow(t, ctx, goquDB, schema.EavAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_code": fmt.Sprintf("shared_%d", random.Int()),
		"backend_type": schema.BackendTypeVarchar, "frontend_input": schema.FrontendInputText,
		"is_user_defined": 1,
	})

	insertRow(t, ctx, goquDB, schema.EavEntityAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_id": sourceSetID, "attribute_id": lostAttrID,
	})
	insertRow(t, ctx, goquDB, schema.EavEntityAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_id": sourceSetID, "attribute_id": sharedAttrID,
	})
	insertRow(t, ctx, goquDB, schema.EavEntityAttributeTable, goqu.Record{
		"entity_type_id": entityTypeID, "attribute_set_id": targetSetID, "attribute_id": sharedAttrID,
	})

	productID := insertRow(t, ctx, goquDB, schema.CatalogProductTable, goqu.Record{
		"sku": fmt.Sprintf("SKU-%d", random.Int()), "attribute_set_id": sourceSetID,
	})

	table, ok := schema.ValueTableFor(schema.BackendTypeVarchar)
	require.True(t, ok)

	insertRow(t, ctx, goquDB, table.Table, goqu.Record{
		"attribute_id": lostAttrID, "store_id": 0, "entity_id": productID, "value": "doomed",
	})
	insertRow(t, ctx, goquDB, table.Table, goqu.Record{
		"attribute_id": sharedAttrID, "store_id": 0, "entity_id": productID, "value": "kept",
	})

	migrator := NewMigrator(goquDB, attrs.NewRepository(goquDB), nil, entityType)

	result, err := migrator.ExecuteMigration(ctx, []int64{productID}, targetSetID, false)
	require.NoError(t, err)
	require.Equal(t, []int64{productID}, result.Migrated)
	require.Empty(t, result.Failed)

	require.Equal(t, targetSetID, productSetID(t, ctx, goquDB, productID))

	var count int64

	_, err = goquDB.Select(goqu.COUNT(goqu.Star())).
		From(table.Table).
		Where(table.AttributeIDCol().Eq(lostAttrID), table.EntityIDCol().Eq(productID)).
		ScanValContext(ctx, &count)
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = goquDB.Select(goqu.COUNT(goqu.Star())).
		From(table.Table).
		Where(table.AttributeIDCol().Eq(sharedAttrID), table.EntityIDCol().Eq(productID)).
		ScanValContext(ctx, &count)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestExecuteMigrationUnknownSet(t *testing.T) {
	t.Parallel()

	goquDB := createTestDB(t)
	ctx := context.Background()
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec

	entityType := fmt.Sprintf("migrator-test-%d", random.Int())
	insertRow(t, ctx, goquDB, schema.EavEntityTypeTable, goqu.Record{"entity_type_code": entityType})

	migrator := NewMigrator(goquDB, attrs.NewRepository(goquDB), nil, entityType)

	_, err := migrator.ExecuteMigration(ctx, []int64{1}, 0, true)
	require.ErrorIs(t, err, ErrSetNotFound)
}

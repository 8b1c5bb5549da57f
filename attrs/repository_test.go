package attrs

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/attrcare/attrcare/config"
	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql" // enable mysql dialect
	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestEntityTypeAndAttributeLookup(t *testing.T) {
	t.Parallel()

	cfg := config.LoadConfig("..")

	db, err := sql.Open("mysql", cfg.DSN)
	require.NoError(t, err)

	goquDB := goqu.New("mysql", db)
	ctx := context.Background()
	random := rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec

	entityType := fmt.Sprintf("attrs-test-%d", random.Int())

	res, err := goquDB.Insert(schema.EavEntityTypeTable).
		Rows(goqu.Record{"entity_type_code": entityType}).
		Executor().ExecContext(ctx)
	require.NoError(t, err)

	entityTypeID, err := res.LastInsertId()
	require.NoError(t, err)

	code := fmt.Sprintf("lumen_%d", random.Int())

	res, err = goquDB.Insert(schema.EavAttributeTable).
		Rows(goqu.Record{
			"entity_type_id": entityTypeID, "attribute_code": code,
			"backend_type": schema.BackendTypeInt, "frontend_input": schema.FrontendInputText,
			"is_user_defined": 1,
		}).
		Executor().ExecContext(ctx)
	require.NoError(t, err)

	attributeID, err := res.LastInsertId()
	require.NoError(t, err)

	repository := NewRepository(goquDB)

	gotTypeID, err := repository.EntityTypeID(ctx, entityType)
	require.NoError(t, err)
	require.Equal(t, entityTypeID, gotTypeID)

	found, byCode, err := repository.AttributeByCode(ctx, entityTypeID, code)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, attributeID, byCode.ID)
	require.Equal(t, schema.BackendTypeInt, byCode.BackendType)

	found, byID, err := repository.Attribute(ctx, attributeID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, code, byID.Code)
	require.True(t, byID.IsUserDefined)

	found, _, err = repository.AttributeByCode(ctx, entityTypeID, "no_such_code")
	require.NoError(t, err)
	require.False(t, found)
}

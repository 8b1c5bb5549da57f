package merge

import (
	"context"
	"fmt"

	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
	"github.com/sirupsen/logrus"
)

// RollbackResult reports how many value slots a rollback restored.
type RollbackResult struct {
	OperationID string
	Restored    int
	Deleted     int
}

// Rollback restores the target value slots touched by a merge operation from
// its merge-log snapshots: inserted rows are removed, overwritten rows get
// their old value back. Source attributes deleted during the merge are not
// recreated; Preview warns about that before execution.
func (s *Merger) Rollback(ctx context.Context, operationID string) (*RollbackResult, error) {
	logRows := make([]schema.AttributeMergeLogRow, 0)

	err := s.db.Select(schema.AttributeMergeLogTable.All()).
		From(schema.AttributeMergeLogTable).
		Where(schema.AttributeMergeLogTableOperationIDCol.Eq(operationID)).
		Order(schema.AttributeMergeLogTableIDCol.Desc()).
		ScanStructsContext(ctx, &logRows)
	if err != nil {
		return nil, err
	}

	if len(logRows) == 0 {
		return nil, ErrNothingToRestore
	}

	result := &RollbackResult{OperationID: operationID}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	err = tx.Wrap(func() error {
		for _, logRow := range logRows {
			table, ok := schema.ValueTableFor(logRow.BackendType)
			if !ok {
				return fmt.Errorf("%w: %s", ErrNoValueTable, logRow.BackendType)
			}

			slot := goqu.And(
				table.AttributeIDCol().Eq(logRow.TargetAttributeID),
				table.EntityIDCol().Eq(logRow.EntityID),
				table.StoreIDCol().Eq(logRow.StoreID),
			)

			if logRow.HadTargetValue {
				var oldValue interface{}
				if logRow.OldTargetValue.Valid {
					oldValue = logRow.OldTargetValue.String
				}

				_, err := tx.Update(table.Table).
					Set(goqu.Record{"value": oldValue}).
					Where(slot).
					Executor().ExecContext(ctx)
				if err != nil {
					return err
				}

				result.Restored++
			} else {
				_, err := tx.Delete(table.Table).
					Where(slot).
					Executor().ExecContext(ctx)
				if err != nil {
					return err
				}

				result.Deleted++
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("merge %s rolled back: %d restored, %d removed", operationID, result.Restored, result.Deleted)

	return result, nil
}

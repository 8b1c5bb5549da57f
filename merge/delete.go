package merge

import (
	"context"
	"errors"

	"github.com/attrcare/attrcare/schema"
	"github.com/doug-martin/goqu/v9"
	"github.com/sirupsen/logrus"
)

var ErrAttributeNotFound = errors.New("attribute not found")

// DeleteAttribute hard-deletes an attribute: its value rows, its options and
// their labels, its set memberships, and the metadata row itself. Runs in
// its own transaction.
func (s *Merger) DeleteAttribute(ctx context.Context, attributeID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	return tx.Wrap(func() error {
		row := schema.EavAttributeRow{}

		found, err := tx.Select(schema.EavAttributeTable.All()).
			From(schema.EavAttributeTable).
			Where(schema.EavAttributeTableIDCol.Eq(attributeID)).
			ScanStructContext(ctx, &row)
		if err != nil {
			return err
		}

		if !found {
			return ErrAttributeNotFound
		}

		return s.deleteAttributeTx(ctx, tx, row)
	})
}

func (s *Merger) deleteAttributeTx(
	ctx context.Context, tx *goqu.TxDatabase, attribute schema.EavAttributeRow,
) error {
	if table, ok := schema.ValueTableFor(attribute.BackendType); ok {
		_, err := tx.Delete(table.Table).
			Where(table.AttributeIDCol().Eq(attribute.ID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return err
		}
	}

	if attribute.FrontendInput.HasOptions() {
		optionIDs := make([]int64, 0)

		err := tx.Select(schema.EavAttributeOptionTableIDCol).
			From(schema.EavAttributeOptionTable).
			Where(schema.EavAttributeOptionTableAttributeIDCol.Eq(attribute.ID)).
			ScanValsContext(ctx, &optionIDs)
		if err != nil {
			return err
		}

		if len(optionIDs) > 0 {
			_, err = tx.Delete(schema.EavAttributeOptionValueTable).
				Where(schema.EavAttributeOptionValueTableOptionIDCol.In(optionIDs)).
				Executor().ExecContext(ctx)
			if err != nil {
				return err
			}
		}

		_, err = tx.Delete(schema.EavAttributeOptionTable).
			Where(schema.EavAttributeOptionTableAttributeIDCol.Eq(attribute.ID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return err
		}
	}

	_, err := tx.Delete(schema.EavEntityAttributeTable).
		Where(schema.EavEntityAttributeTableAttributeIDCol.Eq(attribute.ID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Delete(schema.EavAttributeTable).
		Where(schema.EavAttributeTableIDCol.Eq(attribute.ID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return err
	}

	logrus.Infof("attribute %d (%s) deleted", attribute.ID, attribute.Code)

	return nil
}

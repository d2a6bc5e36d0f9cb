package store

import (
	"context"
	"fmt"

	"github.com/roach88/recordselect/internal/ir"
)

const upsertRecordSQL = `
	INSERT INTO records (type, rid, fields)
	VALUES (?, ?, ?)
	ON CONFLICT(type, rid) DO UPDATE SET fields = excluded.fields
	RETURNING seq
`

// Put inserts or replaces a record and returns its seq.
//
// A new (type, id) pair gets the next seq; replacing an existing pair keeps
// its original seq, so the record does not move in storage-natural order.
// Fields are serialized to canonical JSON.
func (s *Store) Put(ctx context.Context, row ir.Row) (int64, error) {
	if err := checkRow(row); err != nil {
		return 0, fmt.Errorf("put record: %w", err)
	}
	fieldsJSON, err := marshalFields(row.Fields)
	if err != nil {
		return 0, fmt.Errorf("put record: %w", err)
	}

	var seq int64
	if err := s.db.QueryRowContext(ctx, upsertRecordSQL, row.Type, row.ID, fieldsJSON).Scan(&seq); err != nil {
		return 0, fmt.Errorf("put record %s/%s: %w", row.Type, row.ID, err)
	}
	return seq, nil
}

// PutBatch writes rows in a single transaction, in slice order.
// Either every row is written or none is.
func (s *Store) PutBatch(ctx context.Context, rows []ir.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put batch: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt, err := tx.PrepareContext(ctx, upsertRecordSQL)
	if err != nil {
		return fmt.Errorf("put batch: prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if err := checkRow(row); err != nil {
			return fmt.Errorf("put batch: row %d: %w", i, err)
		}
		fieldsJSON, err := marshalFields(row.Fields)
		if err != nil {
			return fmt.Errorf("put batch: row %d: %w", i, err)
		}
		var seq int64
		if err := stmt.QueryRowContext(ctx, row.Type, row.ID, fieldsJSON).Scan(&seq); err != nil {
			return fmt.Errorf("put batch: row %d (%s/%s): %w", i, row.Type, row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put batch: commit: %w", err)
	}
	return nil
}

// Delete removes a record. It reports whether a row existed.
func (s *Store) Delete(ctx context.Context, typeName, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM records WHERE type = ? AND rid = ?
	`, typeName, id)
	if err != nil {
		return false, fmt.Errorf("delete record %s/%s: %w", typeName, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record %s/%s: %w", typeName, id, err)
	}
	return n > 0, nil
}

// SaveType stores a snapshot of a record type declaration.
// Saving a type again replaces the previous snapshot.
func (s *Store) SaveType(ctx context.Context, rt ir.RecordType) error {
	def, err := marshalRecordType(rt)
	if err != nil {
		return fmt.Errorf("save type %s: %w", rt.Name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO record_types (name, key_field, definition)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET key_field = excluded.key_field, definition = excluded.definition
	`, rt.Name, rt.KeyField(), def)
	if err != nil {
		return fmt.Errorf("save type %s: %w", rt.Name, err)
	}
	return nil
}

func checkRow(row ir.Row) error {
	if row.Type == "" {
		return fmt.Errorf("record type is required")
	}
	if row.ID == "" {
		return fmt.Errorf("record id is required")
	}
	return nil
}

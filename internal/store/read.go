package store

import (
	"context"
	"fmt"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/queryir"
)

// Resolve runs a select and returns the matching field sets in result order.
//
// Results follow the select's ORDER keys, then storage-natural seq order
// (reversed when Backward is set). Returns an empty slice (not nil) when
// nothing matches.
func (s *Store) Resolve(ctx context.Context, sel queryir.Select) ([]ir.IRObject, error) {
	rows, err := s.ResolveRows(ctx, sel)
	if err != nil {
		return nil, err
	}
	out := make([]ir.IRObject, len(rows))
	for i, r := range rows {
		out[i] = r.Fields
	}
	return out, nil
}

// ResolveRows is Resolve returning full rows with their seq.
func (s *Store) ResolveRows(ctx context.Context, sel queryir.Select) ([]ir.Row, error) {
	if err := queryir.Validate(sel).Err(); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sel.From, err)
	}
	query, params, err := s.compiler.Compile(sel)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sel.From, err)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []ir.Row
	for rows.Next() {
		var seq int64
		var rid, fieldsJSON string
		if err := rows.Scan(&seq, &rid, &fieldsJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		fields, err := unmarshalFields(fieldsJSON)
		if err != nil {
			return nil, fmt.Errorf("record seq %d: %w", seq, err)
		}
		out = append(out, ir.Row{Type: sel.From, ID: rid, Seq: seq, Fields: fields})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	// Return empty slice instead of nil
	if out == nil {
		out = []ir.Row{}
	}

	return out, nil
}

// Count returns how many records of sel.From match sel.Where.
func (s *Store) Count(ctx context.Context, sel queryir.Select) (int, error) {
	if err := queryir.Validate(sel).Err(); err != nil {
		return 0, fmt.Errorf("count %s: %w", sel.From, err)
	}
	query, params, err := s.compiler.CompileCount(sel)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", sel.From, err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, params...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", sel.From, err)
	}
	return n, nil
}

// Get retrieves a single record by type and storage key.
// Returns sql.ErrNoRows if not found.
func (s *Store) Get(ctx context.Context, typeName, id string) (ir.Row, error) {
	var row ir.Row
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx, `
		SELECT type, rid, seq, fields
		FROM records
		WHERE type = ? AND rid = ?
	`, typeName, id).Scan(&row.Type, &row.ID, &row.Seq, &fieldsJSON)
	if err != nil {
		return ir.Row{}, err
	}

	fields, err := unmarshalFields(fieldsJSON)
	if err != nil {
		return ir.Row{}, err
	}
	row.Fields = fields
	return row, nil
}

// Types returns the stored record type snapshots ordered by name.
func (s *Store) Types(ctx context.Context) ([]ir.RecordType, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT definition FROM record_types ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query record types: %w", err)
	}
	defer rows.Close()

	types := []ir.RecordType{}
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, fmt.Errorf("scan record type: %w", err)
		}
		rt, err := unmarshalRecordType(def)
		if err != nil {
			return nil, err
		}
		types = append(types, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate record types: %w", err)
	}
	return types, nil
}

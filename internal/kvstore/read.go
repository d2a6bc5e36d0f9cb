package kvstore

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/cockroachdb/pebble"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/queryir"
)

// Resolve runs a select and returns the matching field sets in result order.
//
// Records of sel.From are scanned in seq order, filtered with queryir.Match,
// sorted with queryir.CompareRecords and ties broken by seq (descending when
// Backward is set). Returns an empty slice (not nil) when nothing matches.
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

	matched, err := s.scan(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", sel.From, err)
	}

	sortRows(matched, sel.Order, sel.Backward)
	if sel.Limit > 0 && len(matched) > sel.Limit {
		matched = matched[:sel.Limit]
	}
	return matched, nil
}

// Count returns how many records of sel.From match sel.Where.
func (s *Store) Count(ctx context.Context, sel queryir.Select) (int, error) {
	if err := queryir.Validate(sel).Err(); err != nil {
		return 0, fmt.Errorf("count %s: %w", sel.From, err)
	}
	matched, err := s.scan(ctx, sel)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", sel.From, err)
	}
	return len(matched), nil
}

// scan returns every record of sel.From matching sel.Where, in seq order.
func (s *Store) scan(ctx context.Context, sel queryir.Select) ([]ir.Row, error) {
	if err := checkName(sel.From); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	prefix := recordPrefix(sel.From)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("new iterator: %w", err)
	}
	defer iter.Close()

	matched := []ir.Row{}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		seq, err := seqFromRecordKey(iter.Key())
		if err != nil {
			return nil, err
		}
		id, fields, err := decodeRecord(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("record seq %d: %w", seq, err)
		}
		if !queryir.Match(sel.Where, fields) {
			continue
		}
		matched = append(matched, ir.Row{Type: sel.From, ID: id, Seq: seq, Fields: fields})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return matched, nil
}

// sortRows orders rows by the ORDER keys, then by seq.
func sortRows(rows []ir.Row, order []queryir.OrderClause, backward bool) {
	slices.SortStableFunc(rows, func(a, b ir.Row) int {
		if r := queryir.CompareRecords(order, a.Fields, b.Fields); r != 0 {
			return r
		}
		if backward {
			return cmp.Compare(b.Seq, a.Seq)
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// Get retrieves a single record by type and storage key.
// Returns ErrNotFound if no such record exists.
func (s *Store) Get(ctx context.Context, typeName, id string) (ir.Row, error) {
	if err := ctx.Err(); err != nil {
		return ir.Row{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return ir.Row{}, err
	}

	seq, err := s.lookupSeq(indexKey(typeName, id))
	if err != nil {
		return ir.Row{}, err
	}
	if seq == 0 {
		return ir.Row{}, ErrNotFound
	}

	data, err := s.get(recordKey(typeName, seq))
	if errors.Is(err, pebble.ErrNotFound) {
		return ir.Row{}, fmt.Errorf("index for %s/%s points at missing seq %d", typeName, id, seq)
	}
	if err != nil {
		return ir.Row{}, err
	}
	storedID, fields, err := decodeRecord(data)
	if err != nil {
		return ir.Row{}, err
	}
	return ir.Row{Type: typeName, ID: storedID, Seq: seq, Fields: fields}, nil
}

// Types returns the stored record type snapshots ordered by name.
func (s *Store) Types(ctx context.Context) ([]ir.RecordType, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	prefix := []byte(typeSpace)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("new iterator: %w", err)
	}
	defer iter.Close()

	types := []ir.RecordType{}
	for iter.First(); iter.Valid(); iter.Next() {
		var rt ir.RecordType
		if err := json.Unmarshal(iter.Value(), &rt); err != nil {
			return nil, fmt.Errorf("unmarshal record type %q: %w", iter.Key(), err)
		}
		types = append(types, rt)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterate record types: %w", err)
	}
	return types, nil
}

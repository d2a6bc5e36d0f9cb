package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/roach88/recordselect/internal/ir"
)

// Put inserts or replaces a record and returns its seq.
//
// A new (type, id) pair gets the next seq; replacing an existing pair keeps
// its original seq, so the record does not move in storage-natural order.
func (s *Store) Put(ctx context.Context, row ir.Row) (int64, error) {
	seqs, err := s.write(ctx, []ir.Row{row})
	if err != nil {
		return 0, fmt.Errorf("put record: %w", err)
	}
	return seqs[0], nil
}

// PutBatch writes rows in a single atomic pebble batch, in slice order.
func (s *Store) PutBatch(ctx context.Context, rows []ir.Row) error {
	if len(rows) == 0 {
		return nil
	}
	if _, err := s.write(ctx, rows); err != nil {
		return fmt.Errorf("put batch: %w", err)
	}
	return nil
}

func (s *Store) write(ctx context.Context, rows []ir.Row) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	// seqs assigned earlier in this batch, by index key
	pending := make(map[string]int64, len(rows))
	seqs := make([]int64, len(rows))

	for i, row := range rows {
		if err := checkName(row.Type); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if row.ID == "" {
			return nil, fmt.Errorf("row %d: record id is required", i)
		}
		value, err := encodeRecord(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		ik := indexKey(row.Type, row.ID)
		seq, ok := pending[string(ik)]
		if !ok {
			seq, err = s.lookupSeq(ik)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if seq == 0 {
				seq = s.clock.Next()
			}
			pending[string(ik)] = seq
		}

		if err := batch.Set(recordKey(row.Type, seq), value, nil); err != nil {
			return nil, err
		}
		if err := batch.Set(ik, encodeSeq(seq), nil); err != nil {
			return nil, err
		}
		seqs[i] = seq
	}

	if err := batch.Set(seqKey, encodeSeq(s.clock.Current()), nil); err != nil {
		return nil, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return seqs, nil
}

// lookupSeq returns the seq stored for an index key, or 0 if none.
// Must be called with s.mu held.
func (s *Store) lookupSeq(ik []byte) (int64, error) {
	data, err := s.get(ik)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read index: %w", err)
	}
	return decodeSeq(data)
}

// Delete removes a record. It reports whether a record existed.
func (s *Store) Delete(ctx context.Context, typeName, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkOpen(); err != nil {
		return false, err
	}

	ik := indexKey(typeName, id)
	seq, err := s.lookupSeq(ik)
	if err != nil {
		return false, fmt.Errorf("delete record %s/%s: %w", typeName, id, err)
	}
	if seq == 0 {
		return false, nil
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(recordKey(typeName, seq), nil); err != nil {
		return false, err
	}
	if err := batch.Delete(ik, nil); err != nil {
		return false, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return false, fmt.Errorf("delete record %s/%s: %w", typeName, id, err)
	}
	return true, nil
}

// SaveType stores a snapshot of a record type declaration.
func (s *Store) SaveType(ctx context.Context, rt ir.RecordType) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkName(rt.Name); err != nil {
		return fmt.Errorf("save type: %w", err)
	}
	data, err := json.Marshal(rt)
	if err != nil {
		return fmt.Errorf("save type %s: %w", rt.Name, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.db.Set(typeKey(rt.Name), data, pebble.Sync); err != nil {
		return fmt.Errorf("save type %s: %w", rt.Name, err)
	}
	return nil
}

// encodeRecord serializes a row as canonical JSON {"fields":{...},"id":"<rid>"}.
func encodeRecord(row ir.Row) ([]byte, error) {
	fields := row.Fields
	if fields == nil {
		fields = ir.IRObject{}
	}
	data, err := ir.MarshalCanonical(ir.IRObject{
		"id":     ir.IRString(row.ID),
		"fields": fields,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal fields: %w", err)
	}
	return data, nil
}

// decodeRecord parses a stored record value.
func decodeRecord(data []byte) (string, ir.IRObject, error) {
	env, err := ir.UnmarshalObject(data)
	if err != nil {
		return "", nil, fmt.Errorf("unmarshal record: %w", err)
	}
	id, ok := env["id"].(ir.IRString)
	if !ok {
		return "", nil, fmt.Errorf("unmarshal record: id is %s", ir.KindOf(env["id"]))
	}
	fields, ok := env["fields"].(ir.IRObject)
	if !ok {
		return "", nil, fmt.Errorf("unmarshal record: fields is %s", ir.KindOf(env["fields"]))
	}
	return string(id), fields, nil
}

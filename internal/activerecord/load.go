package activerecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/recordselect/internal/compiler"
	"github.com/roach88/recordselect/internal/ir"
)

// Writer stores rows atomically. Implemented by store.Store and kvstore.Store.
type Writer interface {
	PutBatch(ctx context.Context, rows []ir.Row) error
}

// TypeSaver is implemented by writers that keep a schema snapshot.
type TypeSaver interface {
	SaveType(ctx context.Context, rt ir.RecordType) error
}

// LoadError reports records that failed schema validation.
type LoadError struct {
	Type   string
	Index  int
	Errors []compiler.ValidationError
}

func (e *LoadError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s record %d: %v", e.Type, e.Index, e.Errors[0])
	}
	return fmt.Sprintf("%s record %d: %v (and %d more)", e.Type, e.Index, e.Errors[0], len(e.Errors)-1)
}

// Load validates objs against rt and writes them in one batch.
//
// A record whose string key field is absent or null gets a key from gen;
// gen may be nil when every record carries its key. Nothing is written
// unless every record is valid. Returns the number of records written.
func Load(ctx context.Context, w Writer, rt ir.RecordType, objs []ir.IRObject, gen KeyGenerator) (int, error) {
	rows := make([]ir.Row, 0, len(objs))
	for i, obj := range objs {
		obj, err := assignKey(rt, obj, gen)
		if err != nil {
			return 0, fmt.Errorf("%s record %d: %w", rt.Name, i, err)
		}
		if errs := compiler.ValidateRecord(rt, obj); len(errs) > 0 {
			return 0, &LoadError{Type: rt.Name, Index: i, Errors: errs}
		}
		row, err := ir.NewRow(rt, obj)
		if err != nil {
			return 0, fmt.Errorf("%s record %d: %w", rt.Name, i, err)
		}
		rows = append(rows, row)
	}

	if ts, ok := w.(TypeSaver); ok {
		if err := ts.SaveType(ctx, rt); err != nil {
			return 0, err
		}
	}
	if err := w.PutBatch(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

var errNoGenerator = errors.New("key is missing and no key generator is configured")

func assignKey(rt ir.RecordType, obj ir.IRObject, gen KeyGenerator) (ir.IRObject, error) {
	key := rt.KeyField()
	if v, ok := obj[key]; ok && !ir.IsNull(v) {
		return obj, nil
	}
	f, ok := rt.Field(key)
	if !ok || f.Type != ir.FieldString {
		// ValidateRecord reports the missing key
		return obj, nil
	}
	if gen == nil {
		return nil, errNoGenerator
	}
	out := obj.Clone()
	out[key] = ir.IRString(gen.Generate())
	return out, nil
}

package activerecord

import (
	"fmt"

	"github.com/roach88/recordselect/internal/ir"
)

// Record is one resolved row of a declared record type.
//
// The field set always equals the schema's field set: declared fields the
// row lacks read as null. A Record holds no reference to the builder that
// produced it.
type Record struct {
	typeName string
	id       string
	fields   ir.IRObject
}

// newRecord materializes a resolver row. Fields the schema does not declare
// are rejected, and the key field must render as a storage key.
func newRecord(rt ir.RecordType, raw ir.IRObject) (*Record, error) {
	fields := make(ir.IRObject, len(rt.Fields))
	for _, f := range rt.Fields {
		if v, ok := raw[f.Name]; ok {
			fields[f.Name] = v
		} else {
			fields[f.Name] = ir.IRNull{}
		}
	}
	for _, name := range raw.SortedKeys() {
		if !rt.HasField(name) {
			return nil, fmt.Errorf("row has undeclared field %q", name)
		}
	}

	id, err := rt.KeyOf(fields)
	if err != nil {
		return nil, fmt.Errorf("row key %s: %w", rt.KeyField(), err)
	}
	return &Record{typeName: rt.Name, id: id, fields: fields}, nil
}

// Type returns the declared record type name.
func (r *Record) Type() string { return r.typeName }

// ID returns the identity of the record rendered as a storage key.
func (r *Record) ID() string { return r.id }

// Get returns the value of a declared field. ok is false for a field the
// schema does not declare; a declared but absent field is IRNull.
// Arrays and objects are returned as copies.
func (r *Record) Get(field string) (v ir.IRValue, ok bool) {
	v, ok = r.fields[field]
	return ir.CloneValue(v), ok
}

// Fields returns a deep copy of the field set.
func (r *Record) Fields() ir.IRObject {
	return r.fields.Clone()
}

// SameAs reports whether r and other identify the same stored record.
func (r *Record) SameAs(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.typeName == other.typeName && r.id == other.id
}

func (r *Record) String() string {
	return fmt.Sprintf("%s(%s)", r.typeName, r.id)
}

// MarshalJSON renders the field set as canonical JSON.
func (r *Record) MarshalJSON() ([]byte, error) {
	return ir.MarshalCanonical(r.fields)
}

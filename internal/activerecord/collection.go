package activerecord

import (
	"iter"
	"slices"
)

// Collection is the ordered result of one terminal call.
// It is immutable; every member has the collection's type.
type Collection struct {
	typeName string
	records  []*Record
}

func newCollection(typeName string, records []*Record) *Collection {
	if records == nil {
		records = []*Record{}
	}
	return &Collection{typeName: typeName, records: records}
}

// Type returns the declared record type name.
func (c *Collection) Type() string { return c.typeName }

// Len returns the number of records.
func (c *Collection) Len() int { return len(c.records) }

// IsEmpty reports whether the collection has no records.
func (c *Collection) IsEmpty() bool { return len(c.records) == 0 }

// At returns the record at position i.
func (c *Collection) At(i int) (*Record, bool) {
	if i < 0 || i >= len(c.records) {
		return nil, false
	}
	return c.records[i], true
}

// Contains reports whether a record with the same type and identity is a member.
func (c *Collection) Contains(rec *Record) bool {
	return c.IndexOf(rec) >= 0
}

// IndexOf returns the position of the member identified like rec, or -1.
func (c *Collection) IndexOf(rec *Record) int {
	return slices.IndexFunc(c.records, rec.SameAs)
}

// All returns the records in order. The slice is a copy.
func (c *Collection) All() []*Record {
	return slices.Clone(c.records)
}

// Iter yields position and record in order.
func (c *Collection) Iter() iter.Seq2[int, *Record] {
	return func(yield func(int, *Record) bool) {
		for i, r := range c.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// MarshalJSON renders the collection as a JSON array of field sets.
func (c *Collection) MarshalJSON() ([]byte, error) {
	buf := []byte{'['}
	for i, r := range c.records {
		if i > 0 {
			buf = append(buf, ',')
		}
		data, err := r.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf = append(buf, data...)
	}
	return append(buf, ']'), nil
}

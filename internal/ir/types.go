package ir

import (
	"fmt"
	"strconv"
)

// FieldType names the declared type of a record field.
type FieldType string

// Supported field types. "number" accepts both ints and floats.
const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldNumber FieldType = "number"
	FieldBool   FieldType = "bool"
	FieldArray  FieldType = "array"
	FieldObject FieldType = "object"
)

// ValidFieldTypes defines the allowed field type names.
var ValidFieldTypes = map[FieldType]bool{
	FieldString: true,
	FieldInt:    true,
	FieldNumber: true,
	FieldBool:   true,
	FieldArray:  true,
	FieldObject: true,
}

// DefaultKey is the identity field used when a record type declares none.
const DefaultKey = "id"

// Field is one declared field of a record type.
type Field struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Nullable bool      `json:"nullable,omitempty"`
}

// RecordType is a compiled record declaration.
// Fields keep declaration order; Key names the identity field.
type RecordType struct {
	Name   string  `json:"name"`
	Key    string  `json:"key"`
	Fields []Field `json:"fields"`
}

// Field returns the declared field with the given name.
func (t RecordType) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField reports whether name is a declared field.
func (t RecordType) HasField(name string) bool {
	_, ok := t.Field(name)
	return ok
}

// FieldNames returns field names in declaration order.
func (t RecordType) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

// KeyField returns the identity field name, defaulting to DefaultKey.
func (t RecordType) KeyField() string {
	if t.Key == "" {
		return DefaultKey
	}
	return t.Key
}

// Accepts reports whether v is a legal value for the field.
func (f Field) Accepts(v IRValue) bool {
	if IsNull(v) {
		return f.Nullable
	}
	switch f.Type {
	case FieldString:
		_, ok := v.(IRString)
		return ok
	case FieldInt:
		_, ok := v.(IRInt)
		return ok
	case FieldNumber:
		switch v.(type) {
		case IRInt, IRFloat:
			return true
		}
		return false
	case FieldBool:
		_, ok := v.(IRBool)
		return ok
	case FieldArray:
		_, ok := v.(IRArray)
		return ok
	case FieldObject:
		_, ok := v.(IRObject)
		return ok
	default:
		return false
	}
}

// String renders a field as "name: type" for diagnostics.
func (f Field) String() string {
	if f.Nullable {
		return fmt.Sprintf("%s: %s | null", f.Name, f.Type)
	}
	return fmt.Sprintf("%s: %s", f.Name, f.Type)
}

// KeyOf renders the identity value of obj as a storage key.
// Only string and int keys are supported; a missing or null key is an error.
func (t RecordType) KeyOf(obj IRObject) (string, error) {
	return KeyString(obj[t.KeyField()])
}

// KeyString renders an identity value as a storage key.
func KeyString(v IRValue) (string, error) {
	switch val := v.(type) {
	case IRString:
		if val == "" {
			return "", fmt.Errorf("key is empty")
		}
		return string(val), nil
	case IRInt:
		return strconv.FormatInt(int64(val), 10), nil
	case nil, IRNull:
		return "", fmt.Errorf("key is missing")
	default:
		return "", fmt.Errorf("key must be a string or int, got %s", KindOf(v))
	}
}

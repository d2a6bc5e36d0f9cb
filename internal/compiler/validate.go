package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/recordselect/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// RecordType errors (E101-E109)
	ErrRecordNameEmpty   = "E101" // record name is required
	ErrRecordNoFields    = "E102" // at least one field required
	ErrInvalidFieldName  = "E103" // empty or unaddressable field name
	ErrInvalidFieldType  = "E104" // invalid type string
	ErrDuplicateName     = "E105" // duplicate field or record name
	ErrInvalidKeyField   = "E106" // key field missing, nullable or not string/int
	ErrInvalidRecordName = "E107" // record name contains '/'

	// Record value errors (E120-E129)
	ErrMissingField = "E120" // non-nullable field absent or null
	ErrUnknownField = "E121" // field not declared by the record type
	ErrFieldType    = "E122" // value does not match the declared type
	ErrInvalidKey   = "E123" // key value cannot be rendered as a storage key
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled record type.
// Returns all errors found (does not fail-fast).
func Validate(rt ir.RecordType) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(rt.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "record name is required and must be non-empty",
			Code:    ErrRecordNameEmpty,
		})
	} else if strings.ContainsRune(rt.Name, '/') {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("record name %q must not contain '/'", rt.Name),
			Code:    ErrInvalidRecordName,
		})
	}

	if len(rt.Fields) == 0 {
		errs = append(errs, ValidationError{
			Field:   "fields",
			Message: "at least one field is required",
			Code:    ErrRecordNoFields,
		})
	}

	seen := make(map[string]bool)
	for i, f := range rt.Fields {
		path := fmt.Sprintf("fields[%d]", i)

		if strings.TrimSpace(f.Name) == "" || strings.ContainsAny(f.Name, "\"\x00") {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("invalid field name %q", f.Name),
				Code:    ErrInvalidFieldName,
			})
		}
		if seen[f.Name] {
			errs = append(errs, ValidationError{
				Field:   path + ".name",
				Message: fmt.Sprintf("duplicate field name: %q", f.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[f.Name] = true

		if !ir.ValidFieldTypes[f.Type] {
			errs = append(errs, ValidationError{
				Field:   path + ".type",
				Message: fmt.Sprintf("invalid type %q for field %q", f.Type, f.Name),
				Code:    ErrInvalidFieldType,
			})
		}
	}

	errs = append(errs, validateKey(rt)...)
	return errs
}

func validateKey(rt ir.RecordType) []ValidationError {
	key := rt.KeyField()
	f, ok := rt.Field(key)
	if !ok {
		return []ValidationError{{
			Field:   "key",
			Message: fmt.Sprintf("key field %q is not declared", key),
			Code:    ErrInvalidKeyField,
		}}
	}
	if f.Type != ir.FieldString && f.Type != ir.FieldInt {
		return []ValidationError{{
			Field:   "key",
			Message: fmt.Sprintf("key field %q must be string or int, got %s", key, f.Type),
			Code:    ErrInvalidKeyField,
		}}
	}
	if f.Nullable {
		return []ValidationError{{
			Field:   "key",
			Message: fmt.Sprintf("key field %q must not be nullable", key),
			Code:    ErrInvalidKeyField,
		}}
	}
	return nil
}

// ValidateRecord checks a field set against a record type before insert.
// Returns all errors found, in declaration order then sorted unknown keys.
func ValidateRecord(rt ir.RecordType, obj ir.IRObject) []ValidationError {
	var errs []ValidationError

	for _, f := range rt.Fields {
		v, ok := obj[f.Name]
		if !ok || ir.IsNull(v) {
			if !f.Nullable {
				errs = append(errs, ValidationError{
					Field:   f.Name,
					Message: "required field is missing",
					Code:    ErrMissingField,
				})
			}
			continue
		}
		if !f.Accepts(v) {
			errs = append(errs, ValidationError{
				Field:   f.Name,
				Message: fmt.Sprintf("expected %s, got %s", f.Type, ir.KindOf(v)),
				Code:    ErrFieldType,
			})
		}
	}

	for _, name := range obj.SortedKeys() {
		if !rt.HasField(name) {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: fmt.Sprintf("field is not declared by record %s", rt.Name),
				Code:    ErrUnknownField,
			})
		}
	}

	if v, ok := obj[rt.KeyField()]; ok && !ir.IsNull(v) {
		if _, err := ir.KeyString(v); err != nil {
			errs = append(errs, ValidationError{
				Field:   rt.KeyField(),
				Message: err.Error(),
				Code:    ErrInvalidKey,
			})
		}
	}

	return errs
}

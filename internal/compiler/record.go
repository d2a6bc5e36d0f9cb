package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/recordselect/internal/ir"
)

// RecordRoot is the top-level CUE field holding record declarations.
const RecordRoot = "record"

// CompileRecord parses a CUE value into a RecordType.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the record struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`record: Post: { key: "id", fields: { id: int, title: string } }`)
//	rt, err := CompileRecord(v.LookupPath(cue.ParsePath("record.Post")))
//
// A field declared optional (`author?: string`) or with a null disjunct
// (`author: string | null`) compiles as nullable.
func CompileRecord(v cue.Value) (ir.RecordType, error) {
	if err := v.Err(); err != nil {
		return ir.RecordType{}, formatCUEError(err)
	}

	var rt ir.RecordType

	// Record name is the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		rt.Name = labels[len(labels)-1].Unquoted()
	}

	rt.Key = ir.DefaultKey
	keyVal := v.LookupPath(cue.ParsePath("key"))
	if keyVal.Exists() {
		key, err := keyVal.String()
		if err != nil {
			return ir.RecordType{}, &CompileError{
				Field:   "key",
				Message: "key must be a string naming the identity field",
				Pos:     keyVal.Pos(),
			}
		}
		rt.Key = key
	}

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return ir.RecordType{}, &CompileError{
			Field:   "fields",
			Message: "fields are required",
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields(cue.Optional(true))
	if err != nil {
		return ir.RecordType{}, formatCUEError(err)
	}
	for iter.Next() {
		field, err := compileField(iter.Selector(), iter.Value())
		if err != nil {
			return ir.RecordType{}, err
		}
		rt.Fields = append(rt.Fields, field)
	}

	if len(rt.Fields) == 0 {
		return ir.RecordType{}, &CompileError{
			Field:   "fields",
			Message: "at least one field is required",
			Pos:     fieldsVal.Pos(),
		}
	}

	return rt, nil
}

func compileField(sel cue.Selector, v cue.Value) (ir.Field, error) {
	field := ir.Field{
		Name:     sel.Unquoted(),
		Nullable: sel.ConstraintType() == cue.OptionalConstraint,
	}

	kind := v.IncompleteKind()
	if kind&cue.NullKind != 0 {
		field.Nullable = true
		kind &^= cue.NullKind
	}

	fieldType, err := fieldTypeOf(kind, v)
	if err != nil {
		return ir.Field{}, err
	}
	field.Type = fieldType
	return field, nil
}

// fieldTypeOf converts a CUE kind to a record field type.
func fieldTypeOf(kind cue.Kind, v cue.Value) (ir.FieldType, error) {
	switch kind {
	case cue.StringKind:
		return ir.FieldString, nil
	case cue.IntKind:
		return ir.FieldInt, nil
	case cue.FloatKind, cue.NumberKind:
		return ir.FieldNumber, nil
	case cue.BoolKind:
		return ir.FieldBool, nil
	case cue.ListKind:
		return ir.FieldArray, nil
	case cue.StructKind:
		return ir.FieldObject, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", kind),
			Pos:     v.Pos(),
		}
	}
}

// CompileRecords compiles every declaration under the top-level "record"
// field of v, in declaration order. It stops at the first error.
func CompileRecords(v cue.Value) ([]ir.RecordType, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	root := v.LookupPath(cue.ParsePath(RecordRoot))
	if !root.Exists() {
		return nil, nil
	}

	iter, err := root.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var types []ir.RecordType
	for iter.Next() {
		rt, err := CompileRecord(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", RecordRoot, iter.Selector().Unquoted(), err)
		}
		types = append(types, rt)
	}
	return types, nil
}

// CompileSource compiles CUE source text holding record declarations.
// filename is used only for error positions.
func CompileSource(filename string, src []byte) ([]ir.RecordType, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	return CompileRecords(v)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

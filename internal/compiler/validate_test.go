package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/ir"
)

// =============================================================================
// RecordType Validation Tests
// =============================================================================

func postType() ir.RecordType {
	return ir.RecordType{
		Name: "Post",
		Key:  "id",
		Fields: []ir.Field{
			{Name: "id", Type: ir.FieldInt},
			{Name: "title", Type: ir.FieldString},
			{Name: "status", Type: ir.FieldString},
			{Name: "author", Type: ir.FieldString, Nullable: true},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateRecordTypeValid(t *testing.T) {
	assert.Empty(t, Validate(postType()), "valid record type should have no errors")
}

func TestValidateRecordType(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ir.RecordType)
		want   []string
	}{
		{
			name:   "empty name",
			mutate: func(rt *ir.RecordType) { rt.Name = " " },
			want:   []string{ErrRecordNameEmpty},
		},
		{
			name:   "slash in name",
			mutate: func(rt *ir.RecordType) { rt.Name = "blog/Post" },
			want:   []string{ErrInvalidRecordName},
		},
		{
			name:   "no fields",
			mutate: func(rt *ir.RecordType) { rt.Fields = nil },
			want:   []string{ErrRecordNoFields, ErrInvalidKeyField},
		},
		{
			name: "duplicate field",
			mutate: func(rt *ir.RecordType) {
				rt.Fields = append(rt.Fields, ir.Field{Name: "title", Type: ir.FieldString})
			},
			want: []string{ErrDuplicateName},
		},
		{
			name: "quote in field name",
			mutate: func(rt *ir.RecordType) {
				rt.Fields = append(rt.Fields, ir.Field{Name: `a"b`, Type: ir.FieldString})
			},
			want: []string{ErrInvalidFieldName},
		},
		{
			name:   "unknown field type",
			mutate: func(rt *ir.RecordType) { rt.Fields[1].Type = "text" },
			want:   []string{ErrInvalidFieldType},
		},
		{
			name:   "undeclared key",
			mutate: func(rt *ir.RecordType) { rt.Key = "slug" },
			want:   []string{ErrInvalidKeyField},
		},
		{
			name:   "nullable key",
			mutate: func(rt *ir.RecordType) { rt.Fields[0].Nullable = true },
			want:   []string{ErrInvalidKeyField},
		},
		{
			name:   "bool key",
			mutate: func(rt *ir.RecordType) { rt.Fields[0].Type = ir.FieldBool },
			want:   []string{ErrInvalidKeyField},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := postType()
			rt.Fields = append([]ir.Field(nil), rt.Fields...)
			tt.mutate(&rt)
			assert.Equal(t, tt.want, codes(Validate(rt)))
		})
	}
}

// =============================================================================
// Record Value Validation Tests
// =============================================================================

func TestValidateRecordValid(t *testing.T) {
	obj := ir.IRObject{
		"id":     ir.IRInt(1),
		"title":  ir.IRString("Hello"),
		"status": ir.IRString("draft"),
	}
	assert.Empty(t, ValidateRecord(postType(), obj))

	obj["author"] = ir.IRNull{}
	assert.Empty(t, ValidateRecord(postType(), obj))
}

func TestValidateRecordErrors(t *testing.T) {
	obj := ir.IRObject{
		"id":    ir.IRInt(1),
		"title": ir.IRInt(7),
		"zeta":  ir.IRBool(true),
		"alpha": ir.IRString("x"),
	}

	errs := ValidateRecord(postType(), obj)
	require.Len(t, errs, 4)
	assert.Equal(t, []string{ErrFieldType, ErrMissingField, ErrUnknownField, ErrUnknownField}, codes(errs))
	assert.Equal(t, "title", errs[0].Field)
	assert.Equal(t, "status", errs[1].Field)
	assert.Equal(t, "alpha", errs[2].Field)
	assert.Equal(t, "zeta", errs[3].Field)
}

func TestValidateRecordBadKey(t *testing.T) {
	rt := ir.RecordType{Name: "Tag", Key: "id", Fields: []ir.Field{{Name: "id", Type: ir.FieldString}}}

	errs := ValidateRecord(rt, ir.IRObject{"id": ir.IRString("")})
	assert.Equal(t, []string{ErrInvalidKey}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "title", Message: "required field is missing", Code: ErrMissingField}
	assert.Equal(t, "[E120] title: required field is missing", err.Error())

	err.Line = 4
	assert.Equal(t, "[E120] line 4: title: required field is missing", err.Error())
}

package queryir

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/ir"
)

func TestParseOperator_Aliases(t *testing.T) {
	tests := []struct {
		token string
		want  Operator
	}{
		{"equals", OpEquals},
		{"EQ", OpEquals},
		{"=", OpEquals},
		{"!=", OpNotEquals},
		{"<>", OpNotEquals},
		{"gt", OpGreaterThan},
		{">=", OpGreaterOrEqual},
		{"less_or_equal", OpLessOrEqual},
		{"Like", OpLike},
		{"in", OpIn},
		{"is null", OpIsNull},
		{"IS_NOT_NULL", OpIsNotNull},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseOperator(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOperator_Unknown(t *testing.T) {
	_, err := ParseOperator("between")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between")
}

func TestParseConjunction(t *testing.T) {
	c, err := ParseConjunction("or")
	require.NoError(t, err)
	assert.Equal(t, ConjOr, c)

	c, err = ParseConjunction("")
	require.NoError(t, err)
	assert.Equal(t, ConjAnd, c)

	_, err = ParseConjunction("xor")
	require.Error(t, err)
}

func TestNewCondition_Valid(t *testing.T) {
	tests := []struct {
		name  string
		op    Operator
		value ir.IRValue
	}{
		{"equals string", OpEquals, ir.IRString("published")},
		{"equals bool", OpEquals, ir.IRBool(true)},
		{"not-equals int", OpNotEquals, ir.IRInt(3)},
		{"greater-than float", OpGreaterThan, ir.IRFloat(1.5)},
		{"less-than string", OpLessThan, ir.IRString("m")},
		{"like", OpLike, ir.IRString("%go%")},
		{"in", OpIn, ir.IRArray{ir.IRString("a"), ir.IRInt(1)}},
		{"is-null", OpIsNull, nil},
		{"is-not-null", OpIsNotNull, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCondition("f", tt.op, tt.value, "")
			require.NoError(t, err)
			assert.Equal(t, "f", c.Field())
			assert.Equal(t, tt.op, c.Op())
			assert.Equal(t, tt.value, c.Value())
			assert.Equal(t, ConjAnd, c.Conjunction(), "empty conjunction defaults to AND")
		})
	}
}

func TestNewCondition_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		field string
		op    Operator
		value ir.IRValue
		msg   string
	}{
		{"empty field", "", OpEquals, ir.IRInt(1), "field is required"},
		{"blank field", "  ", OpEquals, ir.IRInt(1), "field is required"},
		{"quoted field", `a"b`, OpEquals, ir.IRInt(1), "quotes"},
		{"unknown operator", "f", Operator("between"), ir.IRInt(1), "unsupported operator"},
		{"missing value", "f", OpEquals, nil, "requires a value"},
		{"null value", "f", OpEquals, ir.IRNull{}, "use is-null"},
		{"object value", "f", OpEquals, ir.IRObject{}, "requires a string, number or bool"},
		{"null check with value", "f", OpIsNull, ir.IRNull{}, "takes no value"},
		{"in scalar", "f", OpIn, ir.IRString("a"), "requires a list"},
		{"in empty", "f", OpIn, ir.IRArray{}, "non-empty list"},
		{"in nested", "f", OpIn, ir.IRArray{ir.IRArray{}}, "element 0"},
		{"in null element", "f", OpIn, ir.IRArray{ir.IRNull{}}, "element 0"},
		{"like int", "f", OpLike, ir.IRInt(1), "string pattern"},
		{"greater-than bool", "f", OpGreaterThan, ir.IRBool(true), "string or number"},
		{"nan operand", "f", OpEquals, ir.IRFloat(math.NaN()), "non-finite"},
		{"infinite bound", "f", OpGreaterThan, ir.IRFloat(math.Inf(1)), "non-finite"},
		{"nan in list", "f", OpIn, ir.IRArray{ir.IRInt(1), ir.IRFloat(math.NaN())}, "array[1]: non-finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCondition(tt.field, tt.op, tt.value, ConjAnd)
			require.Error(t, err)

			var ce *ConditionError
			require.True(t, errors.As(err, &ce))
			assert.Contains(t, ce.Message, tt.msg)
			assert.Equal(t, -1, ce.Index)
		})
	}
}

func TestNewCondition_BadConjunction(t *testing.T) {
	_, err := NewCondition("f", OpEquals, ir.IRInt(1), Conjunction("XOR"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conjunction")
}

func TestWhere_ConvertsGoValues(t *testing.T) {
	c, err := Where("status", OpIn, []string{"draft", "published"})
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{ir.IRString("draft"), ir.IRString("published")}, c.Value())

	c, err = Where("deleted_at", OpIsNull, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Value())

	_, err = Where("f", OpEquals, struct{}{})
	require.Error(t, err)
}

func TestCondition_OrAnd(t *testing.T) {
	c, err := Where("a", OpEquals, 1)
	require.NoError(t, err)

	or := c.Or()
	assert.Equal(t, ConjOr, or.Conjunction())
	assert.Equal(t, ConjAnd, c.Conjunction(), "Or returns a copy")
	assert.Equal(t, ConjAnd, or.And().Conjunction())
}

func TestCondition_String(t *testing.T) {
	c, err := Where("status", OpEquals, "published")
	require.NoError(t, err)
	assert.Equal(t, `AND status equals "published"`, c.String())

	c, err = Where("deleted_at", OpIsNull, nil)
	require.NoError(t, err)
	assert.Equal(t, "AND deleted_at is-null", c.Or().And().String())
}

func TestCondition_IsZero(t *testing.T) {
	assert.True(t, Condition{}.IsZero())

	c, err := Where("a", OpIsNull, nil)
	require.NoError(t, err)
	assert.False(t, c.IsZero())
}

func TestNewOrderClause(t *testing.T) {
	o, err := NewOrderClause("created_at", "")
	require.NoError(t, err)
	assert.Equal(t, Asc, o.Direction())
	assert.Equal(t, "created_at ASC", o.String())

	inv := o.Inverted()
	assert.Equal(t, Desc, inv.Direction())
	assert.Equal(t, Asc, o.Direction(), "Inverted returns a copy")

	_, err = NewOrderClause("", Asc)
	require.Error(t, err)

	_, err = NewOrderClause("x", Direction("UP"))
	require.Error(t, err)
}

func TestDirection_Invert(t *testing.T) {
	assert.Equal(t, Desc, Asc.Invert())
	assert.Equal(t, Asc, Desc.Invert())
}

func TestConditionError_Format(t *testing.T) {
	assert.Equal(t, "condition 2 (status): bad", (&ConditionError{Index: 2, Field: "status", Message: "bad"}).Error())
	assert.Equal(t, "condition 0: bad", (&ConditionError{Index: 0, Message: "bad"}).Error())
	assert.Equal(t, "condition on status: bad", (&ConditionError{Index: -1, Field: "status", Message: "bad"}).Error())
	assert.Equal(t, "condition: bad", (&ConditionError{Index: -1, Message: "bad"}).Error())
}

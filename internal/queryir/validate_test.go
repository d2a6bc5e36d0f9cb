package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_WellFormed(t *testing.T) {
	where := mustWhere(t,
		map[string]any{"field": "status", "value": "published"},
		map[string]any{"field": "title", "op": "like", "value": "%go%", "conjunction": "or"},
	)
	order, err := ParseOrder(NewOrderMap("created_at", "desc"), OrderStrict)
	require.NoError(t, err)

	result := Validate(Select{From: "Post", Where: where, Order: order, Limit: 2})

	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
	assert.NoError(t, result.Err())
}

func TestValidate_MissingType(t *testing.T) {
	result := Validate(Select{From: " "})
	assert.False(t, result.Valid())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no record type")
}

func TestValidate_NegativeLimit(t *testing.T) {
	result := Validate(Select{From: "Post", Limit: -1})
	assert.False(t, result.Valid())
	assert.Contains(t, result.Errors[0], "negative")
}

func TestValidate_ZeroValues(t *testing.T) {
	result := Validate(Select{
		From:  "Post",
		Where: []Condition{{}},
		Order: []OrderClause{{}},
	})

	assert.False(t, result.Valid())
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "condition 0 is empty")
	assert.Contains(t, result.Errors[1], "order 0")

	err := result.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condition 0 is empty")
}

func TestValidate_HandAssembledCondition(t *testing.T) {
	result := Validate(Select{
		From:  "Post",
		Where: []Condition{{field: "a", op: OpEquals, conj: ConjAnd}},
	})
	assert.False(t, result.Valid())
	assert.Contains(t, result.Errors[0], "requires a value")
}

func TestValidate_Warnings(t *testing.T) {
	where := mustWhere(t, map[string]any{"field": "title", "op": "like", "value": "Hello"})
	first, err := NewOrderClause("id", Asc)
	require.NoError(t, err)
	second, err := NewOrderClause("id", Desc)
	require.NoError(t, err)

	result := Validate(Select{From: "Post", Where: where, Order: []OrderClause{first, second}})

	assert.True(t, result.Valid(), "warnings do not invalidate")
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "no wildcard")
	assert.Contains(t, result.Warnings[1], "already ordered")
}

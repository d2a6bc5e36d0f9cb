package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recordselect/internal/ir"
)

func mustWhere(t *testing.T, entries ...map[string]any) []Condition {
	t.Helper()
	conds, err := ParseWhere(entries)
	require.NoError(t, err)
	return conds
}

var post = ir.IRObject{
	"id":        ir.IRInt(7),
	"title":     ir.IRString("Hello Go"),
	"status":    ir.IRString("published"),
	"score":     ir.IRFloat(4.5),
	"featured":  ir.IRBool(true),
	"deleted":   ir.IRNull{},
	"tags":      ir.IRArray{ir.IRString("go")},
	"published": ir.IRInt(1700000000),
}

func TestCondition_Matches(t *testing.T) {
	tests := []struct {
		name  string
		entry map[string]any
		want  bool
	}{
		{"equals", map[string]any{"field": "status", "value": "published"}, true},
		{"equals miss", map[string]any{"field": "status", "value": "draft"}, false},
		{"equals int vs float", map[string]any{"field": "id", "value": 7.0}, true},
		{"equals bool as int", map[string]any{"field": "featured", "value": 1}, true},
		{"equals string vs int", map[string]any{"field": "id", "value": "7"}, false},
		{"not-equals", map[string]any{"field": "status", "value": "draft", "op": "!="}, true},
		{"not-equals null field", map[string]any{"field": "deleted", "value": "x", "op": "!="}, false},
		{"not-equals missing field", map[string]any{"field": "nope", "value": "x", "op": "!="}, false},
		{"greater-than", map[string]any{"field": "score", "op": ">", "value": 4}, true},
		{"less-than", map[string]any{"field": "score", "op": "<", "value": 4}, false},
		{"greater-or-equal", map[string]any{"field": "id", "op": ">=", "value": 7}, true},
		{"less-or-equal", map[string]any{"field": "id", "op": "<=", "value": 6}, false},
		{"text sorts after numbers", map[string]any{"field": "title", "op": ">", "value": 100}, true},
		{"numbers sort before text", map[string]any{"field": "id", "op": "<", "value": "a"}, true},
		{"in", map[string]any{"field": "status", "op": "in", "value": []any{"draft", "published"}}, true},
		{"in miss", map[string]any{"field": "status", "op": "in", "value": []any{"draft"}}, false},
		{"like", map[string]any{"field": "title", "op": "like", "value": "hello%"}, true},
		{"like underscore", map[string]any{"field": "title", "op": "like", "value": "Hello _o"}, true},
		{"like number", map[string]any{"field": "id", "op": "like", "value": "7"}, true},
		{"like null", map[string]any{"field": "deleted", "op": "like", "value": "%"}, false},
		{"is-null", map[string]any{"field": "deleted", "op": "is-null"}, true},
		{"is-null missing", map[string]any{"field": "nope", "op": "is-null"}, true},
		{"is-null present", map[string]any{"field": "id", "op": "is-null"}, false},
		{"is-not-null", map[string]any{"field": "id", "op": "is-not-null"}, true},
		{"is-not-null on null", map[string]any{"field": "deleted", "op": "is-not-null"}, false},
		{"comparison on null", map[string]any{"field": "deleted", "op": "<", "value": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds := mustWhere(t, tt.entry)
			assert.Equal(t, tt.want, conds[0].Matches(post))
		})
	}
}

func TestMatch_Precedence(t *testing.T) {
	// a = 1 OR b = 2 AND c = 3  ==  a = 1 OR (b = 2 AND c = 3)
	where := mustWhere(t,
		map[string]any{"field": "a", "value": 1},
		map[string]any{"field": "b", "value": 2, "conjunction": "or"},
		map[string]any{"field": "c", "value": 3},
	)

	tests := []struct {
		name string
		rec  ir.IRObject
		want bool
	}{
		{"first group", ir.IRObject{"a": ir.IRInt(1)}, true},
		{"second group", ir.IRObject{"b": ir.IRInt(2), "c": ir.IRInt(3)}, true},
		{"second group partial", ir.IRObject{"b": ir.IRInt(2)}, false},
		{"neither", ir.IRObject{"c": ir.IRInt(3)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(where, tt.rec))
		})
	}
}

func TestMatch_FirstConjunctionIgnored(t *testing.T) {
	where := mustWhere(t,
		map[string]any{"field": "a", "value": 1, "conjunction": "or"},
		map[string]any{"field": "b", "value": 2},
	)
	assert.False(t, Match(where, ir.IRObject{"a": ir.IRInt(1)}))
	assert.True(t, Match(where, ir.IRObject{"a": ir.IRInt(1), "b": ir.IRInt(2)}))
}

func TestMatch_Empty(t *testing.T) {
	assert.True(t, Match(nil, ir.IRObject{}))
}

func TestCompareRecords(t *testing.T) {
	order, err := ParseOrder(NewOrderMap("status", "asc", "id", "desc"), OrderStrict)
	require.NoError(t, err)

	a := ir.IRObject{"status": ir.IRString("draft"), "id": ir.IRInt(1)}
	b := ir.IRObject{"status": ir.IRString("draft"), "id": ir.IRInt(2)}
	c := ir.IRObject{"status": ir.IRString("published"), "id": ir.IRInt(0)}
	n := ir.IRObject{"id": ir.IRInt(9)}

	assert.Equal(t, 1, CompareRecords(order, a, b), "id desc")
	assert.Equal(t, -1, CompareRecords(order, b, c), "status asc")
	assert.Equal(t, -1, CompareRecords(order, n, a), "missing field sorts as null, first ascending")
	assert.Equal(t, 0, CompareRecords(order, a, a))
	assert.Equal(t, 0, CompareRecords(nil, a, c))
}

func TestLike(t *testing.T) {
	tests := []struct {
		s, pattern string
		want       bool
	}{
		{"hello", "hello", true},
		{"Hello", "hELLO", true},
		{"hello", "h%", true},
		{"hello", "%llo", true},
		{"hello", "%ll%", true},
		{"hello", "h_llo", true},
		{"hello", "h_lo", false},
		{"hello", "%", true},
		{"", "%", true},
		{"", "_", false},
		{"abcabc", "%abc", true},
		{"aXbXc", "a%b%c", true},
		{"ÄBC", "äbc", false},
		{"héllo", "h_llo", true},
		{"hello", "hello%%", true},
		{"hello", "helloo", false},
	}
	for _, tt := range tests {
		t.Run(tt.s+"~"+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, Like(tt.s, tt.pattern))
		})
	}
}

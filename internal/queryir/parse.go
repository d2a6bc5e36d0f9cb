package queryir

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/recordselect/internal/ir"
)

// Keys accepted in a condition map.
const (
	keyField       = "field"
	keyOp          = "op"
	keyOperator    = "operator"
	keyValue       = "value"
	keyConjunction = "conjunction"
	keyConj        = "conj"
)

var conditionKeys = map[string]bool{
	keyField: true, keyOp: true, keyOperator: true, keyValue: true, keyConjunction: true, keyConj: true,
}

// ParseWhere converts loose condition maps into validated Conditions.
//
// Each entry has the shape
//
//	{field: <string>, op: <token>, value: <operand>, conjunction: and|or}
//
// "operator" is accepted as a synonym of "op" and "conj" as a synonym of
// "conjunction". A missing op means equals and a missing conjunction means
// AND. Null checks must not carry a value key at all; every other operator
// requires one. Unknown keys are rejected.
//
// An empty or nil list yields an empty, non-nil slice.
func ParseWhere(entries []map[string]any) ([]Condition, error) {
	out := make([]Condition, 0, len(entries))
	for i, entry := range entries {
		c, err := parseCondition(entry)
		if err != nil {
			return nil, at(err, i)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseCondition(entry map[string]any) (Condition, error) {
	if entry == nil {
		return Condition{}, &ConditionError{Message: "condition is empty"}
	}
	if unknown := unknownKeys(entry); len(unknown) > 0 {
		return Condition{}, &ConditionError{Message: fmt.Sprintf("unknown keys %s", strings.Join(unknown, ", "))}
	}

	rawField, ok := entry[keyField]
	if !ok {
		return Condition{}, &ConditionError{Message: "field is required"}
	}
	field, ok := rawField.(string)
	if !ok {
		return Condition{}, &ConditionError{Message: fmt.Sprintf("field must be a string, got %T", rawField)}
	}

	op, err := parseOpEntry(entry)
	if err != nil {
		return Condition{}, &ConditionError{Field: field, Message: err.Error()}
	}

	conj := ConjAnd
	raw, err := synonym(entry, keyConjunction, keyConj)
	if err != nil {
		return Condition{}, &ConditionError{Field: field, Message: err.Error()}
	}
	if raw != nil {
		s, isString := raw.(string)
		if !isString {
			return Condition{}, &ConditionError{Field: field, Message: fmt.Sprintf("conjunction must be a string, got %T", raw)}
		}
		if conj, err = ParseConjunction(s); err != nil {
			return Condition{}, &ConditionError{Field: field, Message: err.Error()}
		}
	}

	rawValue, hasValue := entry[keyValue]
	var value ir.IRValue
	switch {
	case op.IsNullCheck() && hasValue:
		return Condition{}, &ConditionError{Field: field, Message: fmt.Sprintf("operator %s takes no value", op)}
	case op.IsNullCheck():
	case !hasValue:
		return Condition{}, &ConditionError{Field: field, Message: fmt.Sprintf("operator %s requires a value", op)}
	default:
		v, err := ir.FromAny(rawValue)
		if err != nil {
			return Condition{}, &ConditionError{Field: field, Message: fmt.Sprintf("value: %v", err)}
		}
		value = v
	}

	return NewCondition(field, op, value, conj)
}

func parseOpEntry(entry map[string]any) (Operator, error) {
	rawOp, err := synonym(entry, keyOp, keyOperator)
	if err != nil {
		return "", err
	}
	if rawOp == nil {
		return OpEquals, nil
	}
	token, ok := rawOp.(string)
	if !ok {
		return "", fmt.Errorf("operator must be a string, got %T", rawOp)
	}
	return ParseOperator(token)
}

// synonym returns the value stored under key or its alias.
// Giving both is an error.
func synonym(entry map[string]any, key, alias string) (any, error) {
	v, hasKey := entry[key]
	a, hasAlias := entry[alias]
	if hasKey && hasAlias {
		return nil, fmt.Errorf("both %q and %q given", key, alias)
	}
	if hasAlias {
		return a, nil
	}
	return v, nil
}

func unknownKeys(entry map[string]any) []string {
	var unknown []string
	for k := range entry {
		if !conditionKeys[k] {
			unknown = append(unknown, fmt.Sprintf("%q", k))
		}
	}
	sort.Strings(unknown)
	return unknown
}

// OrderMode selects how ParseOrder treats unrecognised direction tokens.
type OrderMode int

const (
	// OrderStrict rejects any direction other than asc/desc.
	OrderStrict OrderMode = iota
	// OrderLenient treats unrecognised directions as ascending.
	OrderLenient
)

// ParseDirection resolves asc/desc case-insensitively. Empty means ascending.
func ParseDirection(token string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "asc", "ascending":
		return Asc, nil
	case "desc", "descending":
		return Desc, nil
	}
	return "", fmt.Errorf("unsupported direction %q", token)
}

// ParseOrder converts an OrderMap into OrderClauses, preserving entry order.
// A field listed twice is rejected.
func ParseOrder(m OrderMap, mode OrderMode) ([]OrderClause, error) {
	out := make([]OrderClause, 0, len(m))
	seen := make(map[string]bool, len(m))
	for i, entry := range m {
		dir, err := ParseDirection(entry.Direction)
		if err != nil {
			if mode == OrderStrict {
				return nil, &ConditionError{Index: i, Field: entry.Field, Message: err.Error()}
			}
			dir = Asc
		}
		clause, err := NewOrderClause(entry.Field, dir)
		if err != nil {
			return nil, at(err, i)
		}
		if seen[entry.Field] {
			return nil, &ConditionError{Index: i, Field: entry.Field, Message: "field ordered twice"}
		}
		seen[entry.Field] = true
		out = append(out, clause)
	}
	return out, nil
}

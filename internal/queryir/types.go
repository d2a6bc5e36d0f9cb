package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/recordselect/internal/ir"
)

// Operator is the comparison applied by a Condition.
// The set is closed; ParseOperator rejects anything else.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not-equals"
	OpGreaterThan    Operator = "greater-than"
	OpLessThan       Operator = "less-than"
	OpGreaterOrEqual Operator = "greater-or-equal"
	OpLessOrEqual    Operator = "less-or-equal"
	OpLike           Operator = "like"
	OpIn             Operator = "in"
	OpIsNull         Operator = "is-null"
	OpIsNotNull      Operator = "is-not-null"
)

// operatorTokens maps every accepted spelling to its Operator.
// Lookups are done on the lower-cased token with '_' and ' ' folded to '-'.
var operatorTokens = map[string]Operator{
	"equals": OpEquals, "eq": OpEquals, "=": OpEquals, "==": OpEquals,
	"not-equals": OpNotEquals, "ne": OpNotEquals, "neq": OpNotEquals, "!=": OpNotEquals, "<>": OpNotEquals,
	"greater-than": OpGreaterThan, "gt": OpGreaterThan, ">": OpGreaterThan,
	"less-than": OpLessThan, "lt": OpLessThan, "<": OpLessThan,
	"greater-or-equal": OpGreaterOrEqual, "gte": OpGreaterOrEqual, ">=": OpGreaterOrEqual,
	"less-or-equal": OpLessOrEqual, "lte": OpLessOrEqual, "<=": OpLessOrEqual,
	"like": OpLike,
	"in":   OpIn,
	"is-null": OpIsNull, "null": OpIsNull,
	"is-not-null": OpIsNotNull, "not-null": OpIsNotNull,
}

// ParseOperator resolves an operator token. Matching is case-insensitive.
func ParseOperator(token string) (Operator, error) {
	key := strings.ToLower(strings.TrimSpace(token))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if op, ok := operatorTokens[key]; ok {
		return op, nil
	}
	return "", fmt.Errorf("unsupported operator %q", token)
}

// Valid reports whether op is one of the fixed operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterOrEqual,
		OpLessOrEqual, OpLike, OpIn, OpIsNull, OpIsNotNull:
		return true
	}
	return false
}

// IsNullCheck reports whether op tests for null and therefore takes no value.
func (op Operator) IsNullCheck() bool {
	return op == OpIsNull || op == OpIsNotNull
}

// Conjunction joins a condition to the one before it.
type Conjunction string

const (
	ConjAnd Conjunction = "AND"
	ConjOr  Conjunction = "OR"
)

// ParseConjunction resolves "and"/"or" case-insensitively. Empty means AND.
func ParseConjunction(token string) (Conjunction, error) {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "", "AND", "&&":
		return ConjAnd, nil
	case "OR", "||":
		return ConjOr, nil
	}
	return "", fmt.Errorf("unsupported conjunction %q", token)
}

// Condition is one validated WHERE predicate.
//
// Conditions can only be built through NewCondition (or the parsers that call
// it), so a Condition value in hand is always well formed:
//   - Field is non-empty
//   - Op is one of the fixed operators
//   - Value is nil for null checks, a non-empty IRArray of scalars for OpIn,
//     an IRString for OpLike and a non-null scalar otherwise
//
// The zero Condition is invalid and is rejected by Validate.
type Condition struct {
	field string
	op    Operator
	value ir.IRValue
	conj  Conjunction
}

// NewCondition is the validating factory for Condition.
// An empty conjunction defaults to AND.
func NewCondition(field string, op Operator, value ir.IRValue, conj Conjunction) (Condition, error) {
	if err := checkField(field); err != nil {
		return Condition{}, err
	}
	if !op.Valid() {
		return Condition{}, &ConditionError{Index: -1, Field: field, Message: fmt.Sprintf("unsupported operator %q", op)}
	}
	switch conj {
	case "":
		conj = ConjAnd
	case ConjAnd, ConjOr:
	default:
		return Condition{}, &ConditionError{Index: -1, Field: field, Message: fmt.Sprintf("unsupported conjunction %q", conj)}
	}
	if msg := checkValue(op, value); msg != "" {
		return Condition{}, &ConditionError{Index: -1, Field: field, Message: msg}
	}
	return Condition{field: field, op: op, value: value, conj: conj}, nil
}

// Where builds a Condition from a plain Go operand, converting it with ir.FromAny.
// Pass nil as value for null checks.
func Where(field string, op Operator, value any) (Condition, error) {
	var irVal ir.IRValue
	if value != nil {
		v, err := ir.FromAny(value)
		if err != nil {
			return Condition{}, &ConditionError{Index: -1, Field: field, Message: fmt.Sprintf("value: %v", err)}
		}
		irVal = v
	}
	return NewCondition(field, op, irVal, ConjAnd)
}

// Field returns the field the condition tests.
func (c Condition) Field() string { return c.field }

// Op returns the operator.
func (c Condition) Op() Operator { return c.op }

// Value returns the operand; nil for null checks.
func (c Condition) Value() ir.IRValue { return c.value }

// Conjunction returns how this condition joins the previous one.
func (c Condition) Conjunction() Conjunction { return c.conj }

// Or returns a copy of c joined to the previous condition with OR.
func (c Condition) Or() Condition {
	c.conj = ConjOr
	return c
}

// And returns a copy of c joined to the previous condition with AND.
func (c Condition) And() Condition {
	c.conj = ConjAnd
	return c
}

// IsZero reports whether c was never built by the factory.
func (c Condition) IsZero() bool {
	return c.field == "" && c.op == ""
}

func (c Condition) String() string {
	if c.op.IsNullCheck() {
		return fmt.Sprintf("%s %s %s", c.conj, c.field, c.op)
	}
	data, err := ir.MarshalIRValue(c.value)
	if err != nil {
		data = []byte("?")
	}
	return fmt.Sprintf("%s %s %s %s", c.conj, c.field, c.op, data)
}

func checkField(field string) error {
	if strings.TrimSpace(field) == "" {
		return &ConditionError{Index: -1, Message: "field is required"}
	}
	if strings.ContainsAny(field, "\"\x00") {
		return &ConditionError{Index: -1, Field: field, Message: "field name must not contain quotes or NUL"}
	}
	return nil
}

// checkValue returns a non-empty message when value does not fit op.
func checkValue(op Operator, value ir.IRValue) string {
	if op.IsNullCheck() {
		if value != nil {
			return fmt.Sprintf("operator %s takes no value", op)
		}
		return ""
	}
	if value == nil {
		return fmt.Sprintf("operator %s requires a value", op)
	}
	if err := ir.CheckFinite(value); err != nil {
		return fmt.Sprintf("operator %s: %v", op, err)
	}

	switch op {
	case OpIn:
		arr, ok := value.(ir.IRArray)
		if !ok {
			return fmt.Sprintf("operator in requires a list, got %s", ir.KindOf(value))
		}
		if len(arr) == 0 {
			return "operator in requires a non-empty list"
		}
		for i, elem := range arr {
			if !ir.IsScalar(elem) {
				return fmt.Sprintf("operator in: element %d must be a string, number or bool, got %s", i, ir.KindOf(elem))
			}
		}
	case OpLike:
		if _, ok := value.(ir.IRString); !ok {
			return fmt.Sprintf("operator like requires a string pattern, got %s", ir.KindOf(value))
		}
	case OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual:
		switch value.(type) {
		case ir.IRString, ir.IRInt, ir.IRFloat:
		default:
			return fmt.Sprintf("operator %s requires a string or number, got %s", op, ir.KindOf(value))
		}
	default:
		if ir.IsNull(value) {
			return fmt.Sprintf("operator %s requires a non-null value; use is-null", op)
		}
		if !ir.IsScalar(value) {
			return fmt.Sprintf("operator %s requires a string, number or bool, got %s", op, ir.KindOf(value))
		}
	}
	return ""
}

// Direction is an ORDER BY direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Invert flips ascending and descending.
func (d Direction) Invert() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// OrderClause is one validated sort key.
type OrderClause struct {
	field string
	dir   Direction
}

// NewOrderClause validates a sort key. An empty direction means ascending.
func NewOrderClause(field string, dir Direction) (OrderClause, error) {
	if err := checkField(field); err != nil {
		return OrderClause{}, err
	}
	switch dir {
	case "":
		dir = Asc
	case Asc, Desc:
	default:
		return OrderClause{}, &ConditionError{Index: -1, Field: field, Message: fmt.Sprintf("unsupported direction %q", dir)}
	}
	return OrderClause{field: field, dir: dir}, nil
}

// Field returns the sort field.
func (o OrderClause) Field() string { return o.field }

// Direction returns the sort direction.
func (o OrderClause) Direction() Direction { return o.dir }

// Inverted returns the clause with its direction flipped.
func (o OrderClause) Inverted() OrderClause {
	o.dir = o.dir.Invert()
	return o
}

func (o OrderClause) String() string {
	return o.field + " " + string(o.dir)
}

// Select is the frozen query handed to a resolver.
//
// Semantics:
//
//	SELECT * FROM <From> WHERE <Where> ORDER BY <Order>, natural LIMIT <Limit>
//
// Where is a flat sequence; each condition joins the previous one through its
// conjunction and AND binds tighter than OR, as in SQL. The conjunction of
// the first condition is ignored. Limit 0 means unlimited. Backward reverses
// the storage-natural tiebreaker that follows the explicit Order keys.
type Select struct {
	From     string
	Where    []Condition
	Order    []OrderClause
	Limit    int
	Backward bool
}

package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/recordselect/internal/ir"
	"github.com/roach88/recordselect/internal/queryir"
)

// DefaultTable is the generic record table created by the store schema.
const DefaultTable = "records"

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// Records live in a single table of (seq, type, rid, fields) rows where
// fields holds the canonical JSON object. Field access goes through
// json_extract with the JSON path passed as a bound parameter.
//
// CRITICAL: ALL queries end with the seq tiebreaker so results are deterministic.
// CRITICAL: All values and paths are parameterized, never interpolated.
type SQLCompiler struct {
	// Table is the record table name. It is a trusted identifier.
	Table string
}

// NewSQLCompiler creates a compiler for the default record table.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{Table: DefaultTable}
}

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error) tuple. Result columns are (seq, rid, fields).
//
// MANDATORY: Every query includes ORDER BY with the seq tiebreaker.
func (c *SQLCompiler) Compile(q queryir.Select) (string, []any, error) {
	where, params, err := c.compileFrom(q)
	if err != nil {
		return "", nil, err
	}

	orderBy, orderParams := c.compileOrder(q)
	params = append(params, orderParams...)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT seq, rid, fields FROM %s WHERE %s ORDER BY %s", c.table(), where, orderBy)
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}
	return sb.String(), params, nil
}

// CompileCount converts the WHERE part of a Select to a COUNT query.
// Order, limit and direction are ignored.
func (c *SQLCompiler) CompileCount(q queryir.Select) (string, []any, error) {
	where, params, err := c.compileFrom(q)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", c.table(), where), params, nil
}

func (c *SQLCompiler) table() string {
	if c.Table == "" {
		return DefaultTable
	}
	return c.Table
}

// compileFrom produces the type filter plus the compiled WHERE sequence.
func (c *SQLCompiler) compileFrom(q queryir.Select) (string, []any, error) {
	if q.From == "" {
		return "", nil, fmt.Errorf("cannot compile select without a record type")
	}
	params := []any{q.From}
	if len(q.Where) == 0 {
		return "type = ?", params, nil
	}

	filterSQL, filterParams, err := c.compileWhere(q.Where)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return "type = ? AND (" + filterSQL + ")", append(params, filterParams...), nil
}

// compileWhere renders the flat condition sequence as OR-joined groups of
// AND-joined predicates. The parentheses make SQL precedence explicit.
func (c *SQLCompiler) compileWhere(where []queryir.Condition) (string, []any, error) {
	var groups []string
	var current []string
	var params []any

	for i, cond := range where {
		if i > 0 && cond.Conjunction() == queryir.ConjOr {
			groups = append(groups, "("+strings.Join(current, " AND ")+")")
			current = nil
		}
		sql, condParams, err := c.compileCondition(cond)
		if err != nil {
			return "", nil, fmt.Errorf("condition %d: %w", i, err)
		}
		current = append(current, sql)
		params = append(params, condParams...)
	}
	groups = append(groups, "("+strings.Join(current, " AND ")+")")

	return strings.Join(groups, " OR "), params, nil
}

// compileCondition compiles one condition to a predicate on json_extract.
// CRITICAL: Value is NEVER interpolated - always parameterized.
func (c *SQLCompiler) compileCondition(cond queryir.Condition) (string, []any, error) {
	if cond.IsZero() {
		return "", nil, fmt.Errorf("empty condition")
	}
	lhs := "json_extract(fields, ?)"
	params := []any{JSONPath(cond.Field())}

	switch cond.Op() {
	case queryir.OpIsNull:
		return lhs + " IS NULL", params, nil
	case queryir.OpIsNotNull:
		return lhs + " IS NOT NULL", params, nil
	case queryir.OpIn:
		list, ok := cond.Value().(ir.IRArray)
		if !ok || len(list) == 0 {
			return "", nil, fmt.Errorf("operator in requires a non-empty list")
		}
		marks := make([]string, len(list))
		for i, elem := range list {
			p, err := irValueToParam(elem)
			if err != nil {
				return "", nil, fmt.Errorf("in[%d]: %w", i, err)
			}
			marks[i] = "?"
			params = append(params, p)
		}
		return lhs + " IN (" + strings.Join(marks, ", ") + ")", params, nil
	}

	sqlOp, ok := comparisonOps[cond.Op()]
	if !ok {
		return "", nil, fmt.Errorf("unsupported operator %q", cond.Op())
	}
	p, err := irValueToParam(cond.Value())
	if err != nil {
		return "", nil, fmt.Errorf("convert value: %w", err)
	}
	return lhs + " " + sqlOp + " ?", append(params, p), nil
}

var comparisonOps = map[queryir.Operator]string{
	queryir.OpEquals:         "=",
	queryir.OpNotEquals:      "!=",
	queryir.OpGreaterThan:    ">",
	queryir.OpLessThan:       "<",
	queryir.OpGreaterOrEqual: ">=",
	queryir.OpLessOrEqual:    "<=",
	queryir.OpLike:           "LIKE",
}

// compileOrder returns the ORDER BY list.
// MANDATORY: the seq tiebreaker is always last. Backward reverses it.
func (c *SQLCompiler) compileOrder(q queryir.Select) (string, []any) {
	parts := make([]string, 0, len(q.Order)+1)
	params := make([]any, 0, len(q.Order))
	for _, o := range q.Order {
		parts = append(parts, "json_extract(fields, ?) "+string(o.Direction()))
		params = append(params, JSONPath(o.Field()))
	}
	if q.Backward {
		parts = append(parts, "seq DESC")
	} else {
		parts = append(parts, "seq ASC")
	}
	return strings.Join(parts, ", "), params
}

// JSONPath returns the SQLite JSON path addressing a top-level key.
// The key is quoted so dots and brackets in field names stay literal.
func JSONPath(field string) string {
	return `$."` + field + `"`
}

// irValueToParam converts an ir.IRValue to a Go native type for SQL parameter.
// Arrays and objects are not scalar operands and are rejected.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRFloat:
		return float64(val), nil
	case ir.IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.IRNull, nil:
		return nil, fmt.Errorf("null cannot be compared; use is-null")
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

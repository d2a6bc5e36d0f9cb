package queryir

import (
	"github.com/roach88/recordselect/internal/ir"
)

// Match reports whether fields satisfies the WHERE sequence.
//
// The sequence is split into OR-separated groups of AND-joined conditions;
// the record matches when any group matches in full. An empty sequence
// matches everything.
func Match(where []Condition, fields ir.IRObject) bool {
	if len(where) == 0 {
		return true
	}

	groupOK := true
	for i, c := range where {
		if i > 0 && c.conj == ConjOr {
			if groupOK {
				return true
			}
			groupOK = true
		}
		if groupOK && !c.Matches(fields) {
			groupOK = false
		}
	}
	return groupOK
}

// Matches evaluates a single condition against fields.
// A missing field reads as null, and null fails every test except is-null.
func (c Condition) Matches(fields ir.IRObject) bool {
	val, ok := fields[c.field]
	if !ok {
		val = ir.IRNull{}
	}

	switch c.op {
	case OpIsNull:
		return ir.IsNull(val)
	case OpIsNotNull:
		return !ir.IsNull(val)
	}
	if ir.IsNull(val) {
		return false
	}

	switch c.op {
	case OpEquals:
		return ir.Compare(val, c.value) == 0
	case OpNotEquals:
		return ir.Compare(val, c.value) != 0
	case OpGreaterThan:
		return ir.Compare(val, c.value) > 0
	case OpLessThan:
		return ir.Compare(val, c.value) < 0
	case OpGreaterOrEqual:
		return ir.Compare(val, c.value) >= 0
	case OpLessOrEqual:
		return ir.Compare(val, c.value) <= 0
	case OpIn:
		list, _ := c.value.(ir.IRArray)
		for _, elem := range list {
			if ir.Compare(val, elem) == 0 {
				return true
			}
		}
		return false
	case OpLike:
		text, ok := ir.Text(val)
		if !ok {
			return false
		}
		pattern, _ := c.value.(ir.IRString)
		return Like(text, string(pattern))
	default:
		return false
	}
}

// CompareRecords orders two field sets by the given clauses.
// It returns 0 when every key ties; callers break ties storage-naturally.
func CompareRecords(order []OrderClause, a, b ir.IRObject) int {
	for _, o := range order {
		r := ir.Compare(fieldOrNull(a, o.field), fieldOrNull(b, o.field))
		if r == 0 {
			continue
		}
		if o.dir == Desc {
			return -r
		}
		return r
	}
	return 0
}

func fieldOrNull(obj ir.IRObject, name string) ir.IRValue {
	if v, ok := obj[name]; ok {
		return v
	}
	return ir.IRNull{}
}

// Like matches s against a SQL LIKE pattern: % matches any run of
// characters, _ matches exactly one, and ASCII letters match regardless of
// case. There is no escape character.
func Like(s, pattern string) bool {
	str := []rune(s)
	pat := []rune(pattern)

	si, pi := 0, 0
	starPi, starSi := -1, 0
	for si < len(str) {
		switch {
		case pi < len(pat) && pat[pi] == '%':
			starPi, starSi = pi, si
			pi++
		case pi < len(pat) && (pat[pi] == '_' || foldASCII(pat[pi]) == foldASCII(str[si])):
			si++
			pi++
		case starPi >= 0:
			pi = starPi + 1
			starSi++
			si = starSi
		default:
			return false
		}
	}
	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}

func foldASCII(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

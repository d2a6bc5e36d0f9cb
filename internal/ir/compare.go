package ir

import (
	"cmp"
	"math"
	"strconv"
	"strings"
)

// Ordering classes follow SQLite's storage class order so in-memory
// evaluation sorts exactly like a json_extract based ORDER BY:
// NULL < numbers (bools count as 0/1) < text (arrays and objects compare as their JSON text).
const (
	classNull = iota
	classNumeric
	classText
)

func classOf(v IRValue) int {
	switch v.(type) {
	case nil, IRNull:
		return classNull
	case IRInt, IRFloat, IRBool:
		return classNumeric
	default:
		return classText
	}
}

// Compare orders two values. It returns -1, 0 or +1.
func Compare(a, b IRValue) int {
	ca, cb := classOf(a), classOf(b)
	if ca != cb {
		return cmp.Compare(ca, cb)
	}

	switch ca {
	case classNull:
		return 0
	case classNumeric:
		return compareNumeric(a, b)
	default:
		return strings.Compare(textOf(a), textOf(b))
	}
}

// Equal reports whether two non-null values compare equal.
// A null on either side is never equal, mirroring SQL three-valued logic.
func Equal(a, b IRValue) bool {
	if IsNull(a) || IsNull(b) {
		return false
	}
	return Compare(a, b) == 0
}

func compareNumeric(a, b IRValue) int {
	ai, aInt := intOf(a)
	bi, bInt := intOf(b)
	switch {
	case aInt && bInt:
		return cmp.Compare(ai, bi)
	case aInt:
		return compareIntFloat(ai, floatOf(b))
	case bInt:
		return -compareIntFloat(bi, floatOf(a))
	}
	return cmp.Compare(floatOf(a), floatOf(b))
}

// compareIntFloat compares an integer with a float without rounding the
// integer through float64, which collapses neighbours above 2^53.
func compareIntFloat(i int64, f float64) int {
	// 2^63 is exactly representable; int64 covers [-2^63, 2^63).
	if f >= 9223372036854775808.0 {
		return -1
	}
	if f < -9223372036854775808.0 {
		return 1
	}
	t := math.Trunc(f)
	if c := cmp.Compare(i, int64(t)); c != 0 {
		return c
	}
	switch frac := f - t; {
	case frac > 0:
		return -1
	case frac < 0:
		return 1
	}
	return 0
}

func intOf(v IRValue) (int64, bool) {
	switch val := v.(type) {
	case IRInt:
		return int64(val), true
	case IRBool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func floatOf(v IRValue) float64 {
	switch val := v.(type) {
	case IRFloat:
		return float64(val)
	default:
		i, _ := intOf(v)
		return float64(i)
	}
}

// Text renders a value the way SQLite converts it to TEXT, used by LIKE.
func Text(v IRValue) (string, bool) {
	if IsNull(v) {
		return "", false
	}
	return textOf(v), true
}

func textOf(v IRValue) string {
	switch val := v.(type) {
	case IRString:
		return string(val)
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRFloat:
		return realText(float64(val))
	case IRBool:
		if val {
			return "1"
		}
		return "0"
	default:
		data, err := MarshalCanonical(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// realText renders a float with 15 significant digits and always keeps a
// decimal point in the mantissa: 1.5, 3.0, 1.0e+20, 1.0e-05.
func realText(f float64) string {
	s := strconv.FormatFloat(f, 'g', 15, 64)
	mant, exp, hasExp := strings.Cut(s, "e")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	if hasExp {
		return mant + "e" + exp
	}
	return mant
}

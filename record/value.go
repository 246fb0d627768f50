package record

import (
	"cmp"
	"fmt"
	"math"
	"strings"
)

// Value is a scalar cell value: string, int64, float64, bool or nil.
type Value = any

// kind ranks value types for ordering.
type kind int

const (
	kindNull kind = iota
	kindBool
	kindNumber
	kindString
	kindOther
)

// Normalize converts Go numeric types to the canonical int64/float64 forms.
func Normalize(v Value) Value {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return unsigned(uint64(x))
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return unsigned(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

// unsigned keeps values above MaxInt64 as float64 so they stay positive
// and ordered.
func unsigned(u uint64) Value {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func kindOf(v Value) kind {
	switch v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int64, float64:
		return kindNumber
	case string:
		return kindString
	default:
		return kindOther
	}
}

// Compare orders two values: nil < bool < number < string < anything else.
// Integers and floats compare numerically.
func Compare(a, b Value) int {
	a, b = Normalize(a), Normalize(b)
	ka, kb := kindOf(a), kindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case kindNull:
		return 0
	case kindBool:
		ab, bb := a.(bool), b.(bool)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case kindNumber:
		ai, aInt := a.(int64)
		bi, bInt := b.(int64)
		if aInt && bInt {
			return cmp.Compare(ai, bi)
		}
		return cmp.Compare(toFloat(a), toFloat(b))
	case kindString:
		return strings.Compare(a.(string), b.(string))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// Equal reports whether two values are equal under Compare.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

func toFloat(v Value) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

// Key is a tuple of values extracted from a record for grouping and sorting.
type Key []Value

// CompareKeys compares two key tuples lexicographically.
func CompareKeys(a, b Key) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// String renders the key as a stable text form, usable as a map key.
// Keys that compare equal render identically.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, v := range k {
		v = Normalize(v)
		if i > 0 {
			sb.WriteString(", ")
		}
		switch x := v.(type) {
		case nil:
			sb.WriteString("null")
		case string:
			fmt.Fprintf(&sb, "%q", x)
		case int64:
			fmt.Fprintf(&sb, "n:%d", x)
		case float64:
			if x == math.Trunc(x) && math.Abs(x) < 1e18 {
				fmt.Fprintf(&sb, "n:%d", int64(x))
			} else {
				fmt.Fprintf(&sb, "n:%g", x)
			}
		default:
			fmt.Fprintf(&sb, "%T:%v", x, x)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

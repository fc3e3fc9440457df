package sjonq

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// QueryFunc is the contract every filter operator satisfies: it receives the
// resolved field value and the clause operand and reports a match.
type QueryFunc func(fieldValue, operand interface{}) bool

// query is a single filter clause: node path, operator name, operand.
type query struct {
	key      string
	operator string
	value    interface{}
}

// Built-in operator names. Macro may shadow any of them.
const (
	OpEqual             = "="
	OpNotEqual          = "!="
	OpIn                = "in"
	OpNotIn             = "notIn"
	OpHolds             = "holds"
	OpNotHolds          = "notHolds"
	OpStartsWith        = "startsWith"
	OpEndsWith          = "endsWith"
	OpContains          = "contains"
	OpStrictContains    = "strictContains"
	OpNotContains       = "notContains"
	OpNotStrictContains = "notStrictContains"
	OpLenEqual          = "lenEq"
	OpLenNotEqual       = "lenNotEq"
)

// defaultQueries seeds a fresh operator registry. Each instance gets its own
// copy so Macro registrations never leak between instances.
func defaultQueries() map[string]QueryFunc {
	return map[string]QueryFunc{
		OpEqual:    eqValues,
		OpNotEqual: func(x, y interface{}) bool { return !eqValues(x, y) },
		OpIn:       inSet,
		OpNotIn:    func(x, y interface{}) bool { return !inSet(x, y) },
		OpHolds:    holdsValue,
		OpNotHolds: func(x, y interface{}) bool { return !holdsValue(x, y) },
		OpStartsWith: func(x, y interface{}) bool {
			xs, ok := x.(string)
			return ok && strings.HasPrefix(xs, cast.ToString(y))
		},
		OpEndsWith: func(x, y interface{}) bool {
			xs, ok := x.(string)
			return ok && strings.HasSuffix(xs, cast.ToString(y))
		},
		OpContains:       looseContains,
		OpStrictContains: strictContains,
		OpNotContains:    func(x, y interface{}) bool { return !looseContains(x, y) },
		OpNotStrictContains: func(x, y interface{}) bool {
			return !strictContains(x, y)
		},
		OpLenEqual:    lenEquals,
		OpLenNotEqual: func(x, y interface{}) bool { return !lenEquals(x, y) },
	}
}

// eqValues compares numerically when both sides are numbers, so a clause
// operand of int 25 matches a decoded JSON float64 25.
func eqValues(x, y interface{}) bool {
	if nx, ok := toFloat(x); ok {
		if ny, ok := toFloat(y); ok {
			return nx == ny
		}
	}
	return reflect.DeepEqual(x, y)
}

// inSet reports whether the field value is a member of the operand sequence.
func inSet(x, y interface{}) bool {
	rv := reflect.ValueOf(y)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if eqValues(x, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// holdsValue reports whether the field value, itself a sequence, contains
// the operand.
func holdsValue(x, y interface{}) bool {
	list, ok := x.([]interface{})
	if !ok {
		return false
	}
	for _, item := range list {
		if eqValues(item, y) {
			return true
		}
	}
	return false
}

// looseContains is a case-insensitive substring test over the stringified
// forms of both sides; strictContains is the case-sensitive variant.
func looseContains(x, y interface{}) bool {
	return strings.Contains(strings.ToLower(cast.ToString(x)), strings.ToLower(cast.ToString(y)))
}

func strictContains(x, y interface{}) bool {
	return strings.Contains(cast.ToString(x), cast.ToString(y))
}

func lenEquals(x, y interface{}) bool {
	length, ok := lengthOf(x)
	if !ok {
		return false
	}
	want, err := cast.ToIntE(y)
	return err == nil && length == want
}

func lengthOf(x interface{}) (int, bool) {
	switch v := x.(type) {
	case string:
		return len(v), true
	case []interface{}:
		return len(v), true
	case map[string]interface{}:
		return len(v), true
	}
	return 0, false
}

// toFloat reports the numeric value of decoded JSON numbers and the Go
// integer kinds a caller may pass as operands. Booleans are not numbers.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// keyString is the stringified form used for distinct and grouping keys.
func keyString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

// lessValues orders two values: numbers numerically, strings
// lexicographically, booleans false-first, everything else by stringified
// form. Mixed kinds fall back to the stringified comparison.
func lessValues(a, b interface{}) bool {
	if na, ok := toFloat(a); ok {
		if nb, ok := toFloat(b); ok {
			return na < nb
		}
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return sa < sb
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return !ba && bb
		}
	}
	return keyString(a) < keyString(b)
}

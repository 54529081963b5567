package kwargs

import (
	"strings"
)

// Type is the set of value shapes accepted for one option.
type Type uint16

const (
	String Type = 1 << iota
	Bool
	Int
	Number // any integer or float
	Pair   // exactly two numbers
	Map    // string keys, scalar values
	StringList
	NumberList
	BoolList
	Nil
)

var typeNames = []struct {
	t    Type
	name string
}{
	{String, "string"},
	{Bool, "bool"},
	{Int, "int"},
	{Number, "number"},
	{Pair, "pair of numbers"},
	{Map, "map"},
	{StringList, "list of strings"},
	{NumberList, "list of numbers"},
	{BoolList, "list of bools"},
	{Nil, "nil"},
}

func (t Type) String() string {
	var parts []string
	for _, tn := range typeNames {
		if t&tn.t != 0 {
			parts = append(parts, tn.name)
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, " or ")
}

// Accepts reports whether v has one of the shapes in t.
func (t Type) Accepts(v any) bool {
	if v == nil {
		return t&Nil != 0
	}
	if t&String != 0 {
		if _, ok := v.(string); ok {
			return true
		}
	}
	if t&Bool != 0 {
		if _, ok := v.(bool); ok {
			return true
		}
	}
	if t&Int != 0 && isInt(v) {
		return true
	}
	if t&Number != 0 {
		if _, ok := Float64(v); ok {
			return true
		}
	}
	if t&Pair != 0 {
		if _, ok := toPair(v); ok {
			return true
		}
	}
	if t&Map != 0 {
		if _, ok := toMap(v); ok {
			return true
		}
	}
	if t&StringList != 0 {
		if _, ok := toStrings(v); ok {
			return true
		}
	}
	if t&NumberList != 0 {
		if _, ok := toFloats(v); ok {
			return true
		}
	}
	if t&BoolList != 0 {
		if _, ok := toBools(v); ok {
			return true
		}
	}
	return false
}

func isInt(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// Float64 converts any integer or float value to float64.
func Float64(v any) (float64, bool) {
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
	}
	return 0, false
}

func toPair(v any) ([2]float64, bool) {
	switch p := v.(type) {
	case [2]float64:
		return p, true
	case [2]int:
		return [2]float64{float64(p[0]), float64(p[1])}, true
	}
	fs, ok := toFloats(v)
	if !ok || len(fs) != 2 {
		return [2]float64{}, false
	}
	return [2]float64{fs[0], fs[1]}, true
}

func toFloats(v any) ([]float64, bool) {
	switch l := v.(type) {
	case []float64:
		return l, true
	case []int:
		out := make([]float64, len(l))
		for i, n := range l {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(l))
		for i, item := range l {
			f, ok := Float64(item)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func toStrings(v any) ([]string, bool) {
	switch l := v.(type) {
	case []string:
		return l, true
	case []any:
		out := make([]string, len(l))
		for i, item := range l {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func toBools(v any) ([]bool, bool) {
	switch l := v.(type) {
	case []bool:
		return l, true
	case []any:
		out := make([]bool, len(l))
		for i, item := range l {
			b, ok := item.(bool)
			if !ok {
				return nil, false
			}
			out[i] = b
		}
		return out, true
	}
	return nil, false
}

// toMap accepts string-keyed maps whose values are strings, bools or numbers.
func toMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		for _, item := range m {
			if !isScalar(item) {
				return nil, false
			}
		}
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	case map[string]float64:
		out := make(map[string]any, len(m))
		for k, f := range m {
			out[k] = f
		}
		return out, true
	}
	return nil, false
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	_, ok := Float64(v)
	return ok
}

// Package kwargs validates and reads named chart options.
//
// Options arrive as a map from option name to value. Each caller owns a
// closed Expected table naming the options it accepts and the value shapes
// allowed for each; anything outside the table is rejected before the caller
// does any work.
package kwargs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	logging "mgchart/internal/infra/log"

	"go.uber.org/zap"
)

var (
	ErrUnknownOption = errors.New("unknown option")
	ErrBadType       = errors.New("unexpected option type")
)

// Verbose is the option every table may carry to log the options received.
const Verbose = "verbose"

// Options maps option names to values.
type Options map[string]any

// Expected is a closed allow-list: option name to accepted value shapes.
type Expected map[string]Type

// Merge returns a new table holding every entry of tables. Later tables win
// on duplicate keys.
func Merge(tables ...Expected) Expected {
	out := Expected{}
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// Keys returns the table's option names, sorted.
func (e Expected) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Problem is one rejected option.
type Problem struct {
	Key   string
	Value any
	Want  Type
	Err   error // ErrUnknownOption or ErrBadType
}

func (p Problem) String() string {
	if errors.Is(p.Err, ErrUnknownOption) {
		return fmt.Sprintf("unexpected option %q", p.Key)
	}
	return fmt.Sprintf("option %q has value %v of type %T, want %s", p.Key, p.Value, p.Value, p.Want)
}

// ValidationError lists every rejected option, sorted by name.
type ValidationError struct {
	CalledFrom string
	Problems   []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s: option validation failed: %s", e.CalledFrom, strings.Join(parts, "; "))
}

// Unwrap exposes the per-problem sentinels to errors.Is.
func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = p.Err
	}
	return errs
}

// Validate checks every option against expected. It returns a
// *ValidationError naming all problems, or nil.
func Validate(opts Options, expected Expected, calledFrom string) error {
	var problems []Problem
	for key, value := range opts {
		want, ok := expected[key]
		if !ok {
			problems = append(problems, Problem{Key: key, Value: value, Err: ErrUnknownOption})
			continue
		}
		if !want.Accepts(value) {
			problems = append(problems, Problem{Key: key, Value: value, Want: want, Err: ErrBadType})
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Key < problems[j].Key })
	return &ValidationError{CalledFrom: calledFrom, Problems: problems}
}

// Report logs the options when the verbose option is set.
func Report(opts Options, calledFrom string) {
	if !opts.Bool(Verbose) {
		return
	}
	logging.LogInfo(calledFrom+" options", zap.Any("options", map[string]any(opts)))
}

// Has reports whether key is present with a non-nil value.
func (o Options) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Clone returns a shallow copy.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Without returns a copy with keys removed.
func (o Options) Without(keys ...string) Options {
	out := o.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Only returns a copy holding just the given keys that are present.
func (o Options) Only(keys ...string) Options {
	out := make(Options, len(keys))
	for _, k := range keys {
		if v, ok := o[k]; ok {
			out[k] = v
		}
	}
	return out
}

func (o Options) String(key string) (string, bool) {
	s, ok := o[key].(string)
	return s, ok
}

// Bool is false when key is absent or not a bool.
func (o Options) Bool(key string) bool {
	b, _ := o[key].(bool)
	return b
}

func (o Options) Int(key string) (int, bool) {
	if !isInt(o[key]) {
		return 0, false
	}
	f, _ := Float64(o[key])
	return int(f), true
}

func (o Options) Float(key string) (float64, bool) {
	return Float64(o[key])
}

func (o Options) Pair(key string) ([2]float64, bool) {
	if !o.Has(key) {
		return [2]float64{}, false
	}
	return toPair(o[key])
}

func (o Options) Map(key string) (map[string]any, bool) {
	if !o.Has(key) {
		return nil, false
	}
	return toMap(o[key])
}

// Strings reads a string or a list of strings.
func (o Options) Strings(key string) ([]string, bool) {
	if s, ok := o[key].(string); ok {
		return []string{s}, true
	}
	return toStrings(o[key])
}

// Floats reads a number or a list of numbers.
func (o Options) Floats(key string) ([]float64, bool) {
	if f, ok := Float64(o[key]); ok {
		return []float64{f}, true
	}
	return toFloats(o[key])
}

// Bools reads a bool or a list of bools.
func (o Options) Bools(key string) ([]bool, bool) {
	if b, ok := o[key].(bool); ok {
		return []bool{b}, true
	}
	return toBools(o[key])
}

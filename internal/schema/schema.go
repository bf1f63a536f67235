// Package schema implements the dotted-key field registry: C1 of the
// runtime substrate. A Descriptor describes the type, default, optional
// numeric range, optional predicate, and required/nullable flags for one
// dotted configuration key. Registry.Validate enforces these in a fixed
// five-step order so that error kinds are predictable for callers.
//
// Grounded on internal/config/update_validator.go's multi-phase validation
// pipeline (structural -> business rule -> cross-field -> security) from
// the teacher repo, collapsed here into the single linear order spec.md
// §4.1 requires, and on its ValidationErrorDetail{Field,Message,Code,...}
// shape for reporting failures.
package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the primitive type a descriptor's value must have.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Range bounds a numeric value inclusively.
type Range struct {
	Min float64
	Max float64
}

// Predicate is a tagged-variant check applied after the type check passes.
// Exactly one constructor below should be used per descriptor.
type Predicate interface {
	Check(value any) bool
	String() string
}

// EnumOf accepts a value only if it equals one of allowed.
type enumPredicate struct{ allowed []any }

func EnumOf(allowed ...any) Predicate { return enumPredicate{allowed: allowed} }

func (p enumPredicate) Check(v any) bool {
	for _, a := range p.allowed {
		if a == v {
			return true
		}
	}
	return false
}

func (p enumPredicate) String() string { return fmt.Sprintf("enum%v", p.allowed) }

// AllElementsType accepts a KindList value only if every element has kind elem.
type elementTypePredicate struct{ elem Kind }

func AllElementsType(elem Kind) Predicate { return elementTypePredicate{elem: elem} }

func (p elementTypePredicate) Check(v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	for _, e := range list {
		if !kindOf(e, p.elem) {
			return false
		}
	}
	return true
}

func (p elementTypePredicate) String() string { return fmt.Sprintf("all_elements:%s", p.elem) }

// RegexMatch accepts a string value only if it matches pattern.
type regexPredicate struct {
	re  *regexp.Regexp
	src string
}

func RegexMatch(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return regexPredicate{re: re, src: pattern}
}

func (p regexPredicate) Check(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return p.re.MatchString(s)
}

func (p regexPredicate) String() string { return fmt.Sprintf("regex(%s)", p.src) }

// Func accepts a value if fn returns true. Use for checks not expressible
// with the other variants.
type funcPredicate struct {
	fn   func(any) bool
	name string
}

func Func(name string, fn func(any) bool) Predicate { return funcPredicate{fn: fn, name: name} }

func (p funcPredicate) Check(v any) bool { return p.fn(v) }
func (p funcPredicate) String() string   { return p.name }

// Descriptor describes one dotted configuration key.
type Descriptor struct {
	Key       string
	Type      Kind
	Default   any
	Required  bool
	Nullable  bool
	Range     *Range
	Predicate Predicate
}

// ErrorKind enumerates the error taxonomy from spec.md §7.
type ErrorKind int

const (
	ErrUnknownKey ErrorKind = iota
	ErrMissingRequired
	ErrTypeMismatch
	ErrOutOfRange
	ErrPredicateFailure
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownKey:
		return "unknown_key"
	case ErrMissingRequired:
		return "missing_required"
	case ErrTypeMismatch:
		return "type_mismatch"
	case ErrOutOfRange:
		return "out_of_range"
	case ErrPredicateFailure:
		return "predicate_failure"
	default:
		return "unknown"
	}
}

// ValidationError reports why a key/value pair failed validation.
type ValidationError struct {
	Key   string
	Kind  ErrorKind
	Value any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value=%v)", e.Key, e.Kind, e.Value)
}

// dottedKeyPattern allows 1 to 3 dot-separated segments.
var dottedKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*){0,2}$`)

// Registry holds the set of known field descriptors.
type Registry struct {
	descriptors map[string]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]Descriptor)}
}

// Register adds descriptors to the registry. Keys must be 1-3 dotted
// segments; a 3-segment key is only accepted under the
// "training_config.dry_run_params." prefix, matching spec.md §4.2's
// key-shape rule for the structured tree.
func (r *Registry) Register(descs ...Descriptor) error {
	for _, d := range descs {
		if !dottedKeyPattern.MatchString(d.Key) {
			return fmt.Errorf("schema: invalid key shape %q", d.Key)
		}
		segments := strings.Split(d.Key, ".")
		if len(segments) == 3 && !strings.HasPrefix(d.Key, "training_config.dry_run_params.") {
			return fmt.Errorf("schema: 3-segment key %q must be under training_config.dry_run_params", d.Key)
		}
		r.descriptors[d.Key] = d
	}
	return nil
}

// Get returns the descriptor for key, if registered.
func (r *Registry) Get(key string) (Descriptor, bool) {
	d, ok := r.descriptors[key]
	return d, ok
}

// Keys returns all registered dotted keys.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.descriptors))
	for k := range r.descriptors {
		keys = append(keys, k)
	}
	return keys
}

// Validate checks value against key's descriptor in the fixed order:
// unknown key -> null/required/nullable -> type check -> predicate ->
// range. It returns the (possibly coerced) value on success.
func (r *Registry) Validate(key string, value any) (any, error) {
	d, ok := r.descriptors[key]
	if !ok {
		return nil, &ValidationError{Key: key, Kind: ErrUnknownKey, Value: value}
	}

	if value == nil {
		if d.Required && !d.Nullable {
			return nil, &ValidationError{Key: key, Kind: ErrMissingRequired, Value: value}
		}
		if d.Nullable {
			return nil, nil
		}
		return nil, &ValidationError{Key: key, Kind: ErrMissingRequired, Value: value}
	}

	coerced, ok := coerce(value, d.Type)
	if !ok {
		return nil, &ValidationError{Key: key, Kind: ErrTypeMismatch, Value: value}
	}

	if d.Predicate != nil && !d.Predicate.Check(coerced) {
		return nil, &ValidationError{Key: key, Kind: ErrPredicateFailure, Value: value}
	}

	if d.Range != nil {
		f, ok := toFloat(coerced)
		if ok && (f < d.Range.Min || f > d.Range.Max) {
			return nil, &ValidationError{Key: key, Kind: ErrOutOfRange, Value: value}
		}
	}

	return coerced, nil
}

func kindOf(v any, k Kind) bool {
	_, ok := coerce(v, k)
	return ok
}

// coerce attempts to bring value to the descriptor's declared kind,
// accepting the numeric widening a JSON decoder commonly produces
// (float64 for ints) without accepting outright type confusion.
func coerce(value any, k Kind) (any, bool) {
	switch k {
	case KindString:
		s, ok := value.(string)
		return s, ok
	case KindBool:
		b, ok := value.(bool)
		return b, ok
	case KindInt:
		switch n := value.(type) {
		case int:
			return n, true
		case int64:
			return int(n), true
		case float64:
			if n == float64(int64(n)) {
				return int(n), true
			}
			return nil, false
		}
		return nil, false
	case KindFloat:
		switch n := value.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		}
		return nil, false
	case KindList:
		l, ok := value.([]any)
		return l, ok
	default:
		return nil, false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// Package filter translates document filters into SQL predicates.
//
// A filter is nil (every row), a bare scalar (equality on the primary key),
// or a Where map from field name to a scalar (equality) or a Not wrapper
// (inequality). Only the primary key and declared index fields can be
// queried.
package filter

import (
	"fmt"
	"sort"

	json "github.com/goccy/go-json"

	"github.com/tordrt/docstore/internal/codec"
	"github.com/tordrt/docstore/internal/schema"
)

// NotKey is the operator name accepted in decoded JSON filters
const NotKey = "$not"

// Where maps field names to matched values
type Where map[string]any

// Not negates the match on a single field
type Not struct {
	Value any
}

// Op is a predicate comparison
type Op string

const (
	Eq      Op = "="
	Ne      Op = "<>"
	IsNull  Op = "IS NULL"
	NotNull Op = "IS NOT NULL"
)

// Unary reports whether the operator takes no bound value
func (o Op) Unary() bool {
	return o == IsNull || o == NotNull
}

// Predicate is one term of the conjunction
type Predicate struct {
	Column string
	Op     Op
	Param  string
	Value  any
}

// Translation is an ordered conjunction of predicates
type Translation struct {
	Predicates []Predicate
}

// Empty reports whether the translation matches every row
func (t *Translation) Empty() bool {
	return t == nil || len(t.Predicates) == 0
}

// Args returns parameter name/value pairs in predicate order
func (t *Translation) Args() []Arg {
	if t == nil {
		return nil
	}
	args := make([]Arg, 0, len(t.Predicates))
	for _, p := range t.Predicates {
		if p.Op.Unary() {
			continue
		}
		args = append(args, Arg{Name: p.Param, Value: p.Value})
	}
	return args
}

// Arg is a named binding
type Arg struct {
	Name  string
	Value any
}

// Translate converts query into predicates for the table described by def.
// Parameter names are prefixed with ns, so two translations with different
// namespaces can share one statement.
func Translate(def *schema.Definition, query any, ns string) (*Translation, error) {
	where, err := asWhere(def, query)
	if err != nil {
		return nil, err
	}

	fields := make([]string, 0, len(where))
	for field := range where {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	t := &Translation{Predicates: make([]Predicate, 0, len(fields))}
	for _, field := range fields {
		p, err := translateField(def, field, where[field])
		if err != nil {
			return nil, err
		}
		p.Param = ns + field
		t.Predicates = append(t.Predicates, p)
	}

	return t, nil
}

func asWhere(def *schema.Definition, query any) (Where, error) {
	switch q := query.(type) {
	case nil:
		return nil, nil
	case Where:
		return q, nil
	case map[string]any:
		return Where(q), nil
	case Not, *Not, bool:
		return nil, fmt.Errorf("%w: %T is not a filter", schema.ErrInvalidFilter, query)
	}

	if _, err := codec.ScalarOf(query); err != nil {
		return nil, fmt.Errorf("%w: %T is not a filter", schema.ErrInvalidFilter, query)
	}
	return Where{def.PrimaryKey: query}, nil
}

func translateField(def *schema.Definition, field string, value any) (Predicate, error) {
	negate := false
	if inner, ok := negated(value); ok {
		negate = true
		value = inner
	} else if m, ok := value.(map[string]any); ok {
		return Predicate{}, fmt.Errorf("%w: unsupported operator in %v for field %s", schema.ErrInvalidFilter, m, field)
	}

	if field == def.PrimaryKey {
		key, err := codec.NativeKey(def.PrimaryKeyType, value)
		if err != nil {
			return Predicate{}, fmt.Errorf("%w: %w", schema.ErrInvalidFilter, err)
		}
		return comparison(field, negate, key), nil
	}

	if !def.HasIndex(field) {
		return Predicate{}, fmt.Errorf("%w: %s", schema.ErrNotQueryable, field)
	}

	s, err := codec.ScalarOf(value)
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: field %s: %w", schema.ErrInvalidFilter, field, err)
	}

	text, ok := s.Encode()
	if !ok {
		if negate {
			return Predicate{Column: field, Op: NotNull}, nil
		}
		return Predicate{Column: field, Op: IsNull}, nil
	}
	return comparison(field, negate, text), nil
}

func comparison(field string, negate bool, value any) Predicate {
	if value == nil {
		if negate {
			return Predicate{Column: field, Op: NotNull}
		}
		return Predicate{Column: field, Op: IsNull}
	}
	if negate {
		return Predicate{Column: field, Op: Ne, Value: value}
	}
	return Predicate{Column: field, Op: Eq, Value: value}
}

// negated unwraps Not values and decoded {"$not": v} objects
func negated(value any) (any, bool) {
	switch v := value.(type) {
	case Not:
		return v.Value, true
	case *Not:
		if v == nil {
			return nil, false
		}
		return v.Value, true
	case map[string]any:
		if inner, ok := v[NotKey]; ok && len(v) == 1 {
			return inner, true
		}
	}
	return nil, false
}

// FromJSON decodes a filter written in JSON: an object of field values
// (with {"$not": v} for inequality) or a bare scalar primary key.
func FromJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidFilter, err)
	}

	switch q := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return Where(q), nil
	case string, float64:
		return q, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a filter", schema.ErrInvalidFilter, v)
	}
}

package codec

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/tordrt/docstore/internal/schema"
)

// Kind tags the type carried by a Scalar
type Kind uint8

const (
	Null Kind = iota
	Number
	String
	Bool
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case String:
		return "string"
	case Bool:
		return "boolean"
	default:
		return "null"
	}
}

// Scalar is a value that may be stored in an index column
type Scalar struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

// ScalarOf converts a Go value into a Scalar. Only numbers, strings, booleans
// and nil are accepted.
func ScalarOf(v any) (Scalar, error) {
	switch v := v.(type) {
	case nil:
		return Scalar{Kind: Null}, nil
	case string:
		return Scalar{Kind: String, Str: v}, nil
	case bool:
		return Scalar{Kind: Bool, Bool: v}, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Scalar{}, fmt.Errorf("%w: %v", schema.ErrInvalidIndexValue, err)
		}
		return numberScalar(f)
	}

	f, ok := toFloat(v)
	if !ok {
		return Scalar{}, fmt.Errorf("%w: %T", schema.ErrInvalidIndexValue, v)
	}
	return numberScalar(f)
}

func numberScalar(f float64) (Scalar, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Scalar{}, fmt.Errorf("%w: %v", schema.ErrInvalidIndexValue, f)
	}
	return Scalar{Kind: Number, Num: f}, nil
}

// Encode returns the column text for s. Null scalars report ok=false and
// must be stored as SQL NULL.
//
// The text is the JSON form of the value, so "1" (number), "\"1\"" (string)
// and "true" (boolean) never compare equal.
func (s Scalar) Encode() (text string, ok bool) {
	var b []byte
	switch s.Kind {
	case Number:
		b, _ = json.Marshal(s.Num)
	case String:
		b, _ = json.Marshal(s.Str)
	case Bool:
		b, _ = json.Marshal(s.Bool)
	default:
		return "", false
	}
	return string(b), true
}

// DecodeScalar parses column text produced by Encode
func DecodeScalar(text string) (Scalar, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return Scalar{}, err
	}
	return ScalarOf(v)
}

// Value returns the scalar as a plain Go value
func (s Scalar) Value() any {
	switch s.Kind {
	case Number:
		return s.Num
	case String:
		return s.Str
	case Bool:
		return s.Bool
	default:
		return nil
	}
}

func toFloat(v any) (float64, bool) {
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
	default:
		return 0, false
	}
}

package codec

import (
	"fmt"
	"math"

	json "github.com/goccy/go-json"

	"github.com/tordrt/docstore/internal/schema"
)

// KeyPresent reports whether v counts as a primary key value. Nil and the
// empty string do not.
func KeyPresent(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}

// NativeKey converts v to the Go type bound for a key column of type kt.
// Keys are never scalar-encoded.
func NativeKey(kt schema.KeyType, v any) (any, error) {
	switch k := v.(type) {
	case bool:
		return nil, fmt.Errorf("%w: boolean %v", schema.ErrInvalidPrimaryKey, k)
	case json.Number:
		f, err := k.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v: %v", schema.ErrInvalidPrimaryKey, v, err)
		}
		v = f
	}

	switch kt {
	case schema.KeyInteger:
		f, ok := toFloat(v)
		if !ok {
			return passKey(v)
		}
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %v is not an integer", schema.ErrInvalidPrimaryKey, v)
		}
		if i, ok := v.(int64); ok {
			return i, nil
		}
		return int64(f), nil
	case schema.KeyReal:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		return passKey(v)
	default:
		f, ok := toFloat(v)
		if !ok {
			return passKey(v)
		}
		// Keep whole numbers readable in text key columns.
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return fmt.Sprintf("%d", int64(f)), nil
		}
		return fmt.Sprintf("%v", f), nil
	}
}

// passKey lets strings and nil through to the engine; nil binds as NULL and
// fails the NOT NULL key constraint or matches nothing.
func passKey(v any) (any, error) {
	switch v.(type) {
	case string, nil:
		return v, nil
	}
	return nil, fmt.Errorf("%w: %T", schema.ErrInvalidPrimaryKey, v)
}

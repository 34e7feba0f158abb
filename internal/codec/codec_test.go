package codec

import (
	"database/sql"
	"math"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/docstore/internal/schema"
)

func TestScalarEncode(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   string
		wantOK bool
	}{
		{name: "nil", value: nil, wantOK: false},
		{name: "integer", value: 1, want: "1", wantOK: true},
		{name: "float", value: 1.5, want: "1.5", wantOK: true},
		{name: "whole float", value: float64(1), want: "1", wantOK: true},
		{name: "json number", value: json.Number("42"), want: "42", wantOK: true},
		{name: "string", value: "1", want: `"1"`, wantOK: true},
		{name: "string true", value: "true", want: `"true"`, wantOK: true},
		{name: "true", value: true, want: "true", wantOK: true},
		{name: "false", value: false, want: "false", wantOK: true},
		{name: "escaped", value: `a"b`, want: `"a\"b"`, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ScalarOf(tt.value)
			require.NoError(t, err)

			got, ok := s.Encode()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScalarDistinct(t *testing.T) {
	values := []any{1, "1", true, "true", false, "false", 0, "0", ""}
	seen := map[string]any{}

	for _, v := range values {
		s, err := ScalarOf(v)
		require.NoError(t, err)
		text, ok := s.Encode()
		require.True(t, ok)

		prev, dup := seen[text]
		assert.False(t, dup, "%#v and %#v encode to the same text %s", prev, v, text)
		seen[text] = v
	}
}

func TestScalarRejects(t *testing.T) {
	for _, v := range []any{
		map[string]any{"a": 1},
		[]any{1},
		struct{}{},
		math.NaN(),
		math.Inf(1),
	} {
		_, err := ScalarOf(v)
		assert.ErrorIs(t, err, schema.ErrInvalidIndexValue, "%#v", v)
	}
}

func TestDecodeScalar(t *testing.T) {
	for _, v := range []any{float64(3), "3", true, false, "x y"} {
		s, err := ScalarOf(v)
		require.NoError(t, err)
		text, _ := s.Encode()

		back, err := DecodeScalar(text)
		require.NoError(t, err)
		assert.Equal(t, s.Kind, back.Kind)
		assert.Equal(t, v, back.Value())
	}
}

func TestNormalize(t *testing.T) {
	t.Run("document", func(t *testing.T) {
		doc, err := Normalize(map[string]any{"id": "a", "n": 1})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "a", "n": float64(1)}, doc)
	})

	t.Run("struct", func(t *testing.T) {
		type item struct {
			ID   string `json:"id"`
			Tags []string
		}
		doc, err := Normalize(item{ID: "a", Tags: []string{"x"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "a", "Tags": []any{"x"}}, doc)
	})

	for name, v := range map[string]any{
		"nil":    nil,
		"array":  []int{1, 2},
		"string": "text",
		"number": 3,
		"bool":   true,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(v)
			assert.ErrorIs(t, err, schema.ErrInvalidDocument)
		})
	}
}

func TestEncode(t *testing.T) {
	def := schema.Definition{TableName: "t", Indexes: []string{"active", "kind"}}.WithDefaults()
	enc := NewEncoder(def)

	row, err := enc.Encode(map[string]any{"id": "p1", "active": true, "extra": []any{1}})
	require.NoError(t, err)

	assert.Equal(t, "p1", row.Key)
	assert.Equal(t, `{"active":true,"extra":[1],"id":"p1"}`, row.Data)
	assert.Equal(t, []string{"active", "kind"}, row.Columns)
	assert.Equal(t, []sql.NullString{{String: "true", Valid: true}, {}}, row.Values)

	_, err = enc.Encode(map[string]any{"id": "p1", "kind": map[string]any{}})
	assert.ErrorIs(t, err, schema.ErrInvalidIndexValue)
	assert.Contains(t, err.Error(), "column kind")

	_, err = enc.Encode(nil)
	assert.ErrorIs(t, err, schema.ErrInvalidDocument)
}

func TestDecode(t *testing.T) {
	doc, err := Decode(`{"a":{"b":[1,"x",null]}}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": []any{float64(1), "x", nil}}}, doc)

	for _, data := range []string{"{oops", "null", "[1]", `"s"`, ""} {
		_, err := Decode(data)
		assert.Error(t, err, data)
	}
}

func TestNativeKey(t *testing.T) {
	tests := []struct {
		name    string
		kt      schema.KeyType
		value   any
		want    any
		wantErr bool
	}{
		{name: "string passes", kt: schema.KeyString, value: "a", want: "a"},
		{name: "whole number as text", kt: schema.KeyString, value: float64(12), want: "12"},
		{name: "int as text", kt: schema.KeyText, value: 7, want: "7"},
		{name: "fraction as text", kt: schema.KeyString, value: 1.5, want: "1.5"},
		{name: "integer from float", kt: schema.KeyInteger, value: float64(7), want: int64(7)},
		{name: "integer from int", kt: schema.KeyInteger, value: 7, want: int64(7)},
		{name: "integer from json number", kt: schema.KeyInteger, value: json.Number("9"), want: int64(9)},
		{name: "integer rejects fraction", kt: schema.KeyInteger, value: 7.5, wantErr: true},
		{name: "real", kt: schema.KeyReal, value: 2, want: float64(2)},
		{name: "nil stays nil", kt: schema.KeyString, value: nil, want: nil},
		{name: "object rejected", kt: schema.KeyString, value: map[string]any{}, wantErr: true},
		{name: "bool rejected as string", kt: schema.KeyString, value: true, wantErr: true},
		{name: "bool rejected as text", kt: schema.KeyText, value: false, wantErr: true},
		{name: "bool rejected as integer", kt: schema.KeyInteger, value: true, wantErr: true},
		{name: "bool rejected as real", kt: schema.KeyReal, value: false, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NativeKey(tt.kt, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, schema.ErrInvalidPrimaryKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyPresent(t *testing.T) {
	assert.False(t, KeyPresent(nil))
	assert.False(t, KeyPresent(""))
	assert.True(t, KeyPresent("a"))
	assert.True(t, KeyPresent(float64(0)))
	assert.True(t, KeyPresent(false))
}

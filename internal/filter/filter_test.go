package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/docstore/internal/schema"
)

func definition(kt schema.KeyType) *schema.Definition {
	def := schema.Definition{
		TableName:      "protocols",
		Indexes:        []string{"active", "kind"},
		PrimaryKeyType: kt,
	}.WithDefaults()
	return &def
}

func TestTranslate(t *testing.T) {
	def := definition(schema.KeyString)

	tests := []struct {
		name  string
		query any
		want  []Predicate
	}{
		{
			name:  "nil matches everything",
			query: nil,
			want:  []Predicate{},
		},
		{
			name:  "empty where",
			query: Where{},
			want:  []Predicate{},
		},
		{
			name:  "primary key shorthand",
			query: "p1",
			want:  []Predicate{{Column: "id", Op: Eq, Param: "w_id", Value: "p1"}},
		},
		{
			name:  "numeric shorthand on text key",
			query: 12,
			want:  []Predicate{{Column: "id", Op: Eq, Param: "w_id", Value: "12"}},
		},
		{
			name:  "fields sorted",
			query: Where{"kind": "tcp", "active": true},
			want: []Predicate{
				{Column: "active", Op: Eq, Param: "w_active", Value: "true"},
				{Column: "kind", Op: Eq, Param: "w_kind", Value: `"tcp"`},
			},
		},
		{
			name:  "not",
			query: Where{"active": Not{Value: false}},
			want:  []Predicate{{Column: "active", Op: Ne, Param: "w_active", Value: "false"}},
		},
		{
			name:  "not pointer",
			query: Where{"active": &Not{Value: 1}},
			want:  []Predicate{{Column: "active", Op: Ne, Param: "w_active", Value: "1"}},
		},
		{
			name:  "json not",
			query: map[string]any{"kind": map[string]any{"$not": "udp"}},
			want:  []Predicate{{Column: "kind", Op: Ne, Param: "w_kind", Value: `"udp"`}},
		},
		{
			name:  "null",
			query: Where{"kind": nil},
			want:  []Predicate{{Column: "kind", Op: IsNull, Param: "w_kind"}},
		},
		{
			name:  "not null",
			query: Where{"kind": Not{}},
			want:  []Predicate{{Column: "kind", Op: NotNull, Param: "w_kind"}},
		},
		{
			name:  "negated primary key",
			query: Where{"id": Not{Value: "p1"}},
			want:  []Predicate{{Column: "id", Op: Ne, Param: "w_id", Value: "p1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(def, tt.query, "w_")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Predicates)
		})
	}
}

func TestTranslateIntegerKey(t *testing.T) {
	def := definition(schema.KeyInteger)

	got, err := Translate(def, float64(3), "w_")
	require.NoError(t, err)
	assert.Equal(t, []Predicate{{Column: "id", Op: Eq, Param: "w_id", Value: int64(3)}}, got.Predicates)

	_, err = Translate(def, 3.5, "w_")
	assert.ErrorIs(t, err, schema.ErrInvalidFilter)
}

func TestTranslateErrors(t *testing.T) {
	def := definition(schema.KeyString)

	tests := []struct {
		name  string
		query any
		want  error
	}{
		{name: "unindexed field", query: Where{"name": "A"}, want: schema.ErrNotQueryable},
		{name: "data column", query: Where{"data": "{}"}, want: schema.ErrNotQueryable},
		{name: "unknown operator", query: Where{"kind": map[string]any{"$gt": 1}}, want: schema.ErrInvalidFilter},
		{name: "not with extra keys", query: Where{"kind": map[string]any{"$not": 1, "x": 2}}, want: schema.ErrInvalidFilter},
		{name: "array value", query: Where{"kind": []any{"a"}}, want: schema.ErrInvalidFilter},
		{name: "top level not", query: Not{Value: "p1"}, want: schema.ErrInvalidFilter},
		{name: "top level bool", query: true, want: schema.ErrInvalidFilter},
		{name: "top level slice", query: []string{"p1"}, want: schema.ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(def, tt.query, "w_")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTranslationArgs(t *testing.T) {
	def := definition(schema.KeyString)

	got, err := Translate(def, Where{"active": nil, "kind": "tcp"}, "where_")
	require.NoError(t, err)
	assert.False(t, got.Empty())
	assert.Equal(t, []Arg{{Name: "where_kind", Value: `"tcp"`}}, got.Args())

	var empty *Translation
	assert.True(t, empty.Empty())
	assert.Nil(t, empty.Args())
}

func TestFromJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    any
		wantErr bool
	}{
		{name: "object", raw: `{"active": {"$not": true}}`, want: Where{"active": map[string]any{"$not": true}}},
		{name: "string", raw: `"p1"`, want: "p1"},
		{name: "number", raw: `7`, want: float64(7)},
		{name: "null", raw: `null`, want: nil},
		{name: "array", raw: `[1]`, wantErr: true},
		{name: "bool", raw: `true`, wantErr: true},
		{name: "malformed", raw: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromJSON([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, schema.ErrInvalidFilter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

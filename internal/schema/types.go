package schema

// DataColumn is the column holding the serialized document
const DataColumn = "data"

// DefaultPrimaryKey is used when a definition leaves PrimaryKey empty
const DefaultPrimaryKey = "id"

// KeyType tags the native column type of a table's primary key
type KeyType string

const (
	KeyString  KeyType = "STRING"
	KeyText    KeyType = "TEXT"
	KeyInteger KeyType = "INTEGER"
	KeyReal    KeyType = "REAL"
)

// StringLike reports whether keys of this type can be auto-generated
func (k KeyType) StringLike() bool {
	return k == KeyString || k == KeyText
}

// Definition describes one document table
type Definition struct {
	TableName      string   `mapstructure:"name" json:"name"`
	Indexes        []string `mapstructure:"indexes" json:"indexes,omitempty"`
	PrimaryKey     string   `mapstructure:"primary_key" json:"primary_key,omitempty"`
	PrimaryKeyType KeyType  `mapstructure:"primary_key_type" json:"primary_key_type,omitempty"`

	// JSONSchema optionally constrains every document written to the table.
	JSONSchema string `mapstructure:"json_schema" json:"json_schema,omitempty"`
}

// HasIndex reports whether field is a declared index field
func (d *Definition) HasIndex(field string) bool {
	for _, idx := range d.Indexes {
		if idx == field {
			return true
		}
	}
	return false
}

// Column represents a live table column as reported by the engine
type Column struct {
	Name     string
	Type     string
	Nullable bool
	IsKey    bool
}

// TableInfo pairs a definition with the table's live columns
type TableInfo struct {
	Definition Definition
	Columns    []Column
	RowCount   int64
}

// StaleColumns returns live columns that are neither the key, the data
// column, nor a declared index. They are never dropped.
func (t *TableInfo) StaleColumns() []string {
	var stale []string
	for _, col := range t.Columns {
		if col.Name == t.Definition.PrimaryKey || col.Name == DataColumn {
			continue
		}
		if !t.Definition.HasIndex(col.Name) {
			stale = append(stale, col.Name)
		}
	}
	return stale
}

// Package codec maps documents to table rows and back.
//
// A row stores the whole document as a JSON blob in the data column plus one
// nullable text column per index field. Index columns hold the JSON form of
// the field value (see Scalar.Encode) and are rewritten on every write.
package codec

import (
	"bytes"
	"database/sql"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/tordrt/docstore/internal/schema"
)

// Row is the persisted form of a document
type Row struct {
	Key     any
	Data    string
	Columns []string
	Values  []sql.NullString
}

// Encoder encodes documents for one table definition
type Encoder struct {
	primaryKey string
	keyType    schema.KeyType
	indexes    []string
}

// NewEncoder creates an encoder for a defaulted definition
func NewEncoder(def schema.Definition) *Encoder {
	return &Encoder{
		primaryKey: def.PrimaryKey,
		keyType:    def.PrimaryKeyType,
		indexes:    def.Indexes,
	}
}

// Normalize converts any value whose JSON form is an object into a document.
// Numbers come back as float64, exactly as they will be read from storage.
func Normalize(v any) (map[string]any, error) {
	if v == nil {
		return nil, schema.ErrInvalidDocument
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidDocument, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: got %s", schema.ErrInvalidDocument, shapeOf(data))
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidDocument, err)
	}
	return doc, nil
}

// Encode produces the row for doc. The primary key is copied natively and is
// not part of the index columns.
func (e *Encoder) Encode(doc map[string]any) (*Row, error) {
	if doc == nil {
		return nil, schema.ErrInvalidDocument
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidDocument, err)
	}

	key, err := NativeKey(e.keyType, doc[e.primaryKey])
	if err != nil {
		return nil, err
	}

	row := &Row{
		Key:     key,
		Data:    string(data),
		Columns: e.indexes,
		Values:  make([]sql.NullString, len(e.indexes)),
	}

	for i, index := range e.indexes {
		s, err := ScalarOf(doc[index])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", index, err)
		}
		if text, ok := s.Encode(); ok {
			row.Values[i] = sql.NullString{String: text, Valid: true}
		}
	}

	return row, nil
}

// Decode parses a stored data blob
func Decode(data string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("data is not a JSON object")
	}
	return doc, nil
}

func shapeOf(data []byte) string {
	if len(data) == 0 {
		return "empty value"
	}
	switch data[0] {
	case '[':
		return "array"
	case 'n':
		return "null"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}

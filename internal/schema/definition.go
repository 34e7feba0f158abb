package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Table, key, and index names are interpolated into DDL, so they are
// restricted to plain SQL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// reservedTableNames collide with the registry's own surface
var reservedTableNames = map[string]bool{
	"conn":       true,
	"connect":    true,
	"disconnect": true,
	"close":      true,
	"table":      true,
	"tables":     true,
}

// ValidIdentifier reports whether name can be used as a table or column name
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// IsReservedTableName reports whether name is unavailable for a table
func IsReservedTableName(name string) bool {
	lower := strings.ToLower(name)
	return reservedTableNames[lower] || strings.HasPrefix(lower, "sqlite_")
}

// WithDefaults returns a copy of d with the default primary key and key type
// filled in.
func (d Definition) WithDefaults() Definition {
	if d.PrimaryKey == "" {
		d.PrimaryKey = DefaultPrimaryKey
	}
	if d.PrimaryKeyType == "" {
		d.PrimaryKeyType = KeyString
	}
	d.PrimaryKeyType = KeyType(strings.ToUpper(string(d.PrimaryKeyType)))
	d.Indexes = append([]string(nil), d.Indexes...)
	return d
}

// Validate checks a defaulted definition for configuration errors
func (d *Definition) Validate() error {
	if d.TableName == "" {
		return ErrMissingTableName
	}
	if !ValidIdentifier(d.TableName) {
		return fmt.Errorf("%w: table name %q", ErrInvalidIdentifier, d.TableName)
	}
	if IsReservedTableName(d.TableName) {
		return fmt.Errorf("%w: %q", ErrReservedTableName, d.TableName)
	}
	if !ValidIdentifier(d.PrimaryKey) {
		return fmt.Errorf("%w: primary key %q", ErrInvalidIdentifier, d.PrimaryKey)
	}
	if d.PrimaryKey == DataColumn {
		return fmt.Errorf("%w: primary key %q", ErrInvalidIdentifier, d.PrimaryKey)
	}

	switch d.PrimaryKeyType {
	case KeyString, KeyText, KeyInteger, KeyReal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKeyType, d.PrimaryKeyType)
	}

	seen := make(map[string]bool, len(d.Indexes))
	for _, idx := range d.Indexes {
		if idx == d.PrimaryKey {
			return fmt.Errorf("%w: %q", ErrPrimaryKeyIndexed, idx)
		}
		if idx == DataColumn {
			return ErrDataIndexed
		}
		if !ValidIdentifier(idx) {
			return fmt.Errorf("%w: index %q", ErrInvalidIdentifier, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: index %q listed twice", ErrInvalidIdentifier, idx)
		}
		seen[idx] = true
	}

	return nil
}

// CompileJSONSchema compiles the definition's JSON schema, if any
func (d *Definition) CompileJSONSchema() (*gojsonschema.Schema, error) {
	if d.JSONSchema == "" {
		return nil, nil
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(d.JSONSchema))
	if err != nil {
		return nil, fmt.Errorf("%w for table %s: %v", ErrInvalidJSONSchema, d.TableName, err)
	}
	return compiled, nil
}

// ValidateDocument checks doc against a compiled schema; a nil schema accepts
// every document.
func ValidateDocument(compiled *gojsonschema.Schema, doc map[string]any) error {
	if compiled == nil {
		return nil
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return fmt.Errorf("%w: %s", ErrSchemaViolation, strings.Join(errs, "; "))
	}

	return nil
}

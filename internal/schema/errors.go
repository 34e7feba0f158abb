package schema

import (
	"errors"
	"fmt"
)

// Configuration errors, raised before any connection exists.
var (
	ErrMissingTableName   = errors.New("missing table name")
	ErrPrimaryKeyIndexed  = errors.New("primary key cannot be indexed")
	ErrDataIndexed        = errors.New(`the column "data" is reserved and cannot be indexed`)
	ErrReservedTableName  = errors.New("table name is reserved")
	ErrDuplicateTable     = errors.New("table name is already registered")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrInvalidKeyType     = errors.New("invalid primary key type")
	ErrInvalidJSONSchema  = errors.New("invalid json schema")
	ErrUnsupportedBackend = errors.New("unsupported database location")
)

// Operational errors, raised per call.
var (
	ErrNotInitialized     = errors.New("table is not initialized")
	ErrAlreadyInitialized = errors.New("table is already initialized")
	ErrAlreadyConnected   = errors.New("registry is already connected")
	ErrUnknownTable       = errors.New("unknown table")
	ErrMissingPrimaryKey  = errors.New("missing primary key")
	ErrInvalidPrimaryKey  = errors.New("invalid primary key")
	ErrPrimaryKeyChange   = errors.New("primary key cannot be changed by update")
	ErrInvalidIndexValue  = errors.New("invalid value to be stored on index")
	ErrInvalidDocument    = errors.New("document must be a JSON object")
	ErrNotQueryable       = errors.New("a document cannot be queried by a value that is not indexed")
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrSchemaViolation    = errors.New("document invalid against schema")
)

// ErrCorruptRow is matched by every *CorruptRowError.
var ErrCorruptRow = errors.New("corrupt row")

// CorruptRowError reports a stored data blob that could not be parsed.
type CorruptRowError struct {
	Table string
	Key   any
	Data  string
	Err   error
}

func (e *CorruptRowError) Error() string {
	return fmt.Sprintf("invalid data on the database for row %v of table %s: %v", e.Key, e.Table, e.Err)
}

func (e *CorruptRowError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrCorruptRow) match
func (e *CorruptRowError) Is(target error) bool {
	return target == ErrCorruptRow
}

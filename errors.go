package docstore

import "github.com/tordrt/docstore/internal/schema"

// Configuration errors, returned by New and NewTable.
var (
	ErrMissingTableName  = schema.ErrMissingTableName
	ErrPrimaryKeyIndexed = schema.ErrPrimaryKeyIndexed
	ErrDataIndexed       = schema.ErrDataIndexed
	ErrReservedTableName = schema.ErrReservedTableName
	ErrDuplicateTable    = schema.ErrDuplicateTable
	ErrInvalidIdentifier = schema.ErrInvalidIdentifier
	ErrInvalidKeyType    = schema.ErrInvalidKeyType
	ErrInvalidJSONSchema = schema.ErrInvalidJSONSchema
	// ErrUnsupportedBackend is returned by Open and Connect for an
	// unrecognized database location.
	ErrUnsupportedBackend = schema.ErrUnsupportedBackend
)

// Operational errors. They never affect other calls or the connection.
var (
	ErrNotInitialized     = schema.ErrNotInitialized
	ErrAlreadyInitialized = schema.ErrAlreadyInitialized
	ErrAlreadyConnected   = schema.ErrAlreadyConnected
	ErrUnknownTable       = schema.ErrUnknownTable
	ErrMissingPrimaryKey  = schema.ErrMissingPrimaryKey
	ErrInvalidPrimaryKey  = schema.ErrInvalidPrimaryKey
	ErrPrimaryKeyChange   = schema.ErrPrimaryKeyChange
	ErrInvalidIndexValue  = schema.ErrInvalidIndexValue
	ErrInvalidDocument    = schema.ErrInvalidDocument
	ErrNotQueryable       = schema.ErrNotQueryable
	ErrInvalidFilter      = schema.ErrInvalidFilter
	ErrSchemaViolation    = schema.ErrSchemaViolation
)

// ErrCorruptRow matches any *CorruptRowError.
var ErrCorruptRow = schema.ErrCorruptRow

// CorruptRowError is returned when a stored data blob cannot be parsed. It
// signals corruption of data at rest, not a caller mistake.
type CorruptRowError = schema.CorruptRowError

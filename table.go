package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/tordrt/docstore/internal/codec"
	"github.com/tordrt/docstore/internal/db"
	"github.com/tordrt/docstore/internal/filter"
	"github.com/tordrt/docstore/internal/schema"
)

const (
	stateRegistered int32 = iota
	stateInitializing
	stateInitialized
)

type absentValue struct{}

var errAbsentValue = errors.New("docstore.Absent is only valid as a top-level field value")

// MarshalJSON fails, so Absent nested below the top level of a document is
// rejected instead of being stored as {}.
func (absentValue) MarshalJSON() ([]byte, error) {
	return nil, errAbsentValue
}

// Absent removes a field when used as a value in Update changes, and leaves
// the field out when used in a Create document. A nil value stores JSON null
// instead. Absent is only valid at the top level of a document.
var Absent any = absentValue{}

// Table is one document table. It must be initialized with Init (or through
// Registry.Connect) before any other operation.
type Table struct {
	def       schema.Definition
	encoder   *codec.Encoder
	validator *gojsonschema.Schema
	deps      *deps

	state atomic.Int32
	conn  atomic.Pointer[Conn]
}

// NewTable validates def and creates an uninitialized table
func NewTable(def Definition, opts *Options) (*Table, error) {
	d, err := newDeps(opts)
	if err != nil {
		return nil, err
	}
	return newTable(def, d)
}

func newTable(def Definition, d *deps) (*Table, error) {
	def = def.WithDefaults()
	if err := def.Validate(); err != nil {
		return nil, err
	}

	validator, err := def.CompileJSONSchema()
	if err != nil {
		return nil, err
	}

	return &Table{
		def:       def,
		encoder:   codec.NewEncoder(def),
		validator: validator,
		deps:      d,
	}, nil
}

// Name returns the table name
func (t *Table) Name() string {
	return t.def.TableName
}

// Definition returns the table definition with defaults applied
func (t *Table) Definition() Definition {
	def := t.def
	def.Indexes = append([]string(nil), t.def.Indexes...)
	return def
}

// Init creates the table if it is absent and adds a column for every declared
// index that the table lacks. Columns are never dropped, and rows written
// before an index existed read back NULL in it until their next write.
//
// Init succeeds once per connection; later calls return
// ErrAlreadyInitialized. Registry.Disconnect returns the table to the
// uninitialized state, after which Init (through Registry.Connect) may run
// again against the new connection.
func (t *Table) Init(ctx context.Context, conn *Conn) (err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "init", start, err) }()

	if !t.state.CompareAndSwap(stateRegistered, stateInitializing) {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, t.def.TableName)
	}

	if err := t.migrate(ctx, conn); err != nil {
		t.state.Store(stateRegistered)
		return err
	}

	t.conn.Store(conn)
	t.state.Store(stateInitialized)
	t.deps.log.Info("table initialized", "table", t.def.TableName, "indexes", t.def.Indexes)
	return nil
}

func (t *Table) migrate(ctx context.Context, conn *Conn) error {
	d := conn.client.Dialect()
	q := conn.client.GetDB()

	if _, err := t.exec(ctx, q, db.CreateTable(d, &t.def)); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	columns, err := d.Columns(ctx, q, t.def.TableName)
	if err != nil {
		return fmt.Errorf("failed to extract columns: %w", err)
	}

	existing := make(map[string]bool, len(columns))
	for _, col := range columns {
		existing[col.Name] = true
	}

	for _, index := range t.def.Indexes {
		if existing[index] {
			continue
		}
		if _, err := t.exec(ctx, q, db.AddColumn(d, t.def.TableName, index)); err != nil {
			return fmt.Errorf("failed to add index column %s: %w", index, err)
		}
		t.deps.log.Info("index column added", "table", t.def.TableName, "column", index)
	}

	return nil
}

func (t *Table) detach() {
	t.conn.Store(nil)
	t.state.Store(stateRegistered)
}

// ready returns the connection of an initialized table
func (t *Table) ready() (*db.Client, error) {
	if t.state.Load() != stateInitialized {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, t.def.TableName)
	}
	conn := t.conn.Load()
	if conn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInitialized, t.def.TableName)
	}
	return conn.client, nil
}

func (t *Table) exec(ctx context.Context, q db.Queryer, query string, args ...any) (sql.Result, error) {
	t.deps.log.Debug("exec", "table", t.def.TableName, "sql", query)
	return q.ExecContext(ctx, query, args...)
}

// Create inserts a document and returns it as stored. doc may be a Document
// or any value whose JSON form is an object.
//
// When doc has no primary key and the key type is string-like, a key is
// generated. Top-level fields set to Absent are left out. A duplicate key
// fails with the engine's constraint error.
func (t *Table) Create(ctx context.Context, doc any) (created Document, err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "create", start, err) }()

	client, err := t.ready()
	if err != nil {
		return nil, err
	}

	attrs, err := codec.Normalize(withoutAbsent(doc))
	if err != nil {
		return nil, err
	}

	pk := t.def.PrimaryKey
	if !codec.KeyPresent(attrs[pk]) && t.def.PrimaryKeyType.StringLike() {
		attrs[pk] = t.deps.ids.Next()
	}
	if !codec.KeyPresent(attrs[pk]) {
		return nil, fmt.Errorf("%w: %s on table %s", ErrMissingPrimaryKey, pk, t.def.TableName)
	}

	row, err := t.encode(attrs)
	if err != nil {
		return nil, err
	}

	stmt := db.Insert(client.Dialect(), &t.def, row)
	if _, err := t.exec(ctx, client.GetDB(), stmt.SQL(), stmt.Args()...); err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}

	return attrs, nil
}

func (t *Table) encode(doc Document) (*codec.Row, error) {
	if err := schema.ValidateDocument(t.validator, doc); err != nil {
		return nil, err
	}
	return t.encoder.Encode(doc)
}

func (t *Table) decode(key any, data string) (Document, error) {
	doc, err := codec.Decode(data)
	if err != nil {
		if b, ok := key.([]byte); ok {
			key = string(b)
		}
		return nil, &CorruptRowError{Table: t.def.TableName, Key: key, Data: data, Err: err}
	}
	return doc, nil
}

// Find returns every document matching query, in engine order
func (t *Table) Find(ctx context.Context, query any) (docs []Document, err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "find", start, err) }()

	client, err := t.ready()
	if err != nil {
		return nil, err
	}
	return t.find(ctx, client, query)
}

func (t *Table) find(ctx context.Context, client *db.Client, query any) ([]Document, error) {
	where, err := filter.Translate(&t.def, query, db.WhereNamespace)
	if err != nil {
		return nil, err
	}

	stmt := db.Select(client.Dialect(), &t.def, where, 0)
	t.deps.log.Debug("query", "table", t.def.TableName, "sql", stmt.SQL())

	rows, err := client.GetDB().QueryContext(ctx, stmt.SQL(), stmt.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var key any
		var data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, err
		}

		doc, err := t.decode(key, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// FindOne returns one document matching query, or nil when none does
func (t *Table) FindOne(ctx context.Context, query any) (doc Document, err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "find_one", start, err) }()

	client, err := t.ready()
	if err != nil {
		return nil, err
	}

	where, err := filter.Translate(&t.def, query, db.WhereNamespace)
	if err != nil {
		return nil, err
	}

	stmt := db.Select(client.Dialect(), &t.def, where, 1)
	t.deps.log.Debug("query", "table", t.def.TableName, "sql", stmt.SQL())

	var key any
	var data string
	err = client.GetDB().QueryRowContext(ctx, stmt.SQL(), stmt.Args()...).Scan(&key, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return t.decode(key, data)
}

// Count returns the number of documents matching query
func (t *Table) Count(ctx context.Context, query any) (n int64, err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "count", start, err) }()

	client, err := t.ready()
	if err != nil {
		return 0, err
	}

	where, err := filter.Translate(&t.def, query, db.WhereNamespace)
	if err != nil {
		return 0, err
	}

	stmt := db.Count(client.Dialect(), &t.def, where)
	if err := client.GetDB().QueryRowContext(ctx, stmt.SQL(), stmt.Args()...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return n, nil
}

// Update merges changes onto every document matching query and rewrites
// each one by primary key. A change set to Absent removes the field. Changes
// may repeat a document's primary key but not alter it.
//
// Update is a read followed by one write per document, with no isolation:
// writes made by others between the two are lost or merged against a stale
// copy, and a document deleted in between is skipped. It returns the merged
// documents actually written, in match order; on failure, the documents
// already written are returned along with the error.
func (t *Table) Update(ctx context.Context, query any, changes Document) (updated []Document, err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "update", start, err) }()

	client, err := t.ready()
	if err != nil {
		return nil, err
	}

	docs, err := t.find(ctx, client, query)
	if err != nil {
		return nil, err
	}

	updated = make([]Document, 0, len(docs))
	for _, doc := range docs {
		merged, err := codec.Normalize(merge(doc, changes))
		if err != nil {
			return updated, err
		}

		key, err := codec.NativeKey(t.def.PrimaryKeyType, doc[t.def.PrimaryKey])
		if err != nil {
			return updated, err
		}

		row, err := t.encode(merged)
		if err != nil {
			return updated, err
		}
		if row.Key != key {
			return updated, fmt.Errorf("%w: %s %v to %v", ErrPrimaryKeyChange, t.def.PrimaryKey, key, row.Key)
		}

		where, err := filter.Translate(&t.def, key, db.WhereNamespace)
		if err != nil {
			return updated, err
		}

		stmt := db.Update(client.Dialect(), &t.def, row, where)
		res, err := t.exec(ctx, client.GetDB(), stmt.SQL(), stmt.Args()...)
		if err != nil {
			return updated, fmt.Errorf("failed to update document %v: %w", key, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return updated, err
		}
		if n == 0 {
			t.deps.log.Debug("document vanished before rewrite", "table", t.def.TableName, "key", key)
			continue
		}
		updated = append(updated, merged)
	}

	return updated, nil
}

// withoutAbsent drops top-level Absent fields from a document map
func withoutAbsent(doc any) any {
	m, ok := doc.(map[string]any)
	if !ok || m == nil {
		return doc
	}
	return merge(nil, m)
}

// merge is a shallow, field-by-field merge of changes onto doc
func merge(doc, changes Document) Document {
	out := make(Document, len(doc)+len(changes))
	for k, v := range doc {
		out[k] = v
	}
	for k, v := range changes {
		if _, ok := v.(absentValue); ok {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Destroy deletes every document matching query and returns how many were
// removed. Matching nothing is not an error.
func (t *Table) Destroy(ctx context.Context, query any) (n int64, err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "destroy", start, err) }()

	client, err := t.ready()
	if err != nil {
		return 0, err
	}

	where, err := filter.Translate(&t.def, query, db.WhereNamespace)
	if err != nil {
		return 0, err
	}

	stmt := db.Delete(client.Dialect(), &t.def, where)
	res, err := t.exec(ctx, client.GetDB(), stmt.SQL(), stmt.Args()...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}

	return res.RowsAffected()
}

// Empty deletes every document and compacts the database. It is irreversible.
func (t *Table) Empty(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { t.deps.metrics.Observe(t.def.TableName, "empty", start, err) }()

	client, err := t.ready()
	if err != nil {
		return err
	}

	q := client.GetDB()
	if _, err := t.exec(ctx, q, db.DeleteAll(client.Dialect(), t.def.TableName)); err != nil {
		return fmt.Errorf("failed to empty table: %w", err)
	}
	if err := client.Dialect().Compact(ctx, q, t.def.TableName); err != nil {
		return fmt.Errorf("failed to compact table: %w", err)
	}
	return nil
}

// Describe reports the table definition, its live columns and row count
func (t *Table) Describe(ctx context.Context) (info *TableInfo, err error) {
	client, err := t.ready()
	if err != nil {
		return nil, err
	}

	columns, err := client.Dialect().Columns(ctx, client.GetDB(), t.def.TableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	count, err := t.Count(ctx, nil)
	if err != nil {
		return nil, err
	}

	return &TableInfo{Definition: t.Definition(), Columns: columns, RowCount: count}, nil
}

// Package record implements the generic active-record mapper shared by every
// entity. A Record holds the in-memory snapshot of one row of its table and
// moves it to and from the database through a Conn.
//
// Every operation ends with a commit on the connection, reads included, so a
// pooled connection never carries an open transaction from one operation to
// the next. Multi-statement operations run in a single Atomic scope.
package record

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
	"github.com/mongoose-kitchen/mongoose/internal/orm/query"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

type options struct {
	dialect dialect.Dialect
	logger  *zap.Logger
	probe   bool
}

// Option configures a Record
type Option func(*options)

// WithDialect sets the SQL dialect (default MySQL)
func WithDialect(d dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// WithLogger sets the statement logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProbe turns the initial LIMIT 1 probe of the table on or off. The probe
// is on by default; a table declared without columns requires it.
func WithProbe(probe bool) Option {
	return func(o *options) { o.probe = probe }
}

// Record maps one row of a table. C is the entity's column identifier type.
type Record[C ~string] struct {
	conn      Conn
	table     *schema.Table
	dialect   dialect.Dialect
	logger    *zap.Logger
	snapshot  *Snapshot
	relations *Relations
}

// New binds a record to conn and table. Unless probing is disabled it runs
// SELECT * FROM <table> LIMIT 1 first: an unreachable table yields a
// ConnectionError, and a declared column the table lacks yields
// ErrSchemaMismatch. The new record is unbound, with every column nil.
func New[C ~string](ctx context.Context, conn Conn, table *schema.Table, opts ...Option) (*Record[C], error) {
	o := options{dialect: dialect.MySQL, logger: zap.NewNop(), probe: true}
	for _, opt := range opts {
		opt(&o)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	r := &Record[C]{
		conn:      conn,
		table:     table,
		dialect:   o.dialect,
		logger:    o.logger.With(zap.String("table", table.Name)),
		relations: NewRelations(),
	}

	if o.probe {
		if err := r.probe(ctx); err != nil {
			return nil, err
		}
	} else if len(table.Columns) == 0 {
		return nil, fmt.Errorf("%w: table %s declares no columns and probing is disabled", ErrSchemaMismatch, table.Name)
	}

	r.snapshot = NewSnapshot(r.table.ColumnNames())

	if err := r.conn.Commit(); err != nil {
		return nil, &ConnectionError{Table: table.Name, Err: err}
	}
	return r, nil
}

// probe checks the table against the catalog, or fills in the catalog when
// it declares no columns
func (r *Record[C]) probe(ctx context.Context) error {
	stmt := fmt.Sprintf("SELECT * FROM %s LIMIT 1", r.table.Name)
	r.logStatement(stmt, nil)

	rows, err := r.conn.QueryContext(ctx, stmt)
	if err != nil {
		return &ConnectionError{Table: r.table.Name, Err: err}
	}
	columns, err := rows.Columns()
	rows.Close()
	if err != nil {
		return &ConnectionError{Table: r.table.Name, Err: err}
	}

	if len(r.table.Columns) == 0 {
		r.table = r.table.WithColumns(columns)
		return nil
	}

	found := make(map[string]bool, len(columns))
	for _, c := range columns {
		found[c] = true
	}
	for _, c := range r.table.Columns {
		if !found[c.Name] {
			return fmt.Errorf("%w: table %s has no column %s", ErrSchemaMismatch, r.table.Name, c.Name)
		}
	}
	return nil
}

// Table returns the catalog the record maps
func (r *Record[C]) Table() *schema.Table {
	return r.table
}

// Conn returns the connection the record runs on
func (r *Record[C]) Conn() Conn {
	return r.conn
}

// Dialect returns the SQL dialect
func (r *Record[C]) Dialect() dialect.Dialect {
	return r.dialect
}

// Logger returns the record's logger
func (r *Record[C]) Logger() *zap.Logger {
	return r.logger
}

// Snapshot returns the current column snapshot
func (r *Record[C]) Snapshot() *Snapshot {
	return r.snapshot
}

// Relations returns the relationship cache
func (r *Record[C]) Relations() *Relations {
	return r.relations
}

// Get returns the snapshot value of column; unknown columns read as nil
func (r *Record[C]) Get(column C) interface{} {
	return r.snapshot.Get(string(column))
}

// Set stores value in the snapshot without touching the database
func (r *Record[C]) Set(column C, value interface{}) {
	r.snapshot.Set(string(column), value)
}

// ID returns the value of the first key column, or nil when unbound
func (r *Record[C]) ID() interface{} {
	return r.snapshot.Get(r.table.PrimaryKey())
}

// Bound reports whether the snapshot refers to a stored row
func (r *Record[C]) Bound() bool {
	return r.ID() != nil
}

// Reset returns the record to the unbound state
func (r *Record[C]) Reset() {
	r.snapshot.Reset(r.table.ColumnNames())
	r.relations.Clear()
}

// Commit ends the current transaction boundary on the connection
func (r *Record[C]) Commit() error {
	return r.conn.Commit()
}

// FindByID loads the row whose first key column equals id. On a miss every
// column is reset to nil and a nil row is returned without error.
func (r *Record[C]) FindByID(ctx context.Context, id interface{}) (schema.Row, error) {
	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s LIMIT 1",
		r.table.Name, r.table.PrimaryKey(), r.dialect.Placeholder(1))

	rows, err := r.query(ctx, stmt, schema.BindValue(id))
	if err != nil {
		return nil, err
	}

	var found schema.Row
	if len(rows) > 0 {
		found = rows[0]
		r.snapshot.Merge(found)
	} else {
		r.Reset()
	}

	if err := r.conn.Commit(); err != nil {
		return nil, err
	}
	return found, nil
}

// FindByAttribute returns the rows whose column equals value. A limit of 0 or
// less means no LIMIT clause. With limit 1 a matching row is also merged into
// the snapshot; other limits leave the snapshot alone.
func (r *Record[C]) FindByAttribute(ctx context.Context, column C, value interface{}, limit int) ([]schema.Row, error) {
	if !r.table.HasColumn(string(column)) {
		return nil, &InvalidColumnError{Table: r.table.Name, Column: string(column)}
	}

	stmt := fmt.Sprintf("SELECT * FROM %s WHERE %s = %s",
		r.table.Name, column, r.dialect.Placeholder(1))
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.query(ctx, stmt, schema.BindValue(value))
	if err != nil {
		return nil, err
	}

	if limit == 1 && len(rows) > 0 {
		r.snapshot.Merge(rows[0])
	}

	if err := r.conn.Commit(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Update merges fields into the snapshot. Nothing is written until Flush.
func (r *Record[C]) Update(fields map[C]interface{}) {
	for col, v := range fields {
		r.snapshot.Set(string(col), v)
	}
}

// All returns every row matching conds, joined by combinator ("AND" when
// empty). The snapshot is left untouched and zero matches is not an error.
func (r *Record[C]) All(ctx context.Context, combinator string, conds map[C]query.Cond) ([]schema.Row, error) {
	raw := make(map[string]query.Cond, len(conds))
	for col, cond := range conds {
		if !r.table.HasColumn(string(col)) {
			return nil, &InvalidColumnError{Table: r.table.Name, Column: string(col)}
		}
		raw[string(col)] = cond
	}

	comparisons, err := query.Comparisons(raw)
	if err != nil {
		return nil, err
	}
	where, args, err := query.Where(r.dialect, combinator, comparisons)
	if err != nil {
		return nil, err
	}

	stmt := fmt.Sprintf("SELECT * FROM %s", r.table.Name)
	if where != "" {
		stmt += " WHERE " + where
	}

	rows, err := r.query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}

	if err := r.conn.Commit(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create merges fields into the snapshot and inserts every non-key column
// that is not nil. The new key is stored in the snapshot and returned. The
// insert and the key read-back share one transaction.
func (r *Record[C]) Create(ctx context.Context, fields map[C]interface{}) (interface{}, error) {
	r.Update(fields)

	columns, args := r.writableColumns()
	key := r.table.PrimaryKey()

	var stmt string
	switch {
	case len(columns) > 0:
		stmt = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			r.table.Name, strings.Join(columns, ", "), r.dialect.Placeholders(1, len(columns)))
	case r.dialect == dialect.MySQL:
		stmt = fmt.Sprintf("INSERT INTO %s () VALUES ()", r.table.Name)
	default:
		stmt = fmt.Sprintf("INSERT INTO %s DEFAULT VALUES", r.table.Name)
	}

	var id interface{}
	err := r.conn.Atomic(ctx, func(ctx context.Context) error {
		var err error
		if r.dialect.SupportsReturning() {
			id, err = r.insertReturning(ctx, stmt+" RETURNING "+key, args)
		} else {
			id, err = r.insertLastID(ctx, stmt, args)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	id = r.table.Normalize(schema.Row{key: id})[key]
	r.snapshot.Set(key, id)
	r.logger.Debug("record created", zap.Any("id", id))
	return id, nil
}

func (r *Record[C]) insertReturning(ctx context.Context, stmt string, args []interface{}) (interface{}, error) {
	rows, err := r.query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &QueryError{Query: stmt, Err: fmt.Errorf("insert returned no key")}
	}
	return rows[0][r.table.PrimaryKey()], nil
}

func (r *Record[C]) insertLastID(ctx context.Context, stmt string, args []interface{}) (interface{}, error) {
	res, err := r.exec(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		return id, nil
	}

	// Driver could not report the key; read the largest key inside the same
	// transaction instead
	key := r.table.PrimaryKey()
	maxSQL := fmt.Sprintf("SELECT MAX(%s) AS %s FROM %s LIMIT 1", key, key, r.table.Name)
	rows, err := r.query(ctx, maxSQL)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &QueryError{Query: maxSQL, Err: fmt.Errorf("no key after insert")}
	}
	return rows[0][key], nil
}

// Flush writes every non-key column that is not nil to the row identified by
// the current key. Nil columns and key columns are never written. An unbound
// record fails with ErrInvalidState.
func (r *Record[C]) Flush(ctx context.Context) error {
	id := r.ID()
	if id == nil {
		return fmt.Errorf("flush %s: %w", r.table.Name, ErrInvalidState)
	}

	columns, args := r.writableColumns()
	if len(columns) == 0 {
		return r.conn.Commit()
	}

	counter := dialect.NewCounter(r.dialect)
	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = fmt.Sprintf("%s = %s", col, counter.Next())
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		r.table.Name, strings.Join(sets, ", "), r.table.PrimaryKey(), counter.Next())
	args = append(args, schema.BindValue(id))

	if _, err := r.exec(ctx, stmt, args...); err != nil {
		return err
	}
	return r.conn.Commit()
}

// Delete removes the row identified by the current key and resets the record
// when a row was removed. It reports whether a row was affected.
func (r *Record[C]) Delete(ctx context.Context) (bool, error) {
	id := r.ID()
	if id == nil {
		return false, fmt.Errorf("delete %s: %w", r.table.Name, ErrInvalidState)
	}

	deleted, err := r.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		r.Reset()
	}
	return deleted, nil
}

// DeleteByID removes the row whose first key column equals id without
// touching the snapshot. It reports whether a row was affected.
func (r *Record[C]) DeleteByID(ctx context.Context, id interface{}) (bool, error) {
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		r.table.Name, r.table.PrimaryKey(), r.dialect.Placeholder(1))

	res, err := r.exec(ctx, stmt, schema.BindValue(id))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, &QueryError{Query: stmt, Err: err}
	}

	if err := r.conn.Commit(); err != nil {
		return false, err
	}
	return affected > 0, nil
}

// writableColumns returns the non-key catalog columns whose snapshot value is
// not nil, in catalog order, with their bind values
func (r *Record[C]) writableColumns() ([]string, []interface{}) {
	var columns []string
	var args []interface{}
	for _, col := range r.table.Columns {
		if r.table.IsKey(col.Name) {
			continue
		}
		v := r.snapshot.Get(col.Name)
		if v == nil {
			continue
		}
		columns = append(columns, col.Name)
		args = append(args, schema.BindValue(v))
	}
	return columns, args
}

func (r *Record[C]) query(ctx context.Context, stmt string, args ...interface{}) ([]schema.Row, error) {
	r.logStatement(stmt, args)

	rows, err := r.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, &QueryError{Query: stmt, Err: err}
	}
	defer rows.Close()

	result, err := ScanRows(rows, r.table)
	if err != nil {
		return nil, &QueryError{Query: stmt, Err: err}
	}
	return result, nil
}

func (r *Record[C]) exec(ctx context.Context, stmt string, args ...interface{}) (sql.Result, error) {
	r.logStatement(stmt, args)

	res, err := r.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, &QueryError{Query: stmt, Err: err}
	}
	return res, nil
}

func (r *Record[C]) logStatement(stmt string, args []interface{}) {
	r.logger.Debug("sql",
		zap.String("sql", stmt),
		zap.Int("args", len(args)),
	)
}

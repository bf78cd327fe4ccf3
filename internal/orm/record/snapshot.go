package record

import "github.com/mongoose-kitchen/mongoose/internal/orm/schema"

// Snapshot is the in-memory view of one row: column -> value, nil meaning
// NULL. Column order is kept so inserts and updates follow the catalog.
type Snapshot struct {
	order  []string
	values map[string]interface{}
}

// NewSnapshot creates an all-null snapshot over columns
func NewSnapshot(columns []string) *Snapshot {
	s := &Snapshot{}
	s.Reset(columns)
	return s
}

// Reset replaces the snapshot with an all-null row over columns
func (s *Snapshot) Reset(columns []string) {
	s.order = append([]string(nil), columns...)
	s.values = make(map[string]interface{}, len(columns))
	for _, c := range columns {
		s.values[c] = nil
	}
}

// Get returns the value of column; missing columns read as nil
func (s *Snapshot) Get(column string) interface{} {
	return s.values[column]
}

// Set stores value under column. Columns outside the catalog are kept in
// memory but never persisted.
func (s *Snapshot) Set(column string, value interface{}) {
	if _, ok := s.values[column]; !ok {
		s.order = append(s.order, column)
	}
	s.values[column] = value
}

// Merge copies every entry of row into the snapshot
func (s *Snapshot) Merge(row schema.Row) {
	for k, v := range row {
		s.Set(k, v)
	}
}

// Columns returns the snapshot's keys in insertion order
func (s *Snapshot) Columns() []string {
	return append([]string(nil), s.order...)
}

// Map returns a copy of the snapshot
func (s *Snapshot) Map() schema.Row {
	out := make(schema.Row, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Relations caches materialized relationship results by relation name. It is
// kept apart from the Snapshot so derived values are never mistaken for
// columns.
type Relations struct {
	values map[string]interface{}
}

// NewRelations creates an empty relation cache
func NewRelations() *Relations {
	return &Relations{values: make(map[string]interface{})}
}

// Get returns the cached value for name
func (r *Relations) Get(name string) (interface{}, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set caches value under name
func (r *Relations) Set(name string, value interface{}) {
	r.values[name] = value
}

// Delete drops the cached value for name
func (r *Relations) Delete(name string) {
	delete(r.values, name)
}

// Clear drops every cached relation
func (r *Relations) Clear() {
	r.values = make(map[string]interface{})
}

// Map returns a copy of the cache
func (r *Relations) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

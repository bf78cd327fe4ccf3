package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds every table the application maps
type Registry struct {
	tables map[string]*Table
	mu     sync.RWMutex
}

// NewRegistry creates a new table registry
func NewRegistry() *Registry {
	return &Registry{
		tables: make(map[string]*Table),
	}
}

// Register validates and stores a table
func (r *Registry) Register(table *Table) error {
	if err := table.Validate(); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", table.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[table.Name]; exists {
		return fmt.Errorf("table %s is already registered", table.Name)
	}
	r.tables[table.Name] = table
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(tables ...*Table) *Registry {
	for _, t := range tables {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

// Get retrieves a table by name
func (r *Registry) Get(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, exists := r.tables[name]
	return table, exists
}

// List returns the registered tables sorted by name
func (r *Registry) List() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]*Table, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	sort.Slice(tables, func(i, j int) bool {
		return tables[i].Name < tables[j].Name
	})
	return tables
}

// Count returns the number of registered tables
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Package relationships loads and replaces rows linked to a record, either
// through a foreign key on the owner or through a join table
package relationships

import (
	"go.uber.org/zap"

	"github.com/mongoose-kitchen/mongoose/internal/orm/dialect"
	"github.com/mongoose-kitchen/mongoose/internal/orm/record"
	"github.com/mongoose-kitchen/mongoose/internal/orm/schema"
)

// JoinTable describes a many-to-many link. Each row of Name pairs an owner
// key (OwnerColumn) with the key of a Target row (TargetColumn).
type JoinTable struct {
	Name         string
	OwnerColumn  string
	TargetColumn string
	Target       *schema.Table
}

// Loader runs relationship statements on one connection
type Loader struct {
	db      record.Conn
	dialect dialect.Dialect
	logger  *zap.Logger
}

// NewLoader creates a new relationship loader
func NewLoader(db record.Conn, d dialect.Dialect, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		db:      db,
		dialect: d,
		logger:  logger,
	}
}

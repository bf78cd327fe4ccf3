package relationships

import "errors"

var (
	// ErrNilOwner is returned when an owner key is nil
	ErrNilOwner = errors.New("owner key cannot be nil")

	// ErrInvalidJoinTable is returned when a join table description is incomplete
	ErrInvalidJoinTable = errors.New("invalid join table")
)

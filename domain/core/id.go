package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID      ID
	SampleID   ID
	ColumnName ID
)

// NewRunID creates a time-ordered identifier for one estimator invocation
func NewRunID() RunID {
	return RunID(NewID())
}

func (id RunID) String() string      { return ID(id).String() }
func (id SampleID) String() string   { return ID(id).String() }
func (id ColumnName) String() string { return ID(id).String() }

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("run ID %q is not a UUID: %w", s, err)
	}
	return RunID(s), nil
}

// ParseColumnName parses a string into ColumnName
func ParseColumnName(s string) (ColumnName, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("column name cannot be empty")
	}
	return ColumnName(s), nil
}

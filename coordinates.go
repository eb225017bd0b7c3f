package searchkit

import (
	"fmt"

	"github.com/kailas-cloud/searchkit/internal/db"
)

// IndexCoordinates names the administrative target of an index creation.
type IndexCoordinates struct {
	Name  string
	Alias string // optional
	// Pattern matches a templated or rolled-over index family, e.g. "orders-*".
	Pattern string
}

// Document pairs a payload with an optional external ID.
// An empty ID lets the engine assign one.
type Document[T any] struct {
	ID      string
	Payload T
}

// Doc wraps payload without an ID.
func Doc[T any](payload T) Document[T] {
	return Document[T]{Payload: payload}
}

// DocWithID wraps payload with an explicit ID.
func DocWithID[T any](id string, payload T) Document[T] {
	return Document[T]{ID: id, Payload: payload}
}

// Validate checks the index and alias names against engine naming rules.
func (c IndexCoordinates) Validate() error {
	if !db.IsValidIndexName(c.Name) {
		return fmt.Errorf("%w: invalid index name %q", ErrConfiguration, c.Name)
	}
	if c.Alias != "" && !db.IsValidIndexName(c.Alias) {
		return fmt.Errorf("%w: invalid alias %q", ErrConfiguration, c.Alias)
	}
	return nil
}

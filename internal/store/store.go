// Package store persists chaincode projects. MemoryStore serves tests and
// demos; SQLStore keeps projects in a single table through database/sql.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/matthewbaird/chaincodegen/internal/project"
)

// ErrNotFound is returned when no project has the requested id.
var ErrNotFound = errors.New("project not found")

// Record is a stored project with its bookkeeping timestamps.
type Record struct {
	Project   *project.Project `json:"project"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ListOptions controls pagination for List.
type ListOptions struct {
	Limit  int // default 20, max 100
	Offset int
}

func (o ListOptions) normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// Store is the interface for reading and writing projects.
type Store interface {
	// Create assigns the project a new id and saves it.
	Create(ctx context.Context, p *project.Project) (*Record, error)

	// Get returns the project with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns projects ordered by most recent update, and the total count.
	List(ctx context.Context, opts ListOptions) ([]Record, int, error)

	// Update replaces the project with p.ID or returns ErrNotFound.
	Update(ctx context.Context, p *project.Project) (*Record, error)

	// Delete removes the project or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

package person

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create persists a new person. Returns ErrDuplicateEmail/DNI/Phone on a
	// uniqueness violation, identifying the offending field.
	Create(ctx context.Context, p *Person) error

	// GetByID retrieves a person by primary key. Returns ErrPersonNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)

	// GetByDNI retrieves a person by national identifier.
	GetByDNI(ctx context.Context, dni string) (*Person, error)

	// Update applies a partial update and returns the resulting record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdatePersonCommand) (*Person, error)

	// SetEnabled writes the enabled flag unconditionally.
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error

	// List returns every person.
	List(ctx context.Context) ([]*Person, error)

	// ListByEnabled filters on the enabled flag.
	ListByEnabled(ctx context.Context, enabled bool) ([]*Person, error)

	// Delete removes the record outright. Callers are responsible for the
	// no-appointments guard.
	Delete(ctx context.Context, id uuid.UUID) error
}

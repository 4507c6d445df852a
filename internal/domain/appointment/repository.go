package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/schedule"
)

type Repository interface {
	// Create persists a new appointment. Returns ErrSlotUnavailable when the
	// (date, time) pair is already held by a non-cancelled appointment.
	Create(ctx context.Context, a *Appointment) error

	// GetByID retrieves an appointment. Returns ErrAppointmentNotFound if absent.
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Update applies a partial update and returns the resulting record.
	Update(ctx context.Context, id uuid.UUID, cmd *UpdateAppointmentCommand) (*Appointment, error)

	// UpdateStatus persists a status already changed on the entity.
	UpdateStatus(ctx context.Context, a *Appointment) error

	// Delete removes the record outright, as opposed to cancelling it.
	Delete(ctx context.Context, id uuid.UUID) error

	List(ctx context.Context) ([]*Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error)
	ListByPerson(ctx context.Context, personID uuid.UUID) ([]*Appointment, error)
	ListByStatus(ctx context.Context, status Status) ([]*Appointment, error)

	// ListByStatusInRange returns appointments in the given state with date
	// between from and to inclusive, ordered by date then time.
	ListByStatusInRange(ctx context.Context, status Status, from, to time.Time) ([]*Appointment, error)

	// OccupiedTimes returns the times held by non-cancelled appointments on date.
	OccupiedTimes(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error)

	// CountCancelledSince counts a person's cancelled appointments dated on or
	// after since. Feeds the booking-time threshold rule.
	CountCancelledSince(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error)

	// CountByPerson counts every appointment owned by a person, any state.
	CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error)
}

package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

// State transitions:
//
//	pending → confirmed → attended
//	pending → cancelled
//	confirmed → cancelled
//
// cancelled and attended are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusAttended  Status = "attended"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusAttended:
		return true
	}
	return false
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusAttended
}

type Appointment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PersonID uuid.UUID      `gorm:"column:person_id;type:uuid;not null;index"`
	Person   *person.Person `gorm:"foreignKey:PersonID"`

	Date   time.Time          `gorm:"column:date;type:date;not null;index"`
	Time   schedule.TimeOfDay `gorm:"column:time;type:varchar(5);not null"`
	Status Status             `gorm:"column:status;type:varchar(20);not null;default:'pending';index"`
}

func (Appointment) TableName() string {
	return "clinic.appointments"
}

func (a *Appointment) CanTransitionTo(next Status) bool {
	allowed := map[Status][]Status{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusAttended, StatusCancelled},
		StatusCancelled: {},
		StatusAttended:  {},
	}

	for _, s := range allowed[a.Status] {
		if s == next {
			return true
		}
	}
	return false
}

type CreateAppointmentCommand struct {
	PersonID uuid.UUID
	Date     time.Time
	Time     schedule.TimeOfDay
	// Status optionally overrides the initial state; empty means pending.
	Status Status
}

// UpdateAppointmentCommand carries a partial update: nil fields are untouched.
type UpdateAppointmentCommand struct {
	Date   *time.Time
	Time   *schedule.TimeOfDay
	Status *Status
}

package person

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/schedule"
)

type Person struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FullName  string    `gorm:"column:full_name;type:varchar(100);not null"`
	Email     string    `gorm:"column:email;type:varchar(100);uniqueIndex:idx_persons_email;not null"`
	DNI       string    `gorm:"column:dni;type:varchar(20);uniqueIndex:idx_persons_dni;not null"`
	Phone     string    `gorm:"column:phone;type:varchar(20);uniqueIndex:idx_persons_phone;not null"`
	BirthDate time.Time `gorm:"column:birth_date;type:date;not null"`

	// Flipped automatically when the cancellation threshold is crossed, or
	// explicitly by an administrative toggle.
	Enabled bool `gorm:"column:enabled;not null;default:true;index"`
}

func (Person) TableName() string {
	return "clinic.persons"
}

func (p *Person) AgeAt(today time.Time) int {
	return schedule.AgeAt(p.BirthDate, today)
}

type CreatePersonCommand struct {
	FullName  string
	Email     string
	DNI       string
	Phone     string
	BirthDate time.Time
}

func (c *CreatePersonCommand) Normalize() {
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.DNI = strings.TrimSpace(c.DNI)
	c.Phone = strings.TrimSpace(c.Phone)
}

// UpdatePersonCommand carries a partial update: nil fields are left untouched.
type UpdatePersonCommand struct {
	FullName  *string
	Email     *string
	DNI       *string
	Phone     *string
	BirthDate *time.Time
}

// Apply merges the non-nil fields onto p.
func (c *UpdatePersonCommand) Apply(p *Person) {
	if c.FullName != nil {
		p.FullName = strings.TrimSpace(*c.FullName)
	}
	if c.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*c.Email))
	}
	if c.DNI != nil {
		p.DNI = strings.TrimSpace(*c.DNI)
	}
	if c.Phone != nil {
		p.Phone = strings.TrimSpace(*c.Phone)
	}
	if c.BirthDate != nil {
		p.BirthDate = *c.BirthDate
	}
}

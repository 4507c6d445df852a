package domain

import (
	"time"

	"github.com/google/uuid"
)

type ActivityAction string

const (
	ActionRegistered ActivityAction = "registered"
	ActionBooked     ActivityAction = "booked"
	ActionConfirmed  ActivityAction = "confirmed"
	ActionAttended   ActivityAction = "attended"
	ActionCancelled  ActivityAction = "cancelled"
	ActionDisabled   ActivityAction = "disabled"
	ActionDeleted    ActivityAction = "deleted"
)

// ActivityLog records a lifecycle event on a person or appointment. Entries are
// written asynchronously and are informational only.
type ActivityLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	Action       ActivityAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string         `gorm:"column:resource_type;type:varchar(30);not null;index"`
	ResourceID   string         `gorm:"column:resource_id;type:varchar(50);index"`
	Detail       string         `gorm:"column:detail;type:text"`
}

func (ActivityLog) TableName() string {
	return "audit.activity"
}

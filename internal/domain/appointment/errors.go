package appointment

import "errors"

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrSlotUnavailable         = errors.New("time slot is already booked")
	ErrDateInPast              = errors.New("date has already elapsed")
	ErrOutsideOpeningHours     = errors.New("time is outside opening hours")
	ErrTimeOffGrid             = errors.New("time is not aligned to the slot interval")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("invalid appointment status transition")
	ErrAppointmentImmutable    = errors.New("cancelled or attended appointments cannot be modified")
	ErrTooManyCancellations    = errors.New("too many recent cancellations: person has been disabled")
	ErrInvalidDateRange        = errors.New("date_from must be on or before date_to")
)

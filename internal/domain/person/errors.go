package person

import "errors"

var (
	ErrPersonNotFound   = errors.New("person not found")
	ErrDuplicateEmail   = errors.New("a person with this email already exists")
	ErrDuplicateDNI     = errors.New("a person with this DNI already exists")
	ErrDuplicatePhone   = errors.New("a person with this phone already exists")
	ErrPersonDisabled   = errors.New("person is disabled")
	ErrAgeLimitExceeded = errors.New("birth date exceeds the maximum allowed age")
	ErrHasAppointments  = errors.New("person has appointments and cannot be deleted")
)

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/domain"
	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

type PersonService struct {
	repo     person.Repository
	apptRepo appointment.Repository
	activity *ActivityService
	maxAge   int
	log      *zap.Logger
	now      func() time.Time
}

func NewPersonService(
	repo person.Repository,
	apptRepo appointment.Repository,
	activity *ActivityService,
	maxAge int,
	log *zap.Logger,
) *PersonService {
	return &PersonService{
		repo:     repo,
		apptRepo: apptRepo,
		activity: activity,
		maxAge:   maxAge,
		log:      log,
		now:      time.Now,
	}
}

func (s *PersonService) Register(ctx context.Context, cmd *person.CreatePersonCommand) (*person.Person, error) {
	cmd.Normalize()
	if err := s.validateCreateCommand(cmd); err != nil {
		return nil, err
	}
	if schedule.AgeAt(cmd.BirthDate, s.now()) > s.maxAge {
		return nil, person.ErrAgeLimitExceeded
	}

	p := &person.Person{
		FullName:  cmd.FullName,
		Email:     cmd.Email,
		DNI:       cmd.DNI,
		Phone:     cmd.Phone,
		BirthDate: schedule.DateOnly(cmd.BirthDate),
		Enabled:   true,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.activity.Record(domain.ActionRegistered, "person", p.ID.String(), "")
	s.log.Info("person registered",
		zap.String("person_id", p.ID.String()),
		zap.String("dni", p.DNI),
	)

	return p, nil
}

func (s *PersonService) Update(ctx context.Context, id uuid.UUID, cmd *person.UpdatePersonCommand) (*person.Person, error) {
	if cmd.BirthDate != nil {
		if cmd.BirthDate.After(s.now()) {
			return nil, &ValidationError{Fields: []string{"birth_date cannot be in the future"}}
		}
		if schedule.AgeAt(*cmd.BirthDate, s.now()) > s.maxAge {
			return nil, person.ErrAgeLimitExceeded
		}
		normalized := schedule.DateOnly(*cmd.BirthDate)
		cmd.BirthDate = &normalized
	}
	return s.repo.Update(ctx, id, cmd)
}

func (s *PersonService) Get(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PersonService) GetByDNI(ctx context.Context, dni string) (*person.Person, error) {
	return s.repo.GetByDNI(ctx, strings.TrimSpace(dni))
}

func (s *PersonService) List(ctx context.Context) ([]*person.Person, error) {
	return s.repo.List(ctx)
}

func (s *PersonService) ListByEnabled(ctx context.Context, enabled bool) ([]*person.Person, error) {
	return s.repo.ListByEnabled(ctx, enabled)
}

func (s *PersonService) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	if err := s.repo.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}
	if !enabled {
		s.activity.Record(domain.ActionDisabled, "person", id.String(), "administrative toggle")
	}
	return nil
}

// ToggleEnabled flips the enabled flag and returns the updated record.
func (s *PersonService) ToggleEnabled(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.SetEnabled(ctx, id, !p.Enabled); err != nil {
		return nil, err
	}
	p.Enabled = !p.Enabled
	return p, nil
}

// RequireEnabled returns the person when bookable, ErrPersonDisabled otherwise.
func (s *PersonService) RequireEnabled(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, person.ErrPersonDisabled
	}
	return p, nil
}

// Delete removes a person outright. Refused while any appointment references them.
func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.apptRepo.CountByPerson(ctx, id)
	if err != nil {
		return fmt.Errorf("counting appointments: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: %d appointment(s) on record", person.ErrHasAppointments, count)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(domain.ActionDeleted, "person", id.String(), "")
	return nil
}

func (s *PersonService) validateCreateCommand(cmd *person.CreatePersonCommand) error {
	var errs []string

	if cmd.FullName == "" {
		errs = append(errs, "full_name is required")
	}
	if cmd.Email == "" {
		errs = append(errs, "email is required")
	}
	if cmd.DNI == "" {
		errs = append(errs, "dni is required")
	}
	if cmd.Phone == "" {
		errs = append(errs, "phone is required")
	}
	if cmd.BirthDate.IsZero() {
		errs = append(errs, "birth_date is required")
	}
	if cmd.BirthDate.After(s.now()) {
		errs = append(errs, "birth_date cannot be in the future")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

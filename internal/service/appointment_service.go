package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/config"
	"github.com/clinicbook/clinicbook/internal/domain"
	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

type AppointmentService struct {
	repo       appointment.Repository
	personRepo person.Repository
	activity   *ActivityService
	log        *zap.Logger

	// Grid and bounds are computed once at construction and read-only after.
	grid         schedule.Grid
	open         schedule.TimeOfDay
	close        schedule.TimeOfDay
	slotMinutes  int
	maxCancelled int
	windowDays   int

	now func() time.Time
}

func NewAppointmentService(
	repo appointment.Repository,
	personRepo person.Repository,
	activity *ActivityService,
	cfg config.BookingConfig,
	log *zap.Logger,
) (*AppointmentService, error) {
	open, err := schedule.ParseTimeOfDay(cfg.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("parsing opening time: %w", err)
	}
	close, err := schedule.ParseTimeOfDay(cfg.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("parsing closing time: %w", err)
	}
	grid, err := schedule.BuildGrid(open, close, cfg.SlotMinutes)
	if err != nil {
		return nil, fmt.Errorf("building slot grid: %w", err)
	}

	return &AppointmentService{
		repo:         repo,
		personRepo:   personRepo,
		activity:     activity,
		log:          log,
		grid:         grid,
		open:         open,
		close:        close,
		slotMinutes:  cfg.SlotMinutes,
		maxCancelled: cfg.MaxCancelled,
		windowDays:   cfg.WindowDays,
		now:          time.Now,
	}, nil
}

// Grid exposes the configured slot grid, ascending.
func (s *AppointmentService) Grid() schedule.Grid {
	return s.grid
}

// AvailableSlots returns the grid times on date not held by a non-cancelled
// appointment, in grid order. Past dates are rejected.
func (s *AppointmentService) AvailableSlots(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
	if schedule.IsPast(date, s.now()) {
		return nil, appointment.ErrDateInPast
	}

	occupied, err := s.repo.OccupiedTimes(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("loading occupied times: %w", err)
	}
	taken := make(map[schedule.TimeOfDay]struct{}, len(occupied))
	for _, t := range occupied {
		taken[t] = struct{}{}
	}

	free := make([]schedule.TimeOfDay, 0, len(s.grid))
	for _, t := range s.grid {
		if _, ok := taken[t]; !ok {
			free = append(free, t)
		}
	}
	return free, nil
}

// Book validates, in order: the person is enabled, the cancellation threshold
// has not been crossed, the date is not past, the time is inside opening hours
// and aligned to the interval, and the slot is free.
func (s *AppointmentService) Book(ctx context.Context, cmd *appointment.CreateAppointmentCommand) (*appointment.Appointment, error) {
	p, err := s.personRepo.GetByID(ctx, cmd.PersonID)
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, person.ErrPersonDisabled
	}

	newlyDisabled, err := s.evaluateCancellations(ctx, cmd.PersonID)
	if err != nil {
		return nil, err
	}
	if newlyDisabled {
		return nil, appointment.ErrTooManyCancellations
	}

	if schedule.IsPast(cmd.Date, s.now()) {
		return nil, appointment.ErrDateInPast
	}
	if cmd.Time < s.open || cmd.Time > s.close {
		return nil, appointment.ErrOutsideOpeningHours
	}
	if int(cmd.Time-s.open)%s.slotMinutes != 0 {
		return nil, appointment.ErrTimeOffGrid
	}

	occupied, err := s.repo.OccupiedTimes(ctx, cmd.Date)
	if err != nil {
		return nil, fmt.Errorf("loading occupied times: %w", err)
	}
	for _, t := range occupied {
		if t == cmd.Time {
			return nil, appointment.ErrSlotUnavailable
		}
	}

	status := cmd.Status
	if status == "" {
		status = appointment.StatusPending
	}
	if !status.IsValid() {
		return nil, appointment.ErrInvalidStatus
	}

	a := &appointment.Appointment{
		PersonID: cmd.PersonID,
		Date:     schedule.DateOnly(cmd.Date),
		Time:     cmd.Time,
		Status:   status,
	}

	// The partial unique slot index is the authority under concurrency: a
	// losing racer gets ErrSlotUnavailable here even after the pre-check.
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.activity.Record(domain.ActionBooked, "appointment", a.ID.String(),
		fmt.Sprintf("%s %s", a.Date.Format("2006-01-02"), a.Time))
	s.log.Info("appointment booked",
		zap.String("appointment_id", a.ID.String()),
		zap.String("person_id", cmd.PersonID.String()),
		zap.String("date", a.Date.Format("2006-01-02")),
		zap.String("time", a.Time.String()),
	)

	return a, nil
}

func (s *AppointmentService) Get(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AppointmentService) List(ctx context.Context) ([]*appointment.Appointment, error) {
	return s.repo.List(ctx)
}

// Update applies a partial edit. Terminal appointments are immutable. A changed
// date is re-checked for pastness. Slot availability is not re-checked here;
// the unique slot index still rejects an exact collision at commit.
func (s *AppointmentService) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, appointment.ErrAppointmentImmutable
	}
	if cmd.Date != nil && schedule.IsPast(*cmd.Date, s.now()) {
		return nil, appointment.ErrDateInPast
	}
	if cmd.Status != nil {
		if !cmd.Status.IsValid() {
			return nil, appointment.ErrInvalidStatus
		}
		if *cmd.Status != a.Status && !a.CanTransitionTo(*cmd.Status) {
			return nil, appointment.ErrInvalidStatusTransition
		}
	}
	return s.repo.Update(ctx, id, cmd)
}

// Cancel marks the appointment cancelled, freeing its slot. Distinct from Delete.
func (s *AppointmentService) Cancel(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status.IsTerminal() {
		return nil, appointment.ErrAppointmentImmutable
	}
	if schedule.IsPast(a.Date, s.now()) {
		return nil, appointment.ErrDateInPast
	}

	a.Status = appointment.StatusCancelled
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.activity.Record(domain.ActionCancelled, "appointment", a.ID.String(), "")
	return a, nil
}

func (s *AppointmentService) Confirm(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransitionTo(appointment.StatusConfirmed) {
		return nil, appointment.ErrInvalidStatusTransition
	}

	a.Status = appointment.StatusConfirmed
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.activity.Record(domain.ActionConfirmed, "appointment", a.ID.String(), "")
	return a, nil
}

func (s *AppointmentService) MarkAttended(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.CanTransitionTo(appointment.StatusAttended) {
		return nil, appointment.ErrInvalidStatusTransition
	}

	a.Status = appointment.StatusAttended
	if err := s.repo.UpdateStatus(ctx, a); err != nil {
		return nil, fmt.Errorf("updating appointment status: %w", err)
	}

	s.activity.Record(domain.ActionAttended, "appointment", a.ID.String(), "")
	return a, nil
}

// Delete removes the record outright, regardless of state.
func (s *AppointmentService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.activity.Record(domain.ActionDeleted, "appointment", id.String(), "")
	return nil
}

// evaluateCancellations applies the threshold rule lazily at booking time:
// when the person's cancelled appointments inside the look-back window reach
// the configured maximum and the person is still enabled, they are disabled
// and the pending booking must fail.
func (s *AppointmentService) evaluateCancellations(ctx context.Context, personID uuid.UUID) (bool, error) {
	since := schedule.DateOnly(s.now()).AddDate(0, 0, -s.windowDays)
	count, err := s.repo.CountCancelledSince(ctx, personID, since)
	if err != nil {
		return false, fmt.Errorf("counting cancellations: %w", err)
	}
	if count < int64(s.maxCancelled) {
		return false, nil
	}

	p, err := s.personRepo.GetByID(ctx, personID)
	if err != nil {
		return false, err
	}
	if !p.Enabled {
		return false, nil
	}

	if err := s.personRepo.SetEnabled(ctx, personID, false); err != nil {
		return false, fmt.Errorf("disabling person: %w", err)
	}
	s.activity.Record(domain.ActionDisabled, "person", personID.String(),
		fmt.Sprintf("%d cancellations in the last %d days", count, s.windowDays))
	s.log.Warn("person disabled by cancellation threshold",
		zap.String("person_id", personID.String()),
		zap.Int64("cancelled_count", count),
	)
	return true, nil
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/config"
	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

var testBooking = config.BookingConfig{
	OpenTime:     "08:00",
	CloseTime:    "17:00",
	SlotMinutes:  30,
	MaxAge:       120,
	MaxCancelled: 5,
	WindowDays:   180,
}

// Fixed clock for every appointment test.
var testToday = dateUTC(2025, time.June, 15)

func newApptService(t *testing.T, repo *fakeApptRepo, personRepo *fakePersonRepo) *AppointmentService {
	t.Helper()
	svc, err := NewAppointmentService(repo, personRepo, newTestActivity(), testBooking, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAppointmentService: %v", err)
	}
	svc.now = func() time.Time { return testToday }
	return svc
}

func enabledPersonRepo(p *person.Person) *fakePersonRepo {
	return &fakePersonRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*person.Person, error) {
			if id != p.ID {
				return nil, person.ErrPersonNotFound
			}
			return p, nil
		},
	}
}

func TestAvailableSlotsExcludesOccupied(t *testing.T) {
	repo := &fakeApptRepo{
		occupiedTimesFn: func(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
			return []schedule.TimeOfDay{mustParseTime("08:30"), mustParseTime("10:00")}, nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	slots, err := svc.AvailableSlots(context.Background(), testToday)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	// 08:00 through 17:00 every 30 minutes is 19 slots; two are taken.
	if got := len(slots); got != 17 {
		t.Fatalf("got %d slots, want 17", got)
	}
	if slots[0].String() != "08:00" {
		t.Errorf("first slot = %s, want 08:00", slots[0])
	}
	if slots[1].String() != "09:00" {
		t.Errorf("second slot = %s, want 09:00 (08:30 is taken)", slots[1])
	}
	for _, s := range slots {
		if s.String() == "08:30" || s.String() == "10:00" {
			t.Errorf("occupied slot %s listed as available", s)
		}
	}
}

func TestAvailableSlotsRejectsPastDate(t *testing.T) {
	svc := newApptService(t, &fakeApptRepo{}, &fakePersonRepo{})

	_, err := svc.AvailableSlots(context.Background(), testToday.AddDate(0, 0, -1))
	if !errors.Is(err, appointment.ErrDateInPast) {
		t.Fatalf("got %v, want ErrDateInPast", err)
	}
}

func TestBookDefaultsToPending(t *testing.T) {
	p := &person.Person{ID: uuid.New(), Enabled: true}
	var created *appointment.Appointment

	repo := &fakeApptRepo{
		countCancelledFn: func(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error) {
			return 0, nil
		},
		occupiedTimesFn: func(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, a *appointment.Appointment) error {
			a.ID = uuid.New()
			created = a
			return nil
		},
	}
	svc := newApptService(t, repo, enabledPersonRepo(p))

	a, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PersonID: p.ID,
		Date:     testToday.AddDate(0, 0, 1),
		Time:     mustParseTime("09:30"),
	})
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if a.Status != appointment.StatusPending {
		t.Errorf("status = %s, want pending", a.Status)
	}
	if created == nil {
		t.Fatal("repository Create was not called")
	}
}

func TestBookValidationOrder(t *testing.T) {
	p := &person.Person{ID: uuid.New(), Enabled: true}
	occupied := mustParseTime("10:00")

	repo := &fakeApptRepo{
		countCancelledFn: func(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error) {
			return 0, nil
		},
		occupiedTimesFn: func(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
			return []schedule.TimeOfDay{occupied}, nil
		},
	}
	svc := newApptService(t, repo, enabledPersonRepo(p))
	ctx := context.Background()
	tomorrow := testToday.AddDate(0, 0, 1)

	tests := []struct {
		name    string
		cmd     appointment.CreateAppointmentCommand
		wantErr error
	}{
		{
			name:    "past date",
			cmd:     appointment.CreateAppointmentCommand{PersonID: p.ID, Date: testToday.AddDate(0, 0, -1), Time: mustParseTime("09:00")},
			wantErr: appointment.ErrDateInPast,
		},
		{
			name:    "before opening",
			cmd:     appointment.CreateAppointmentCommand{PersonID: p.ID, Date: tomorrow, Time: mustParseTime("07:30")},
			wantErr: appointment.ErrOutsideOpeningHours,
		},
		{
			name:    "after closing",
			cmd:     appointment.CreateAppointmentCommand{PersonID: p.ID, Date: tomorrow, Time: mustParseTime("17:30")},
			wantErr: appointment.ErrOutsideOpeningHours,
		},
		{
			name:    "off the grid",
			cmd:     appointment.CreateAppointmentCommand{PersonID: p.ID, Date: tomorrow, Time: mustParseTime("09:15")},
			wantErr: appointment.ErrTimeOffGrid,
		},
		{
			name:    "slot taken",
			cmd:     appointment.CreateAppointmentCommand{PersonID: p.ID, Date: tomorrow, Time: occupied},
			wantErr: appointment.ErrSlotUnavailable,
		},
		{
			name:    "bogus status",
			cmd:     appointment.CreateAppointmentCommand{PersonID: p.ID, Date: tomorrow, Time: mustParseTime("09:00"), Status: "maybe"},
			wantErr: appointment.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Book(ctx, &tt.cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBookRejectsDisabledPerson(t *testing.T) {
	p := &person.Person{ID: uuid.New(), Enabled: false}
	svc := newApptService(t, &fakeApptRepo{}, enabledPersonRepo(p))

	_, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PersonID: p.ID,
		Date:     testToday.AddDate(0, 0, 1),
		Time:     mustParseTime("09:00"),
	})
	if !errors.Is(err, person.ErrPersonDisabled) {
		t.Fatalf("got %v, want ErrPersonDisabled", err)
	}
}

func TestBookThresholdDisablesPerson(t *testing.T) {
	p := &person.Person{ID: uuid.New(), Enabled: true}
	disabled := false

	personRepo := enabledPersonRepo(p)
	personRepo.setEnabledFn = func(ctx context.Context, id uuid.UUID, enabled bool) error {
		if id == p.ID && !enabled {
			disabled = true
		}
		return nil
	}

	var gotSince time.Time
	repo := &fakeApptRepo{
		countCancelledFn: func(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error) {
			gotSince = since
			return int64(testBooking.MaxCancelled), nil
		},
	}
	svc := newApptService(t, repo, personRepo)

	_, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PersonID: p.ID,
		Date:     testToday.AddDate(0, 0, 1),
		Time:     mustParseTime("09:00"),
	})
	if !errors.Is(err, appointment.ErrTooManyCancellations) {
		t.Fatalf("got %v, want ErrTooManyCancellations", err)
	}
	if !disabled {
		t.Error("person was not disabled")
	}

	wantSince := testToday.AddDate(0, 0, -testBooking.WindowDays)
	if !gotSince.Equal(wantSince) {
		t.Errorf("look-back since = %s, want %s",
			gotSince.Format("2006-01-02"), wantSince.Format("2006-01-02"))
	}
}

func TestBookBelowThresholdProceeds(t *testing.T) {
	p := &person.Person{ID: uuid.New(), Enabled: true}
	repo := &fakeApptRepo{
		countCancelledFn: func(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error) {
			return int64(testBooking.MaxCancelled - 1), nil
		},
		occupiedTimesFn: func(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
			return nil, nil
		},
		createFn: func(ctx context.Context, a *appointment.Appointment) error {
			a.ID = uuid.New()
			return nil
		},
	}
	svc := newApptService(t, repo, enabledPersonRepo(p))

	if _, err := svc.Book(context.Background(), &appointment.CreateAppointmentCommand{
		PersonID: p.ID,
		Date:     testToday.AddDate(0, 0, 1),
		Time:     mustParseTime("09:00"),
	}); err != nil {
		t.Fatalf("Book: %v", err)
	}
}

func TestCancelFreesSlotAndIsTerminal(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, 2),
		Time:   mustParseTime("09:00"),
		Status: appointment.StatusPending,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
		updateStatusFn: func(ctx context.Context, got *appointment.Appointment) error {
			return nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	out, err := svc.Cancel(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if out.Status != appointment.StatusCancelled {
		t.Fatalf("status = %s, want cancelled", out.Status)
	}

	// A second cancel hits a terminal state.
	if _, err := svc.Cancel(context.Background(), a.ID); !errors.Is(err, appointment.ErrAppointmentImmutable) {
		t.Fatalf("got %v, want ErrAppointmentImmutable", err)
	}

	// So does confirming after cancellation.
	if _, err := svc.Confirm(context.Background(), a.ID); !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Fatalf("got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestCancelRejectsPastAppointment(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, -1),
		Status: appointment.StatusConfirmed,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	if _, err := svc.Cancel(context.Background(), a.ID); !errors.Is(err, appointment.ErrDateInPast) {
		t.Fatalf("got %v, want ErrDateInPast", err)
	}
}

func TestConfirmThenAttend(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, 1),
		Status: appointment.StatusPending,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
		updateStatusFn: func(ctx context.Context, got *appointment.Appointment) error {
			return nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})
	ctx := context.Background()

	if _, err := svc.Confirm(ctx, a.ID); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if a.Status != appointment.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", a.Status)
	}

	if _, err := svc.MarkAttended(ctx, a.ID); err != nil {
		t.Fatalf("MarkAttended: %v", err)
	}
	if a.Status != appointment.StatusAttended {
		t.Fatalf("status = %s, want attended", a.Status)
	}

	// attended is terminal.
	if _, err := svc.Confirm(ctx, a.ID); !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Fatalf("got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestMarkAttendedRequiresConfirmed(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, 1),
		Status: appointment.StatusPending,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	if _, err := svc.MarkAttended(context.Background(), a.ID); !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Fatalf("got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestUpdateRejectsTerminalAppointment(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, 1),
		Status: appointment.StatusAttended,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	newTime := mustParseTime("11:00")
	_, err := svc.Update(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{Time: &newTime})
	if !errors.Is(err, appointment.ErrAppointmentImmutable) {
		t.Fatalf("got %v, want ErrAppointmentImmutable", err)
	}
}

func TestUpdateRejectsIllegalTransition(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, 1),
		Status: appointment.StatusPending,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	// pending cannot jump straight to attended.
	attended := appointment.StatusAttended
	_, err := svc.Update(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{Status: &attended})
	if !errors.Is(err, appointment.ErrInvalidStatusTransition) {
		t.Fatalf("got %v, want ErrInvalidStatusTransition", err)
	}
}

func TestUpdateRejectsPastDate(t *testing.T) {
	a := &appointment.Appointment{
		ID:     uuid.New(),
		Date:   testToday.AddDate(0, 0, 1),
		Status: appointment.StatusPending,
	}
	repo := &fakeApptRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
			return a, nil
		},
	}
	svc := newApptService(t, repo, &fakePersonRepo{})

	past := testToday.AddDate(0, 0, -3)
	_, err := svc.Update(context.Background(), a.ID, &appointment.UpdateAppointmentCommand{Date: &past})
	if !errors.Is(err, appointment.ErrDateInPast) {
		t.Fatalf("got %v, want ErrDateInPast", err)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
)

func newReportService(appts *fakeApptRepo, persons *fakePersonRepo) *ReportService {
	svc := NewReportService(appts, persons, 5, 5, zap.NewNop())
	svc.now = func() time.Time { return testToday }
	return svc
}

func apptFor(p *person.Person, day int, clock string, status appointment.Status) *appointment.Appointment {
	return &appointment.Appointment{
		ID:       uuid.New(),
		PersonID: p.ID,
		Person:   p,
		Date:     dateUTC(2025, time.June, day),
		Time:     mustParseTime(clock),
		Status:   status,
	}
}

func TestGroupByPersonPreservesFirstSeenOrder(t *testing.T) {
	alice := &person.Person{ID: uuid.New(), FullName: "Alice", DNI: "111"}
	bob := &person.Person{ID: uuid.New(), FullName: "Bob", DNI: "222"}

	appts := []*appointment.Appointment{
		apptFor(alice, 10, "08:00", appointment.StatusPending),
		apptFor(bob, 10, "08:30", appointment.StatusConfirmed),
		apptFor(alice, 11, "09:00", appointment.StatusConfirmed),
	}

	groups := GroupByPerson(appts, true)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].FullName != "Alice" || groups[1].FullName != "Bob" {
		t.Errorf("group order = %s, %s; want Alice, Bob", groups[0].FullName, groups[1].FullName)
	}
	if groups[0].Count != 2 || groups[1].Count != 1 {
		t.Errorf("counts = %d, %d; want 2, 1", groups[0].Count, groups[1].Count)
	}
	if groups[0].Appointments[1].Date != "2025-06-11" {
		t.Errorf("date = %s, want 2025-06-11", groups[0].Appointments[1].Date)
	}
}

func TestGroupByPersonOmitsDateWhenAsked(t *testing.T) {
	alice := &person.Person{ID: uuid.New(), FullName: "Alice", DNI: "111"}
	groups := GroupByPerson([]*appointment.Appointment{
		apptFor(alice, 10, "08:00", appointment.StatusPending),
	}, false)

	if groups[0].Appointments[0].Date != "" {
		t.Errorf("date = %q, want empty", groups[0].Appointments[0].Date)
	}
}

func TestByDateTotals(t *testing.T) {
	alice := &person.Person{ID: uuid.New(), FullName: "Alice", DNI: "111"}
	bob := &person.Person{ID: uuid.New(), FullName: "Bob", DNI: "222"}

	repo := &fakeApptRepo{
		listByDateFn: func(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
			return []*appointment.Appointment{
				apptFor(alice, 10, "08:00", appointment.StatusPending),
				apptFor(alice, 10, "09:00", appointment.StatusConfirmed),
				apptFor(bob, 10, "10:00", appointment.StatusConfirmed),
			}, nil
		},
	}
	svc := newReportService(repo, &fakePersonRepo{})

	rep, err := svc.ByDate(context.Background(), dateUTC(2025, time.June, 10))
	if err != nil {
		t.Fatalf("ByDate: %v", err)
	}
	if rep.Date != "2025-06-10" {
		t.Errorf("date = %s, want 2025-06-10", rep.Date)
	}
	if rep.TotalAppointments != 3 || rep.TotalPersons != 2 {
		t.Errorf("totals = %d appointments, %d persons; want 3, 2", rep.TotalAppointments, rep.TotalPersons)
	}
}

func TestCancelledThisMonthUsesMonthBounds(t *testing.T) {
	var gotFrom, gotTo time.Time
	repo := &fakeApptRepo{
		listByStatusInRangeFn: func(ctx context.Context, status appointment.Status, from, to time.Time) ([]*appointment.Appointment, error) {
			if status != appointment.StatusCancelled {
				t.Errorf("status = %s, want cancelled", status)
			}
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	svc := newReportService(repo, &fakePersonRepo{})

	rep, err := svc.CancelledThisMonth(context.Background())
	if err != nil {
		t.Fatalf("CancelledThisMonth: %v", err)
	}
	if rep.Month != "June" || rep.Year != 2025 {
		t.Errorf("period = %s %d, want June 2025", rep.Month, rep.Year)
	}
	if !gotFrom.Equal(dateUTC(2025, time.June, 1)) || !gotTo.Equal(dateUTC(2025, time.June, 30)) {
		t.Errorf("range = %s..%s, want 2025-06-01..2025-06-30",
			gotFrom.Format("2006-01-02"), gotTo.Format("2006-01-02"))
	}
}

func TestByPersonDNIWithEmptyHistory(t *testing.T) {
	p := &person.Person{ID: uuid.New(), FullName: "Alice", DNI: "111"}
	persons := &fakePersonRepo{
		getByDNIFn: func(ctx context.Context, dni string) (*person.Person, error) {
			if dni != "111" {
				return nil, person.ErrPersonNotFound
			}
			return p, nil
		},
	}
	appts := &fakeApptRepo{
		listByPersonFn: func(ctx context.Context, personID uuid.UUID) ([]*appointment.Appointment, error) {
			return nil, nil
		},
	}
	svc := newReportService(appts, persons)

	group, err := svc.ByPersonDNI(context.Background(), "111")
	if err != nil {
		t.Fatalf("ByPersonDNI: %v", err)
	}
	if group.FullName != "Alice" || group.Count != 0 {
		t.Errorf("got %q with %d appointments, want Alice with 0", group.FullName, group.Count)
	}

	if _, err := svc.ByPersonDNI(context.Background(), "999"); !errors.Is(err, person.ErrPersonNotFound) {
		t.Fatalf("got %v, want ErrPersonNotFound", err)
	}
}

func TestConfirmedBetweenPagination(t *testing.T) {
	p := &person.Person{ID: uuid.New(), FullName: "Alice", DNI: "111"}
	all := make([]*appointment.Appointment, 0, 20)
	for i := 0; i < 20; i++ {
		a := apptFor(p, 1+i, "08:00", appointment.StatusConfirmed)
		all = append(all, a)
	}

	repo := &fakeApptRepo{
		listByStatusInRangeFn: func(ctx context.Context, status appointment.Status, from, to time.Time) ([]*appointment.Appointment, error) {
			return all, nil
		},
	}
	svc := newReportService(repo, &fakePersonRepo{})
	ctx := context.Background()
	from, to := dateUTC(2025, time.June, 1), dateUTC(2025, time.June, 30)

	rep, err := svc.ConfirmedBetween(ctx, from, to, 2, 5)
	if err != nil {
		t.Fatalf("ConfirmedBetween: %v", err)
	}
	if rep.Total != 20 {
		t.Errorf("total = %d, want 20", rep.Total)
	}
	if len(rep.Rows) != 5 {
		t.Fatalf("page has %d rows, want 5", len(rep.Rows))
	}
	// Page 2 of size 5 starts at the sixth appointment, dated June 6th.
	if rep.Rows[0].Date != "2025-06-06" {
		t.Errorf("first row date = %s, want 2025-06-06", rep.Rows[0].Date)
	}

	// A page past the end is empty, not an error.
	rep, err = svc.ConfirmedBetween(ctx, from, to, 9, 5)
	if err != nil {
		t.Fatalf("ConfirmedBetween: %v", err)
	}
	if len(rep.Rows) != 0 || rep.Total != 20 {
		t.Errorf("got %d rows total %d, want 0 rows total 20", len(rep.Rows), rep.Total)
	}

	// Defaults kick in for non-positive page and size.
	rep, err = svc.ConfirmedBetween(ctx, from, to, 0, 0)
	if err != nil {
		t.Fatalf("ConfirmedBetween: %v", err)
	}
	if rep.Page != 1 || rep.PageSize != 5 {
		t.Errorf("defaults = page %d size %d, want 1 and 5", rep.Page, rep.PageSize)
	}
}

func TestConfirmedBetweenRejectsInvertedRange(t *testing.T) {
	svc := newReportService(&fakeApptRepo{}, &fakePersonRepo{})

	_, err := svc.ConfirmedBetween(context.Background(),
		dateUTC(2025, time.June, 30), dateUTC(2025, time.June, 1), 1, 5)
	if !errors.Is(err, appointment.ErrInvalidDateRange) {
		t.Fatalf("got %v, want ErrInvalidDateRange", err)
	}
}

func TestFrequentCancellersThreshold(t *testing.T) {
	heavy := &person.Person{ID: uuid.New(), FullName: "Heavy", DNI: "111"}
	light := &person.Person{ID: uuid.New(), FullName: "Light", DNI: "222"}

	var cancelled []*appointment.Appointment
	for i := 0; i < 3; i++ {
		cancelled = append(cancelled, apptFor(heavy, 1+i, "08:00", appointment.StatusCancelled))
	}
	cancelled = append(cancelled, apptFor(light, 5, "09:00", appointment.StatusCancelled))

	repo := &fakeApptRepo{
		listByStatusFn: func(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
			return cancelled, nil
		},
	}
	svc := newReportService(repo, &fakePersonRepo{})

	groups, err := svc.FrequentCancellers(context.Background(), 3)
	if err != nil {
		t.Fatalf("FrequentCancellers: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].FullName != "Heavy" || groups[0].Count != 3 {
		t.Errorf("got %q with %d, want Heavy with 3", groups[0].FullName, groups[0].Count)
	}
}

func TestPaginateGeneric(t *testing.T) {
	items := make([]int, 12)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		page, size  int
		wantLen     int
		wantFirst   int
		description string
	}{
		{page: 1, size: 5, wantLen: 5, wantFirst: 0, description: "first page"},
		{page: 3, size: 5, wantLen: 2, wantFirst: 10, description: "short last page"},
		{page: 4, size: 5, wantLen: 0, description: "past the end"},
	}

	for _, tt := range tests {
		got, total := paginate(items, tt.page, tt.size)
		if total != 12 {
			t.Errorf("%s: total = %d, want 12", tt.description, total)
		}
		if len(got) != tt.wantLen {
			t.Errorf("%s: len = %d, want %d", tt.description, len(got), tt.wantLen)
			continue
		}
		if tt.wantLen > 0 && got[0] != tt.wantFirst {
			t.Errorf("%s: first = %d, want %d", tt.description, got[0], tt.wantFirst)
		}
	}
}

func TestPeriodRowsCarryOwnerIdentity(t *testing.T) {
	p := &person.Person{ID: uuid.New(), FullName: "Alice", DNI: "111"}
	repo := &fakeApptRepo{
		listByStatusInRangeFn: func(ctx context.Context, status appointment.Status, from, to time.Time) ([]*appointment.Appointment, error) {
			return []*appointment.Appointment{apptFor(p, 10, "08:30", appointment.StatusConfirmed)}, nil
		},
	}
	svc := newReportService(repo, &fakePersonRepo{})

	rows, err := svc.ConfirmedBetweenAll(context.Background(),
		dateUTC(2025, time.June, 1), dateUTC(2025, time.June, 30))
	if err != nil {
		t.Fatalf("ConfirmedBetweenAll: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	want := fmt.Sprintf("%s/%s", "Alice", "111")
	if got := fmt.Sprintf("%s/%s", rows[0].FullName, rows[0].DNI); got != want {
		t.Errorf("owner = %s, want %s", got, want)
	}
	if rows[0].Time != "08:30" {
		t.Errorf("time = %s, want 08:30", rows[0].Time)
	}
}

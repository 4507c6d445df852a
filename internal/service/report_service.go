package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

// AppointmentSummary is one appointment row inside a grouped report. Date is
// omitted for single-date reports.
type AppointmentSummary struct {
	ID     uuid.UUID `json:"id"`
	Date   string    `json:"date,omitempty"`
	Time   string    `json:"time"`
	Status string    `json:"status"`
}

// PersonAppointments is one person's block in a grouped report.
type PersonAppointments struct {
	PersonID     uuid.UUID            `json:"person_id"`
	FullName     string               `json:"full_name"`
	DNI          string               `json:"dni"`
	Count        int                  `json:"appointment_count"`
	Appointments []AppointmentSummary `json:"appointments"`
}

type DateReport struct {
	Date              string               `json:"date"`
	TotalAppointments int                  `json:"total_appointments"`
	TotalPersons      int                  `json:"total_persons"`
	Persons           []PersonAppointments `json:"persons"`
}

type MonthlyCancellationsReport struct {
	Month             string               `json:"month"`
	Year              int                  `json:"year"`
	TotalAppointments int                  `json:"total_appointments"`
	TotalPersons      int                  `json:"total_persons"`
	Persons           []PersonAppointments `json:"persons"`
}

// PeriodRow is a flat appointment row carrying the owner's identity, used by
// the period report and its CSV/PDF exports.
type PeriodRow struct {
	ID       uuid.UUID `json:"id"`
	PersonID uuid.UUID `json:"person_id"`
	FullName string    `json:"full_name"`
	DNI      string    `json:"dni"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Status   string    `json:"status"`
}

type PeriodReport struct {
	From     string      `json:"from"`
	To       string      `json:"to"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int         `json:"total"`
	Rows     []PeriodRow `json:"appointments"`
}

type ReportService struct {
	appts           appointment.Repository
	persons         person.Repository
	defaultPageSize int
	defaultMinCxl   int
	log             *zap.Logger
	now             func() time.Time
}

func NewReportService(
	appts appointment.Repository,
	persons person.Repository,
	defaultPageSize, defaultMinCancelled int,
	log *zap.Logger,
) *ReportService {
	return &ReportService{
		appts:           appts,
		persons:         persons,
		defaultPageSize: defaultPageSize,
		defaultMinCxl:   defaultMinCancelled,
		log:             log,
		now:             time.Now,
	}
}

func (s *ReportService) DefaultPageSize() int     { return s.defaultPageSize }
func (s *ReportService) DefaultMinCancelled() int { return s.defaultMinCxl }

// GroupByPerson groups appointments by owner, preserving first-seen order.
// The Person association must be loaded on every appointment.
func GroupByPerson(appts []*appointment.Appointment, includeDate bool) []PersonAppointments {
	index := make(map[uuid.UUID]int)
	var groups []PersonAppointments

	for _, a := range appts {
		i, ok := index[a.PersonID]
		if !ok {
			g := PersonAppointments{PersonID: a.PersonID}
			if a.Person != nil {
				g.FullName = a.Person.FullName
				g.DNI = a.Person.DNI
			}
			groups = append(groups, g)
			i = len(groups) - 1
			index[a.PersonID] = i
		}

		summary := AppointmentSummary{
			ID:     a.ID,
			Time:   a.Time.String(),
			Status: string(a.Status),
		}
		if includeDate {
			summary.Date = a.Date.Format("2006-01-02")
		}
		groups[i].Appointments = append(groups[i].Appointments, summary)
	}

	for i := range groups {
		groups[i].Count = len(groups[i].Appointments)
	}
	return groups
}

// ByDate reports every appointment on a day, grouped by person.
func (s *ReportService) ByDate(ctx context.Context, date time.Time) (*DateReport, error) {
	appts, err := s.appts.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("loading appointments: %w", err)
	}
	groups := GroupByPerson(appts, false)
	return &DateReport{
		Date:              schedule.DateOnly(date).Format("2006-01-02"),
		TotalAppointments: len(appts),
		TotalPersons:      len(groups),
		Persons:           groups,
	}, nil
}

// CancelledThisMonth reports the current month's cancellations grouped by person.
func (s *ReportService) CancelledThisMonth(ctx context.Context) (*MonthlyCancellationsReport, error) {
	today := s.now()
	first, last := schedule.MonthBounds(today)

	appts, err := s.appts.ListByStatusInRange(ctx, appointment.StatusCancelled, first, last)
	if err != nil {
		return nil, fmt.Errorf("loading cancelled appointments: %w", err)
	}
	groups := GroupByPerson(appts, true)
	return &MonthlyCancellationsReport{
		Month:             today.Month().String(),
		Year:              today.Year(),
		TotalAppointments: len(appts),
		TotalPersons:      len(groups),
		Persons:           groups,
	}, nil
}

// ByPersonDNI reports a person's full appointment history, dates included.
func (s *ReportService) ByPersonDNI(ctx context.Context, dni string) (*PersonAppointments, error) {
	p, err := s.persons.GetByDNI(ctx, dni)
	if err != nil {
		return nil, err
	}
	appts, err := s.appts.ListByPerson(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("loading appointments: %w", err)
	}

	group := PersonAppointments{
		PersonID:     p.ID,
		FullName:     p.FullName,
		DNI:          p.DNI,
		Count:        len(appts),
		Appointments: make([]AppointmentSummary, 0, len(appts)),
	}
	for _, a := range appts {
		group.Appointments = append(group.Appointments, AppointmentSummary{
			ID:     a.ID,
			Date:   a.Date.Format("2006-01-02"),
			Time:   a.Time.String(),
			Status: string(a.Status),
		})
	}
	return &group, nil
}

// ConfirmedBetween returns one page of confirmed appointments in [from, to].
func (s *ReportService) ConfirmedBetween(ctx context.Context, from, to time.Time, page, pageSize int) (*PeriodReport, error) {
	rows, err := s.confirmedRows(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if page <= 0 {
		page = 1
	}

	pageRows, total := paginate(rows, page, pageSize)
	return &PeriodReport{
		From:     schedule.DateOnly(from).Format("2006-01-02"),
		To:       schedule.DateOnly(to).Format("2006-01-02"),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Rows:     pageRows,
	}, nil
}

// ConfirmedBetweenAll returns the full confirmed set for exports.
func (s *ReportService) ConfirmedBetweenAll(ctx context.Context, from, to time.Time) ([]PeriodRow, error) {
	return s.confirmedRows(ctx, from, to)
}

func (s *ReportService) confirmedRows(ctx context.Context, from, to time.Time) ([]PeriodRow, error) {
	if schedule.DateOnly(from).After(schedule.DateOnly(to)) {
		return nil, appointment.ErrInvalidDateRange
	}
	appts, err := s.appts.ListByStatusInRange(ctx, appointment.StatusConfirmed, from, to)
	if err != nil {
		return nil, fmt.Errorf("loading confirmed appointments: %w", err)
	}
	return toPeriodRows(appts), nil
}

// FrequentCancellers reports, grouped by person, the cancelled appointments of
// every person whose all-time cancellation count reaches minCount. Unlike the
// booking-time threshold rule there is no look-back window here.
func (s *ReportService) FrequentCancellers(ctx context.Context, minCount int) ([]PersonAppointments, error) {
	if minCount <= 0 {
		minCount = s.defaultMinCxl
	}
	cancelled, err := s.appts.ListByStatus(ctx, appointment.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("loading cancelled appointments: %w", err)
	}

	groups := GroupByPerson(cancelled, true)
	qualifying := make([]PersonAppointments, 0, len(groups))
	for _, g := range groups {
		if g.Count >= minCount {
			qualifying = append(qualifying, g)
		}
	}
	return qualifying, nil
}

func toPeriodRows(appts []*appointment.Appointment) []PeriodRow {
	rows := make([]PeriodRow, 0, len(appts))
	for _, a := range appts {
		row := PeriodRow{
			ID:       a.ID,
			PersonID: a.PersonID,
			Date:     a.Date.Format("2006-01-02"),
			Time:     a.Time.String(),
			Status:   string(a.Status),
		}
		if a.Person != nil {
			row.FullName = a.Person.FullName
			row.DNI = a.Person.DNI
		}
		rows = append(rows, row)
	}
	return rows
}

// paginate slices items for a 1-indexed page, returning the page and the total
// count before paging.
func paginate[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	offset := (page - 1) * pageSize
	if offset >= total {
		return []T{}, total
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return items[offset:end], total
}

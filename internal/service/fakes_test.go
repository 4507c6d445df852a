package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/domain"
	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

// Repository fakes with overridable function fields. A nil field means the
// test does not expect that call.

type fakePersonRepo struct {
	createFn        func(ctx context.Context, p *person.Person) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*person.Person, error)
	getByDNIFn      func(ctx context.Context, dni string) (*person.Person, error)
	updateFn        func(ctx context.Context, id uuid.UUID, cmd *person.UpdatePersonCommand) (*person.Person, error)
	setEnabledFn    func(ctx context.Context, id uuid.UUID, enabled bool) error
	listFn          func(ctx context.Context) ([]*person.Person, error)
	listByEnabledFn func(ctx context.Context, enabled bool) ([]*person.Person, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
}

func (f *fakePersonRepo) Create(ctx context.Context, p *person.Person) error {
	return f.createFn(ctx, p)
}

func (f *fakePersonRepo) GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakePersonRepo) GetByDNI(ctx context.Context, dni string) (*person.Person, error) {
	return f.getByDNIFn(ctx, dni)
}

func (f *fakePersonRepo) Update(ctx context.Context, id uuid.UUID, cmd *person.UpdatePersonCommand) (*person.Person, error) {
	return f.updateFn(ctx, id, cmd)
}

func (f *fakePersonRepo) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return f.setEnabledFn(ctx, id, enabled)
}

func (f *fakePersonRepo) List(ctx context.Context) ([]*person.Person, error) {
	return f.listFn(ctx)
}

func (f *fakePersonRepo) ListByEnabled(ctx context.Context, enabled bool) ([]*person.Person, error) {
	return f.listByEnabledFn(ctx, enabled)
}

func (f *fakePersonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

type fakeApptRepo struct {
	createFn              func(ctx context.Context, a *appointment.Appointment) error
	getByIDFn             func(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	updateFn              func(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error)
	updateStatusFn        func(ctx context.Context, a *appointment.Appointment) error
	deleteFn              func(ctx context.Context, id uuid.UUID) error
	listFn                func(ctx context.Context) ([]*appointment.Appointment, error)
	listByDateFn          func(ctx context.Context, date time.Time) ([]*appointment.Appointment, error)
	listByPersonFn        func(ctx context.Context, personID uuid.UUID) ([]*appointment.Appointment, error)
	listByStatusFn        func(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error)
	listByStatusInRangeFn func(ctx context.Context, status appointment.Status, from, to time.Time) ([]*appointment.Appointment, error)
	occupiedTimesFn       func(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error)
	countCancelledFn      func(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error)
	countByPersonFn       func(ctx context.Context, personID uuid.UUID) (int64, error)
}

func (f *fakeApptRepo) Create(ctx context.Context, a *appointment.Appointment) error {
	return f.createFn(ctx, a)
}

func (f *fakeApptRepo) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeApptRepo) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	return f.updateFn(ctx, id, cmd)
}

func (f *fakeApptRepo) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	return f.updateStatusFn(ctx, a)
}

func (f *fakeApptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return f.deleteFn(ctx, id)
}

func (f *fakeApptRepo) List(ctx context.Context) ([]*appointment.Appointment, error) {
	return f.listFn(ctx)
}

func (f *fakeApptRepo) ListByDate(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	return f.listByDateFn(ctx, date)
}

func (f *fakeApptRepo) ListByPerson(ctx context.Context, personID uuid.UUID) ([]*appointment.Appointment, error) {
	return f.listByPersonFn(ctx, personID)
}

func (f *fakeApptRepo) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	return f.listByStatusFn(ctx, status)
}

func (f *fakeApptRepo) ListByStatusInRange(ctx context.Context, status appointment.Status, from, to time.Time) ([]*appointment.Appointment, error) {
	return f.listByStatusInRangeFn(ctx, status, from, to)
}

func (f *fakeApptRepo) OccupiedTimes(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
	return f.occupiedTimesFn(ctx, date)
}

func (f *fakeApptRepo) CountCancelledSince(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error) {
	return f.countCancelledFn(ctx, personID, since)
}

func (f *fakeApptRepo) CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	return f.countByPersonFn(ctx, personID)
}

type fakeActivityRepo struct{}

func (fakeActivityRepo) Create(ctx context.Context, entry *domain.ActivityLog) error {
	return nil
}

func newTestActivity() *ActivityService {
	return NewActivityService(fakeActivityRepo{}, zap.NewNop())
}

func mustParseTime(s string) schedule.TimeOfDay {
	t, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func dateUTC(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

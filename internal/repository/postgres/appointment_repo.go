package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/schedule"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	a.Date = schedule.DateOnly(a.Date)
	if err := r.db.WithContext(ctx).Omit("Person").Create(a).Error; err != nil {
		return translateAppointmentError(err)
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).Preload("Person").First(&a, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appointment.ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) Update(ctx context.Context, id uuid.UUID, cmd *appointment.UpdateAppointmentCommand) (*appointment.Appointment, error) {
	var a appointment.Appointment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return appointment.ErrAppointmentNotFound
			}
			return err
		}
		if cmd.Date != nil {
			a.Date = schedule.DateOnly(*cmd.Date)
		}
		if cmd.Time != nil {
			a.Time = *cmd.Time
		}
		if cmd.Status != nil {
			a.Status = *cmd.Status
		}
		if err := tx.Omit("Person").Save(&a).Error; err != nil {
			return translateAppointmentError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, a *appointment.Appointment) error {
	res := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("id = ?", a.ID).
		Update("status", a.Status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&appointment.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return appointment.ErrAppointmentNotFound
	}
	return nil
}

func (r *AppointmentRepository) List(ctx context.Context) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Preload("Person").
		Order("date, time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *AppointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("date = ?", schedule.DateOnly(date)).
		Order("time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *AppointmentRepository) ListByPerson(ctx context.Context, personID uuid.UUID) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("person_id = ?", personID).
		Order("date, time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *AppointmentRepository) ListByStatus(ctx context.Context, status appointment.Status) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("status = ?", status).
		Order("date, time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *AppointmentRepository) ListByStatusInRange(ctx context.Context, status appointment.Status, from, to time.Time) ([]*appointment.Appointment, error) {
	var appts []*appointment.Appointment
	err := r.db.WithContext(ctx).
		Preload("Person").
		Where("status = ? AND date >= ? AND date <= ?", status, schedule.DateOnly(from), schedule.DateOnly(to)).
		Order("date, time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *AppointmentRepository) OccupiedTimes(ctx context.Context, date time.Time) ([]schedule.TimeOfDay, error) {
	var times []schedule.TimeOfDay
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("date = ? AND status <> ?", schedule.DateOnly(date), appointment.StatusCancelled).
		Order("time").
		Pluck("time", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *AppointmentRepository) CountCancelledSince(ctx context.Context, personID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("person_id = ? AND status = ? AND date >= ?",
			personID, appointment.StatusCancelled, schedule.DateOnly(since)).
		Count(&count).Error
	return count, err
}

func (r *AppointmentRepository) CountByPerson(ctx context.Context, personID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&appointment.Appointment{}).
		Where("person_id = ?", personID).
		Count(&count).Error
	return count, err
}

func translateAppointmentError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if strings.Contains(pgErr.ConstraintName, "slot") {
			return appointment.ErrSlotUnavailable
		}
	}
	return err
}

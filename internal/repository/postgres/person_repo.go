// Package postgres implements the domain repository interfaces on gorm.
// Unique-constraint violations are detected structurally from the pg error
// code and constraint name, never by matching message text.
package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/clinicbook/clinicbook/internal/domain/person"
)

const uniqueViolation = "23505"

type PersonRepository struct {
	db *gorm.DB
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

func (r *PersonRepository) Create(ctx context.Context, p *person.Person) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return translatePersonError(err)
	}
	return nil
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	var p person.Person
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, person.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PersonRepository) GetByDNI(ctx context.Context, dni string) (*person.Person, error) {
	var p person.Person
	if err := r.db.WithContext(ctx).First(&p, "dni = ?", dni).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, person.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PersonRepository) Update(ctx context.Context, id uuid.UUID, cmd *person.UpdatePersonCommand) (*person.Person, error) {
	var p person.Person
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return person.ErrPersonNotFound
			}
			return err
		}
		cmd.Apply(&p)
		if err := tx.Save(&p).Error; err != nil {
			return translatePersonError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PersonRepository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	res := r.db.WithContext(ctx).
		Model(&person.Person{}).
		Where("id = ?", id).
		Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return person.ErrPersonNotFound
	}
	return nil
}

func (r *PersonRepository) List(ctx context.Context) ([]*person.Person, error) {
	var persons []*person.Person
	if err := r.db.WithContext(ctx).Order("created_at").Find(&persons).Error; err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *PersonRepository) ListByEnabled(ctx context.Context, enabled bool) ([]*person.Person, error) {
	var persons []*person.Person
	err := r.db.WithContext(ctx).
		Where("enabled = ?", enabled).
		Order("created_at").
		Find(&persons).Error
	if err != nil {
		return nil, err
	}
	return persons, nil
}

func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&person.Person{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return person.ErrPersonNotFound
	}
	return nil
}

func translatePersonError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch {
		case strings.Contains(pgErr.ConstraintName, "email"):
			return person.ErrDuplicateEmail
		case strings.Contains(pgErr.ConstraintName, "dni"):
			return person.ErrDuplicateDNI
		case strings.Contains(pgErr.ConstraintName, "phone"):
			return person.ErrDuplicatePhone
		}
	}
	return err
}

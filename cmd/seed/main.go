// Command seed fills the database with plausible demo data: a batch of
// persons and a spread of appointments across past and future dates, so the
// reports have something to show on a fresh install.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/clinicbook/clinicbook/internal/config"
	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/repository/postgres"
	"github.com/clinicbook/clinicbook/internal/schedule"
	"github.com/clinicbook/clinicbook/pkg/database"
	"github.com/clinicbook/clinicbook/pkg/logger"
)

func main() {
	persons := flag.Int("persons", 25, "number of persons to create")
	appts := flag.Int("appointments", 120, "number of appointments to create")
	days := flag.Int("days", 30, "date spread in days around today")
	seed := flag.Int64("seed", 0, "random seed (0 means time-based)")
	flag.Parse()

	if err := run(*persons, *appts, *days, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "seed failed:", err)
		os.Exit(1)
	}
}

func run(personCount, apptCount, daySpread int, seed int64) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(uint64(seed))
	rng := rand.New(rand.NewSource(seed))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	open, err := schedule.ParseTimeOfDay(cfg.Booking.OpenTime)
	if err != nil {
		return err
	}
	close, err := schedule.ParseTimeOfDay(cfg.Booking.CloseTime)
	if err != nil {
		return err
	}
	grid, err := schedule.BuildGrid(open, close, cfg.Booking.SlotMinutes)
	if err != nil {
		return err
	}

	ctx := context.Background()
	personRepo := postgres.NewPersonRepository(db)
	apptRepo := postgres.NewAppointmentRepository(db)

	created := make([]*person.Person, 0, personCount)
	for i := 0; i < personCount; i++ {
		p := &person.Person{
			FullName:  faker.Name(),
			Email:     fmt.Sprintf("%d.%s", i, faker.Email()),
			DNI:       fmt.Sprintf("%08d", faker.Number(10_000_000, 99_999_999)),
			Phone:     faker.Phone(),
			BirthDate: schedule.DateOnly(faker.DateRange(
				time.Now().AddDate(-90, 0, 0),
				time.Now().AddDate(-18, 0, 0),
			)),
			Enabled: true,
		}
		if err := personRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("creating person %d: %w", i, err)
		}
		created = append(created, p)
	}
	log.Info("persons created", zap.Int("count", len(created)))

	// Weighted toward the states the reports care about.
	statuses := []appointment.Status{
		appointment.StatusPending, appointment.StatusPending,
		appointment.StatusConfirmed, appointment.StatusConfirmed, appointment.StatusConfirmed,
		appointment.StatusCancelled, appointment.StatusCancelled,
		appointment.StatusAttended,
	}

	today := schedule.DateOnly(time.Now())
	booked := 0
	for i := 0; i < apptCount; i++ {
		p := created[rng.Intn(len(created))]
		date := today.AddDate(0, 0, rng.Intn(2*daySpread+1)-daySpread)
		status := statuses[rng.Intn(len(statuses))]

		// Past appointments must be settled; future ones stay open.
		if date.Before(today) && !status.IsTerminal() {
			status = appointment.StatusAttended
		}

		a := &appointment.Appointment{
			PersonID: p.ID,
			Date:     date,
			Time:     grid[rng.Intn(len(grid))],
			Status:   status,
		}
		if err := apptRepo.Create(ctx, a); err != nil {
			// Slot collisions are expected with random placement; skip them.
			continue
		}
		booked++
	}
	log.Info("appointments created",
		zap.Int("requested", apptCount),
		zap.Int("created", booked),
	)

	return nil
}

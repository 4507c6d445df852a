// Package report renders the aggregator's output structures as CSV and PDF.
// It consumes plain data only; nothing here touches storage.
package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
	"github.com/clinicbook/clinicbook/internal/service"
)

// WriteGroupedCSV flattens grouped person blocks into one appointment row each.
func WriteGroupedCSV(w io.Writer, groups []service.PersonAppointments, includeDate bool) error {
	cw := csv.NewWriter(w)

	header := []string{"ID", "Person ID", "Name", "DNI"}
	if includeDate {
		header = append(header, "Date")
	}
	header = append(header, "Time", "Status")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, g := range groups {
		for _, a := range g.Appointments {
			row := []string{a.ID.String(), g.PersonID.String(), g.FullName, g.DNI}
			if includeDate {
				row = append(row, a.Date)
			}
			row = append(row, a.Time, a.Status)
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCancellersCSV adds each person's cancellation count to every row.
func WriteCancellersCSV(w io.Writer, groups []service.PersonAppointments) error {
	cw := csv.NewWriter(w)

	header := []string{"ID", "Person ID", "Name", "DNI", "Date", "Time", "Status", "Cancelled Count"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, g := range groups {
		for _, a := range g.Appointments {
			row := []string{
				a.ID.String(), g.PersonID.String(), g.FullName, g.DNI,
				a.Date, a.Time, a.Status, strconv.Itoa(g.Count),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func WritePeriodCSV(w io.Writer, rows []service.PeriodRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"ID", "Person ID", "Name", "DNI", "Date", "Time", "Status"}); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{r.ID.String(), r.PersonID.String(), r.FullName, r.DNI, r.Date, r.Time, r.Status}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func WritePersonsCSV(w io.Writer, persons []*person.Person, today time.Time) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"ID", "Name", "DNI", "Email", "Phone", "Age", "Status"}); err != nil {
		return err
	}
	for _, p := range persons {
		status := "enabled"
		if !p.Enabled {
			status = "disabled"
		}
		row := []string{
			p.ID.String(), p.FullName, p.DNI, p.Email, p.Phone,
			strconv.Itoa(schedule.AgeAt(p.BirthDate, today)), status,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

package report

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/schedule"
	"github.com/clinicbook/clinicbook/internal/service"
)

// PDFRenderer lays out reports as A4 documents with a shared title banner and
// status-colored rows. Styling comes from configuration so deployments can
// rebrand without a rebuild.
type PDFRenderer struct {
	title  string
	colors map[string][3]int
	header [3]int
}

type PDFStyle struct {
	Title          string
	ColorPrimary   string
	ColorPending   string
	ColorConfirmed string
	ColorCancelled string
	ColorAttended  string
	ColorEnabled   string
	ColorDisabled  string
}

func NewPDFRenderer(style PDFStyle) *PDFRenderer {
	return &PDFRenderer{
		title:  style.Title,
		header: parseHexColor(style.ColorPrimary),
		colors: map[string][3]int{
			"pending":   parseHexColor(style.ColorPending),
			"confirmed": parseHexColor(style.ColorConfirmed),
			"cancelled": parseHexColor(style.ColorCancelled),
			"attended":  parseHexColor(style.ColorAttended),
			"enabled":   parseHexColor(style.ColorEnabled),
			"disabled":  parseHexColor(style.ColorDisabled),
		},
	}
}

// parseHexColor reads "#RRGGBB"; malformed input falls back to dark gray.
func parseHexColor(s string) [3]int {
	if len(s) != 7 || s[0] != '#' {
		return [3]int{64, 64, 64}
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return [3]int{64, 64, 64}
	}
	return [3]int{int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)}
}

func (r *PDFRenderer) statusColor(status string) [3]int {
	if c, ok := r.colors[status]; ok {
		return c
	}
	return [3]int{64, 64, 64}
}

func (r *PDFRenderer) newDoc(subtitle string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(r.header[0], r.header[1], r.header[2])
	pdf.CellFormat(0, 10, r.title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 7, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	return pdf
}

func (r *PDFRenderer) tableHeader(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(r.header[0], r.header[1], r.header[2])
	pdf.SetTextColor(255, 255, 255)
	for i, col := range cols {
		pdf.CellFormat(widths[i], 7, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func (r *PDFRenderer) personBanner(pdf *fpdf.Fpdf, g service.PersonAppointments) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(r.header[0], r.header[1], r.header[2])
	label := fmt.Sprintf("%s (DNI %s), %d appointment(s)", g.FullName, g.DNI, g.Count)
	pdf.CellFormat(0, 7, label, "", 1, "L", false, 0, "")
}

func output(pdf *fpdf.Fpdf) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return &buf, nil
}

// Grouped renders person blocks, each a banner followed by its appointment
// rows colored by status.
func (r *PDFRenderer) Grouped(subtitle string, groups []service.PersonAppointments, includeDate bool) (*bytes.Buffer, error) {
	pdf := r.newDoc(subtitle)

	cols := []string{"Time", "Status"}
	widths := []float64{40, 40}
	if includeDate {
		cols = []string{"Date", "Time", "Status"}
		widths = []float64{40, 30, 40}
	}

	if len(groups) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 8, "No appointments found.", "", 1, "C", false, 0, "")
		return output(pdf)
	}

	for _, g := range groups {
		r.personBanner(pdf, g)
		r.tableHeader(pdf, cols, widths)

		for _, a := range g.Appointments {
			c := r.statusColor(a.Status)
			pdf.SetTextColor(0, 0, 0)
			if includeDate {
				pdf.CellFormat(widths[0], 6, a.Date, "1", 0, "C", false, 0, "")
				pdf.CellFormat(widths[1], 6, a.Time, "1", 0, "C", false, 0, "")
			} else {
				pdf.CellFormat(widths[0], 6, a.Time, "1", 0, "C", false, 0, "")
			}
			pdf.SetTextColor(c[0], c[1], c[2])
			pdf.CellFormat(widths[len(widths)-1], 6, a.Status, "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	return output(pdf)
}

// Period renders a flat table of appointments with their owners.
func (r *PDFRenderer) Period(subtitle string, rows []service.PeriodRow) (*bytes.Buffer, error) {
	pdf := r.newDoc(subtitle)

	cols := []string{"Name", "DNI", "Date", "Time", "Status"}
	widths := []float64{60, 30, 30, 25, 35}
	r.tableHeader(pdf, cols, widths)

	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 8, "No appointments found.", "", 1, "C", false, 0, "")
		return output(pdf)
	}

	for _, row := range rows {
		c := r.statusColor(row.Status)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(widths[0], 6, row.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, row.DNI, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, row.Time, "1", 0, "C", false, 0, "")
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(widths[4], 6, row.Status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	return output(pdf)
}

// Persons renders the registry listing with ages and enabled state.
func (r *PDFRenderer) Persons(subtitle string, persons []*person.Person, today time.Time) (*bytes.Buffer, error) {
	pdf := r.newDoc(subtitle)

	cols := []string{"Name", "DNI", "Email", "Phone", "Age", "Status"}
	widths := []float64{45, 25, 50, 30, 12, 25}
	r.tableHeader(pdf, cols, widths)

	for _, p := range persons {
		status := "enabled"
		if !p.Enabled {
			status = "disabled"
		}
		c := r.statusColor(status)

		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(widths[0], 6, p.FullName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, p.DNI, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, p.Email, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 6, p.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, strconv.Itoa(schedule.AgeAt(p.BirthDate, today)), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(c[0], c[1], c[2])
		pdf.CellFormat(widths[5], 6, status, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	return output(pdf)
}

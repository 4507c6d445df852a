package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicbook/clinicbook/internal/report"
	"github.com/clinicbook/clinicbook/internal/service"
)

// ReportHandler serves every report in three formats, selected by ?format=
// json (default), csv, or pdf.
type ReportHandler struct {
	svc     *service.ReportService
	persons *service.PersonService
	pdf     *report.PDFRenderer
}

func NewReportHandler(svc *service.ReportService, persons *service.PersonService, pdf *report.PDFRenderer) *ReportHandler {
	return &ReportHandler{svc: svc, persons: persons, pdf: pdf}
}

func reportFormat(c *gin.Context) (string, bool) {
	format := c.DefaultQuery("format", "json")
	switch format {
	case "json", "csv", "pdf":
		return format, true
	}
	respondError(c, http.StatusBadRequest, "invalid format: must be json, csv, or pdf")
	return "", false
}

func sendCSV(c *gin.Context, filename string, build func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := build(&buf); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func sendPDF(c *gin.Context, filename string, buf *bytes.Buffer, err error) {
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// ByDate reports all appointments on ?date=YYYY-MM-DD grouped by person.
func (h *ReportHandler) ByDate(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	rep, err := h.svc.ByDate(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	name := "appointments_" + rep.Date
	switch format {
	case "csv":
		sendCSV(c, name, func(buf *bytes.Buffer) error {
			return report.WriteGroupedCSV(buf, rep.Persons, false)
		})
	case "pdf":
		buf, err := h.pdf.Grouped("Appointments on "+rep.Date, rep.Persons, false)
		sendPDF(c, name, buf, err)
	default:
		respondOK(c, rep)
	}
}

// CancelledThisMonth reports the current month's cancellations.
func (h *ReportHandler) CancelledThisMonth(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}

	rep, err := h.svc.CancelledThisMonth(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	name := fmt.Sprintf("cancellations_%s_%d", rep.Month, rep.Year)
	switch format {
	case "csv":
		sendCSV(c, name, func(buf *bytes.Buffer) error {
			return report.WriteGroupedCSV(buf, rep.Persons, true)
		})
	case "pdf":
		subtitle := fmt.Sprintf("Cancellations in %s %d", rep.Month, rep.Year)
		buf, err := h.pdf.Grouped(subtitle, rep.Persons, true)
		sendPDF(c, name, buf, err)
	default:
		respondOK(c, rep)
	}
}

// ByPersonDNI reports one person's full appointment history.
func (h *ReportHandler) ByPersonDNI(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}
	dni := c.Param("dni")

	group, err := h.svc.ByPersonDNI(c.Request.Context(), dni)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	name := "history_" + group.DNI
	switch format {
	case "csv":
		sendCSV(c, name, func(buf *bytes.Buffer) error {
			return report.WriteGroupedCSV(buf, []service.PersonAppointments{*group}, true)
		})
	case "pdf":
		buf, err := h.pdf.Grouped("Appointment history for DNI "+group.DNI,
			[]service.PersonAppointments{*group}, true)
		sendPDF(c, name, buf, err)
	default:
		respondOK(c, group)
	}
}

// ConfirmedBetween reports confirmed appointments in ?from=..&to=.. inclusive.
// JSON output is paginated; CSV and PDF exports carry the full set.
func (h *ReportHandler) ConfirmedBetween(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	name := fmt.Sprintf("confirmed_%s_%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	subtitle := fmt.Sprintf("Confirmed appointments from %s to %s",
		from.Format("2006-01-02"), to.Format("2006-01-02"))

	switch format {
	case "csv":
		rows, err := h.svc.ConfirmedBetweenAll(c.Request.Context(), from, to)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		sendCSV(c, name, func(buf *bytes.Buffer) error {
			return report.WritePeriodCSV(buf, rows)
		})
	case "pdf":
		rows, err := h.svc.ConfirmedBetweenAll(c.Request.Context(), from, to)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		buf, err := h.pdf.Period(subtitle, rows)
		sendPDF(c, name, buf, err)
	default:
		page := parseQueryInt(c, "page", 1)
		pageSize := parseQueryInt(c, "page_size", h.svc.DefaultPageSize())
		rep, err := h.svc.ConfirmedBetween(c.Request.Context(), from, to, page, pageSize)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, rep)
	}
}

// FrequentCancellers reports persons at or above ?min= all-time cancellations.
func (h *ReportHandler) FrequentCancellers(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}
	minCount := parseQueryInt(c, "min", h.svc.DefaultMinCancelled())

	groups, err := h.svc.FrequentCancellers(c.Request.Context(), minCount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	name := "frequent_cancellers"
	switch format {
	case "csv":
		sendCSV(c, name, func(buf *bytes.Buffer) error {
			return report.WriteCancellersCSV(buf, groups)
		})
	case "pdf":
		subtitle := fmt.Sprintf("Persons with %d or more cancellations", minCount)
		buf, err := h.pdf.Grouped(subtitle, groups, true)
		sendPDF(c, name, buf, err)
	default:
		respondOK(c, gin.H{
			"min_cancellations": minCount,
			"total_persons":     len(groups),
			"persons":           groups,
		})
	}
}

// Persons exports the registry listing with computed ages.
func (h *ReportHandler) Persons(c *gin.Context) {
	format, ok := reportFormat(c)
	if !ok {
		return
	}

	persons, err := h.persons.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	name := "persons"
	switch format {
	case "csv":
		sendCSV(c, name, func(buf *bytes.Buffer) error {
			return report.WritePersonsCSV(buf, persons, time.Now())
		})
	case "pdf":
		buf, err := h.pdf.Persons("Registered persons", persons, time.Now())
		sendPDF(c, name, buf, err)
	default:
		respondOK(c, toPersonResponses(persons))
	}
}

package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicbook/clinicbook/internal/domain/appointment"
	"github.com/clinicbook/clinicbook/internal/schedule"
	"github.com/clinicbook/clinicbook/internal/service"
	"github.com/clinicbook/clinicbook/pkg/metrics"
)

type AppointmentHandler struct {
	svc     *service.AppointmentService
	metrics *metrics.Collector
}

func NewAppointmentHandler(svc *service.AppointmentService, m *metrics.Collector) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, metrics: m}
}

type createAppointmentRequest struct {
	PersonID string `json:"person_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Status   string `json:"status"`
}

type updateAppointmentRequest struct {
	Date   *string `json:"date"`
	Time   *string `json:"time"`
	Status *string `json:"status"`
}

type appointmentResponse struct {
	ID       string `json:"id"`
	PersonID string `json:"person_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Status   string `json:"status"`
}

func toAppointmentResponse(a *appointment.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:       a.ID.String(),
		PersonID: a.PersonID.String(),
		Date:     a.Date.Format("2006-01-02"),
		Time:     a.Time.String(),
		Status:   string(a.Status),
	}
}

func toAppointmentResponses(appts []*appointment.Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req createAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	personID, err := uuid.Parse(req.PersonID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid person_id: must be a valid UUID")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
		return
	}
	slot, err := schedule.ParseTimeOfDay(req.Time)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid time: must be HH:MM")
		return
	}

	a, err := h.svc.Book(c.Request.Context(), &appointment.CreateAppointmentCommand{
		PersonID: personID,
		Date:     date,
		Time:     slot,
		Status:   appointment.Status(req.Status),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	respondCreated(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) List(c *gin.Context) {
	appts, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponses(appts))
}

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &appointment.UpdateAppointmentCommand{}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid date: must be YYYY-MM-DD")
			return
		}
		cmd.Date = &date
	}
	if req.Time != nil {
		slot, err := schedule.ParseTimeOfDay(*req.Time)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid time: must be HH:MM")
			return
		}
		cmd.Time = &slot
	}
	if req.Status != nil {
		status := appointment.Status(*req.Status)
		cmd.Status = &status
	}

	a, err := h.svc.Update(c.Request.Context(), id, cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toAppointmentResponse(a))
}

// Cancel frees the slot; the record survives for reporting and threshold counts.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) Confirm(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.Confirm(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) MarkAttended(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	a, err := h.svc.MarkAttended(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	h.metrics.AppointmentsTotal.WithLabelValues(string(a.Status)).Inc()
	respondOK(c, toAppointmentResponse(a))
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AvailableSlots lists the free grid times for ?date=YYYY-MM-DD.
func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	slots, err := h.svc.AvailableSlots(c.Request.Context(), date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.SlotQueriesTotal.Inc()
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	respondOK(c, gin.H{
		"date":            date.Format("2006-01-02"),
		"available_slots": out,
	})
}

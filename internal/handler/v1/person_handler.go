package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicbook/clinicbook/internal/domain/person"
	"github.com/clinicbook/clinicbook/internal/service"
	"github.com/clinicbook/clinicbook/pkg/metrics"
)

type PersonHandler struct {
	svc     *service.PersonService
	metrics *metrics.Collector
}

func NewPersonHandler(svc *service.PersonService, m *metrics.Collector) *PersonHandler {
	return &PersonHandler{svc: svc, metrics: m}
}

type createPersonRequest struct {
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email" binding:"required"`
	DNI       string `json:"dni" binding:"required"`
	Phone     string `json:"phone" binding:"required"`
	BirthDate string `json:"birth_date" binding:"required"`
}

type updatePersonRequest struct {
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	DNI       *string `json:"dni"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
}

type personResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	DNI       string `json:"dni"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	Age       int    `json:"age"`
	Enabled   bool   `json:"enabled"`
}

func toPersonResponse(p *person.Person) personResponse {
	return personResponse{
		ID:        p.ID.String(),
		FullName:  p.FullName,
		Email:     p.Email,
		DNI:       p.DNI,
		Phone:     p.Phone,
		BirthDate: p.BirthDate.Format("2006-01-02"),
		Age:       p.AgeAt(time.Now()),
		Enabled:   p.Enabled,
	}
}

func toPersonResponses(persons []*person.Person) []personResponse {
	out := make([]personResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, toPersonResponse(p))
	}
	return out
}

func (h *PersonHandler) Create(c *gin.Context) {
	var req createPersonRequest
	if !bindJSON(c, &req) {
		return
	}
	birth, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid birth_date: must be YYYY-MM-DD")
		return
	}

	p, err := h.svc.Register(c.Request.Context(), &person.CreatePersonCommand{
		FullName:  req.FullName,
		Email:     req.Email,
		DNI:       req.DNI,
		Phone:     req.Phone,
		BirthDate: birth,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.metrics.PersonsRegisteredTotal.Inc()
	respondCreated(c, toPersonResponse(p))
}

func (h *PersonHandler) Get(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPersonResponse(p))
}

func (h *PersonHandler) GetByDNI(c *gin.Context) {
	dni := c.Param("dni")
	p, err := h.svc.GetByDNI(c.Request.Context(), dni)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPersonResponse(p))
}

// List returns every person, or only those matching ?enabled=true|false.
func (h *PersonHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("enabled"); raw != "" {
		enabled := raw == "true"
		if raw != "true" && raw != "false" {
			respondError(c, http.StatusBadRequest, "invalid enabled: must be true or false")
			return
		}
		persons, err := h.svc.ListByEnabled(ctx, enabled)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		respondOK(c, toPersonResponses(persons))
		return
	}

	persons, err := h.svc.List(ctx)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPersonResponses(persons))
}

func (h *PersonHandler) Update(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updatePersonRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd := &person.UpdatePersonCommand{
		FullName: req.FullName,
		Email:    req.Email,
		DNI:      req.DNI,
		Phone:    req.Phone,
	}
	if req.BirthDate != nil {
		birth, err := time.Parse("2006-01-02", *req.BirthDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid birth_date: must be YYYY-MM-DD")
			return
		}
		cmd.BirthDate = &birth
	}

	p, err := h.svc.Update(c.Request.Context(), id, cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toPersonResponse(p))
}

// ToggleEnabled flips the enabled flag, re-admitting or suspending the person.
func (h *PersonHandler) ToggleEnabled(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.ToggleEnabled(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !p.Enabled {
		h.metrics.PersonsDisabledTotal.Inc()
	}
	respondOK(c, toPersonResponse(p))
}

func (h *PersonHandler) Delete(c *gin.Context) {
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

package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/visit"
)

// ListVisits devolve visitas visíveis ao viewer com filtros opcionais.
func (h *Handler) ListVisits(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	filter := visit.Filter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Reason: strings.TrimSpace(r.URL.Query().Get("reason")),
	}
	cityID, err := queryUUID(r, "city_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	voterID, err := queryUUID(r, "voter_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	filter.CityID = cityID
	filter.VoterID = voterID

	for name, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := strings.TrimSpace(r.URL.Query().Get(name))
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", name+" inválido", nil)
			return
		}
		*dst = &t
	}

	visits, err := h.visits.List(r.Context(), viewer, filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, visits)
}

// GetVisit devolve uma visita pelo ID.
func (h *Handler) GetVisit(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	v, err := h.visits.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

// CreateVisit agenda uma visita.
func (h *Handler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		VoterID       uuid.UUID  `json:"voter_id"`
		CityID        uuid.UUID  `json:"city_id"`
		ScheduledAt   time.Time  `json:"scheduled_at"`
		Reason        string     `json:"reason"`
		RelatedUserID *uuid.UUID `json:"related_user_id"`
		Documents     []string   `json:"documents"`
		Observations  string     `json:"observations"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.visits.Create(r.Context(), visit.CreateInput{
		VoterID:       req.VoterID,
		CityID:        req.CityID,
		ScheduledAt:   req.ScheduledAt,
		Reason:        req.Reason,
		RelatedUserID: req.RelatedUserID,
		Documents:     req.Documents,
		Observations:  req.Observations,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateVisit altera a visita; campos ausentes permanecem.
func (h *Handler) UpdateVisit(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		ScheduledAt   *time.Time `json:"scheduled_at"`
		Reason        *string    `json:"reason"`
		Status        *string    `json:"status"`
		RelatedUserID *uuid.UUID `json:"related_user_id"`
		Documents     []string   `json:"documents"`
		Observations  *string    `json:"observations"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.visits.Update(r.Context(), visit.UpdateInput{
		ID:            id,
		ScheduledAt:   req.ScheduledAt,
		Reason:        req.Reason,
		Status:        req.Status,
		RelatedUserID: req.RelatedUserID,
		Documents:     req.Documents,
		Observations:  req.Observations,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteVisit remove a visita.
func (h *Handler) DeleteVisit(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.visits.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

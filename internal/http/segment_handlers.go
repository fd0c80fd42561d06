package http

import (
	"net/http"

	"github.com/google/uuid"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/segment"
)

// ListSegments devolve segmentos visíveis ao viewer.
func (h *Handler) ListSegments(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	segments, err := h.segments.List(r.Context(), viewer)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, segments)
}

// GetSegment devolve um segmento pelo ID.
func (h *Handler) GetSegment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	s, err := h.segments.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s)
}

// ResolveSegment materializa o filtro e devolve os IDs dos eleitores atuais.
func (h *Handler) ResolveSegment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	ids, err := h.segments.Resolve(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"voter_ids": ids, "total": len(ids)})
}

type segmentPayload struct {
	Name           string     `json:"name"`
	CityID         *uuid.UUID `json:"city_id"`
	Bairro         string     `json:"bairro"`
	AgeMin         *int       `json:"age_min"`
	AgeMax         *int       `json:"age_max"`
	DemandStatuses []string   `json:"demand_statuses"`
}

// CreateSegment cadastra a definição do filtro.
func (h *Handler) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var req segmentPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.segments.Create(r.Context(), segment.CreateInput{
		Name:           req.Name,
		CityID:         req.CityID,
		Bairro:         req.Bairro,
		AgeMin:         req.AgeMin,
		AgeMax:         req.AgeMax,
		DemandStatuses: req.DemandStatuses,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateSegment altera a definição do filtro.
func (h *Handler) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		Name           *string    `json:"name"`
		CityID         *uuid.UUID `json:"city_id"`
		Bairro         *string    `json:"bairro"`
		AgeMin         *int       `json:"age_min"`
		AgeMax         *int       `json:"age_max"`
		DemandStatuses []string   `json:"demand_statuses"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.segments.Update(r.Context(), segment.UpdateInput{
		ID:             id,
		Name:           req.Name,
		CityID:         req.CityID,
		Bairro:         req.Bairro,
		AgeMin:         req.AgeMin,
		AgeMax:         req.AgeMax,
		DemandStatuses: req.DemandStatuses,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteSegment remove a definição do filtro.
func (h *Handler) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.segments.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

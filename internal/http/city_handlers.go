package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/city"
	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
)

// ListCities devolve cidades visíveis ao viewer.
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	cities, err := h.cities.List(r.Context(), viewer)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cities)
}

// GetCity devolve uma cidade pelo ID.
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	c, err := h.cities.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

// CreateCity cadastra uma cidade.
func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		State  string `json:"state"`
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.cities.Create(r.Context(), city.CreateInput{
		Name:   req.Name,
		State:  req.State,
		Status: req.Status,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateCity altera os dados principais da cidade.
func (h *Handler) UpdateCity(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		Name   *string `json:"name"`
		State  *string `json:"state"`
		Status *string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.cities.Update(r.Context(), city.UpdateInput{
		ID:     id,
		Name:   req.Name,
		State:  req.State,
		Status: req.Status,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteCity remove a cidade.
func (h *Handler) DeleteCity(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.cities.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignCityRoles aplica o estado desejado dos slots de papel da cidade.
func (h *Handler) AssignCityRoles(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		AdministratorID  *uuid.UUID  `json:"administrator_id"`
		MayorID          *uuid.UUID  `json:"mayor_id"`
		VereadorIDs      []uuid.UUID `json:"vereador_ids"`
		CaboEleitoralIDs []uuid.UUID `json:"cabo_eleitoral_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.cities.AssignRoles(r.Context(), id, city.AssignRolesInput{
		AdministratorID:  req.AdministratorID,
		MayorID:          req.MayorID,
		VereadorIDs:      req.VereadorIDs,
		CaboEleitoralIDs: req.CaboEleitoralIDs,
	}); err != nil {
		WriteServiceError(w, err)
		return
	}

	updated, err := h.cities.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

package http

import (
	"net/http"
	"strings"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/user"
)

// Dashboard devolve o resumo agregado recortado pela visibilidade do viewer.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	summary, err := h.dashboard.Summary(r.Context(), viewer)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// MapView devolve os marcadores geocodificados dos eleitores visíveis.
func (h *Handler) MapView(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	voter := roles.Voter
	filter := user.Filter{Role: &voter, Bairro: strings.TrimSpace(r.URL.Query().Get("bairro"))}
	cityID, err := queryUUID(r, "city_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	filter.CityID = cityID

	view, err := h.geo.View(r.Context(), viewer, filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view)
}

// ElectoralBase conta eleitores cuja referência de vereador é o usuário.
func (h *Handler) ElectoralBase(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	total, err := h.geo.ElectoralBase(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"total": total})
}

// LinkedVoters conta eleitores vinculados ao cabo eleitoral.
func (h *Handler) LinkedVoters(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	total, err := h.geo.LinkedVoters(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int64{"total": total})
}

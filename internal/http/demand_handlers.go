package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/demand"
	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/storage"
)

// ListDemands devolve demandas visíveis ao viewer com filtros opcionais.
func (h *Handler) ListDemands(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	filter := demand.Filter{Status: strings.TrimSpace(r.URL.Query().Get("status"))}
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

	demands, err := h.demands.List(r.Context(), viewer, filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, demands)
}

// GetDemand devolve uma demanda com seu histórico.
func (h *Handler) GetDemand(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	d, err := h.demands.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// CreateDemand abre uma demanda. Com multipart, os anexos do campo documents
// sobem para o blob storage antes da gravação; se a gravação falhar, os blobs
// enviados são removidos.
func (h *Handler) CreateDemand(w http.ResponseWriter, r *http.Request) {
	author, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	var input demand.CreateInput
	input.AuthorID = author

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "dados multipart inválidos", nil)
			return
		}
		if input.VoterID, err = uuid.Parse(r.FormValue("voter_id")); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "voter_id inválido", nil)
			return
		}
		if input.CityID, err = uuid.Parse(r.FormValue("city_id")); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "city_id inválido", nil)
			return
		}
		input.Description = r.FormValue("description")
		if raw := strings.TrimSpace(r.FormValue("related_user_id")); raw != "" {
			related, err := uuid.Parse(raw)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "VALIDATION", "related_user_id inválido", nil)
				return
			}
			input.RelatedUserID = &related
		}

		keys, err := h.uploadFormFiles(r, "documents", "demands")
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		input.Documents = keys

		created, err := h.demands.Create(r.Context(), input)
		if err != nil {
			WriteServiceError(w, storage.Rollback(r.Context(), h.storage, keys, err))
			return
		}
		WriteJSON(w, http.StatusCreated, created)
		return
	}

	var req struct {
		VoterID       uuid.UUID  `json:"voter_id"`
		CityID        uuid.UUID  `json:"city_id"`
		Description   string     `json:"description"`
		RelatedUserID *uuid.UUID `json:"related_user_id"`
		Documents     []string   `json:"documents"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	input.VoterID = req.VoterID
	input.CityID = req.CityID
	input.Description = req.Description
	input.RelatedUserID = req.RelatedUserID
	input.Documents = req.Documents

	created, err := h.demands.Create(r.Context(), input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateDemand altera dados cadastrais sem mexer no status.
func (h *Handler) UpdateDemand(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		Description   *string    `json:"description"`
		RelatedUserID *uuid.UUID `json:"related_user_id"`
		Documents     []string   `json:"documents"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.demands.Update(r.Context(), demand.UpdateInput{
		ID:            id,
		Description:   req.Description,
		RelatedUserID: req.RelatedUserID,
		Documents:     req.Documents,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// ChangeDemandStatus aplica uma transição de workflow e registra no histórico.
func (h *Handler) ChangeDemandStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}
	author, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.demands.ChangeStatus(r.Context(), id, req.Status, author, req.Note)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteDemand remove a demanda e seu histórico.
func (h *Handler) DeleteDemand(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.demands.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

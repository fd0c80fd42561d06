package http

import (
	"net/http"

	"github.com/google/uuid"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/poll"
)

// ListPolls devolve pesquisas visíveis ao viewer.
func (h *Handler) ListPolls(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	polls, err := h.polls.List(r.Context(), viewer)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, polls)
}

// GetPoll devolve uma pesquisa pelo ID.
func (h *Handler) GetPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	p, err := h.polls.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// CreatePoll cadastra a pesquisa com as perguntas validadas.
func (h *Handler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string          `json:"title"`
		Questions []poll.Question `json:"questions"`
		SegmentID *uuid.UUID      `json:"segment_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.polls.Create(r.Context(), poll.CreateInput{
		Title:     req.Title,
		Questions: req.Questions,
		SegmentID: req.SegmentID,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ChangePollStatus altera o estado da pesquisa (draft, active, closed).
func (h *Handler) ChangePollStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.polls.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// RespondPoll registra a resposta do usuário autenticado; no máximo uma por
// pesquisa.
func (h *Handler) RespondPoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}
	subject, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	var req struct {
		Answers map[uuid.UUID]string `json:"answers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.polls.Respond(r.Context(), id, subject, req.Answers)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, resp)
}

// ListPollResponses devolve as respostas coletadas.
func (h *Handler) ListPollResponses(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	responses, err := h.polls.Responses(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, responses)
}

// DeletePoll remove a pesquisa e as respostas.
func (h *Handler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.polls.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/storage"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
)

// ListTickets devolve atendimentos dos quais o viewer participa.
func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	filter := ticket.Filter{Status: strings.TrimSpace(r.URL.Query().Get("status"))}
	tickets, err := h.tickets.List(r.Context(), viewer, filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tickets)
}

// GetTicket devolve o atendimento com as mensagens, se o viewer participa.
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	viewer := httpmiddleware.GetViewer(r.Context())
	t, err := h.tickets.Get(r.Context(), viewer, id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// CreateTicket abre um atendimento entre participantes fixos.
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	creator, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	var req struct {
		Subject      string      `json:"subject"`
		Participants []uuid.UUID `json:"participants"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	created, err := h.tickets.Create(r.Context(), ticket.CreateInput{
		Subject:      req.Subject,
		Participants: req.Participants,
		CreatorID:    creator,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// ChangeTicketStatus altera o status do atendimento.
func (h *Handler) ChangeTicketStatus(w http.ResponseWriter, r *http.Request) {
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

	updated, err := h.tickets.ChangeStatus(r.Context(), id, req.Status)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// PostTicketMessage envia uma mensagem. Com multipart, os anexos do campo
// attachments sobem antes da gravação; se a gravação falhar, os blobs
// enviados são removidos.
func (h *Handler) PostTicketMessage(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}
	sender, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	input := ticket.PostMessageInput{TicketID: id, SenderID: sender}

	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "dados multipart inválidos", nil)
			return
		}
		input.Content = r.FormValue("content")

		keys, err := h.uploadFormFiles(r, "attachments", "tickets")
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		input.Attachments = keys

		msg, err := h.tickets.PostMessage(r.Context(), input)
		if err != nil {
			WriteServiceError(w, storage.Rollback(r.Context(), h.storage, keys, err))
			return
		}
		WriteJSON(w, http.StatusCreated, msg)
		return
	}

	var req struct {
		Content     string   `json:"content"`
		Attachments []string `json:"attachments"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	input.Content = req.Content
	input.Attachments = req.Attachments

	msg, err := h.tickets.PostMessage(r.Context(), input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, msg)
}

// MarkTicketMessageRead registra a leitura; o conjunto de leitores só cresce.
func (h *Handler) MarkTicketMessageRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}
	messageID, err := parseUUIDParam(r, "messageID")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id da mensagem inválido", nil)
		return
	}
	reader, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	if err := h.tickets.MarkRead(r.Context(), id, messageID, reader); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"read": true})
}

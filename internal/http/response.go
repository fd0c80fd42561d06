package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/city"
	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/poll"
	"github.com/gestaopolitica/eleitorado/internal/segment"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
	"github.com/gestaopolitica/eleitorado/internal/user"
	"github.com/gestaopolitica/eleitorado/internal/util"
	"github.com/gestaopolitica/eleitorado/internal/visit"
)

// SuccessEnvelope padroniza respostas com dados.
type SuccessEnvelope struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

// ErrorEnvelope padroniza respostas de erro.
type ErrorEnvelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error"`
}

// ErrorBody descreve falhas normalizadas.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON escreve envelope de sucesso.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SuccessEnvelope{Data: data, Error: nil})
}

// WriteError escreve envelope de erro e mantém formato consistente.
func WriteError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorEnvelope{
		Data:  nil,
		Error: &ErrorBody{Code: code, Message: message, Details: details},
	})
}

// notFoundErrs agrupa sentinelas que viram 404.
var notFoundErrs = []error{
	user.ErrNotFound, city.ErrNotFound, demand.ErrNotFound, visit.ErrNotFound,
	ticket.ErrNotFound, ticket.ErrMessageNotFound, segment.ErrNotFound, poll.ErrNotFound,
}

// conflictErrs agrupa sentinelas que viram 409.
var conflictErrs = []error{
	user.ErrEmailTaken, user.ErrCPFTaken, city.ErrNameTaken,
	city.ErrDuplicateAssignment, poll.ErrAlreadyResponded,
}

// validationErrs agrupa sentinelas que viram 400.
var validationErrs = []error{
	user.ErrInvalidStatus, user.ErrInvalidRole,
	city.ErrInvalidStatus,
	demand.ErrInvalidStatus, demand.ErrInvalidTransition,
	visit.ErrInvalidStatus, visit.ErrInvalidReason,
	ticket.ErrInvalidStatus, ticket.ErrClosed,
	segment.ErrInvalidRange,
	poll.ErrInvalidQuestion, poll.ErrUnknownQuestion, poll.ErrMissingAnswer,
	poll.ErrInvalidAnswer, poll.ErrInvalidStatus,
}

// authErrs agrupa sentinelas que viram 401.
var authErrs = []error{
	user.ErrInvalidCredential, user.ErrAccountDisabled,
	user.ErrInviteNotFound, user.ErrInviteExpired,
	auth.ErrInvalidRefresh,
}

// WriteServiceError traduz erros de serviço para o envelope HTTP.
func WriteServiceError(w http.ResponseWriter, err error) {
	for _, sentinel := range notFoundErrs {
		if errors.Is(err, sentinel) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
			return
		}
	}
	for _, sentinel := range conflictErrs {
		if errors.Is(err, sentinel) {
			WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
			return
		}
	}
	for _, sentinel := range validationErrs {
		if errors.Is(err, sentinel) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
	}
	for _, sentinel := range authErrs {
		if errors.Is(err, sentinel) {
			WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
			return
		}
	}
	if errors.Is(err, ticket.ErrNotParticipant) {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
		return
	}
	var vErr util.ValidationError
	if errors.As(err, &vErr) {
		WriteError(w, http.StatusBadRequest, "VALIDATION", vErr.Error(), nil)
		return
	}

	log.Error().Err(err).Msg("erro interno")
	WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
}

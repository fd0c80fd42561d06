package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/poll"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
	"github.com/gestaopolitica/eleitorado/internal/user"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestWriteJSONEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"ok": "sim"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var env struct {
		Data  map[string]string `json:"data"`
		Error any               `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data["ok"] != "sim" {
		t.Fatalf("data = %v", env.Data)
	}
	if env.Error != nil {
		t.Fatalf("error deveria ser null, veio %v", env.Error)
	}
}

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{user.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{demand.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{user.ErrEmailTaken, http.StatusConflict, "CONFLICT"},
		{poll.ErrAlreadyResponded, http.StatusConflict, "CONFLICT"},
		{demand.ErrInvalidTransition, http.StatusBadRequest, "VALIDATION"},
		{ticket.ErrClosed, http.StatusBadRequest, "VALIDATION"},
		{util.Invalid("nome obrigatório"), http.StatusBadRequest, "VALIDATION"},
		{user.ErrInvalidCredential, http.StatusUnauthorized, "AUTH"},
		{user.ErrAccountDisabled, http.StatusUnauthorized, "AUTH"},
		{auth.ErrInvalidRefresh, http.StatusUnauthorized, "AUTH"},
		{ticket.ErrNotParticipant, http.StatusForbidden, "FORBIDDEN"},
		{errors.New("falha inesperada"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		WriteServiceError(rec, tc.err)

		if rec.Code != tc.status {
			t.Fatalf("%v: status = %d, esperado %d", tc.err, rec.Code, tc.status)
		}
		env := decodeEnvelope(t, rec)
		if env.Error == nil || env.Error.Code != tc.code {
			t.Fatalf("%v: envelope = %+v", tc.err, env.Error)
		}
	}
}

func TestWriteServiceErrorWrapped(t *testing.T) {
	wrapped := fmt.Errorf("contexto: %w", demand.ErrInvalidTransition)

	rec := httptest.NewRecorder()
	WriteServiceError(rec, wrapped)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWriteServiceErrorJoinedKeepsCause(t *testing.T) {
	// Falha de limpeza de blobs agregada não pode mascarar o erro original.
	joined := errors.Join(demand.ErrInvalidTransition, errors.New("limpeza de x: timeout"))

	rec := httptest.NewRecorder()
	WriteServiceError(rec, joined)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/user"
)

// ListUsers devolve usuários visíveis ao viewer com filtros opcionais.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	viewer := httpmiddleware.GetViewer(r.Context())

	filter := user.Filter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Bairro: strings.TrimSpace(r.URL.Query().Get("bairro")),
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("role")); raw != "" {
		role := roles.Normalize(raw)
		if !roles.IsValid(role) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "papel inválido", nil)
			return
		}
		filter.Role = &role
	}
	cityID, err := queryUUID(r, "city_id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}
	filter.CityID = cityID

	users, err := h.users.List(r.Context(), viewer, filter)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, users)
}

// GetUser devolve um usuário pelo ID.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

type userPayload struct {
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	Role            string     `json:"role"`
	CityID          *uuid.UUID `json:"city_id"`
	Nome            string     `json:"nome"`
	CPF             string     `json:"cpf"`
	BirthDate       *time.Time `json:"birth_date"`
	Gender          string     `json:"gender"`
	Phone           string     `json:"phone"`
	Endereco        string     `json:"endereco"`
	Bairro          string     `json:"bairro"`
	CEP             string     `json:"cep"`
	VereadorID      *uuid.UUID `json:"vereador_id"`
	CaboEleitoralID *uuid.UUID `json:"cabo_eleitoral_id"`
}

// CreateUser cadastra um usuário ativo (eleitor ou equipe).
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	role := roles.Role(req.Role)
	if strings.TrimSpace(req.Role) == "" {
		role = roles.Voter
	}

	created, err := h.users.Register(r.Context(), user.CreateInput{
		Email:           req.Email,
		Password:        req.Password,
		Role:            role,
		CityID:          req.CityID,
		Nome:            req.Nome,
		CPF:             req.CPF,
		BirthDate:       req.BirthDate,
		Gender:          req.Gender,
		Phone:           req.Phone,
		Endereco:        req.Endereco,
		Bairro:          req.Bairro,
		CEP:             req.CEP,
		VereadorID:      req.VereadorID,
		CaboEleitoralID: req.CaboEleitoralID,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// UpdateUser altera dados cadastrais; campos ausentes permanecem.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var req struct {
		Email           *string    `json:"email"`
		Role            *string    `json:"role"`
		Status          *string    `json:"status"`
		CityID          *uuid.UUID `json:"city_id"`
		Nome            *string    `json:"nome"`
		CPF             *string    `json:"cpf"`
		BirthDate       *time.Time `json:"birth_date"`
		Gender          *string    `json:"gender"`
		Phone           *string    `json:"phone"`
		Endereco        *string    `json:"endereco"`
		Bairro          *string    `json:"bairro"`
		CEP             *string    `json:"cep"`
		VereadorID      *uuid.UUID `json:"vereador_id"`
		CaboEleitoralID *uuid.UUID `json:"cabo_eleitoral_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	input := user.UpdateInput{
		ID:              id,
		Email:           req.Email,
		Status:          req.Status,
		CityID:          req.CityID,
		Nome:            req.Nome,
		CPF:             req.CPF,
		BirthDate:       req.BirthDate,
		Gender:          req.Gender,
		Phone:           req.Phone,
		Endereco:        req.Endereco,
		Bairro:          req.Bairro,
		CEP:             req.CEP,
		VereadorID:      req.VereadorID,
		CaboEleitoralID: req.CaboEleitoralID,
	}
	if req.Role != nil {
		role := roles.Role(*req.Role)
		input.Role = &role
	}

	updated, err := h.users.Update(r.Context(), input)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// DeleteUser remove o usuário.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InviteUser gera um convite pendente e devolve o token bruto uma única vez.
func (h *Handler) InviteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nome   string     `json:"nome"`
		Email  string     `json:"email"`
		Role   string     `json:"role"`
		CityID *uuid.UUID `json:"city_id"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.users.Invite(r.Context(), req.Nome, req.Email, roles.Role(req.Role), req.CityID)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{
		"user":  result.User,
		"token": result.Token,
	})
}

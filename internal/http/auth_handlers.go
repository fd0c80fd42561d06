package http

import (
	"net/http"
	"time"

	"github.com/gestaopolitica/eleitorado/internal/user"
)

// Login autentica por e-mail e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// Refresh troca o refresh token por uma sessão nova.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// Logout revoga o refresh token atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"revoked": true})
}

// AcceptInvite consome o token de convite e completa o cadastro.
func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token     string     `json:"token"`
		Password  string     `json:"password"`
		CPF       *string    `json:"cpf"`
		BirthDate *time.Time `json:"birth_date"`
		Gender    *string    `json:"gender"`
		Phone     *string    `json:"phone"`
		Endereco  *string    `json:"endereco"`
		Bairro    *string    `json:"bairro"`
		CEP       *string    `json:"cep"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	accepted, err := h.users.AcceptInvite(r.Context(), req.Token, user.AcceptInviteInput{
		Password:  req.Password,
		CPF:       req.CPF,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
		Phone:     req.Phone,
		Endereco:  req.Endereco,
		Bairro:    req.Bairro,
		CEP:       req.CEP,
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, accepted)
}

// Me devolve o perfil do usuário autenticado.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, err := subjectUUID(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	profile, err := h.authService.Me(r.Context(), subject)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

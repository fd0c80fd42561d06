package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

var (
	ErrNotFound          = errors.New("usuário não encontrado")
	ErrEmailTaken        = errors.New("email já cadastrado")
	ErrCPFTaken          = errors.New("cpf já cadastrado")
	ErrInviteNotFound    = errors.New("convite não encontrado")
	ErrInviteExpired     = errors.New("convite expirado")
	ErrInvalidStatus     = errors.New("status inválido")
	ErrInvalidRole       = errors.New("papel inválido")
	ErrInvalidCredential = errors.New("credenciais inválidas")
	ErrAccountDisabled   = errors.New("conta desativada")
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

var validStatuses = map[string]struct{}{
	StatusActive:    {},
	StatusInactive:  {},
	StatusSuspended: {},
	StatusPending:   {},
}

// User representa um eleitor ou membro da equipe.
// Permissions é projeção calculada a partir de Role na leitura; nunca persiste.
type User struct {
	ID              uuid.UUID         `json:"id"`
	Email           string            `json:"email"`
	PasswordHash    string            `json:"-"`
	Role            roles.Role        `json:"role"`
	Status          string            `json:"status"`
	CityID          *uuid.UUID        `json:"city_id,omitempty"`
	Nome            string            `json:"nome"`
	CPF             string            `json:"cpf,omitempty"`
	BirthDate       *time.Time        `json:"birth_date,omitempty"`
	Gender          string            `json:"gender,omitempty"`
	Phone           string            `json:"phone,omitempty"`
	Endereco        string            `json:"endereco,omitempty"`
	Bairro          string            `json:"bairro,omitempty"`
	CEP             string            `json:"cep,omitempty"`
	VereadorID      *uuid.UUID        `json:"vereador_id,omitempty"`
	CaboEleitoralID *uuid.UUID        `json:"cabo_eleitoral_id,omitempty"`
	Permissions     roles.Permissions `json:"permissions"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// CreateInput encapsula o cadastro direto de um usuário.
type CreateInput struct {
	Email           string
	Password        string
	Role            roles.Role
	CityID          *uuid.UUID
	Nome            string
	CPF             string
	BirthDate       *time.Time
	Gender          string
	Phone           string
	Endereco        string
	Bairro          string
	CEP             string
	VereadorID      *uuid.UUID
	CaboEleitoralID *uuid.UUID

	// FromExistingVoter pula checagens de unicidade no modo
	// "criar a partir de eleitor existente".
	FromExistingVoter bool
}

// UpdateInput altera dados cadastrais; campos nil permanecem.
type UpdateInput struct {
	ID              uuid.UUID
	Email           *string
	Role            *roles.Role
	Status          *string
	CityID          *uuid.UUID
	Nome            *string
	CPF             *string
	BirthDate       *time.Time
	Gender          *string
	Phone           *string
	Endereco        *string
	Bairro          *string
	CEP             *string
	VereadorID      *uuid.UUID
	CaboEleitoralID *uuid.UUID
}

// Filter restringe listagens; é combinado ao filtro implícito do Viewer.
type Filter struct {
	Role   *roles.Role
	CityID *uuid.UUID
	Status string
	Bairro string
	Search string
}

// Invite representa um convite pendente (usuário com papel pending).
type Invite struct {
	User      User
	TokenHash string
	ExpiresAt time.Time
}

// NormalizeStatus padroniza o status informado.
func NormalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return StatusActive
	}
	return status
}

// IsValidStatus informa se o status é suportado.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

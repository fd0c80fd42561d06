package city

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

var (
	ErrNotFound            = errors.New("cidade não encontrada")
	ErrNameTaken           = errors.New("cidade já cadastrada com esse nome")
	ErrInvalidStatus       = errors.New("status de cidade inválido")
	ErrDuplicateAssignment = errors.New("usuário indicado em mais de um slot na mesma chamada")
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

var validStatuses = map[string]struct{}{
	StatusActive:   {},
	StatusInactive: {},
	StatusPending:  {},
}

// City representa um município gerenciado.
// Os totais são agregados calculados na leitura, nunca armazenados.
type City struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	State                string     `json:"state"`
	Status               string     `json:"status"`
	AdministratorID      *uuid.UUID `json:"administrator_id,omitempty"`
	MayorID              *uuid.UUID `json:"mayor_id,omitempty"`
	TotalUsers           int64      `json:"total_users"`
	TotalVoters          int64      `json:"total_voters"`
	TotalVereadores      int64      `json:"total_vereadores"`
	TotalCabosEleitorais int64      `json:"total_cabos_eleitorais"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// CreateInput encapsula o cadastro de cidade.
type CreateInput struct {
	Name   string
	State  string
	Status string
}

// UpdateInput altera dados principais da cidade.
type UpdateInput struct {
	ID     uuid.UUID
	Name   *string
	State  *string
	Status *string
}

// AssignRolesInput descreve o estado desejado dos quatro slots da cidade.
type AssignRolesInput struct {
	AdministratorID  *uuid.UUID
	MayorID          *uuid.UUID
	VereadorIDs      []uuid.UUID
	CaboEleitoralIDs []uuid.UUID
}

// StaffAssignment descreve quem ocupa slot de equipe em alguma cidade.
type StaffAssignment struct {
	UserID uuid.UUID
	Role   roles.Role
	CityID *uuid.UUID
}

// RoleChange é uma promoção a aplicar dentro da transação de atribuição.
type RoleChange struct {
	UserID uuid.UUID
	Role   roles.Role
}

// RoleChangeSet agrupa todas as escritas de uma chamada de atribuição.
// Demotions são aplicadas antes de Promotions, em ordem determinística.
type RoleChangeSet struct {
	CityID          uuid.UUID
	Demotions       []uuid.UUID
	Promotions      []RoleChange
	AdministratorID *uuid.UUID
	MayorID         *uuid.UUID
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

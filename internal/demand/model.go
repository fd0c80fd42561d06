package demand

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("demanda não encontrada")
	ErrInvalidStatus     = errors.New("status de demanda inválido")
	ErrInvalidTransition = errors.New("transição de status não permitida")
)

const (
	StatusNew         = "new"
	StatusUnderReview = "under_review"
	StatusResolved    = "resolved"
	StatusRejected    = "rejected"
)

var validStatuses = map[string]struct{}{
	StatusNew:         {},
	StatusUnderReview: {},
	StatusResolved:    {},
	StatusRejected:    {},
}

// transitions define o fluxo permitido; resolved e rejected são terminais.
var transitions = map[string][]string{
	StatusNew:         {StatusUnderReview, StatusRejected},
	StatusUnderReview: {StatusResolved, StatusRejected},
}

// Demand representa uma demanda (reclamação/pedido) de um eleitor.
type Demand struct {
	ID            uuid.UUID      `json:"id"`
	Protocol      string         `json:"protocol"`
	VoterID       uuid.UUID      `json:"voter_id"`
	CityID        uuid.UUID      `json:"city_id"`
	Description   string         `json:"description"`
	Status        string         `json:"status"`
	RelatedUserID *uuid.UUID     `json:"related_user_id,omitempty"`
	Documents     []string       `json:"documents,omitempty"`
	Updates       []StatusUpdate `json:"updates,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// StatusUpdate é uma entrada do histórico, gravada a cada transição.
// O histórico é somente-apêndice: nunca editado nem removido.
type StatusUpdate struct {
	ID         uuid.UUID `json:"id"`
	DemandID   uuid.UUID `json:"demand_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateInput encapsula a abertura de demanda.
type CreateInput struct {
	VoterID       uuid.UUID
	CityID        uuid.UUID
	Description   string
	RelatedUserID *uuid.UUID
	Documents     []string
	AuthorID      uuid.UUID
}

// UpdateInput altera dados cadastrais sem mexer no status.
type UpdateInput struct {
	ID            uuid.UUID
	Description   *string
	RelatedUserID *uuid.UUID
	Documents     []string
}

// Filter restringe a listagem.
type Filter struct {
	Status  string
	CityID  *uuid.UUID
	VoterID *uuid.UUID
}

// NormalizeStatus padroniza o status informado.
func NormalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsValidStatus informa se o status é suportado.
func IsValidStatus(status string) bool {
	_, ok := validStatuses[status]
	return ok
}

// CanTransition informa se a mudança de status respeita o fluxo.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

package visit

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("visita não encontrada")
	ErrInvalidStatus = errors.New("status de visita inválido")
	ErrInvalidReason = errors.New("motivo de visita inválido")
)

const (
	StatusScheduled = "scheduled"
	StatusDone      = "done"
	StatusCancelled = "cancelled"
)

const (
	ReasonRequest      = "request"
	ReasonFollowUp     = "follow_up"
	ReasonCampaign     = "campaign"
	ReasonPresentation = "presentation"
	ReasonOther        = "other"
)

var validStatuses = map[string]struct{}{
	StatusScheduled: {},
	StatusDone:      {},
	StatusCancelled: {},
}

var validReasons = map[string]struct{}{
	ReasonRequest:      {},
	ReasonFollowUp:     {},
	ReasonCampaign:     {},
	ReasonPresentation: {},
	ReasonOther:        {},
}

// Visit representa uma visita agendada a um eleitor.
type Visit struct {
	ID            uuid.UUID  `json:"id"`
	VoterID       uuid.UUID  `json:"voter_id"`
	CityID        uuid.UUID  `json:"city_id"`
	ScheduledAt   time.Time  `json:"scheduled_at"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	RelatedUserID *uuid.UUID `json:"related_user_id,omitempty"`
	Documents     []string   `json:"documents,omitempty"`
	Observations  string     `json:"observations,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateInput encapsula o agendamento de visita.
type CreateInput struct {
	VoterID       uuid.UUID
	CityID        uuid.UUID
	ScheduledAt   time.Time
	Reason        string
	RelatedUserID *uuid.UUID
	Documents     []string
	Observations  string
}

// UpdateInput altera a visita; campos nulos permanecem.
type UpdateInput struct {
	ID            uuid.UUID
	ScheduledAt   *time.Time
	Reason        *string
	Status        *string
	RelatedUserID *uuid.UUID
	Documents     []string
	Observations  *string
}

// Filter restringe a listagem.
type Filter struct {
	Status  string
	Reason  string
	CityID  *uuid.UUID
	VoterID *uuid.UUID
	From    *time.Time
	To      *time.Time
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

// NormalizeReason padroniza o motivo informado.
func NormalizeReason(reason string) string {
	return strings.ToLower(strings.TrimSpace(reason))
}

// IsValidReason informa se o motivo é suportado.
func IsValidReason(reason string) bool {
	_, ok := validReasons[reason]
	return ok
}

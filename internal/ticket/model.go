package ticket

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("atendimento não encontrado")
	ErrMessageNotFound = errors.New("mensagem não encontrada")
	ErrNotParticipant  = errors.New("usuário não participa do atendimento")
	ErrInvalidStatus   = errors.New("status de atendimento inválido")
	ErrClosed          = errors.New("atendimento encerrado")
)

const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
)

var validStatuses = map[string]struct{}{
	StatusOpen:       {},
	StatusInProgress: {},
	StatusClosed:     {},
}

// Ticket é uma conversa de atendimento entre participantes fixos.
type Ticket struct {
	ID           uuid.UUID   `json:"id"`
	Protocol     string      `json:"protocol"`
	Subject      string      `json:"subject"`
	Participants []uuid.UUID `json:"participants"`
	Status       string      `json:"status"`
	Messages     []Message   `json:"messages,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Message é uma entrada ordenada da conversa. O conjunto ReadBy só cresce:
// marcar como lida nunca remove leitores anteriores.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	TicketID       uuid.UUID   `json:"ticket_id"`
	SenderID       uuid.UUID   `json:"sender_id"`
	Content        string      `json:"content"`
	Attachments    []string    `json:"attachments,omitempty"`
	DeliveryStatus string      `json:"delivery_status"`
	ReadBy         []uuid.UUID `json:"read_by"`
	CreatedAt      time.Time   `json:"created_at"`
}

// CreateInput encapsula a abertura de atendimento.
type CreateInput struct {
	Subject      string
	Participants []uuid.UUID
	CreatorID    uuid.UUID
}

// PostMessageInput encapsula o envio de mensagem.
type PostMessageInput struct {
	TicketID    uuid.UUID
	SenderID    uuid.UUID
	Content     string
	Attachments []string
}

// Filter restringe a listagem.
type Filter struct {
	Status string
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

// IsParticipant informa se o usuário integra o atendimento.
func (t *Ticket) IsParticipant(userID uuid.UUID) bool {
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

package ticket

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de atendimentos.
type Store interface {
	Create(ctx context.Context, t Ticket) (*Ticket, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Ticket, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Ticket, error)
	AppendMessage(ctx context.Context, m Message) (*Message, error)
	MarkRead(ctx context.Context, messageID, readerID uuid.UUID) error
	ProtocolExists(ctx context.Context, protocol string) (bool, error)
}

// Service centraliza casos de uso de atendimentos.
type Service struct {
	store Store
}

// NewService cria nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create abre atendimento garantindo o criador entre os participantes.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Ticket, error) {
	if err := util.RequireString(input.Subject, "assunto"); err != nil {
		return nil, err
	}
	if input.CreatorID == uuid.Nil {
		return nil, util.Invalid("criador obrigatório")
	}

	participants := make([]uuid.UUID, 0, len(input.Participants)+1)
	seen := make(map[uuid.UUID]struct{})
	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		participants = append(participants, id)
	}
	add(input.CreatorID)
	for _, id := range input.Participants {
		add(id)
	}
	if len(participants) < 2 {
		return nil, util.Invalid("atendimento exige ao menos dois participantes")
	}

	protocol, err := s.newProtocol(ctx)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, Ticket{
		ID:           uuid.New(),
		Protocol:     protocol,
		Subject:      input.Subject,
		Participants: participants,
		Status:       StatusOpen,
	})
}

func (s *Service) newProtocol(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := util.RandomCode(6)
		if err != nil {
			return "", err
		}
		protocol := fmt.Sprintf("TKT-%d-%s", time.Now().Year(), code)
		exists, err := s.store.ProtocolExists(ctx, protocol)
		if err != nil {
			return "", err
		}
		if !exists {
			return protocol, nil
		}
	}
	return "", fmt.Errorf("não foi possível gerar protocolo único")
}

// PostMessage envia mensagem; apenas participantes podem postar e
// atendimentos encerrados não aceitam novas mensagens.
func (s *Service) PostMessage(ctx context.Context, input PostMessageInput) (*Message, error) {
	if err := util.RequireString(input.Content, "mensagem"); err != nil {
		return nil, err
	}

	t, err := s.store.GetByID(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}
	if !t.IsParticipant(input.SenderID) {
		return nil, ErrNotParticipant
	}
	if t.Status == StatusClosed {
		return nil, ErrClosed
	}

	return s.store.AppendMessage(ctx, Message{
		ID:             uuid.New(),
		TicketID:       input.TicketID,
		SenderID:       input.SenderID,
		Content:        input.Content,
		Attachments:    input.Attachments,
		DeliveryStatus: DeliveryPending,
		ReadBy:         []uuid.UUID{input.SenderID},
	})
}

// MarkRead registra a leitura; o conjunto de leitores nunca diminui.
func (s *Service) MarkRead(ctx context.Context, ticketID, messageID, readerID uuid.UUID) error {
	t, err := s.store.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if !t.IsParticipant(readerID) {
		return ErrNotParticipant
	}
	return s.store.MarkRead(ctx, messageID, readerID)
}

// ChangeStatus altera o status do atendimento.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Ticket, error) {
	status = NormalizeStatus(status)
	if !IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.store.ChangeStatus(ctx, id, status)
}

// Delete remove o atendimento.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera o atendimento; não participantes só enxergam se admin geral.
func (s *Service) Get(ctx context.Context, viewer roles.Viewer, id uuid.UUID) (*Ticket, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.SeesAll() && !t.IsParticipant(viewer.UserID) {
		return nil, ErrNotParticipant
	}
	return t, nil
}

// List devolve atendimentos visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Ticket, error) {
	if filter.Status != "" {
		filter.Status = NormalizeStatus(filter.Status)
		if !IsValidStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
	}
	return s.store.List(ctx, viewer, filter)
}

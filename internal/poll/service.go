package poll

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/segment"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de pesquisas.
type Store interface {
	Create(ctx context.Context, p Poll) (*Poll, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Poll, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Poll, error)
	List(ctx context.Context, viewer roles.Viewer) ([]Poll, error)
	SaveResponse(ctx context.Context, resp Response) (*Response, error)
	ListResponses(ctx context.Context, pollID uuid.UUID) ([]Response, error)
}

// SegmentStore é o recorte do serviço de segmentos usado na criação.
type SegmentStore interface {
	Get(ctx context.Context, id uuid.UUID) (*segment.Segment, error)
}

// Service centraliza casos de uso de pesquisas.
type Service struct {
	store    Store
	segments SegmentStore
}

// NewService cria nova instância do serviço.
func NewService(store Store, segments SegmentStore) *Service {
	return &Service{store: store, segments: segments}
}

// Create valida as perguntas e herda as cidades do segmento alvo.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Poll, error) {
	if err := util.RequireString(input.Title, "título"); err != nil {
		return nil, err
	}
	if err := ValidateQuestions(input.Questions); err != nil {
		return nil, err
	}

	var cityIDs []uuid.UUID
	if input.SegmentID != nil {
		seg, err := s.segments.Get(ctx, *input.SegmentID)
		if err != nil {
			return nil, err
		}
		if seg.CityID != nil {
			cityIDs = []uuid.UUID{*seg.CityID}
		}
	}

	return s.store.Create(ctx, Poll{
		ID:        uuid.New(),
		Title:     input.Title,
		Questions: input.Questions,
		SegmentID: input.SegmentID,
		CityIDs:   cityIDs,
		Status:    StatusActive,
	})
}

// ChangeStatus ativa ou encerra a pesquisa.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status string) (*Poll, error) {
	switch status {
	case StatusActive, StatusClosed:
	default:
		return nil, ErrInvalidStatus
	}
	return s.store.ChangeStatus(ctx, id, status)
}

// Delete remove a pesquisa.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera pesquisa pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Poll, error) {
	return s.store.GetByID(ctx, id)
}

// List devolve pesquisas visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer) ([]Poll, error) {
	return s.store.List(ctx, viewer)
}

// Respond valida as respostas contra as perguntas e grava uma única resposta
// por usuário.
func (s *Service) Respond(ctx context.Context, pollID, userID uuid.UUID, answers map[uuid.UUID]string) (*Response, error) {
	p, err := s.store.GetByID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusActive {
		return nil, ErrInvalidStatus
	}
	if err := ValidateAnswers(p.Questions, answers); err != nil {
		return nil, err
	}

	return s.store.SaveResponse(ctx, Response{
		ID:      uuid.New(),
		PollID:  pollID,
		UserID:  userID,
		Answers: answers,
	})
}

// Responses devolve as respostas recebidas pela pesquisa.
func (s *Service) Responses(ctx context.Context, pollID uuid.UUID) ([]Response, error) {
	return s.store.ListResponses(ctx, pollID)
}

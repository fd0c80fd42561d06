package demand

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de demandas.
type Store interface {
	Create(ctx context.Context, d Demand) (*Demand, error)
	Update(ctx context.Context, input UpdateInput) (*Demand, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, to string, authorID uuid.UUID, note string) (*Demand, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Demand, error)
	List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Demand, error)
	ProtocolExists(ctx context.Context, protocol string) (bool, error)
}

// Service centraliza casos de uso de demandas.
type Service struct {
	store Store
}

// NewService cria nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create abre a demanda com protocolo único e histórico inicial.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Demand, error) {
	if err := util.RequireString(input.Description, "descrição"); err != nil {
		return nil, err
	}
	if input.VoterID == uuid.Nil {
		return nil, util.Invalid("eleitor obrigatório")
	}
	if input.CityID == uuid.Nil {
		return nil, util.Invalid("cidade obrigatória")
	}

	protocol, err := s.newProtocol(ctx)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	return s.store.Create(ctx, Demand{
		ID:            id,
		Protocol:      protocol,
		VoterID:       input.VoterID,
		CityID:        input.CityID,
		Description:   input.Description,
		Status:        StatusNew,
		RelatedUserID: input.RelatedUserID,
		Documents:     input.Documents,
		Updates: []StatusUpdate{{
			ID:       uuid.New(),
			DemandID: id,
			AuthorID: input.AuthorID,
			ToStatus: StatusNew,
		}},
	})
}

// newProtocol gera DEM-<ano>-<6 alfanuméricos>, reamostrando em colisão.
func (s *Service) newProtocol(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := util.RandomCode(6)
		if err != nil {
			return "", err
		}
		protocol := fmt.Sprintf("DEM-%d-%s", time.Now().Year(), code)
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

// Update altera dados cadastrais da demanda.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Demand, error) {
	if input.Description != nil {
		if err := util.RequireString(*input.Description, "descrição"); err != nil {
			return nil, err
		}
	}
	return s.store.Update(ctx, input)
}

// ChangeStatus aplica a transição de fluxo registrando autor e observação.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to string, authorID uuid.UUID, note string) (*Demand, error) {
	to = NormalizeStatus(to)
	if !IsValidStatus(to) {
		return nil, ErrInvalidStatus
	}
	return s.store.ChangeStatus(ctx, id, to, authorID, note)
}

// Delete remove a demanda.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera a demanda com histórico.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Demand, error) {
	return s.store.GetByID(ctx, id)
}

// List devolve demandas visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Demand, error) {
	if filter.Status != "" {
		filter.Status = NormalizeStatus(filter.Status)
		if !IsValidStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
	}
	return s.store.List(ctx, viewer, filter)
}

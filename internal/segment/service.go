package segment

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de segmentos.
type Store interface {
	Create(ctx context.Context, s Segment) (*Segment, error)
	Update(ctx context.Context, input UpdateInput) (*Segment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Segment, error)
	List(ctx context.Context, viewer roles.Viewer) ([]Segment, error)
	Resolve(ctx context.Context, s *Segment) ([]uuid.UUID, error)
}

// Service centraliza casos de uso de segmentos.
type Service struct {
	store Store
}

// NewService cria nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create valida e cadastra a definição do filtro.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Segment, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}
	if err := validateRange(input.AgeMin, input.AgeMax); err != nil {
		return nil, err
	}
	statuses, err := normalizeStatuses(input.DemandStatuses)
	if err != nil {
		return nil, err
	}

	return s.store.Create(ctx, Segment{
		ID:             uuid.New(),
		Name:           input.Name,
		CityID:         input.CityID,
		Bairro:         input.Bairro,
		AgeMin:         input.AgeMin,
		AgeMax:         input.AgeMax,
		DemandStatuses: statuses,
	})
}

// Update altera a definição revalidando o que mudou.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Segment, error) {
	if input.Name != nil {
		if err := util.RequireString(*input.Name, "nome"); err != nil {
			return nil, err
		}
	}
	if input.AgeMin != nil || input.AgeMax != nil {
		if err := validateRange(input.AgeMin, input.AgeMax); err != nil {
			return nil, err
		}
	}
	if input.DemandStatuses != nil {
		statuses, err := normalizeStatuses(input.DemandStatuses)
		if err != nil {
			return nil, err
		}
		input.DemandStatuses = statuses
	}
	return s.store.Update(ctx, input)
}

// Delete remove o segmento.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera segmento pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Segment, error) {
	return s.store.GetByID(ctx, id)
}

// List devolve segmentos visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer) ([]Segment, error) {
	return s.store.List(ctx, viewer)
}

// Resolve devolve os IDs dos eleitores que casam com o segmento agora.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	seg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.store.Resolve(ctx, seg)
}

func validateRange(min, max *int) error {
	if min != nil && *min < 0 {
		return ErrInvalidRange
	}
	if max != nil && *max < 0 {
		return ErrInvalidRange
	}
	if min != nil && max != nil && *min > *max {
		return ErrInvalidRange
	}
	return nil
}

func normalizeStatuses(statuses []string) ([]string, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(statuses))
	for _, st := range statuses {
		st = demand.NormalizeStatus(st)
		if !demand.IsValidStatus(st) {
			return nil, demand.ErrInvalidStatus
		}
		out = append(out, st)
	}
	return out, nil
}

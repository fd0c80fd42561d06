package visit

import (
	"context"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de visitas.
type Store interface {
	Create(ctx context.Context, v Visit) (*Visit, error)
	Update(ctx context.Context, input UpdateInput) (*Visit, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Visit, error)
}

// Service centraliza casos de uso de visitas.
type Service struct {
	store Store
}

// NewService cria nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create agenda a visita com status inicial scheduled.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Visit, error) {
	if input.VoterID == uuid.Nil {
		return nil, util.Invalid("eleitor obrigatório")
	}
	if input.CityID == uuid.Nil {
		return nil, util.Invalid("cidade obrigatória")
	}
	if input.ScheduledAt.IsZero() {
		return nil, util.Invalid("data e hora obrigatórias")
	}

	reason := NormalizeReason(input.Reason)
	if !IsValidReason(reason) {
		return nil, ErrInvalidReason
	}

	return s.store.Create(ctx, Visit{
		ID:            uuid.New(),
		VoterID:       input.VoterID,
		CityID:        input.CityID,
		ScheduledAt:   input.ScheduledAt,
		Reason:        reason,
		Status:        StatusScheduled,
		RelatedUserID: input.RelatedUserID,
		Documents:     input.Documents,
		Observations:  input.Observations,
	})
}

// Update altera a visita revalidando enums informados.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Visit, error) {
	if input.Reason != nil {
		normalized := NormalizeReason(*input.Reason)
		if !IsValidReason(normalized) {
			return nil, ErrInvalidReason
		}
		input.Reason = &normalized
	}
	if input.Status != nil {
		normalized := NormalizeStatus(*input.Status)
		if !IsValidStatus(normalized) {
			return nil, ErrInvalidStatus
		}
		input.Status = &normalized
	}
	return s.store.Update(ctx, input)
}

// Delete remove a visita.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera visita pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.store.GetByID(ctx, id)
}

// List devolve visitas visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Visit, error) {
	if filter.Status != "" {
		filter.Status = NormalizeStatus(filter.Status)
		if !IsValidStatus(filter.Status) {
			return nil, ErrInvalidStatus
		}
	}
	if filter.Reason != "" {
		filter.Reason = NormalizeReason(filter.Reason)
		if !IsValidReason(filter.Reason) {
			return nil, ErrInvalidReason
		}
	}
	return s.store.List(ctx, viewer, filter)
}

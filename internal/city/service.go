package city

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/util"
)

// Store define o acesso a dados exigido pelo serviço de cidades.
type Store interface {
	Create(ctx context.Context, input CreateInput) (*City, error)
	Update(ctx context.Context, input UpdateInput) (*City, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*City, error)
	List(ctx context.Context, viewer roles.Viewer) ([]City, error)
	NameExists(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	ListStaff(ctx context.Context) ([]StaffAssignment, error)
	ApplyRoleChanges(ctx context.Context, set RoleChangeSet) error
}

// Service reúne regras de negócio de cidades e atribuição de papéis.
type Service struct {
	store Store
}

// NewService cria nova instância do serviço.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create cadastra cidade com nome único global.
func (s *Service) Create(ctx context.Context, input CreateInput) (*City, error) {
	if err := util.RequireString(input.Name, "nome"); err != nil {
		return nil, err
	}
	if err := util.RequireString(input.State, "estado"); err != nil {
		return nil, err
	}

	input.Status = NormalizeStatus(input.Status)
	if !IsValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	taken, err := s.store.NameExists(ctx, input.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	return s.store.Create(ctx, input)
}

// Update altera dados principais revalidando unicidade do nome.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*City, error) {
	if input.Name != nil {
		if err := util.RequireString(*input.Name, "nome"); err != nil {
			return nil, err
		}
		taken, err := s.store.NameExists(ctx, *input.Name, input.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNameTaken
		}
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

// Delete remove a cidade.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// Get recupera cidade pelo ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*City, error) {
	return s.store.GetByID(ctx, id)
}

// List devolve cidades visíveis ao viewer.
func (s *Service) List(ctx context.Context, viewer roles.Viewer) ([]City, error) {
	return s.store.List(ctx, viewer)
}

// AssignRoles aplica o estado desejado dos quatro slots da cidade garantindo
// que nenhum usuário ocupe mais de um slot em qualquer cidade:
// quem sai é rebaixado a eleitor (mantendo a cidade), quem entra é promovido
// com a cidade alvo, tudo em uma única transação no store.
func (s *Service) AssignRoles(ctx context.Context, cityID uuid.UUID, input AssignRolesInput) error {
	desired := make(map[uuid.UUID]roles.Role)

	add := func(id uuid.UUID, role roles.Role) error {
		if id == uuid.Nil {
			return nil
		}
		if _, ok := desired[id]; ok {
			return ErrDuplicateAssignment
		}
		desired[id] = role
		return nil
	}

	if input.AdministratorID != nil {
		if err := add(*input.AdministratorID, roles.CityAdmin); err != nil {
			return err
		}
	}
	if input.MayorID != nil {
		if err := add(*input.MayorID, roles.Mayor); err != nil {
			return err
		}
	}
	for _, id := range input.VereadorIDs {
		if err := add(id, roles.Vereador); err != nil {
			return err
		}
	}
	for _, id := range input.CaboEleitoralIDs {
		if err := add(id, roles.CaboEleitoral); err != nil {
			return err
		}
	}

	staff, err := s.store.ListStaff(ctx)
	if err != nil {
		return err
	}

	var demotions []uuid.UUID
	for _, a := range staff {
		if _, retained := desired[a.UserID]; retained {
			continue
		}
		if a.CityID != nil && *a.CityID == cityID {
			demotions = append(demotions, a.UserID)
		}
	}

	promotions := make([]RoleChange, 0, len(desired))
	for id, role := range desired {
		promotions = append(promotions, RoleChange{UserID: id, Role: role})
	}

	// ordem determinística: falhas parciais e execuções concorrentes
	// serializam do mesmo jeito
	sort.Slice(demotions, func(i, j int) bool {
		return demotions[i].String() < demotions[j].String()
	})
	sort.Slice(promotions, func(i, j int) bool {
		return promotions[i].UserID.String() < promotions[j].UserID.String()
	})

	return s.store.ApplyRoleChanges(ctx, RoleChangeSet{
		CityID:          cityID,
		Demotions:       demotions,
		Promotions:      promotions,
		AdministratorID: input.AdministratorID,
		MayorID:         input.MayorID,
	})
}

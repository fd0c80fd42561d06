package city

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

// stubStore mantém papéis em memória e aplica RoleChangeSet como o Postgres
// faria, permitindo verificar o invariante entre chamadas.
type stubStore struct {
	staff      map[uuid.UUID]StaffAssignment
	cities     map[uuid.UUID]*City
	lastChange RoleChangeSet
}

func newStubStore() *stubStore {
	return &stubStore{
		staff:  make(map[uuid.UUID]StaffAssignment),
		cities: make(map[uuid.UUID]*City),
	}
}

func (s *stubStore) Create(ctx context.Context, input CreateInput) (*City, error) {
	c := &City{ID: uuid.New(), Name: input.Name, State: input.State, Status: input.Status}
	s.cities[c.ID] = c
	return c, nil
}

func (s *stubStore) Update(ctx context.Context, input UpdateInput) (*City, error) {
	return s.cities[input.ID], nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*City, error) {
	c, ok := s.cities[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *stubStore) List(ctx context.Context, viewer roles.Viewer) ([]City, error) {
	return nil, nil
}

func (s *stubStore) NameExists(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	for _, c := range s.cities {
		if c.Name == name && c.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubStore) ListStaff(ctx context.Context) ([]StaffAssignment, error) {
	out := make([]StaffAssignment, 0, len(s.staff))
	for _, a := range s.staff {
		out = append(out, a)
	}
	return out, nil
}

func (s *stubStore) ApplyRoleChanges(ctx context.Context, set RoleChangeSet) error {
	s.lastChange = set

	for _, id := range set.Demotions {
		delete(s.staff, id)
	}
	for _, c := range s.cities {
		if c.ID == set.CityID {
			continue
		}
		for _, change := range set.Promotions {
			if c.AdministratorID != nil && *c.AdministratorID == change.UserID {
				c.AdministratorID = nil
			}
			if c.MayorID != nil && *c.MayorID == change.UserID {
				c.MayorID = nil
			}
		}
		for _, id := range set.Demotions {
			if c.AdministratorID != nil && *c.AdministratorID == id {
				c.AdministratorID = nil
			}
			if c.MayorID != nil && *c.MayorID == id {
				c.MayorID = nil
			}
		}
	}
	cityID := set.CityID
	for _, change := range set.Promotions {
		s.staff[change.UserID] = StaffAssignment{UserID: change.UserID, Role: change.Role, CityID: &cityID}
	}
	if target, ok := s.cities[set.CityID]; ok {
		target.AdministratorID = set.AdministratorID
		target.MayorID = set.MayorID
	}
	return nil
}

// checkInvariant falha se algum usuário ocupar mais de um slot considerando
// papéis e colunas de cidade.
func (s *stubStore) checkInvariant(t *testing.T) {
	t.Helper()
	seen := make(map[uuid.UUID]int)
	for id := range s.staff {
		seen[id]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("usuário %s ocupa %d slots", id, n)
		}
	}
	for _, c := range s.cities {
		if c.MayorID != nil {
			if a, ok := s.staff[*c.MayorID]; !ok || a.Role != roles.Mayor {
				t.Fatalf("cidade %s aponta prefeito sem papel correspondente", c.Name)
			}
		}
	}
}

func TestAssignRolesMovesMayorBetweenCities(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	city1, _ := svc.Create(ctx, CreateInput{Name: "Zabelê", State: "PB", Status: StatusActive})
	city2, _ := svc.Create(ctx, CreateInput{Name: "Monteiro", State: "PB", Status: StatusActive})

	u1 := uuid.New()
	if err := svc.AssignRoles(ctx, city1.ID, AssignRolesInput{MayorID: &u1}); err != nil {
		t.Fatalf("primeira atribuição: %v", err)
	}
	store.checkInvariant(t)

	if store.cities[city1.ID].MayorID == nil || *store.cities[city1.ID].MayorID != u1 {
		t.Fatal("cidade 1 deveria ter u1 como prefeito")
	}

	if err := svc.AssignRoles(ctx, city2.ID, AssignRolesInput{MayorID: &u1}); err != nil {
		t.Fatalf("segunda atribuição: %v", err)
	}
	store.checkInvariant(t)

	if store.cities[city1.ID].MayorID != nil {
		t.Fatal("slot de prefeito da cidade 1 deveria ter sido desocupado")
	}
	if store.cities[city2.ID].MayorID == nil || *store.cities[city2.ID].MayorID != u1 {
		t.Fatal("cidade 2 deveria ter u1 como prefeito")
	}
	if a := store.staff[u1]; a.CityID == nil || *a.CityID != city2.ID {
		t.Fatal("city_id de u1 deveria apontar para a cidade 2")
	}
}

func TestAssignRolesDemotesRemovedStaff(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	c, _ := svc.Create(ctx, CreateInput{Name: "Sumé", State: "PB", Status: StatusActive})

	v1, v2, cabo := uuid.New(), uuid.New(), uuid.New()
	err := svc.AssignRoles(ctx, c.ID, AssignRolesInput{
		VereadorIDs:      []uuid.UUID{v1, v2},
		CaboEleitoralIDs: []uuid.UUID{cabo},
	})
	if err != nil {
		t.Fatalf("atribuição inicial: %v", err)
	}

	// v2 sai da lista: deve ser rebaixado a eleitor
	err = svc.AssignRoles(ctx, c.ID, AssignRolesInput{
		VereadorIDs:      []uuid.UUID{v1},
		CaboEleitoralIDs: []uuid.UUID{cabo},
	})
	if err != nil {
		t.Fatalf("segunda atribuição: %v", err)
	}
	store.checkInvariant(t)

	if _, ok := store.staff[v2]; ok {
		t.Fatal("v2 deveria ter sido rebaixado")
	}
	found := false
	for _, id := range store.lastChange.Demotions {
		if id == v2 {
			found = true
		}
	}
	if !found {
		t.Fatal("v2 deveria constar nas demotions da última chamada")
	}
	if a := store.staff[v1]; a.Role != roles.Vereador {
		t.Fatal("v1 deveria seguir como vereador")
	}
}

func TestAssignRolesRejectsDuplicateInSameCall(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	c, _ := svc.Create(ctx, CreateInput{Name: "Camalaú", State: "PB", Status: StatusActive})

	dup := uuid.New()
	err := svc.AssignRoles(ctx, c.ID, AssignRolesInput{
		MayorID:     &dup,
		VereadorIDs: []uuid.UUID{dup},
	})
	if err != ErrDuplicateAssignment {
		t.Fatalf("esperado ErrDuplicateAssignment, veio %v", err)
	}
}

func TestAssignRolesSlotSwapWithinCall(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	c, _ := svc.Create(ctx, CreateInput{Name: "Congo", State: "PB", Status: StatusActive})

	u := uuid.New()
	if err := svc.AssignRoles(ctx, c.ID, AssignRolesInput{VereadorIDs: []uuid.UUID{u}}); err != nil {
		t.Fatalf("atribuição inicial: %v", err)
	}

	// u troca de vereador para prefeito na mesma chamada
	if err := svc.AssignRoles(ctx, c.ID, AssignRolesInput{MayorID: &u}); err != nil {
		t.Fatalf("troca de slot: %v", err)
	}
	store.checkInvariant(t)

	if a := store.staff[u]; a.Role != roles.Mayor {
		t.Fatalf("u deveria ser prefeito, é %s", a.Role)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	if _, err := svc.Create(ctx, CreateInput{Name: "Zabelê", State: "PB"}); err != nil {
		t.Fatalf("criação inicial: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Zabelê", State: "PB"}); err != ErrNameTaken {
		t.Fatalf("esperado ErrNameTaken, veio %v", err)
	}
}

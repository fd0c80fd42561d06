package demand

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
)

type stubStore struct {
	demands map[uuid.UUID]*Demand
}

func newStubStore() *stubStore {
	return &stubStore{demands: make(map[uuid.UUID]*Demand)}
}

func (s *stubStore) Create(ctx context.Context, d Demand) (*Demand, error) {
	s.demands[d.ID] = &d
	return &d, nil
}

func (s *stubStore) Update(ctx context.Context, input UpdateInput) (*Demand, error) {
	d, ok := s.demands[input.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Description != nil {
		d.Description = *input.Description
	}
	return d, nil
}

func (s *stubStore) ChangeStatus(ctx context.Context, id uuid.UUID, to string, authorID uuid.UUID, note string) (*Demand, error) {
	d, ok := s.demands[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !CanTransition(d.Status, to) {
		return nil, ErrInvalidTransition
	}
	d.Updates = append(d.Updates, StatusUpdate{
		ID: uuid.New(), DemandID: id, AuthorID: authorID, FromStatus: d.Status, ToStatus: to, Note: note,
	})
	d.Status = to
	return d, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*Demand, error) {
	d, ok := s.demands[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *stubStore) List(ctx context.Context, viewer roles.Viewer, filter Filter) ([]Demand, error) {
	return nil, nil
}

func (s *stubStore) ProtocolExists(ctx context.Context, protocol string) (bool, error) {
	for _, d := range s.demands {
		if d.Protocol == protocol {
			return true, nil
		}
	}
	return false, nil
}

func TestCreateGeneratesProtocol(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStubStore())

	d, err := svc.Create(ctx, CreateInput{
		VoterID:     uuid.New(),
		CityID:      uuid.New(),
		Description: "Iluminação da rua principal apagada",
		AuthorID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("criação: %v", err)
	}

	pattern := regexp.MustCompile(`^DEM-\d{4}-[A-Za-z0-9]{6}$`)
	if !pattern.MatchString(d.Protocol) {
		t.Fatalf("protocolo fora do formato: %q", d.Protocol)
	}
	if d.Status != StatusNew {
		t.Fatalf("status inicial deveria ser new, é %s", d.Status)
	}
	if len(d.Updates) != 1 || d.Updates[0].ToStatus != StatusNew {
		t.Fatal("histórico inicial ausente")
	}
}

func TestChangeStatusFollowsWorkflow(t *testing.T) {
	ctx := context.Background()
	store := newStubStore()
	svc := NewService(store)

	d, err := svc.Create(ctx, CreateInput{
		VoterID:     uuid.New(),
		CityID:      uuid.New(),
		Description: "Buraco na estrada",
		AuthorID:    uuid.New(),
	})
	if err != nil {
		t.Fatalf("criação: %v", err)
	}
	author := uuid.New()

	// new -> resolved pula etapa: rejeitado
	if _, err := svc.ChangeStatus(ctx, d.ID, StatusResolved, author, ""); err != ErrInvalidTransition {
		t.Fatalf("esperado ErrInvalidTransition, veio %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, d.ID, StatusUnderReview, author, "em análise"); err != nil {
		t.Fatalf("new -> under_review: %v", err)
	}
	updated, err := svc.ChangeStatus(ctx, d.ID, StatusResolved, author, "obra concluída")
	if err != nil {
		t.Fatalf("under_review -> resolved: %v", err)
	}

	if updated.Status != StatusResolved {
		t.Fatalf("status final deveria ser resolved, é %s", updated.Status)
	}
	if len(updated.Updates) != 3 {
		t.Fatalf("histórico deveria ter 3 entradas, tem %d", len(updated.Updates))
	}
	last := updated.Updates[len(updated.Updates)-1]
	if last.FromStatus != StatusUnderReview || last.ToStatus != StatusResolved || last.AuthorID != author {
		t.Fatal("última entrada do histórico não registra a transição")
	}

	// resolved é terminal
	if _, err := svc.ChangeStatus(ctx, d.ID, StatusUnderReview, author, ""); err != ErrInvalidTransition {
		t.Fatalf("esperado ErrInvalidTransition em estado terminal, veio %v", err)
	}
}

func TestChangeStatusRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newStubStore())
	if _, err := svc.ChangeStatus(context.Background(), uuid.New(), "arquivada", uuid.New(), ""); err != ErrInvalidStatus {
		t.Fatalf("esperado ErrInvalidStatus, veio %v", err)
	}
}

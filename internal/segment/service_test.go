package segment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/roles"
)

type stubStore struct {
	segments map[uuid.UUID]*Segment
	resolved []uuid.UUID
}

func newStubStore() *stubStore {
	return &stubStore{segments: map[uuid.UUID]*Segment{}}
}

func (s *stubStore) Create(ctx context.Context, seg Segment) (*Segment, error) {
	s.segments[seg.ID] = &seg
	return &seg, nil
}

func (s *stubStore) Update(ctx context.Context, input UpdateInput) (*Segment, error) {
	seg, ok := s.segments[input.ID]
	if !ok {
		return nil, ErrNotFound
	}
	if input.Name != nil {
		seg.Name = *input.Name
	}
	if input.AgeMin != nil {
		seg.AgeMin = input.AgeMin
	}
	if input.AgeMax != nil {
		seg.AgeMax = input.AgeMax
	}
	if input.DemandStatuses != nil {
		seg.DemandStatuses = input.DemandStatuses
	}
	return seg, nil
}

func (s *stubStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.segments[id]; !ok {
		return ErrNotFound
	}
	delete(s.segments, id)
	return nil
}

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*Segment, error) {
	seg, ok := s.segments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return seg, nil
}

func (s *stubStore) List(ctx context.Context, viewer roles.Viewer) ([]Segment, error) {
	out := make([]Segment, 0, len(s.segments))
	for _, seg := range s.segments {
		out = append(out, *seg)
	}
	return out, nil
}

func (s *stubStore) Resolve(ctx context.Context, seg *Segment) ([]uuid.UUID, error) {
	return s.resolved, nil
}

func intPtr(v int) *int { return &v }

func TestCreateNormalizesDemandStatuses(t *testing.T) {
	store := newStubStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:           "Bairro Centro em análise",
		Bairro:         "Centro",
		DemandStatuses: []string{" Under_Review ", "NEW"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := created.DemandStatuses; len(got) != 2 || got[0] != demand.StatusUnderReview || got[1] != demand.StatusNew {
		t.Fatalf("statuses = %v", got)
	}
}

func TestCreateRejectsUnknownDemandStatus(t *testing.T) {
	svc := NewService(newStubStore())

	_, err := svc.Create(context.Background(), CreateInput{
		Name:           "Inválido",
		DemandStatuses: []string{"arquivado"},
	})
	if !errors.Is(err, demand.ErrInvalidStatus) {
		t.Fatalf("esperava ErrInvalidStatus, veio %v", err)
	}
}

func TestCreateRejectsInvertedAgeRange(t *testing.T) {
	svc := NewService(newStubStore())

	_, err := svc.Create(context.Background(), CreateInput{
		Name:   "Faixa invertida",
		AgeMin: intPtr(60),
		AgeMax: intPtr(18),
	})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("esperava ErrInvalidRange, veio %v", err)
	}
}

func TestResolveIsDynamic(t *testing.T) {
	store := newStubStore()
	svc := NewService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Todos"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := svc.Resolve(ctx, created.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(first) != 0 {
		t.Fatalf("esperava vazio, veio %v", first)
	}

	// a base mudou; a mesma definição passa a casar com o novo eleitor
	voter := uuid.New()
	store.resolved = []uuid.UUID{voter}

	second, err := svc.Resolve(ctx, created.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(second) != 1 || second[0] != voter {
		t.Fatalf("subconjunto não refletiu a base atual: %v", second)
	}
}

package geo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/user"
)

type stubUsers struct {
	users []user.User
}

func (s stubUsers) List(ctx context.Context, viewer roles.Viewer, filter user.Filter) ([]user.User, error) {
	return s.users, nil
}

func (s stubUsers) ElectoralBase(ctx context.Context, vereadorID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s stubUsers) LinkedVoters(ctx context.Context, caboID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubActivity struct {
	counts map[uuid.UUID]Counts
}

func (s stubActivity) ActivityCounts(ctx context.Context, since time.Time) (map[uuid.UUID]Counts, error) {
	return s.counts, nil
}

// addressGeocoder resolve só quem tem endereço; o resto cai em (0,0).
type addressGeocoder struct{}

func (addressGeocoder) Geocode(ctx context.Context, address string) (Coordinate, error) {
	if address == "" {
		return Coordinate{}, nil
	}
	return Coordinate{Lat: -7.15, Lng: -34.79}, nil
}

func TestViewExcludesUnresolvedFromMarkersNotCounts(t *testing.T) {
	located := user.User{ID: uuid.New(), Nome: "Maria", Role: roles.Voter, Endereco: "Rua das Flores, 10", Bairro: "Centro"}
	unlocated := user.User{ID: uuid.New(), Nome: "João", Role: roles.Voter}

	svc := NewService(
		stubUsers{users: []user.User{located, unlocated}},
		stubActivity{counts: map[uuid.UUID]Counts{
			located.ID:   {Demands: 2, Visits: 1},
			unlocated.ID: {Demands: 3},
		}},
		addressGeocoder{},
	)

	view, err := svc.View(context.Background(), roles.Viewer{Role: roles.GeneralAdmin}, user.Filter{})
	if err != nil {
		t.Fatalf("visão do mapa: %v", err)
	}

	if len(view.Markers) != 1 {
		t.Fatalf("apenas o usuário com endereço deveria virar marcador, veio %d", len(view.Markers))
	}
	if view.Markers[0].UserID != located.ID {
		t.Fatal("marcador aponta o usuário errado")
	}
	if view.TotalUsers != 2 || view.Unresolved != 1 {
		t.Fatalf("totais deveriam incluir o não resolvido: %+v", view)
	}
	// demandas do usuário sem coordenada continuam nos totais
	if view.TotalDemands != 5 || view.TotalVisits != 1 {
		t.Fatalf("atividade total deveria somar todos os usuários: %+v", view)
	}
	if view.Markers[0].RecentDemands != 2 || view.Markers[0].RecentVisits != 1 {
		t.Fatalf("marcador deveria carregar a atividade recente: %+v", view.Markers[0])
	}
}

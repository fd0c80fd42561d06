package dashboard

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/city"
	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
	"github.com/gestaopolitica/eleitorado/internal/user"
	"github.com/gestaopolitica/eleitorado/internal/visit"
)

func TestComputeEmptySnapshot(t *testing.T) {
	s := Compute(Snapshot{})

	if s.TotalStaff != 0 || s.ActiveCities != 0 || s.OpenDemands != 0 ||
		s.ScheduledVisits != 0 || s.OpenTickets != 0 || s.TotalSegments != 0 || s.ActivePolls != 0 {
		t.Fatalf("snapshot vazio deveria zerar todos os totais: %+v", s)
	}
	if len(s.UsersByRole) != 0 || len(s.CitiesByStatus) != 0 || len(s.DemandsByStatus) != 0 {
		t.Fatal("histogramas deveriam estar vazios")
	}
	if s.RecentDemands != nil || s.RecentVisits != nil || s.RecentTickets != nil {
		t.Fatal("atividades recentes deveriam estar vazias")
	}
}

func TestComputeCountsAndHistograms(t *testing.T) {
	snap := Snapshot{
		Users: []user.User{
			{ID: uuid.New(), Role: roles.Voter},
			{ID: uuid.New(), Role: roles.Voter},
			{ID: uuid.New(), Role: roles.Vereador},
			{ID: uuid.New(), Role: roles.Mayor},
			{ID: uuid.New(), Role: roles.Pending},
		},
		Cities: []city.City{
			{ID: uuid.New(), Status: city.StatusActive},
			{ID: uuid.New(), Status: city.StatusInactive},
		},
		Demands: []demand.Demand{
			{ID: uuid.New(), Status: demand.StatusNew},
			{ID: uuid.New(), Status: demand.StatusUnderReview},
			{ID: uuid.New(), Status: demand.StatusResolved},
		},
		Visits: []visit.Visit{
			{ID: uuid.New(), Status: visit.StatusScheduled},
			{ID: uuid.New(), Status: visit.StatusDone},
		},
		Tickets: []ticket.Ticket{
			{ID: uuid.New(), Status: ticket.StatusOpen},
			{ID: uuid.New(), Status: ticket.StatusClosed},
		},
	}

	s := Compute(snap)

	if s.TotalStaff != 2 {
		t.Errorf("equipe deveria ser 2 (eleitores e pendentes fora), veio %d", s.TotalStaff)
	}
	if s.ActiveCities != 1 {
		t.Errorf("cidades ativas deveriam ser 1, veio %d", s.ActiveCities)
	}
	if s.OpenDemands != 2 {
		t.Errorf("demandas abertas deveriam ser 2, veio %d", s.OpenDemands)
	}
	if s.ScheduledVisits != 1 {
		t.Errorf("visitas agendadas deveriam ser 1, veio %d", s.ScheduledVisits)
	}
	if s.OpenTickets != 1 {
		t.Errorf("atendimentos abertos deveriam ser 1, veio %d", s.OpenTickets)
	}
	if s.UsersByRole[string(roles.Voter)] != 2 {
		t.Errorf("histograma de papéis deveria contar 2 eleitores, veio %d", s.UsersByRole[string(roles.Voter)])
	}
	if s.DemandsByStatus[demand.StatusResolved] != 1 {
		t.Errorf("histograma de demandas deveria contar 1 resolvida, veio %d", s.DemandsByStatus[demand.StatusResolved])
	}
}

func TestComputeRecentTopFiveDescending(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var demands []demand.Demand
	for i := 0; i < 8; i++ {
		demands = append(demands, demand.Demand{
			ID:        uuid.New(),
			Protocol:  "DEM",
			Status:    demand.StatusNew,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	s := Compute(Snapshot{Demands: demands})

	if len(s.RecentDemands) != 5 {
		t.Fatalf("recentes deveriam ter 5 itens, tem %d", len(s.RecentDemands))
	}
	for i := 1; i < len(s.RecentDemands); i++ {
		if s.RecentDemands[i].CreatedAt.After(s.RecentDemands[i-1].CreatedAt) {
			t.Fatal("recentes fora de ordem decrescente")
		}
	}
	if !s.RecentDemands[0].CreatedAt.Equal(base.Add(7 * time.Hour)) {
		t.Fatal("item mais novo deveria vir primeiro")
	}
}

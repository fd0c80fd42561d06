package dashboard

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/city"
	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/poll"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/segment"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
	"github.com/gestaopolitica/eleitorado/internal/user"
	"github.com/gestaopolitica/eleitorado/internal/visit"
)

const recentLimit = 5

// Snapshot reúne as coleções carregadas num instante; Compute deriva o
// resumo apenas a partir dele, sem tocar o banco.
type Snapshot struct {
	Users    []user.User
	Cities   []city.City
	Demands  []demand.Demand
	Visits   []visit.Visit
	Tickets  []ticket.Ticket
	Segments []segment.Segment
	Polls    []poll.Poll
}

// Activity é um item recente de qualquer coleção.
type Activity struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary é o resultado da agregação.
type Summary struct {
	TotalStaff      int `json:"total_staff"`
	ActiveCities    int `json:"active_cities"`
	OpenDemands     int `json:"open_demands"`
	ScheduledVisits int `json:"scheduled_visits"`
	OpenTickets     int `json:"open_tickets"`
	TotalSegments   int `json:"total_segments"`
	ActivePolls     int `json:"active_polls"`

	UsersByRole     map[string]int `json:"users_by_role"`
	CitiesByStatus  map[string]int `json:"cities_by_status"`
	DemandsByStatus map[string]int `json:"demands_by_status"`

	RecentDemands []Activity `json:"recent_demands"`
	RecentVisits  []Activity `json:"recent_visits"`
	RecentTickets []Activity `json:"recent_tickets"`
}

// Compute agrega o snapshot. Função pura: coleções vazias produzem zeros
// e mapas vazios, nunca erro.
func Compute(snap Snapshot) Summary {
	s := Summary{
		UsersByRole:     make(map[string]int),
		CitiesByStatus:  make(map[string]int),
		DemandsByStatus: make(map[string]int),
	}

	for _, u := range snap.Users {
		s.UsersByRole[string(u.Role)]++
		if u.Role != roles.Voter && u.Role != roles.Pending {
			s.TotalStaff++
		}
	}

	for _, c := range snap.Cities {
		s.CitiesByStatus[c.Status]++
		if c.Status == city.StatusActive {
			s.ActiveCities++
		}
	}

	for _, d := range snap.Demands {
		s.DemandsByStatus[d.Status]++
		if d.Status == demand.StatusNew || d.Status == demand.StatusUnderReview {
			s.OpenDemands++
		}
	}

	for _, v := range snap.Visits {
		if v.Status == visit.StatusScheduled {
			s.ScheduledVisits++
		}
	}

	for _, t := range snap.Tickets {
		if t.Status == ticket.StatusOpen || t.Status == ticket.StatusInProgress {
			s.OpenTickets++
		}
	}

	s.TotalSegments = len(snap.Segments)

	for _, p := range snap.Polls {
		if p.Status == poll.StatusActive {
			s.ActivePolls++
		}
	}

	s.RecentDemands = topRecent(snap.Demands, func(d demand.Demand) Activity {
		return Activity{ID: d.ID, Label: d.Protocol, CreatedAt: d.CreatedAt}
	})
	s.RecentVisits = topRecent(snap.Visits, func(v visit.Visit) Activity {
		return Activity{ID: v.ID, Label: v.Reason, CreatedAt: v.CreatedAt}
	})
	s.RecentTickets = topRecent(snap.Tickets, func(t ticket.Ticket) Activity {
		return Activity{ID: t.ID, Label: t.Protocol, CreatedAt: t.CreatedAt}
	})

	return s
}

func topRecent[T any](items []T, toActivity func(T) Activity) []Activity {
	if len(items) == 0 {
		return nil
	}
	out := make([]Activity, 0, len(items))
	for _, item := range items {
		out = append(out, toActivity(item))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > recentLimit {
		out = out[:recentLimit]
	}
	return out
}

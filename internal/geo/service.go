package geo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/user"
)

// activityWindow delimita o que conta como atividade recente no mapa.
const activityWindow = 30 * 24 * time.Hour

// Marker é um ponto renderizável do mapa.
type Marker struct {
	UserID        uuid.UUID  `json:"user_id"`
	Name          string     `json:"name"`
	Role          roles.Role `json:"role"`
	Bairro        string     `json:"bairro,omitempty"`
	Coord         Coordinate `json:"coord"`
	RecentDemands int        `json:"recent_demands"`
	RecentVisits  int        `json:"recent_visits"`
}

// View é o modelo do mapa: marcadores renderizáveis mais os totais, que
// incluem também os usuários sem coordenada resolvida.
type View struct {
	Markers      []Marker  `json:"markers"`
	TotalUsers   int       `json:"total_users"`
	TotalDemands int       `json:"total_demands"`
	TotalVisits  int       `json:"total_visits"`
	Unresolved   int       `json:"unresolved"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// UserSource é o recorte do serviço de usuários consumido pelo mapa.
type UserSource interface {
	List(ctx context.Context, viewer roles.Viewer, filter user.Filter) ([]user.User, error)
	ElectoralBase(ctx context.Context, vereadorID uuid.UUID) (int64, error)
	LinkedVoters(ctx context.Context, caboID uuid.UUID) (int64, error)
}

// ActivitySource fornece contagens de atividade recente por eleitor.
type ActivitySource interface {
	ActivityCounts(ctx context.Context, since time.Time) (map[uuid.UUID]Counts, error)
}

// Service monta a visão geográfica dos eleitores visíveis ao viewer.
type Service struct {
	users    UserSource
	activity ActivitySource
	geocoder Geocoder
}

// NewService cria nova instância do serviço.
func NewService(users UserSource, activity ActivitySource, geocoder Geocoder) *Service {
	return &Service{users: users, activity: activity, geocoder: geocoder}
}

// View geocodifica os usuários visíveis e anexa a atividade recente.
// Pontos sem endereço resolvível ou em (0,0) ficam fora dos marcadores,
// mas seguem contando nos totais.
func (s *Service) View(ctx context.Context, viewer roles.Viewer, filter user.Filter) (*View, error) {
	users, err := s.users.List(ctx, viewer, filter)
	if err != nil {
		return nil, err
	}

	counts, err := s.activity.ActivityCounts(ctx, time.Now().Add(-activityWindow))
	if err != nil {
		return nil, err
	}

	view := &View{TotalUsers: len(users), GeneratedAt: time.Now()}
	for _, u := range users {
		c := counts[u.ID]
		view.TotalDemands += c.Demands
		view.TotalVisits += c.Visits

		coord, err := s.geocoder.Geocode(ctx, postalAddress(u))
		if err != nil {
			return nil, err
		}
		if coord.IsZero() {
			view.Unresolved++
			continue
		}

		view.Markers = append(view.Markers, Marker{
			UserID:        u.ID,
			Name:          u.Nome,
			Role:          u.Role,
			Bairro:        u.Bairro,
			Coord:         coord,
			RecentDemands: c.Demands,
			RecentVisits:  c.Visits,
		})
	}
	return view, nil
}

// ElectoralBase conta os eleitores cuja referência de vereador é o usuário.
func (s *Service) ElectoralBase(ctx context.Context, vereadorID uuid.UUID) (int64, error) {
	return s.users.ElectoralBase(ctx, vereadorID)
}

// LinkedVoters conta os eleitores vinculados ao cabo eleitoral.
func (s *Service) LinkedVoters(ctx context.Context, caboID uuid.UUID) (int64, error) {
	return s.users.LinkedVoters(ctx, caboID)
}

func postalAddress(u user.User) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.Endereco, u.Bairro, u.CEP} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, ", ")
}

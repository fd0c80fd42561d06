package dashboard

import (
	"context"

	"github.com/gestaopolitica/eleitorado/internal/city"
	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/poll"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/segment"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
	"github.com/gestaopolitica/eleitorado/internal/user"
	"github.com/gestaopolitica/eleitorado/internal/visit"
)

// Recortes dos serviços consultados para montar o snapshot. Cada fonte já
// aplica a visibilidade do viewer, então o resumo sai recortado por papel.
type (
	UserSource interface {
		List(ctx context.Context, viewer roles.Viewer, filter user.Filter) ([]user.User, error)
	}
	CitySource interface {
		List(ctx context.Context, viewer roles.Viewer) ([]city.City, error)
	}
	DemandSource interface {
		List(ctx context.Context, viewer roles.Viewer, filter demand.Filter) ([]demand.Demand, error)
	}
	VisitSource interface {
		List(ctx context.Context, viewer roles.Viewer, filter visit.Filter) ([]visit.Visit, error)
	}
	TicketSource interface {
		List(ctx context.Context, viewer roles.Viewer, filter ticket.Filter) ([]ticket.Ticket, error)
	}
	SegmentSource interface {
		List(ctx context.Context, viewer roles.Viewer) ([]segment.Segment, error)
	}
	PollSource interface {
		List(ctx context.Context, viewer roles.Viewer) ([]poll.Poll, error)
	}
)

// Sources agrupa as fontes do snapshot.
type Sources struct {
	Users    UserSource
	Cities   CitySource
	Demands  DemandSource
	Visits   VisitSource
	Tickets  TicketSource
	Segments SegmentSource
	Polls    PollSource
}

// Service carrega o snapshot e agrega.
type Service struct {
	sources Sources
}

// NewService cria nova instância do serviço.
func NewService(sources Sources) *Service {
	return &Service{sources: sources}
}

// Summary monta o snapshot visível ao viewer e devolve a agregação.
func (s *Service) Summary(ctx context.Context, viewer roles.Viewer) (*Summary, error) {
	var (
		snap Snapshot
		err  error
	)

	if snap.Users, err = s.sources.Users.List(ctx, viewer, user.Filter{}); err != nil {
		return nil, err
	}
	if snap.Cities, err = s.sources.Cities.List(ctx, viewer); err != nil {
		return nil, err
	}
	if snap.Demands, err = s.sources.Demands.List(ctx, viewer, demand.Filter{}); err != nil {
		return nil, err
	}
	if snap.Visits, err = s.sources.Visits.List(ctx, viewer, visit.Filter{}); err != nil {
		return nil, err
	}
	if snap.Tickets, err = s.sources.Tickets.List(ctx, viewer, ticket.Filter{}); err != nil {
		return nil, err
	}
	if snap.Segments, err = s.sources.Segments.List(ctx, viewer); err != nil {
		return nil, err
	}
	if snap.Polls, err = s.sources.Polls.List(ctx, viewer); err != nil {
		return nil, err
	}

	summary := Compute(snap)
	return &summary, nil
}

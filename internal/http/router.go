package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/city"
	"github.com/gestaopolitica/eleitorado/internal/config"
	"github.com/gestaopolitica/eleitorado/internal/dashboard"
	"github.com/gestaopolitica/eleitorado/internal/demand"
	"github.com/gestaopolitica/eleitorado/internal/geo"
	httpmiddleware "github.com/gestaopolitica/eleitorado/internal/http/middleware"
	"github.com/gestaopolitica/eleitorado/internal/poll"
	"github.com/gestaopolitica/eleitorado/internal/roles"
	"github.com/gestaopolitica/eleitorado/internal/segment"
	"github.com/gestaopolitica/eleitorado/internal/service"
	"github.com/gestaopolitica/eleitorado/internal/storage"
	"github.com/gestaopolitica/eleitorado/internal/ticket"
	"github.com/gestaopolitica/eleitorado/internal/user"
	"github.com/gestaopolitica/eleitorado/internal/visit"
)

// Handler agrupa dependências dos endpoints.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	users         *user.Service
	cities        *city.Service
	demands       *demand.Service
	visits        *visit.Service
	tickets       *ticket.Service
	segments      *segment.Service
	polls         *poll.Service
	dashboard     *dashboard.Service
	geo           *geo.Service
	storage       storage.Storage
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client) (http.Handler, error) {
	userService := user.NewService(user.NewRepository(pool), cfg.InviteTTL)
	cityService := city.NewService(city.NewRepository(pool))
	demandService := demand.NewService(demand.NewRepository(pool))
	visitService := visit.NewService(visit.NewRepository(pool))
	ticketService := ticket.NewService(ticket.NewRepository(pool))
	segmentService := segment.NewService(segment.NewRepository(pool))
	pollService := poll.NewService(poll.NewRepository(pool), segmentService)

	dashboardService := dashboard.NewService(dashboard.Sources{
		Users:    userService,
		Cities:   cityService,
		Demands:  demandService,
		Visits:   visitService,
		Tickets:  ticketService,
		Segments: segmentService,
		Polls:    pollService,
	})

	geocoder := geo.NewClient(cfg.Geocoding, redisClient, log.With().Str("component", "geo").Logger())
	geoService := geo.NewService(userService, geo.NewRepository(pool), geocoder)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(userService, redisClient, jwtManager, cfg.JWTRefreshTTL)

	var blob storage.Storage = storage.Noop{}
	var err error
	switch cfg.Storage.Provider {
	case "", "noop":
		// mantém backend padrão
	case "s3", "r2":
		blob, err = storage.NewS3Client(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
		})
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
	default:
		return nil, fmt.Errorf("storage: provedor %s não suportado", cfg.Storage.Provider)
	}

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		users:         userService,
		cities:        cityService,
		demands:       demandService,
		visits:        visitService,
		tickets:       ticketService,
		segments:      segmentService,
		polls:         pollService,
		dashboard:     dashboardService,
		geo:           geoService,
		storage:       blob,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	return h.routes(), nil
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(h.cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", promhttp.Handler())

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
			auth.Post("/invite/accept", h.AcceptInvite)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(h.authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)

		private.Route("/users", func(r chi.Router) {
			r.Get("/", h.ListUsers)
			r.Get("/{id}", h.GetUser)
			r.With(requireRegisterVoters).Post("/", h.CreateUser)
			r.With(requireEditUsers).Put("/{id}", h.UpdateUser)
			r.With(requireEditUsers).Delete("/{id}", h.DeleteUser)
			r.With(requireManageCityUsers).Post("/invite", h.InviteUser)
		})

		private.Route("/cities", func(r chi.Router) {
			r.Get("/", h.ListCities)
			r.Get("/{id}", h.GetCity)
			r.With(httpmiddleware.RequireGeneralAdmin).Post("/", h.CreateCity)
			r.With(httpmiddleware.RequireGeneralAdmin).Put("/{id}", h.UpdateCity)
			r.With(httpmiddleware.RequireGeneralAdmin).Delete("/{id}", h.DeleteCity)
			r.With(requireManageCityUsers).Post("/{id}/roles", h.AssignCityRoles)
		})

		private.Route("/demands", func(r chi.Router) {
			r.Get("/", h.ListDemands)
			r.Get("/{id}", h.GetDemand)
			r.Post("/", h.CreateDemand)
			r.Put("/{id}", h.UpdateDemand)
			r.With(requireViewReports).Post("/{id}/status", h.ChangeDemandStatus)
			r.With(requireEditUsers).Delete("/{id}", h.DeleteDemand)
		})

		private.Route("/visits", func(r chi.Router) {
			r.Get("/", h.ListVisits)
			r.Get("/{id}", h.GetVisit)
			r.With(requireRegisterVoters).Post("/", h.CreateVisit)
			r.With(requireRegisterVoters).Put("/{id}", h.UpdateVisit)
			r.With(requireRegisterVoters).Delete("/{id}", h.DeleteVisit)
		})

		private.Route("/tickets", func(r chi.Router) {
			r.Get("/", h.ListTickets)
			r.Get("/{id}", h.GetTicket)
			r.Post("/", h.CreateTicket)
			r.Post("/{id}/status", h.ChangeTicketStatus)
			r.Post("/{id}/messages", h.PostTicketMessage)
			r.Post("/{id}/messages/{messageID}/read", h.MarkTicketMessageRead)
		})

		private.Route("/segments", func(r chi.Router) {
			r.Use(requireManageCampaigns)
			r.Get("/", h.ListSegments)
			r.Get("/{id}", h.GetSegment)
			r.Get("/{id}/resolve", h.ResolveSegment)
			r.Post("/", h.CreateSegment)
			r.Put("/{id}", h.UpdateSegment)
			r.Delete("/{id}", h.DeleteSegment)
		})

		private.Route("/polls", func(r chi.Router) {
			r.Get("/", h.ListPolls)
			r.Get("/{id}", h.GetPoll)
			r.Post("/{id}/responses", h.RespondPoll)
			r.With(requireManageCampaigns).Post("/", h.CreatePoll)
			r.With(requireManageCampaigns).Post("/{id}/status", h.ChangePollStatus)
			r.With(requireManageCampaigns).Get("/{id}/responses", h.ListPollResponses)
			r.With(requireManageCampaigns).Delete("/{id}", h.DeletePoll)
		})

		private.With(requireViewReports).Get("/dashboard", h.Dashboard)

		private.Route("/map", func(r chi.Router) {
			r.Use(requireViewCityMap)
			r.Get("/", h.MapView)
			r.Get("/electoral-base/{id}", h.ElectoralBase)
			r.Get("/linked-voters/{id}", h.LinkedVoters)
		})
	})

	return r
}

var (
	requireManageCityUsers = httpmiddleware.RequirePermission(func(p roles.Permissions) bool {
		return p.CanManageCityUsers
	})
	requireEditUsers = httpmiddleware.RequirePermission(func(p roles.Permissions) bool {
		return p.CanEditUsers
	})
	requireRegisterVoters = httpmiddleware.RequirePermission(func(p roles.Permissions) bool {
		return p.CanRegisterVoters
	})
	requireViewReports = httpmiddleware.RequirePermission(func(p roles.Permissions) bool {
		return p.CanViewReports
	})
	requireViewCityMap = httpmiddleware.RequirePermission(func(p roles.Permissions) bool {
		return p.CanViewCityMap
	})
	requireManageCampaigns = httpmiddleware.RequirePermission(func(p roles.Permissions) bool {
		return p.CanManageCampaigns
	})
)

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/user"
)

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra login, renovação e revogação de sessões.
// O estado do refresh token vive no Redis sob refresh:<hash>, com TTL.
type AuthService struct {
	users      *user.Service
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(users *user.Service, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{users: users, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT expõe o gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Session representa o retorno padrão de autenticações.
type Session struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
}

// Login autentica por e-mail e senha e abre a sessão.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		log.Warn().Str("email", email).Msg("login recusado")
		return nil, err
	}
	return s.openSession(ctx, u)
}

// Refresh troca o refresh token por uma sessão nova, revogando o anterior.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*Session, error) {
	hash := auth.HashRefreshToken(rawToken)
	key := auth.RefreshRedisKey(hash)

	stored, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}

	subject, err := uuid.Parse(stored)
	if err != nil {
		return nil, auth.ErrInvalidRefresh
	}
	u, err := s.users.Get(ctx, subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, auth.ErrInvalidRefresh
		}
		return nil, err
	}
	if u.Status != user.StatusActive {
		return nil, auth.ErrInvalidRefresh
	}

	if err := s.redis.Del(ctx, key).Err(); err != nil {
		return nil, err
	}
	return s.openSession(ctx, u)
}

// Logout revoga o refresh token atual.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	key := auth.RefreshRedisKey(auth.HashRefreshToken(rawToken))
	return s.redis.Del(ctx, key).Err()
}

// Me devolve o perfil do usuário autenticado.
func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.users.Get(ctx, id)
}

func (s *AuthService) openSession(ctx context.Context, u *user.User) (*Session, error) {
	cityID := ""
	if u.CityID != nil {
		cityID = u.CityID.String()
	}
	access, _, err := s.jwt.GenerateAccessToken(u.ID.String(), string(u.Role), cityID)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	key := auth.RefreshRedisKey(refreshHash)
	if err := s.redis.Set(ctx, key, u.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &Session{User: u, AccessToken: access, RefreshToken: rawRefresh}, nil
}

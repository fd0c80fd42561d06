package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaopolitica/eleitorado/internal/auth"
	"github.com/gestaopolitica/eleitorado/internal/roles"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeyRole    contextKey = "role"
	ContextKeyCity    contextKey = "city"
)

// Auth valida o JWT de acesso e injeta as claims no contexto.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			role := roles.Normalize(claims.Role)
			if !roles.IsValid(role) {
				writeError(w, http.StatusUnauthorized, "AUTH", "papel inválido")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, role)
			ctx = context.WithValue(ctx, ContextKeyCity, claims.CityID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubject recupera o subject do contexto.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetRole recupera o papel do contexto.
func GetRole(ctx context.Context) roles.Role {
	val, _ := ctx.Value(ContextKeyRole).(roles.Role)
	return val
}

// GetCityID recupera a cidade do contexto.
func GetCityID(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyCity).(string)
	return val
}

// GetViewer monta o viewer do usuário autenticado a partir das claims.
// As permissões nunca vêm do token: são projetadas do papel a cada uso.
func GetViewer(ctx context.Context) roles.Viewer {
	v := roles.Viewer{Role: GetRole(ctx)}
	if id, err := uuid.Parse(GetSubject(ctx)); err == nil {
		v.UserID = id
	}
	if cityID, err := uuid.Parse(GetCityID(ctx)); err == nil {
		v.CityID = &cityID
	}
	return v
}

// RequirePermission libera a rota apenas para papéis cuja projeção de
// permissões satisfaça o seletor.
func RequirePermission(selector func(roles.Permissions) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			perms := roles.PermissionsFor(GetRole(r.Context()))
			if !selector(perms) {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "permissão insuficiente")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGeneralAdmin garante papel de administrador geral.
func RequireGeneralAdmin(next http.Handler) http.Handler {
	return RequirePermission(func(p roles.Permissions) bool {
		return p.CanManageAllCities
	})(next)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}

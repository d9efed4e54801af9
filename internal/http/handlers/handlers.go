package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/internal/http/response"
	"github.com/veridian/gatepass/internal/repo/postgres"
	"github.com/veridian/gatepass/internal/service"
	"github.com/veridian/gatepass/pkg/auth"
	"github.com/veridian/gatepass/pkg/config"
	"github.com/veridian/gatepass/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

type Handlers struct {
	visitors  service.VisitorService
	packages  service.PackageService
	reminders service.ReminderService
	users     postgres.UserRepository

	jwtSecret  string
	cronSecret string
}

func New(
	visitors service.VisitorService,
	packages service.PackageService,
	reminders service.ReminderService,
	users postgres.UserRepository,
	cfg *config.Config,
) *Handlers {
	return &Handlers{
		visitors:   visitors,
		packages:   packages,
		reminders:  reminders,
		users:      users,
		jwtSecret:  cfg.Auth.JWTSecret,
		cronSecret: cfg.Cron.Secret,
	}
}

// RequireRole authenticates the caller and checks the role. Admin passes any
// role gate. Claims carry the community id that scopes every lookup.
func (h *Handlers) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, h.jwtSecret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}
			if claims.CommunityID == "" {
				response.Forbidden(w, "Token is not scoped to a community")
				return
			}

			if len(roles) > 0 && claims.Role != auth.RoleAdmin {
				allowed := false
				for _, role := range roles {
					if claims.Role == role {
						allowed = true
						break
					}
				}
				if !allowed {
					response.Forbidden(w, "Insufficient permissions")
					return
				}
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
			ctx = context.WithValue(ctx, logger.CommunityIDKey, claims.CommunityID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) *auth.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeServiceError maps domain errors onto the HTTP taxonomy. Anything
// unrecognized is a persistence or transport failure and stays generic.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		response.BadRequest(w, ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Not found")
	case errors.Is(err, domain.ErrNotCheckedIn):
		response.PreconditionFailed(w, err.Error())
	case domain.IsConflict(err):
		response.Conflict(w, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "error", err, "path", r.URL.Path)
		response.InternalError(w, "Internal server error")
	}
}

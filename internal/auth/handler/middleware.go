package handler

import (
	"net/http"
	"strings"

	"github.com/smartextemp/extemp-backend/internal/auth/jwt"
	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/smartextemp/extemp-backend/pkg/httputil"
)

// Middleware validates the Bearer token and populates the user context
func Middleware(manager *jwt.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.Error(w, r, errors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				httputil.Error(w, r, errors.Unauthorized("malformed authorization header"))
				return
			}

			claims, err := manager.ValidateAccessToken(parts[1])
			if err != nil {
				httputil.Error(w, r, err)
				return
			}

			ctx := httputil.WithUserContext(r.Context(), claims.UserID, claims.Username, claims.Name, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

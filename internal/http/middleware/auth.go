package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/casecraft/casecraft-api/internal/apperr"
	"github.com/casecraft/casecraft-api/internal/http/apierr"
	"github.com/casecraft/casecraft-api/internal/model"
	"github.com/casecraft/casecraft-api/internal/service"
)

type principalKey struct{}

// Authenticate validates the bearer token from the Authorization header and
// resolves the live account into the request context.
func Authenticate(authSvc service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondError(w, apperr.InvalidTokenErr)
				return
			}

			subject, err := authSvc.ValidateToken(token)
			if err != nil {
				respondError(w, err)
				return
			}

			principal, err := authSvc.CurrentUser(r.Context(), subject)
			if err != nil {
				respondError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated account, if any.
func PrincipalFromContext(ctx context.Context) (model.User, bool) {
	principal, ok := ctx.Value(principalKey{}).(model.User)
	return principal, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	return parts[1], true
}

func respondError(w http.ResponseWriter, err error) {
	res := apierr.New(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}

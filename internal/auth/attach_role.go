package auth

import (
	"context"
	"errors"
	"net/http"
)

type roleSource interface {
	Role(ctx context.Context, userID string) (string, error)
}

// AttachRoleFromDB replaces the token role with the stored one so that role
// changes apply before tokens expire. allowClaimFallback keeps the token
// role for subjects missing from the users table (offline mode only).
func AttachRoleFromDB(users roleSource, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller := CallerFromContext(ctx)

			role, err := users.Role(ctx, caller.Subject)
			switch {
			case err == nil && role != "":
				next.ServeHTTP(w, r.WithContext(WithRole(ctx, role)))
			case errors.Is(err, ErrUserNotFound) && allowClaimFallback && caller.Role != "":
				next.ServeHTTP(w, r)
			default:
				writeError(w, http.StatusForbidden, "forbidden")
			}
		})
	}
}

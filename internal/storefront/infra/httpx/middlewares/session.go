package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jcmexdev/storefront/internal/pkg/constants"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

// Authenticate resolves a Bearer token into a session. Requests without a
// token pass through anonymously; a token that does not resolve is rejected.
func Authenticate(provider ports.SessionProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := provider.CurrentUser(r.Context(), token)
			if err != nil {
				if errors.Is(err, entity.ErrUnauthenticated) {
					unauthorized(w, err.Error())
					return
				}
				slog.ErrorContext(r.Context(), "session lookup failed", "error", err)
				writeJSON(w, http.StatusInternalServerError, "internal_error", "session lookup failed")
				return
			}

			ctx := context.WithValue(r.Context(), constants.ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Session(r.Context()).Valid() {
			unauthorized(w, "missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Session returns the caller attached by Authenticate, or nil.
func Session(ctx context.Context) *entity.Session {
	sess, _ := ctx.Value(constants.ContextKeySession).(*entity.Session)
	return sess
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(constants.HeaderAuthorization)
	if h == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="storefront"`)
	writeJSON(w, http.StatusUnauthorized, "unauthenticated", msg)
}

func writeJSON(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": msg})
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"feedhub/internal/identity"
	"feedhub/internal/logs"
	"feedhub/internal/respond"
)

// Verifier проверяет bearer-токен у провайдера.
type Verifier interface {
	Me(ctx context.Context, token string) (*identity.Identity, error)
}

// RequireIdentity пропускает только запросы с действительным bearer-токеном
// и кладёт пользователя в контекст.
func RequireIdentity(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "missing bearer token")
				return
			}
			id, err := v.Me(r.Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrUnauthorized) {
					unauthorized(w, "invalid or expired token")
					return
				}
				logs.With("auth").WithError(err).Warn("identity provider unavailable")
				respond.JSON(w, http.StatusBadGateway, respond.ErrorBody{Error: "identity provider unavailable", Kind: "upstream"})
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func WithIdentity(ctx context.Context, id *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFrom(ctx context.Context) (*identity.Identity, bool) {
	id, ok := ctx.Value(identityKey).(*identity.Identity)
	return id, ok
}

func bearer(h string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: msg, Kind: "unauthorized"})
}

// Package auth exposes the login endpoint: credentials go to the identity
// provider, the returned roles are resolved into access categories.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"feedhub/internal/identity"
	"feedhub/internal/logs"
	"feedhub/internal/middleware"
	"feedhub/internal/respond"

	"github.com/gorilla/mux"
)

// Provider — внешний провайдер учётных записей.
type Provider interface {
	Token(ctx context.Context, username, password string) (string, error)
	Me(ctx context.Context, token string) (*identity.Identity, error)
}

// Resolver сопоставляет роли категориям доступа.
type Resolver interface {
	Categories(ctx context.Context, roles []string) ([]string, error)
}

type LoginResponse struct {
	Username    string   `json:"username"`
	WPID        int64    `json:"wp_id"`
	Roles       []string `json:"roles"`
	Category    []string `json:"category"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
}

type HTTP struct {
	provider Provider
	resolver Resolver
}

func NewHTTP(p Provider, r Resolver) *HTTP { return &HTTP{provider: p, resolver: r} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/authorization", h.login).Methods(http.MethodPost)
}

// RegisterProtected — маршруты, которым нужен пользователь в контексте.
func (h *HTTP) RegisterProtected(r *mux.Router) {
	r.HandleFunc("/authorization/me", h.me).Methods(http.MethodGet)
}

// login принимает форму username/password (как OAuth2 password flow).
func (h *HTTP) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respond.BadRequest(w, "malformed form")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		respond.BadRequest(w, "username and password are required")
		return
	}

	ctx := r.Context()
	token, err := h.provider.Token(ctx, username, password)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthorized) {
			respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: "invalid credentials", Kind: "unauthorized"})
			return
		}
		logs.With("auth").WithError(err).Warn("token request failed")
		respond.JSON(w, http.StatusBadGateway, respond.ErrorBody{Error: "identity provider unavailable", Kind: "upstream"})
		return
	}
	me, err := h.provider.Me(ctx, token)
	if err != nil {
		logs.With("auth").WithError(err).Error("user info after login")
		respond.JSON(w, http.StatusInternalServerError, respond.ErrorBody{Error: "cannot fetch user profile", Kind: "unexpected"})
		return
	}
	cats, err := h.resolver.Categories(ctx, me.Roles)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	logs.With("auth").WithField("user", me.Username).Infof("login, categories %v", cats)
	respond.OK(w, LoginResponse{
		Username:    me.Username,
		WPID:        me.ID,
		Roles:       me.Roles,
		Category:    cats,
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *HTTP) me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.JSON(w, http.StatusUnauthorized, respond.ErrorBody{Error: "not authenticated", Kind: "unauthorized"})
		return
	}
	cats, err := h.resolver.Categories(r.Context(), id.Roles)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, LoginResponse{Username: id.Username, WPID: id.ID, Roles: id.Roles, Category: cats, TokenType: "bearer"})
}

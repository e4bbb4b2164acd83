package access

import (
	"net/http"

	"feedhub/internal/respond"

	"github.com/gorilla/mux"
)

type HTTP struct{ store *Store }

func NewHTTP(s *Store) *HTTP { return &HTTP{store: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	roles := r.PathPrefix("/roles").Subrouter()

	roles.HandleFunc("/user_category", h.userCategory).Methods(http.MethodPost)
	roles.HandleFunc("/mapping", h.mapping).Methods(http.MethodGet)
	roles.HandleFunc("/bind", h.bind).Methods(http.MethodPost)
	roles.HandleFunc("/unbind/{category}/{role}", h.unbind).Methods(http.MethodDelete)
}

func (h *HTTP) userCategory(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Roles []string `json:"roles"`
	}
	if err := respond.Decode(r, entRole, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	cats, err := h.store.Categories(r.Context(), in.Roles)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, map[string][]string{"category": cats})
}

func (h *HTTP) mapping(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Mapping(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, m)
}

func (h *HTTP) bind(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Category string   `json:"category"`
		Roles    []string `json:"roles"`
	}
	if err := respond.Decode(r, entRole, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if err := h.store.Bind(r.Context(), in.Category, in.Roles); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *HTTP) unbind(w http.ResponseWriter, r *http.Request) {
	v := mux.Vars(r)
	if err := h.store.Unbind(r.Context(), v["category"], v["role"]); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

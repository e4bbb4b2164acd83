package configsvc

import (
	"encoding/json"
	"net/http"
	"strconv"

	"feedhub/internal/apperr"
	"feedhub/internal/metrics"
	"feedhub/internal/respond"

	"github.com/gorilla/mux"
)

type HTTP struct {
	repo *Repo
	m    *metrics.Metrics
}

func NewHTTP(r *Repo, m *metrics.Metrics) *HTTP { return &HTTP{repo: r, m: m} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	cfg := r.PathPrefix("/config").Subrouter()

	cfg.HandleFunc("/get_all_settings", h.getAll).Methods(http.MethodGet)
	cfg.HandleFunc("/get_config/{name}", h.getByName).Methods(http.MethodGet)
	cfg.HandleFunc("/set_setting_value", h.setValue).Methods(http.MethodPost)
	cfg.HandleFunc("/delete_config/{name}", h.deleteByName).Methods(http.MethodDelete)
}

func (h *HTTP) getAll(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.GetAllSettings(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *HTTP) getByName(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.GetSettingByName(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, s)
}

// POST /config/set_setting_value?is_force=true&mode=merge
// body: {"name": "system.roles.user", "value": ["subscriber"]}
func (h *HTTP) setValue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	force := false
	if v := q.Get("is_force"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respond.BadRequest(w, "is_force must be a boolean")
			return
		}
		force = b
	}
	mode, err := ParseMode(q.Get("mode"))
	if err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	var in struct {
		Name  string          `json:"name"`
		Value json.RawMessage `json:"value"`
	}
	if err := respond.Decode(r, entConfig, &in); err != nil {
		respond.Error(w, r, err)
		return
	}
	if len(in.Value) == 0 {
		respond.Error(w, r, apperr.Data(entConfig, "value", "value: is required"))
		return
	}

	s, err := h.repo.SetSettingValue(r.Context(), in.Name, in.Value, force, mode)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	h.m.IncrementSettingsWritten(string(mode))
	respond.OK(w, s)
}

func (h *HTTP) deleteByName(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteSetting(r.Context(), mux.Vars(r)["name"]); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.NoContent(w)
}

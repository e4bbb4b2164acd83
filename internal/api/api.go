// Package api wires the entity stores to HTTP. Routes keep the legacy layout
// (/device/all_devices, /device/get_device/{id}, ...) that existing clients use.
package api

import (
	"net/http"
	"strconv"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/metrics"
	"feedhub/internal/repo"
	"feedhub/internal/respond"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handlers struct {
	s *repo.Stores
	m *metrics.Metrics
	// now подменяется в тестах
	now func() time.Time
}

func New(s *repo.Stores, m *metrics.Metrics) *Handlers {
	return &Handlers{s: s, m: m, now: time.Now}
}

func (h *Handlers) RegisterRoutes(r *mux.Router) {
	h.registerEnterprises(r)
	h.registerBranches(r)
	h.registerDeviceModels(r)
	h.registerDevices(r)
	h.registerSchedules(r)
	h.registerTasks(r)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	_, kind := respond.Status(err)
	h.m.IncrementErrors(kind)
	respond.Error(w, r, err)
}

func uintVar(r *http.Request, entity, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Data(entity, name, name+": must be a positive integer")
	}
	return uint(v), nil
}

func uuidVar(r *http.Request, entity, name string) (string, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return "", apperr.Data(entity, name, name+": must be a UUID")
	}
	return id.String(), nil
}

// afterParam — момент отсчёта из ?after= (RFC 3339); по умолчанию сейчас.
func (h *Handlers) afterParam(r *http.Request, entity string) (time.Time, error) {
	v := r.URL.Query().Get("after")
	if v == "" {
		return h.now(), nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, apperr.Data(entity, "after", "after: must be an RFC 3339 timestamp")
	}
	return t, nil
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"feedhub/internal/apperr"
	"feedhub/internal/models"
	"feedhub/internal/respond"
	"feedhub/internal/scheduling"

	"github.com/gorilla/mux"
	"gorm.io/datatypes"
)

const (
	entSchedule    = "regular_time"
	maxOccurrences = 100
)

func (h *Handlers) registerSchedules(r *mux.Router) {
	s := r.PathPrefix("/regular_time").Subrouter()
	s.HandleFunc("/all_regular_times", h.listSchedules).Methods(http.MethodGet)
	s.HandleFunc("/get_regular_time/{id}", h.getSchedule).Methods(http.MethodGet)
	s.HandleFunc("/next_occurrence/{id}", h.nextOccurrence).Methods(http.MethodGet)
	s.HandleFunc("/create_regular_time", h.createSchedule).Methods(http.MethodPost)
	s.HandleFunc("/update_regular_time/{id}", h.updateSchedule).Methods(http.MethodPatch)
	s.HandleFunc("/delete_regular_time/{id}", h.deleteSchedule).Methods(http.MethodDelete)
}

func (h *Handlers) listSchedules(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.Schedules.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) getSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entSchedule, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.s.Schedules.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, s)
}

// GET /regular_time/next_occurrence/{id}?after=2024-06-04T09:00:00Z&count=3
func (h *Handlers) nextOccurrence(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entSchedule, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	after, err := h.afterParam(r, entSchedule)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		count, err = strconv.Atoi(v)
		if err != nil || count < 1 || count > maxOccurrences {
			h.fail(w, r, apperr.Data(entSchedule, "count", "count: must be between 1 and 100"))
			return
		}
	}
	list, err := h.s.Schedules.NextOccurrences(r.Context(), id, after, count)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, struct {
		ID          uint        `json:"id"`
		After       time.Time   `json:"after"`
		Occurrences []time.Time `json:"occurrences"`
	}{id, after, list})
}

func (h *Handlers) createSchedule(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Period scheduling.Period `json:"period"`
		Days   []int             `json:"days"`
		Timing datatypes.Time    `json:"timing"`
	}
	if err := respond.Decode(r, entSchedule, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	s := &models.RegularSchedule{Period: in.Period, Days: datatypes.JSONSlice[int](in.Days), Timing: in.Timing}
	if err := h.s.Schedules.Create(r.Context(), s); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Created(w, s)
}

func (h *Handlers) updateSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entSchedule, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var u models.RegularScheduleUpdate
	if err := respond.Decode(r, entSchedule, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.s.Schedules.Update(r.Context(), id, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, s)
}

func (h *Handlers) deleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entSchedule, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.s.Schedules.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

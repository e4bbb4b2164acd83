package api

import (
	"net/http"
	"time"

	"feedhub/internal/models"
	"feedhub/internal/respond"
	"feedhub/internal/scheduling"

	"github.com/gorilla/mux"
)

const entTask = "task_list"

func (h *Handlers) registerTasks(r *mux.Router) {
	t := r.PathPrefix("/task_list").Subrouter()
	t.HandleFunc("/all_task_lists", h.listTasks).Methods(http.MethodGet)
	t.HandleFunc("/by_device/{device_id}", h.listTasksByDevice).Methods(http.MethodGet)
	t.HandleFunc("/get_task_list/{id}", h.getTask).Methods(http.MethodGet)
	t.HandleFunc("/next_run/{id}", h.nextRun).Methods(http.MethodGet)
	t.HandleFunc("/create_task_list", h.createTask).Methods(http.MethodPost)
	t.HandleFunc("/update_task_list/{id}", h.updateTask).Methods(http.MethodPatch)
	t.HandleFunc("/set_status/{id}", h.setTaskStatus).Methods(http.MethodPatch)
	t.HandleFunc("/delete_task_list/{id}", h.deleteTask).Methods(http.MethodDelete)
}

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.Tasks.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) listTasksByDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entTask, "device_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.s.Tasks.ListByDevice(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entTask, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.s.Tasks.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, t)
}

// nextRun отвечает {"next_run": null} для заданий, у которых запусков больше нет.
func (h *Handlers) nextRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entTask, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	after, err := h.afterParam(r, entTask)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	next, ok, err := h.s.Tasks.NextRun(r.Context(), id, after)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := struct {
		ID      string     `json:"id"`
		After   time.Time  `json:"after"`
		NextRun *time.Time `json:"next_run"`
	}{ID: id, After: after}
	if ok {
		out.NextRun = &next
	}
	respond.OK(w, out)
}

func (h *Handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DeviceID      string            `json:"device_id"`
		Cmd           string            `json:"cmd"`
		IsRegular     bool              `json:"is_regular"`
		Timing        time.Time         `json:"timing"`
		RegularTimeID *uint             `json:"regular_time_id"`
		Status        scheduling.Status `json:"status"`
	}
	if err := respond.Decode(r, entTask, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	t := &models.TaskList{
		DeviceID:      in.DeviceID,
		Cmd:           in.Cmd,
		IsRegular:     in.IsRegular,
		Timing:        in.Timing,
		RegularTimeID: in.RegularTimeID,
		Status:        in.Status,
	}
	if err := h.s.Tasks.Create(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	h.m.IncrementTasksCreated()
	respond.Created(w, t)
}

func (h *Handlers) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entTask, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var u models.TaskListUpdate
	if err := respond.Decode(r, entTask, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.s.Tasks.Update(r.Context(), id, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, t)
}

func (h *Handlers) setTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entTask, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in struct {
		Status scheduling.Status `json:"status"`
	}
	if err := respond.Decode(r, entTask, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	t, err := h.s.Tasks.SetStatus(r.Context(), id, in.Status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, t)
}

func (h *Handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entTask, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.s.Tasks.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

package api

import (
	"net/http"

	"feedhub/internal/models"
	"feedhub/internal/respond"

	"github.com/gorilla/mux"
)

const (
	entDeviceModel = "device_model"
	entDevice      = "device"
)

func (h *Handlers) registerDeviceModels(r *mux.Router) {
	m := r.PathPrefix("/device_models").Subrouter()
	m.HandleFunc("/all_device_models", h.listDeviceModels).Methods(http.MethodGet)
	m.HandleFunc("/get_device_model/{id}", h.getDeviceModel).Methods(http.MethodGet)
	m.HandleFunc("/create_device_model", h.createDeviceModel).Methods(http.MethodPost)
	m.HandleFunc("/update_device_model/{id}", h.updateDeviceModel).Methods(http.MethodPatch)
	m.HandleFunc("/delete_device_model/{id}", h.deleteDeviceModel).Methods(http.MethodDelete)
}

func (h *Handlers) listDeviceModels(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.DeviceModels.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) getDeviceModel(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entDeviceModel, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.s.DeviceModels.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, m)
}

func (h *Handlers) createDeviceModel(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := respond.Decode(r, entDeviceModel, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	m := &models.DeviceModel{Name: in.Name}
	if err := h.s.DeviceModels.Create(r.Context(), m); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Created(w, m)
}

func (h *Handlers) updateDeviceModel(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entDeviceModel, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var u models.DeviceModelUpdate
	if err := respond.Decode(r, entDeviceModel, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	m, err := h.s.DeviceModels.Update(r.Context(), id, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, m)
}

func (h *Handlers) deleteDeviceModel(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entDeviceModel, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.s.DeviceModels.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

// ── Devices ─────────────────────────────────────────────────

func (h *Handlers) registerDevices(r *mux.Router) {
	d := r.PathPrefix("/device").Subrouter()
	d.HandleFunc("/all_devices", h.listDevices).Methods(http.MethodGet)
	d.HandleFunc("/by_filial/{filial_id}", h.listDevicesByBranch).Methods(http.MethodGet)
	d.HandleFunc("/get_device/{id}", h.getDevice).Methods(http.MethodGet)
	d.HandleFunc("/create_device", h.createDevice).Methods(http.MethodPost)
	d.HandleFunc("/update_device/{id}", h.updateDevice).Methods(http.MethodPatch)
	d.HandleFunc("/delete_device/{id}", h.deleteDevice).Methods(http.MethodDelete)
}

func (h *Handlers) listDevices(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.Devices.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) listDevicesByBranch(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entDevice, "filial_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.s.Devices.ListByBranch(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) getDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entDevice, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.s.Devices.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, d)
}

func (h *Handlers) createDevice(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ModelID      uint   `json:"model_id"`
		FilialID     uint   `json:"filial_id"`
		SerialNumber string `json:"serial_number"`
	}
	if err := respond.Decode(r, entDevice, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	d := &models.Device{ModelID: in.ModelID, FilialID: in.FilialID, SerialNumber: in.SerialNumber}
	if err := h.s.Devices.Create(r.Context(), d); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Created(w, d)
}

func (h *Handlers) updateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entDevice, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var u models.DeviceUpdate
	if err := respond.Decode(r, entDevice, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.s.Devices.Update(r.Context(), id, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, d)
}

func (h *Handlers) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuidVar(r, entDevice, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.s.Devices.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

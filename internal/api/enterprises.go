package api

import (
	"net/http"

	"feedhub/internal/models"
	"feedhub/internal/respond"

	"github.com/gorilla/mux"
)

func (h *Handlers) registerEnterprises(r *mux.Router) {
	e := r.PathPrefix("/enterprise").Subrouter()
	e.HandleFunc("/all_enterprises", h.listEnterprises).Methods(http.MethodGet)
	e.HandleFunc("/get_enterprise/{inn}", h.getEnterprise).Methods(http.MethodGet)
	e.HandleFunc("/create_enterprise", h.createEnterprise).Methods(http.MethodPost)
	e.HandleFunc("/update_enterprise/{inn}", h.updateEnterprise).Methods(http.MethodPatch)
	e.HandleFunc("/delete_enterprise/{inn}", h.deleteEnterprise).Methods(http.MethodDelete)
}

func (h *Handlers) listEnterprises(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.Enterprises.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) getEnterprise(w http.ResponseWriter, r *http.Request) {
	e, err := h.s.Enterprises.Get(r.Context(), mux.Vars(r)["inn"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, e)
}

func (h *Handlers) createEnterprise(w http.ResponseWriter, r *http.Request) {
	var in struct {
		INN     string `json:"inn"`
		OGRN    string `json:"ogrn"`
		KPP     string `json:"kpp"`
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := respond.Decode(r, "enterprise", &in); err != nil {
		h.fail(w, r, err)
		return
	}
	e := &models.Enterprise{INN: in.INN, OGRN: in.OGRN, KPP: in.KPP, Name: in.Name, Address: in.Address}
	if err := h.s.Enterprises.Create(r.Context(), e); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Created(w, e)
}

func (h *Handlers) updateEnterprise(w http.ResponseWriter, r *http.Request) {
	var u models.EnterpriseUpdate
	if err := respond.Decode(r, "enterprise", &u); err != nil {
		h.fail(w, r, err)
		return
	}
	e, err := h.s.Enterprises.Update(r.Context(), mux.Vars(r)["inn"], u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, e)
}

func (h *Handlers) deleteEnterprise(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Enterprises.Delete(r.Context(), mux.Vars(r)["inn"]); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

// ── Branches ────────────────────────────────────────────────

func (h *Handlers) registerBranches(r *mux.Router) {
	b := r.PathPrefix("/filial_enterprise").Subrouter()
	b.HandleFunc("/all_filial_enterprises", h.listBranches).Methods(http.MethodGet)
	b.HandleFunc("/by_enterprise/{inn}", h.listBranchesByEnterprise).Methods(http.MethodGet)
	b.HandleFunc("/get_filial_enterprise/{id}", h.getBranch).Methods(http.MethodGet)
	b.HandleFunc("/create_filial_enterprise", h.createBranch).Methods(http.MethodPost)
	b.HandleFunc("/update_filial_enterprise/{id}", h.updateBranch).Methods(http.MethodPatch)
	b.HandleFunc("/delete_filial_enterprise/{id}", h.deleteBranch).Methods(http.MethodDelete)
}

const entBranch = "filial_enterprise"

func (h *Handlers) listBranches(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.Branches.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) listBranchesByEnterprise(w http.ResponseWriter, r *http.Request) {
	list, err := h.s.Branches.ListByEnterprise(r.Context(), mux.Vars(r)["inn"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, list)
}

func (h *Handlers) getBranch(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entBranch, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.s.Branches.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, b)
}

func (h *Handlers) createBranch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		INN     string `json:"inn"`
		Address string `json:"address"`
	}
	if err := respond.Decode(r, entBranch, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	b := &models.Branch{INN: in.INN, Address: in.Address}
	if err := h.s.Branches.Create(r.Context(), b); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.Created(w, b)
}

func (h *Handlers) updateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entBranch, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var u models.BranchUpdate
	if err := respond.Decode(r, entBranch, &u); err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.s.Branches.Update(r.Context(), id, u)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.OK(w, b)
}

func (h *Handlers) deleteBranch(w http.ResponseWriter, r *http.Request) {
	id, err := uintVar(r, entBranch, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.s.Branches.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.NoContent(w)
}

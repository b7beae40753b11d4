package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ug-admin-search/internal/hierarchy"
	"github.com/ug-admin-search/internal/refdata"
	"github.com/ug-admin-search/internal/search"
)

// UnitsHandler handles direct lookups in the hierarchy
type UnitsHandler struct {
	Holder *search.Holder
	Config *Config
}

// UnitListResponse is a page of units at one level
type UnitListResponse struct {
	Level  refdata.Level       `json:"level"`
	Total  int                 `json:"total"`
	Offset int                 `json:"offset"`
	Units  []refdata.AdminUnit `json:"units"`
}

// UnitResponse describes one unit with its resolved hierarchy
type UnitResponse struct {
	Unit      refdata.AdminUnit    `json:"unit"`
	Chain     hierarchy.Chain      `json:"chain"`
	Ancestors []hierarchy.Ancestor `json:"ancestors"`
}

// ChainResponse is a unit's identifier chain
type ChainResponse struct {
	Level refdata.Level   `json:"level"`
	ID    string          `json:"id"`
	Chain hierarchy.Chain `json:"chain"`
}

// AncestorsResponse lists a unit's ancestors for display
type AncestorsResponse struct {
	Level     refdata.Level `json:"level"`
	ID        string        `json:"id"`
	Ancestors []string      `json:"ancestors"`
}

// ChildrenResponse lists a unit's direct children
type ChildrenResponse struct {
	Parent   refdata.AdminUnit   `json:"parent"`
	Children []refdata.AdminUnit `json:"children"`
}

// ListUnits pages through the units of one level
func (h *UnitsHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	e := engineOrUnavailable(w, h.Holder)
	if e == nil {
		return
	}
	level, ok := levelParam(w, r)
	if !ok {
		return
	}
	offset, ok1 := parseIntParam(r.URL.Query().Get("offset"), 0)
	limit, ok2 := parseIntParam(r.URL.Query().Get("limit"), h.Config.DefaultLimit)
	if !ok1 || !ok2 || offset < 0 || limit < 0 {
		writeError(w, http.StatusBadRequest, "offset and limit must be non-negative integers")
		return
	}
	if limit > h.Config.MaxLimit {
		limit = h.Config.MaxLimit
	}

	units := e.Units(level)
	total := len(units)
	start := min(offset, total)
	end := min(start+limit, total)
	writeJSON(w, http.StatusOK, UnitListResponse{
		Level:  level,
		Total:  total,
		Offset: offset,
		Units:  units[start:end],
	})
}

// GetUnit returns one unit with its chain and ancestors
func (h *UnitsHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	e, u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ancestors := e.Ancestors(u.Level, u.ID)
	if ancestors == nil {
		ancestors = []hierarchy.Ancestor{}
	}
	writeJSON(w, http.StatusOK, UnitResponse{
		Unit:      u,
		Chain:     e.Chain(u.Level, u.ID),
		Ancestors: ancestors,
	})
}

// GetChain returns the identifier chain of a unit
func (h *UnitsHandler) GetChain(w http.ResponseWriter, r *http.Request) {
	e, u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ChainResponse{Level: u.Level, ID: u.ID, Chain: e.Chain(u.Level, u.ID)})
}

// GetAncestors returns "level: name" labels, broadest first
func (h *UnitsHandler) GetAncestors(w http.ResponseWriter, r *http.Request) {
	e, u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, AncestorsResponse{Level: u.Level, ID: u.ID, Ancestors: e.AncestorNames(u.Level, u.ID)})
}

// GetChildren returns the direct children of a unit
func (h *UnitsHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	e, u, ok := h.lookup(w, r)
	if !ok {
		return
	}
	kids := e.Children(u.Level, u.ID)
	if kids == nil {
		kids = []refdata.AdminUnit{}
	}
	writeJSON(w, http.StatusOK, ChildrenResponse{Parent: u, Children: kids})
}

func (h *UnitsHandler) lookup(w http.ResponseWriter, r *http.Request) (*search.Engine, refdata.AdminUnit, bool) {
	e := engineOrUnavailable(w, h.Holder)
	if e == nil {
		return nil, refdata.AdminUnit{}, false
	}
	level, ok := levelParam(w, r)
	if !ok {
		return nil, refdata.AdminUnit{}, false
	}
	id := mux.Vars(r)["id"]
	u, ok := e.Unit(level, id)
	if !ok {
		writeError(w, http.StatusNotFound, level.String()+" "+id+" not found")
		return nil, refdata.AdminUnit{}, false
	}
	return e, u, true
}

func levelParam(w http.ResponseWriter, r *http.Request) (refdata.Level, bool) {
	level, err := refdata.ParseLevel(mux.Vars(r)["level"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return level, true
}

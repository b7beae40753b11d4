// Package hierarchy resolves parent links between administrative units.
//
// An Index is built once from a refdata.Dataset and is read-only afterwards, so
// it can be shared by any number of concurrent queries without locking.
package hierarchy

import (
	"github.com/ug-admin-search/internal/refdata"
)

// Chain holds the identifier of a unit and of each of its ancestors, one field
// per level. An empty field means the level is absent: either it is below the
// unit, or the walk up the tree stopped at a parent that does not exist.
type Chain struct {
	District  string `json:"district_id,omitempty"`
	County    string `json:"county_id,omitempty"`
	SubCounty string `json:"subcounty_id,omitempty"`
	Parish    string `json:"parish_id,omitempty"`
	Village   string `json:"village_id,omitempty"`
}

// At returns the identifier recorded for level, or "" when absent.
func (c Chain) At(level refdata.Level) string {
	switch level {
	case refdata.District:
		return c.District
	case refdata.County:
		return c.County
	case refdata.SubCounty:
		return c.SubCounty
	case refdata.Parish:
		return c.Parish
	case refdata.Village:
		return c.Village
	}
	return ""
}

func (c *Chain) set(level refdata.Level, id string) {
	switch level {
	case refdata.District:
		c.District = id
	case refdata.County:
		c.County = id
	case refdata.SubCounty:
		c.SubCounty = id
	case refdata.Parish:
		c.Parish = id
	case refdata.Village:
		c.Village = id
	}
}

// IsZero reports whether no level is set, i.e. the unit was not found.
func (c Chain) IsZero() bool {
	return c == Chain{}
}

// Index maps (level, id) to units and parent ids.
type Index struct {
	byID     [refdata.NumLevels]map[string]*refdata.AdminUnit
	children [refdata.NumLevels]map[string][]*refdata.AdminUnit
}

// New builds the index in one pass over the dataset. Units are referenced,
// not copied, so the dataset must stay unmodified for the life of the index.
func New(ds *refdata.Dataset) *Index {
	idx := &Index{}
	for _, level := range refdata.Levels() {
		units := ds.At(level)
		byID := make(map[string]*refdata.AdminUnit, len(units))
		for i := range units {
			u := &units[i]
			if _, dup := byID[u.ID]; !dup {
				byID[u.ID] = u
			}
		}
		idx.byID[level.Index()] = byID

		if parent, ok := level.Parent(); ok {
			kids := make(map[string][]*refdata.AdminUnit)
			for i := range units {
				u := &units[i]
				kids[u.ParentID] = append(kids[u.ParentID], u)
			}
			idx.children[parent.Index()] = kids
		}
	}
	return idx
}

// Unit looks up a unit by level and id.
func (x *Index) Unit(level refdata.Level, id string) (refdata.AdminUnit, bool) {
	if !level.Valid() {
		return refdata.AdminUnit{}, false
	}
	u, ok := x.byID[level.Index()][id]
	if !ok {
		return refdata.AdminUnit{}, false
	}
	return *u, true
}

// Parent returns the parent of a unit when both the unit and its parent exist.
func (x *Index) Parent(level refdata.Level, id string) (refdata.AdminUnit, bool) {
	u, ok := x.Unit(level, id)
	if !ok {
		return refdata.AdminUnit{}, false
	}
	pl, ok := level.Parent()
	if !ok {
		return refdata.AdminUnit{}, false
	}
	return x.Unit(pl, u.ParentID)
}

// ChainOf walks parent links from (level, id) up to the district. The walk
// stops at the first parent id that does not resolve; that id is not
// recorded. An unknown unit yields an empty chain.
func (x *Index) ChainOf(level refdata.Level, id string) Chain {
	var c Chain
	u, ok := x.Unit(level, id)
	if !ok {
		return c
	}
	c.set(level, u.ID)
	for {
		pl, ok := u.Level.Parent()
		if !ok {
			return c
		}
		parent, ok := x.Unit(pl, u.ParentID)
		if !ok {
			return c
		}
		c.set(pl, parent.ID)
		u = parent
	}
}

// Children returns the direct children of a unit in dataset order.
func (x *Index) Children(level refdata.Level, id string) []refdata.AdminUnit {
	if !level.Valid() || level == refdata.Village {
		return nil
	}
	if _, ok := x.Unit(level, id); !ok {
		return nil
	}
	kids := x.children[level.Index()][id]
	out := make([]refdata.AdminUnit, len(kids))
	for i, k := range kids {
		out[i] = *k
	}
	return out
}

// Ancestor is one resolved ancestor of a unit.
type Ancestor struct {
	Level refdata.Level `json:"level"`
	ID    string        `json:"id"`
	Name  string        `json:"name"`
}

// Label renders the ancestor for display, e.g. "district: Kampala".
func (a Ancestor) Label() string {
	return a.Level.String() + ": " + a.Name
}

// Ancestors returns the resolved ancestors of a unit, broadest first. The unit
// itself is not included.
func (x *Index) Ancestors(level refdata.Level, id string) []Ancestor {
	chain := x.ChainOf(level, id)
	var out []Ancestor
	for _, l := range refdata.Levels() {
		if l >= level {
			break
		}
		aid := chain.At(l)
		if aid == "" {
			continue
		}
		if u, ok := x.Unit(l, aid); ok {
			out = append(out, Ancestor{Level: l, ID: u.ID, Name: u.Name})
		}
	}
	return out
}

// AncestorNames returns Ancestors rendered with Label.
func (x *Index) AncestorNames(level refdata.Level, id string) []string {
	as := x.Ancestors(level, id)
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Label()
	}
	return out
}

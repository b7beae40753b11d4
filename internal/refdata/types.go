// Package refdata holds the administrative reference data the search engine is
// built from: the five unit levels, the unit rows themselves and the providers
// that load them from the embedded sample, a data directory or PostgreSQL.
//
// A Dataset is loaded once and treated as immutable afterwards. Row order is
// significant: it is the tie-break order used by the fuzzy indexes.
package refdata

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Level identifies one of the five administrative levels, broadest first.
type Level int

const (
	District Level = iota + 1
	County
	SubCounty
	Parish
	Village
)

// NumLevels is the depth of the hierarchy.
const NumLevels = 5

var levelNames = [NumLevels]string{"district", "county", "subcounty", "parish", "village"}

// levelFiles are the base names a DirProvider looks for, one per level.
var levelFiles = [NumLevels]string{"districts", "counties", "subcounties", "parishes", "villages"}

// Levels returns all levels from L1 to L5.
func Levels() []Level {
	return []Level{District, County, SubCounty, Parish, Village}
}

// Valid reports whether l is one of the five known levels.
func (l Level) Valid() bool {
	return l >= District && l <= Village
}

// Index returns the zero-based slot of the level.
func (l Level) Index() int {
	return int(l) - 1
}

// Parent returns the level directly above l. District has no parent.
func (l Level) Parent() (Level, bool) {
	if l <= District || !l.Valid() {
		return 0, false
	}
	return l - 1, true
}

func (l Level) String() string {
	if !l.Valid() {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return levelNames[l.Index()]
}

// FileBase is the base name of the level's file in a data directory.
func (l Level) FileBase() string {
	if !l.Valid() {
		return ""
	}
	return levelFiles[l.Index()]
}

// LevelOfFile maps a data file name such as "parishes.csv" to its level.
func LevelOfFile(name string) (Level, bool) {
	base := path.Base(name)
	ext := path.Ext(base)
	if ext != ".json" && ext != ".csv" {
		return 0, false
	}
	base = strings.TrimSuffix(base, ext)
	for i, f := range levelFiles {
		if base == f {
			return Level(i + 1), true
		}
	}
	return 0, false
}

// MarshalText encodes the level as its name.
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText accepts anything ParseLevel accepts.
func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLevel accepts a level name ("district"), "l1".."l5" or "1".."5".
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if s == name || s == levelFiles[i] {
			return Level(i + 1), nil
		}
	}
	if n, err := strconv.Atoi(strings.TrimPrefix(s, "l")); err == nil && Level(n).Valid() {
		return Level(n), nil
	}
	return 0, fmt.Errorf("unknown level %q", s)
}

// AdminUnit is one row of reference data.
type AdminUnit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Level    Level  `json:"level"`
	ParentID string `json:"parent_id,omitempty"`
}

// Row is the on-disk / on-wire shape of a unit before it is assigned a level.
type Row struct {
	ID       string `json:"id" yaml:"id" validate:"required,max=64"`
	Name     string `json:"name" yaml:"name" validate:"required,max=256"`
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty" validate:"max=64"`
}

// Dataset holds the five unit collections in provider order.
type Dataset struct {
	units [NumLevels][]AdminUnit
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{}
}

// Add appends a unit to its level. Units with an invalid level are ignored.
func (d *Dataset) Add(u AdminUnit) {
	if !u.Level.Valid() {
		return
	}
	d.units[u.Level.Index()] = append(d.units[u.Level.Index()], u)
}

// AddRows appends rows at the given level, preserving their order.
func (d *Dataset) AddRows(level Level, rows []Row) {
	for _, r := range rows {
		d.Add(AdminUnit{ID: r.ID, Name: r.Name, Level: level, ParentID: r.ParentID})
	}
}

// At returns the units of one level. The slice must not be modified.
func (d *Dataset) At(level Level) []AdminUnit {
	if !level.Valid() {
		return nil
	}
	return d.units[level.Index()]
}

// Len returns the total number of units across all levels.
func (d *Dataset) Len() int {
	n := 0
	for _, us := range d.units {
		n += len(us)
	}
	return n
}

// Counts returns the number of units per level name.
func (d *Dataset) Counts() map[string]int {
	out := make(map[string]int, NumLevels)
	for _, l := range Levels() {
		out[l.String()] = len(d.At(l))
	}
	return out
}

// Fingerprint hashes every row in order. Two datasets with the same rows in the
// same order share a fingerprint; it is used to version caches across reloads.
func (d *Dataset) Fingerprint() string {
	h := xxhash.New()
	for _, l := range Levels() {
		for _, u := range d.At(l) {
			_, _ = h.WriteString(l.String())
			_, _ = h.Write([]byte{0})
			_, _ = h.WriteString(u.ID)
			_, _ = h.Write([]byte{0})
			_, _ = h.WriteString(u.Name)
			_, _ = h.Write([]byte{0})
			_, _ = h.WriteString(u.ParentID)
			_, _ = h.Write([]byte{'\n'})
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

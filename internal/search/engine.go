package search

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ug-admin-search/internal/fuzzy"
	"github.com/ug-admin-search/internal/hierarchy"
	"github.com/ug-admin-search/internal/logger"
	"github.com/ug-admin-search/internal/query"
	"github.com/ug-admin-search/internal/refdata"
)

// DefaultLimit is the result limit used when a caller does not pick one.
const DefaultLimit = 100

// Engine is the read-only search context over one dataset.
type Engine struct {
	opts    fuzzy.Options
	hier    *hierarchy.Index
	units   [refdata.NumLevels][]refdata.AdminUnit
	folded  [refdata.NumLevels][]string
	indexes [refdata.NumLevels]*fuzzy.Index

	fingerprint string
	builtAt     time.Time
	buildTime   time.Duration
}

// Stats describes the data an Engine was built from.
type Stats struct {
	Counts      map[string]int `json:"counts"`
	Total       int            `json:"total"`
	Fingerprint string         `json:"fingerprint"`
	BuiltAt     time.Time      `json:"built_at"`
	BuildTime   string         `json:"build_time"`
	Matcher     string         `json:"matcher"`
	Threshold   float64        `json:"threshold"`
}

// NewEngine builds the hierarchy index and one fuzzy index per level. Levels
// are indexed concurrently; NewEngine returns once all of them are ready. The
// dataset must not be modified afterwards.
func NewEngine(ds *refdata.Dataset, opts fuzzy.Options) (*Engine, error) {
	if ds == nil {
		return nil, fmt.Errorf("nil dataset")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fuzzy options: %w", err)
	}

	start := time.Now()
	e := &Engine{opts: opts}

	var g errgroup.Group
	g.Go(func() error {
		e.hier = hierarchy.New(ds)
		return nil
	})
	g.Go(func() error {
		e.fingerprint = ds.Fingerprint()
		return nil
	})
	for _, level := range refdata.Levels() {
		i := level.Index()
		units := ds.At(level)
		e.units[i] = units
		g.Go(func() error {
			names := make([]string, len(units))
			folded := make([]string, len(units))
			for j, u := range units {
				names[j] = u.Name
				folded[j] = fuzzy.Normalize(u.Name)
			}
			e.folded[i] = folded
			e.indexes[i] = fuzzy.NewIndex(names, opts, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build indexes: %w", err)
	}

	e.builtAt = time.Now()
	e.buildTime = e.builtAt.Sub(start)
	logger.L().Debug("engine_built",
		"units", ds.Len(),
		"fingerprint", e.fingerprint,
		"duration", e.buildTime)
	return e, nil
}

// Options returns the fuzzy options the engine was built with.
func (e *Engine) Options() fuzzy.Options {
	return e.opts
}

// Search resolves a free-text query. The query is split into terms; terms
// shorter than the minimum match length are ignored. A single term returns
// its matches across all levels by similarity. Several terms rank the
// matches of the first term by how many of the other terms name one of its
// relatives. An empty query or limit <= 0 returns nothing.
func (e *Engine) Search(q string, limit int) []Result {
	if limit <= 0 {
		return nil
	}
	terms := e.terms(q)
	if len(terms) == 0 {
		return nil
	}

	pools := make([][]Candidate, len(terms))
	for i, t := range terms {
		pools[i] = e.matchTerm(t, limit)
	}
	if len(pools) == 1 {
		return rankSingle(pools[0], limit)
	}
	return Rank(pools, limit)
}

// Terms returns the terms Search would score for q.
func (e *Engine) Terms(q string) []string {
	return e.terms(q)
}

func (e *Engine) terms(q string) []string {
	parsed := query.Parse(q)
	terms := parsed[:0]
	for _, t := range parsed {
		if utf8.RuneCountInString(fuzzy.Normalize(t)) >= e.opts.MinMatchLength {
			terms = append(terms, t)
		}
	}
	return terms
}

// ExactSearch returns every unit whose name contains q, ignoring case, in
// level order then dataset order. There is no limit.
func (e *Engine) ExactSearch(q string) []Candidate {
	needle := fuzzy.Normalize(q)
	if needle == "" {
		return nil
	}
	term := strings.Join(strings.Fields(q), " ")

	var out []Candidate
	for _, level := range refdata.Levels() {
		i := level.Index()
		for j, name := range e.folded[i] {
			if !strings.Contains(name, needle) {
				continue
			}
			u := e.units[i][j]
			out = append(out, Candidate{
				Unit:        u,
				Similarity:  1.0,
				Chain:       e.hier.ChainOf(level, u.ID),
				MatchedTerm: term,
			})
		}
	}
	return out
}

// Chain returns the identifier chain of a unit. Unknown units give an empty
// chain; a missing parent cuts the chain short.
func (e *Engine) Chain(level refdata.Level, id string) hierarchy.Chain {
	return e.hier.ChainOf(level, id)
}

// AncestorNames lists a unit's ancestors for display, broadest first.
func (e *Engine) AncestorNames(level refdata.Level, id string) []string {
	return e.hier.AncestorNames(level, id)
}

// Ancestors lists a unit's resolved ancestors, broadest first.
func (e *Engine) Ancestors(level refdata.Level, id string) []hierarchy.Ancestor {
	return e.hier.Ancestors(level, id)
}

// Unit looks up one unit.
func (e *Engine) Unit(level refdata.Level, id string) (refdata.AdminUnit, bool) {
	return e.hier.Unit(level, id)
}

// Children returns the direct children of a unit.
func (e *Engine) Children(level refdata.Level, id string) []refdata.AdminUnit {
	return e.hier.Children(level, id)
}

// Units returns a copy of all units at level.
func (e *Engine) Units(level refdata.Level) []refdata.AdminUnit {
	if !level.Valid() {
		return nil
	}
	return slices.Clone(e.units[level.Index()])
}

// Fingerprint identifies the dataset the engine was built from.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Stats reports unit counts and build details.
func (e *Engine) Stats() Stats {
	s := Stats{
		Counts:      make(map[string]int, refdata.NumLevels),
		Fingerprint: e.fingerprint,
		BuiltAt:     e.builtAt,
		BuildTime:   e.buildTime.String(),
		Matcher:     e.opts.Matcher,
		Threshold:   e.opts.Threshold,
	}
	for _, level := range refdata.Levels() {
		n := len(e.units[level.Index()])
		s.Counts[level.String()] = n
		s.Total += n
	}
	return s
}

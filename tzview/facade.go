// Package tzview is the read-only query surface over a built tztable.Table,
// the stable interface code generators and demonstration tooling are meant
// to consume instead of reaching into tztable/tzmaterial directly.
package tzview

import (
	"sort"
	"sync"

	"github.com/zonemap/tzdb/tzmaterial"
	"github.com/zonemap/tzdb/tztable"
)

// Facade wraps a built Table and memoizes the materialized timespans it
// computes on request. The zero value is not usable; construct one with New.
type Facade struct {
	table tztable.Table

	mu     sync.Mutex
	cached map[string]cacheEntry
}

type cacheEntry struct {
	spans tzmaterial.FixedTimespanSet
	err   error
}

// New constructs a Facade over table. table is assumed fully built and is
// never mutated by the facade.
func New(table tztable.Table) *Facade {
	return &Facade{table: table, cached: make(map[string]cacheEntry)}
}

// ZoneNames returns every canonical zone name in the table, sorted.
func (f *Facade) ZoneNames() []string {
	names := make([]string, 0, len(f.table.Zones))
	for name := range f.table.Zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AliasNames returns every link alias in the table, sorted.
func (f *Facade) AliasNames() []string {
	names := make([]string, 0, len(f.table.Links))
	for name := range f.table.Links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonical resolves name, which may itself already be canonical, to the
// zone name it ultimately refers to.
func (f *Facade) Canonical(name string) (string, bool) {
	return f.table.Canonical(name)
}

// Zone returns the raw table entry for name, a canonical zone name.
func (f *Facade) Zone(name string) (tztable.Zone, bool) {
	return f.table.Zone(name)
}

// Timespans returns the materialized transition history for name, which may
// be a canonical zone name or a link alias. Results are memoized by the name
// passed in, so calling Timespans("X") and Timespans("AliasOfX") computes
// the underlying materialization once each, not once overall.
func (f *Facade) Timespans(name string) (tzmaterial.FixedTimespanSet, error) {
	f.mu.Lock()
	if entry, ok := f.cached[name]; ok {
		f.mu.Unlock()
		return entry.spans, entry.err
	}
	f.mu.Unlock()

	spans, err := tzmaterial.Timespans(f.table, name)

	f.mu.Lock()
	f.cached[name] = cacheEntry{spans: spans, err: err}
	f.mu.Unlock()

	return spans, err
}

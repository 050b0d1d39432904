package router

import (
	"sync"

	"github.com/renatoruis/oh-institutional/internal/errors"
	"github.com/renatoruis/oh-institutional/pkg/routepath"
)

// Table is the ordered route table. Entries are only ever appended;
// resolution tries them in registration order and the first match wins.
type Table struct {
	mu        sync.RWMutex
	entries   []RouteEntry
	byPattern map[string]string
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{
		byPattern: make(map[string]string),
	}
}

// Route compiles pattern and appends it, bound to view.
// Malformed and duplicate patterns are rejected so configuration mistakes
// surface at startup instead of as silently shadowed routes.
func (t *Table) Route(pattern, view string) error {
	if view == "" {
		return errors.New("R004").WithDetailf("pattern %q", pattern)
	}

	compiled, err := Compile(pattern)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.byPattern[pattern]; ok {
		return errors.New("R002").WithDetailf("pattern %q is already registered for view %q", pattern, existing)
	}
	t.byPattern[pattern] = view
	t.entries = append(t.entries, RouteEntry{
		Pattern:  pattern,
		View:     view,
		Compiled: compiled,
	})
	return nil
}

// MustRoute is like Route but panics on error. Use it for static tables.
func (t *Table) MustRoute(pattern, view string) {
	if err := t.Route(pattern, view); err != nil {
		panic(err)
	}
}

// Entries returns a copy of the registered entries in order.
func (t *Table) Entries() []RouteEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]RouteEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of registered routes.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Views returns the distinct view names referenced by the table,
// in first-registration order.
func (t *Table) Views() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	seen := make(map[string]bool, len(t.entries))
	var views []string
	for _, e := range t.entries {
		if !seen[e.View] {
			seen[e.View] = true
			views = append(views, e.View)
		}
	}
	return views
}

// Resolve normalizes path (query stripped, trailing slash removed except
// for root) and returns the first matching route. Unmatched paths resolve
// to the NotFound pseudo-view with empty params.
func (t *Table) Resolve(path string) ResolvedRoute {
	normalized := routepath.Normalize(path)

	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, e := range t.entries {
		if params, ok := e.Compiled.Match(normalized); ok {
			return ResolvedRoute{
				View:    e.View,
				Params:  params,
				Pattern: e.Pattern,
			}
		}
	}
	return ResolvedRoute{View: NotFound, Params: Params{}}
}

package router

// NotFound is the pseudo-view name returned for paths no route matches.
// It is routed to a registered fallback view like any other view.
const NotFound = "NotFound"

// Param is a single extracted route parameter.
type Param struct {
	Name  string
	Value string
}

// Params are route parameters in the order they appear in the pattern.
type Params []Param

// Get returns the value of the named parameter, or "".
func (p Params) Get(name string) string {
	v, _ := p.Lookup(name)
	return v
}

// Lookup returns the value of the named parameter and whether it exists.
func (p Params) Lookup(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Names returns the parameter names in pattern order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// Map returns the parameters as a map.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return m
}

// Clone returns an independent copy.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	copy(out, p)
	return out
}

// Equal reports whether both parameter lists hold the same pairs in the same order.
func (p Params) Equal(other Params) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// RouteEntry is a registered pattern bound to a view.
type RouteEntry struct {
	// Pattern is the route pattern as registered (e.g., "/sermoes/:id").
	Pattern string

	// View is the name of the view rendered for this route.
	View string

	// Compiled is the matcher derived from Pattern.
	Compiled *CompiledRoute
}

// ResolvedRoute is the result of resolving a concrete path.
type ResolvedRoute struct {
	// View is the matched view name, or NotFound.
	View string

	// Params are the extracted parameters (empty for NotFound).
	Params Params

	// Pattern is the matched pattern, or "" for NotFound.
	Pattern string
}

// IsNotFound reports whether no route matched.
func (r ResolvedRoute) IsNotFound() bool {
	return r.View == NotFound
}

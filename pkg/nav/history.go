package nav

// State is the payload stored with a history entry.
type State struct {
	// Path is the normalized path the entry was pushed for.
	Path string `json:"path"`
}

// History is the browser session history as seen by the controller.
type History interface {
	// Location returns the current path including its query string.
	Location() string

	// Push adds an entry after the current one, discarding forward entries.
	Push(state State, path string)

	// Replace overwrites the current entry.
	Replace(state State, path string)

	// OnPopState registers fn to be called with the new location after a
	// back/forward traversal. The returned func removes the registration.
	OnPopState(fn func(location string)) (unsubscribe func())
}

package shell

import "sync"

// Chrome is the page furniture around the display surface.
type Chrome interface {
	// SetActive highlights the navigation entry with the given tag.
	SetActive(tag string)

	// CloseDrawer closes the navigation drawer if it is open.
	CloseDrawer()

	// ScrollTop resets the document scroll position.
	ScrollTop()

	// SetTitle sets the document title.
	SetTitle(title string)

	// SetLang updates the document language and translated chrome text.
	SetLang(lang string)
}

// Action is one call recorded by Recorder.
type Action struct {
	Name string
	Arg  string
}

// Recorder is a Chrome that records calls in order. Headless renders use it
// to learn the final active tag and title; tests use it to check ordering.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
	active  string
	title   string
	lang    string
}

func (r *Recorder) record(name, arg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, Action{Name: name, Arg: arg})
	switch name {
	case "active":
		r.active = arg
	case "title":
		r.title = arg
	case "lang":
		r.lang = arg
	}
}

// SetActive records the highlighted navigation tag.
func (r *Recorder) SetActive(tag string) { r.record("active", tag) }

// CloseDrawer records a drawer close.
func (r *Recorder) CloseDrawer() { r.record("drawer", "close") }

// ScrollTop records a scroll reset.
func (r *Recorder) ScrollTop() { r.record("scroll", "top") }

// SetTitle records the document title.
func (r *Recorder) SetTitle(title string) { r.record("title", title) }

// SetLang records the document language.
func (r *Recorder) SetLang(lang string) { r.record("lang", lang) }

// Actions returns a copy of the recorded calls.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Active returns the last highlighted tag.
func (r *Recorder) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Title returns the last title set.
func (r *Recorder) Title() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.title
}

// Lang returns the last language set.
func (r *Recorder) Lang() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lang
}

// Reset discards recorded calls but keeps the current state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}

var _ Chrome = (*Recorder)(nil)

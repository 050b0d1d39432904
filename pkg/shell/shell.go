// Package shell wires the navigation controller to the view dispatcher and
// the page chrome.
//
// On every route change the shell highlights the navigation entry (when the
// view has one), closes the drawer, starts the render and resets the scroll
// position without waiting for the render to finish. A language change
// re-renders the current view in place.
package shell

import (
	"html/template"
	"log/slog"
	"sync"

	"github.com/renatoruis/oh-institutional/pkg/nav"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

// DefaultTitle is the document title set on every navigation before the
// view gets a chance to refine it.
const DefaultTitle = "Open Heavens Church"

// Locale is the language source the shell follows.
type Locale interface {
	Lang() string
	OnChange(fn func(lang string)) (remove func())
}

// Shell is the application shell of one browsing context.
type Shell struct {
	controller *nav.Controller
	dispatcher *view.Dispatcher
	chrome     Chrome
	locale     Locale
	logger     *slog.Logger

	mu    sync.Mutex
	last  *view.Pending
	stops []func()
}

// New creates a shell. locale may be nil when the language never changes.
func New(controller *nav.Controller, dispatcher *view.Dispatcher, chrome Chrome, locale Locale) *Shell {
	return &Shell{
		controller: controller,
		dispatcher: dispatcher,
		chrome:     chrome,
		locale:     locale,
		logger:     slog.Default().With("component", "shell"),
	}
}

// Start installs the route-change and language handlers and starts the
// controller, which dispatches the current location.
func (s *Shell) Start() error {
	s.controller.OnRouteChange(s.handleRouteChange)

	if s.locale != nil {
		s.chrome.SetLang(s.locale.Lang())
		remove := s.locale.OnChange(s.handleLangChange)
		s.mu.Lock()
		s.stops = append(s.stops, remove)
		s.mu.Unlock()
	}

	return s.controller.Start()
}

// Stop detaches the shell from the controller's history and the locale,
// and cancels the in-flight render.
func (s *Shell) Stop() {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	s.controller.Stop()
	s.dispatcher.Close()
}

// Last returns the most recently started render, or nil.
func (s *Shell) Last() *view.Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Shell) handleRouteChange(change nav.Change) {
	if change.HasActiveTag() {
		s.chrome.SetActive(change.ActiveTag)
	}
	s.chrome.CloseDrawer()
	s.chrome.SetTitle(DefaultTitle)

	p := s.dispatcher.Render(view.Target{
		View:   change.View,
		Params: change.Params,
		Query:  change.Query,
	})
	s.setLast(p)

	s.chrome.ScrollTop()
}

func (s *Shell) handleLangChange(lang string) {
	s.logger.Debug("language changed", "lang", lang)
	s.chrome.SetLang(lang)
	if p := s.dispatcher.RerenderCurrent(); p != nil {
		s.setLast(p)
	}
}

func (s *Shell) setLast(p *view.Pending) {
	s.mu.Lock()
	s.last = p
	s.mu.Unlock()
}

// Surface wraps a view surface so views can set the document title
// through the chrome.
func Surface(surface view.Surface, chrome Chrome) view.Surface {
	return &titledSurface{Surface: surface, chrome: chrome}
}

type titledSurface struct {
	view.Surface
	chrome Chrome
}

func (t *titledSurface) Replace(markup template.HTML) error {
	return t.Surface.Replace(markup)
}

func (t *titledSurface) SetTitle(title string) {
	t.chrome.SetTitle(title)
}

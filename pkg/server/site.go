package server

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/middleware"
	"github.com/renatoruis/oh-institutional/pkg/nav"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/shell"
	"github.com/renatoruis/oh-institutional/pkg/view"
	"github.com/renatoruis/oh-institutional/pkg/views"
)

// Site is the configuration shared by every browsing context.
type Site struct {
	table      *router.Table
	views      *views.Set
	dict       i18n.Dictionary
	middleware []view.Middleware
	timeout    time.Duration
	lang       string
	logger     *slog.Logger
}

// SiteOption configures a Site.
type SiteOption func(*Site)

// WithTable replaces the site route table.
func WithTable(t *router.Table) SiteOption {
	return func(s *Site) {
		s.table = t
	}
}

// WithRenderMiddleware appends render middleware to every dispatcher.
func WithRenderMiddleware(mw ...view.Middleware) SiteOption {
	return func(s *Site) {
		s.middleware = append(s.middleware, mw...)
	}
}

// WithRenderTimeout bounds each render. Zero disables the bound.
func WithRenderTimeout(d time.Duration) SiteOption {
	return func(s *Site) {
		s.timeout = d
	}
}

// WithDefaultLang sets the language used when a client has no preference.
func WithDefaultLang(lang string) SiteOption {
	return func(s *Site) {
		if i18n.IsSupported(lang) {
			s.lang = lang
		}
	}
}

// WithSiteLogger sets the logger engines derive from.
func WithSiteLogger(logger *slog.Logger) SiteOption {
	return func(s *Site) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSite builds a site over set and checks that every view in the route
// table has a renderer.
func NewSite(set *views.Set, opts ...SiteOption) (*Site, error) {
	s := &Site{
		table:  router.NewSiteTable(),
		views:  set,
		dict:   set.Dictionary(),
		lang:   i18n.Default,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	probe := view.NewDispatcher(&view.Buffer{})
	defer probe.Close()
	if err := set.Register(probe); err != nil {
		return nil, err
	}
	if err := probe.Validate(s.table.Views()); err != nil {
		return nil, err
	}
	return s, nil
}

// Table returns the route table.
func (s *Site) Table() *router.Table {
	return s.table
}

// DefaultLang returns the fallback language.
func (s *Site) DefaultLang() string {
	return s.lang
}

// engine is one browsing context's controller, dispatcher and shell.
type engine struct {
	controller *nav.Controller
	dispatcher *view.Dispatcher
	shell      *shell.Shell
}

func (s *Site) newEngine(history nav.History, surface view.Surface, chrome shell.Chrome, locale *i18n.Localizer, logger *slog.Logger) (*engine, error) {
	if logger == nil {
		logger = s.logger
	}
	d := view.NewDispatcher(shell.Surface(surface, chrome),
		view.WithLogger(logger.With("component", "view")),
		view.WithTimeout(s.timeout),
		view.WithMiddleware(s.middleware...),
		view.WithLanguage(locale.Lang),
		view.WithDiscardHook(middleware.RecordStaleRender),
	)
	if err := s.views.Register(d); err != nil {
		d.Close()
		return nil, err
	}

	c := nav.New(s.table, history)
	c.SetLogger(logger.With("component", "nav"))
	c.Listen(func(ch nav.Change) {
		middleware.RecordNavigation(ch.View)
	})

	return &engine{
		controller: c,
		dispatcher: d,
		shell:      shell.New(c, d, chrome, locale),
	}, nil
}

// Page is a server-side rendered location.
type Page struct {
	// Path is the location that was rendered, query included.
	Path string

	// View is the resolved view, router.NotFound included.
	View string

	// Status is the HTTP status the page should be served with.
	Status int

	Lang      string
	Title     string
	ActiveTag string
	Markup    template.HTML
}

// Render runs a headless engine for location and waits for the first
// render to settle. The returned page carries whatever the dispatcher
// committed, the Error view included.
func (s *Site) Render(ctx context.Context, location, lang string) (Page, error) {
	if !i18n.IsSupported(lang) {
		lang = s.lang
	}

	history := nav.NewMemoryHistory(location)
	buf := &view.Buffer{}
	chrome := &shell.Recorder{}
	locale := i18n.New(s.dict, lang)

	e, err := s.newEngine(history, buf, chrome, locale, s.logger)
	if err != nil {
		return Page{}, err
	}
	defer e.shell.Stop()

	if err := e.shell.Start(); err != nil {
		return Page{}, err
	}

	outcome := view.OutcomeStale
	if p := e.shell.Last(); p != nil {
		select {
		case <-p.Done():
			outcome = p.Wait()
		case <-ctx.Done():
			return Page{}, ctx.Err()
		}
	}

	change, _ := e.controller.Current()
	page := Page{
		Path:      history.Location(),
		View:      change.View,
		Status:    http.StatusOK,
		Lang:      lang,
		Title:     chrome.Title(),
		ActiveTag: chrome.Active(),
		Markup:    buf.Markup(),
	}
	switch {
	case change.View == router.NotFound:
		page.Status = http.StatusNotFound
	case outcome == view.OutcomeFailed:
		page.Status = http.StatusInternalServerError
	}
	if page.Title == "" {
		page.Title = shell.DefaultTitle
	}
	if page.ActiveTag == "" {
		page.ActiveTag = router.InitialActiveTag(change.Path)
	}
	return page, nil
}

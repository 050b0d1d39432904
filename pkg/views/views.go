package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"strings"

	"github.com/renatoruis/oh-institutional/pkg/content"
	"github.com/renatoruis/oh-institutional/pkg/i18n"
	"github.com/renatoruis/oh-institutional/pkg/router"
	"github.com/renatoruis/oh-institutional/pkg/shell"
	"github.com/renatoruis/oh-institutional/pkg/view"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Deps are the collaborators the renderers need.
type Deps struct {
	// Content is the API client. Required.
	Content *content.Client

	// Dict is the UI dictionary. Defaults to i18n.Messages().
	Dict i18n.Dictionary

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Set is the parsed template set with its renderers.
type Set struct {
	content *content.Client
	dict    i18n.Dictionary
	tmpl    *template.Template
	logger  *slog.Logger
}

// New parses the templates.
func New(deps Deps) (*Set, error) {
	if deps.Content == nil {
		return nil, fmt.Errorf("views: content client is required")
	}
	s := &Set{
		content: deps.Content,
		dict:    deps.Dict,
		logger:  deps.Logger,
	}
	if s.dict == nil {
		s.dict = i18n.Messages()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "views")

	tmpl, err := template.New("views").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("views: parsing templates: %w", err)
	}
	s.tmpl = tmpl
	return s, nil
}

// Renderers returns every renderer keyed by view name.
func (s *Set) Renderers() map[string]view.Renderer {
	return map[string]view.Renderer{
		router.ViewHome:     view.RendererFunc(s.home),
		router.ViewSobre:    view.RendererFunc(s.sobre),
		router.ViewSermoes:  view.RendererFunc(s.sermoes),
		router.ViewSermao:   view.RendererFunc(s.sermao),
		router.ViewBlog:     view.RendererFunc(s.blog),
		router.ViewPost:     view.RendererFunc(s.post),
		router.ViewEventos:  view.RendererFunc(s.eventos),
		router.ViewEvento:   view.RendererFunc(s.evento),
		router.ViewOracoes:  view.RendererFunc(s.oracoes),
		router.ViewBiblia:   view.RendererFunc(s.biblia),
		router.ViewAvisos:   view.RendererFunc(s.avisos),
		router.ViewContacto: view.RendererFunc(s.contacto),
		router.ViewRecursos: view.RendererFunc(s.recursos),
		router.ViewPagina:   view.RendererFunc(s.pagina),
		router.NotFound:     view.RendererFunc(s.notFound),
		view.ErrorView:      view.RendererFunc(s.errorPage),
	}
}

// Register parses the templates and registers every renderer on d.
func Register(d *view.Dispatcher, deps Deps) error {
	s, err := New(deps)
	if err != nil {
		return err
	}
	return s.Register(d)
}

// Register registers the set's renderers on d in name order.
func (s *Set) Register(d *view.Dispatcher) error {
	renderers := s.Renderers()
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := d.Register(name, renderers[name]); err != nil {
			return err
		}
	}
	return nil
}

// Dictionary returns the UI dictionary the set renders with.
func (s *Set) Dictionary() i18n.Dictionary {
	return s.dict
}

// page is the root value of every template.
type page struct {
	Lang string
	Data any
	dict i18n.Dictionary
}

// T translates a UI key.
func (p page) T(key string) string { return p.dict.Lookup(p.Lang, key) }

// Text returns a localized record field.
func (p page) Text(o content.Object, key string) string { return o.Text(key, p.Lang) }

// Pick localizes a raw value.
func (p page) Pick(v any) string { return i18n.Pick(v, p.Lang) }

// Date formats an API timestamp as a long date.
func (p page) Date(s string) string { return formatDate(s, p.Lang, false) }

// DateShort formats an API timestamp as day and abbreviated month.
func (p page) DateShort(s string) string { return formatDate(s, p.Lang, true) }

// Time formats the time of day of an API timestamp.
func (p page) Time(s string) string { return formatTime(s) }

func (s *Set) execute(name string, req view.Request, data any) (template.HTML, error) {
	var b strings.Builder
	err := s.tmpl.ExecuteTemplate(&b, name, page{Lang: req.Lang, Data: data, dict: s.dict})
	if err != nil {
		return "", fmt.Errorf("views: %s: %w", name, err)
	}
	return template.HTML(b.String()), nil
}

// titled builds content that sets the document title once committed.
func titled(markup template.HTML, title string, then ...view.MountFunc) view.Immediate {
	return view.Immediate{
		Markup: markup,
		OnMount: func(ctx context.Context, surface view.Surface) {
			if title != "" {
				if t, ok := surface.(view.Titler); ok {
					t.SetTitle(title + " | " + shell.DefaultTitle)
				}
			}
			for _, fn := range then {
				fn(ctx, surface)
			}
		},
	}
}

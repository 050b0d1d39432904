// Package link decides which anchor clicks become in-app navigations.
//
// The browser side installs one capture-phase click listener and forwards a
// Click describing the nearest anchor. Handle returns true when the click was
// turned into a NavigateTo call and the default action must be prevented;
// false leaves the browser to follow the link normally.
package link

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/renatoruis/oh-institutional/pkg/nav"
	"github.com/renatoruis/oh-institutional/pkg/routepath"
)

// Mouse buttons as reported by MouseEvent.button.
const (
	ButtonPrimary   = 0
	ButtonAuxiliary = 1
)

// Click describes a click on an anchor element.
type Click struct {
	// Href is the raw href attribute.
	Href string `json:"href"`

	// Target is the target attribute. Only "" and "_self" stay in the
	// current browsing context.
	Target string `json:"target,omitempty"`

	// Download is true when the anchor carries a download attribute.
	Download bool `json:"download,omitempty"`

	// Button is the mouse button that was pressed.
	Button int `json:"button,omitempty"`

	Ctrl  bool `json:"ctrl,omitempty"`
	Meta  bool `json:"meta,omitempty"`
	Shift bool `json:"shift,omitempty"`
	Alt   bool `json:"alt,omitempty"`
}

func (c Click) modified() bool {
	return c.Ctrl || c.Meta || c.Shift || c.Alt
}

// Navigator is the part of the navigation controller the interceptor drives.
type Navigator interface {
	NavigateTo(path string, opts ...nav.NavigateOption) bool
}

// Interceptor converts same-origin anchor clicks into navigations.
type Interceptor struct {
	origin *url.URL
	nav    Navigator
	logger *slog.Logger
}

// New creates an interceptor for pages served from origin
// (e.g. "https://openheavens.pt").
func New(origin string, navigator Navigator) (*Interceptor, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, err
	}
	u.Path, u.RawQuery, u.Fragment = "", "", ""
	return &Interceptor{
		origin: u,
		nav:    navigator,
		logger: slog.Default().With("component", "link"),
	}, nil
}

// Origin returns the origin the interceptor considers same-site.
func (i *Interceptor) Origin() string {
	return i.origin.String()
}

// Handle applies the interception rules to click. It returns true if the
// click was handled as an in-app navigation.
//
// Clicks fall through to the browser when the link opens in a new window,
// is a download, is an in-page fragment, points to another origin, or was
// made with a modifier key or a non-primary button.
func (i *Interceptor) Handle(click Click) bool {
	path, ok := i.Target(click)
	if !ok {
		return false
	}
	i.nav.NavigateTo(path)
	return true
}

// Target returns the path (with query) a click would navigate to, and
// whether the click is intercepted at all.
func (i *Interceptor) Target(click Click) (string, bool) {
	if (click.Target != "" && click.Target != "_self") || click.Download {
		return "", false
	}
	if click.Button != ButtonPrimary || click.modified() {
		return "", false
	}

	href := strings.TrimSpace(click.Href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		i.logger.Debug("unparseable href", "href", href, "error", err)
		return "", false
	}
	resolved := i.origin.ResolveReference(ref)
	if !sameOrigin(resolved, i.origin) {
		return "", false
	}

	path := resolved.EscapedPath()
	if path == "" {
		path = "/"
	}
	return routepath.JoinPathQuery(path, resolved.RawQuery), true
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}

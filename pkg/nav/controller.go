package nav

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/renatoruis/oh-institutional/pkg/routepath"
	"github.com/renatoruis/oh-institutional/pkg/router"
)

// ErrAlreadyStarted is returned by Start when called more than once.
var ErrAlreadyStarted = errors.New("nav: controller already started")

// Change describes a resolved navigation.
type Change struct {
	// View is the resolved view name, or router.NotFound.
	View string

	// Params are the route parameters in pattern order.
	Params router.Params

	// ActiveTag is the navigation entry to highlight, "" when the view has none.
	ActiveTag string

	// Path is the normalized path that was resolved.
	Path string

	// Query is the raw query string of the location, without "?".
	Query string
}

// HasActiveTag reports whether the view highlights a navigation entry.
func (c Change) HasActiveTag() bool {
	return c.ActiveTag != ""
}

// Handler receives route changes.
type Handler func(Change)

type subscriber struct {
	fn Handler
}

// Controller is the navigation controller for one browsing context.
//
// Registration and Current are safe for concurrent use. Navigation itself
// (NavigateTo, HandleLocationChange and popstate delivery) is expected to be
// driven from a single goroutine, so handlers observe changes in the order
// they were issued.
type Controller struct {
	table   *router.Table
	history History
	logger  *slog.Logger

	mu          sync.Mutex
	primary     Handler
	subscribers []*subscriber
	listeners   []*subscriber
	started     bool
	stopPop     func()
	current     Change
	hasCurrent  bool
}

// New creates a controller over table and history.
func New(table *router.Table, history History) *Controller {
	return &Controller{
		table:   table,
		history: history,
		logger:  slog.Default().With("component", "nav"),
	}
}

// SetLogger replaces the controller's logger.
func (c *Controller) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	c.logger = logger
}

// History returns the history the controller drives.
func (c *Controller) History() History {
	return c.history
}

// Resolve resolves path against the route table.
func (c *Controller) Resolve(path string) router.ResolvedRoute {
	return c.table.Resolve(path)
}

// OnRouteChange sets the primary route-change handler. Only one primary
// handler exists; a later call replaces the earlier one. It runs before
// any Subscribe handlers.
func (c *Controller) OnRouteChange(fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.primary = fn
}

// Subscribe adds fn to the ordered list of route-change observers.
// The returned func removes it.
func (c *Controller) Subscribe(fn Handler) func() {
	return c.add(&c.subscribers, fn)
}

// Listen registers fn for the "router:change" event, raised after all
// route-change handlers have run.
func (c *Controller) Listen(fn Handler) func() {
	return c.add(&c.listeners, fn)
}

func (c *Controller) add(list *[]*subscriber, fn Handler) func() {
	s := &subscriber{fn: fn}

	c.mu.Lock()
	*list = append(*list, s)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, other := range *list {
			if other == s {
				*list = append((*list)[:i], (*list)[i+1:]...)
				return
			}
		}
	}
}

// Start subscribes to back/forward notifications and dispatches the
// current location. It must be called exactly once.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	stop := c.history.OnPopState(func(location string) {
		c.HandleLocationChange(location)
	})

	c.mu.Lock()
	c.stopPop = stop
	c.mu.Unlock()

	c.HandleLocationChange(c.history.Location())
	return nil
}

// Stop detaches the controller from history notifications.
func (c *Controller) Stop() {
	c.mu.Lock()
	stop := c.stopPop
	c.stopPop = nil
	c.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// NavigateTo navigates to path without a page reload.
//
// The path is normalized the same way Resolve does. If the normalized path
// equals the current location's path the call does nothing; query strings
// are not part of that comparison. Otherwise a history entry carrying the
// normalized path is pushed (or the current one replaced with WithReplace)
// and the new location is dispatched. It reports whether it navigated.
func (c *Controller) NavigateTo(path string, opts ...NavigateOption) bool {
	var options NavigateOptions
	for _, opt := range opts {
		opt(&options)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	normalized := routepath.Normalize(path)
	_, query := routepath.SplitPathAndQuery(path)

	if normalized == routepath.Normalize(c.history.Location()) {
		c.logger.Debug("navigation is a no-op", "path", normalized)
		return false
	}

	location := routepath.JoinPathQuery(normalized, query)
	state := State{Path: normalized}
	if options.Replace {
		c.history.Replace(state, location)
	} else {
		c.history.Push(state, location)
	}

	c.HandleLocationChange(location)
	return true
}

// HandleLocationChange resolves location and notifies, in order, the
// primary handler, the subscribers and the router:change listeners.
// It is called on start, on back/forward and after NavigateTo.
func (c *Controller) HandleLocationChange(location string) Change {
	res := c.table.Resolve(location)
	tag, _ := router.ActiveTag(res.View)
	_, query := routepath.SplitPathAndQuery(location)

	change := Change{
		View:      res.View,
		Params:    res.Params,
		ActiveTag: tag,
		Path:      routepath.Normalize(location),
		Query:     query,
	}

	c.mu.Lock()
	c.current = change
	c.hasCurrent = true
	primary := c.primary
	subscribers := snapshot(c.subscribers)
	listeners := snapshot(c.listeners)
	c.mu.Unlock()

	c.logger.Debug("route change",
		"view", change.View,
		"path", change.Path,
		"active", change.ActiveTag,
	)

	if primary != nil {
		primary(change)
	}
	for _, s := range subscribers {
		c.notify(s.fn, change)
	}
	for _, l := range listeners {
		c.notify(l.fn, change)
	}
	return change
}

// Current returns the most recently dispatched change.
func (c *Controller) Current() (Change, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.hasCurrent
}

func (c *Controller) notify(fn Handler, change Change) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("route change observer panicked",
				"view", change.View,
				"panic", r,
			)
		}
	}()
	fn(change)
}

func snapshot(list []*subscriber) []*subscriber {
	if len(list) == 0 {
		return nil
	}
	out := make([]*subscriber, len(list))
	copy(out, list)
	return out
}

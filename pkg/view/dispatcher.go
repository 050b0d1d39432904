package view

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"sync"
	"time"

	oherrors "github.com/renatoruis/oh-institutional/internal/errors"
	"github.com/renatoruis/oh-institutional/pkg/router"
)

// ErrRenderTimeout is reported when a Deferred load exceeds the render timeout.
var ErrRenderTimeout = errors.New("view: render timed out")

const genericErrorMarkup template.HTML = `<section class="view-error" role="alert"><h1>Something went wrong</h1><p>Please try again in a moment.</p><p><a href="/">Home</a></p></section>`

// Target identifies what to render.
type Target struct {
	View   string
	Params router.Params
	Query  string
}

// Outcome is how a render ended.
type Outcome int

const (
	// OutcomeCommitted means the view's content is on the surface.
	OutcomeCommitted Outcome = iota

	// OutcomeFailed means the renderer failed and the error view was committed.
	OutcomeFailed

	// OutcomeStale means a newer render started first and this one was discarded.
	OutcomeStale
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeFailed:
		return "failed"
	case OutcomeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Pending tracks an in-flight render.
type Pending struct {
	generation uint64
	done       chan struct{}
	outcome    Outcome
	err        error
}

// Generation returns the render's generation.
func (p *Pending) Generation() uint64 { return p.generation }

// Done is closed when the render has been committed or discarded.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the render finishes and returns its outcome.
func (p *Pending) Wait() Outcome {
	<-p.done
	return p.outcome
}

// Committed waits and reports whether the render reached the surface,
// either as the view itself or as the error view.
func (p *Pending) Committed() bool {
	return p.Wait() != OutcomeStale
}

// Err waits and returns the renderer failure, if any.
func (p *Pending) Err() error {
	<-p.done
	return p.err
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithTimeout bounds how long a Deferred load may take. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

// WithMiddleware appends render middleware.
func WithMiddleware(mw ...Middleware) Option {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, mw...)
	}
}

// WithLanguage sets the function that supplies Request.Lang.
func WithLanguage(lang func() string) Option {
	return func(d *Dispatcher) {
		d.lang = lang
	}
}

// WithBaseContext sets the parent context of every render.
func WithBaseContext(ctx context.Context) Option {
	return func(d *Dispatcher) {
		d.base = ctx
	}
}

// WithDiscardHook sets a function called for every stale render discarded.
func WithDiscardHook(fn func(Request)) Option {
	return func(d *Dispatcher) {
		d.onDiscard = fn
	}
}

// Dispatcher owns the view registry and the display surface.
type Dispatcher struct {
	surface    Surface
	logger     *slog.Logger
	timeout    time.Duration
	middleware []Middleware
	lang       func() string
	base       context.Context
	onDiscard  func(Request)

	mu         sync.Mutex
	renderers  map[string]Renderer
	generation uint64
	cancel     context.CancelFunc
	current    Target
	hasCurrent bool
	resume     bool
	closed     bool

	commitMu sync.Mutex
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher committing to surface.
func NewDispatcher(surface Surface, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		surface:   surface,
		logger:    slog.Default().With("component", "view"),
		base:      context.Background(),
		renderers: make(map[string]Renderer),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Use appends render middleware. It must be called before rendering starts.
func (d *Dispatcher) Use(mw ...Middleware) {
	d.middleware = append(d.middleware, mw...)
}

// Register associates name with a renderer. Names are unique.
func (d *Dispatcher) Register(name string, r Renderer) error {
	if r == nil {
		return oherrors.New("V004").WithDetailf("view %q", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.renderers[name]; exists {
		return oherrors.New("V002").WithDetailf("view %q", name)
	}
	d.renderers[name] = r
	return nil
}

// MustRegister is like Register but panics on error.
func (d *Dispatcher) MustRegister(name string, r Renderer) {
	if err := d.Register(name, r); err != nil {
		panic(err)
	}
}

// Registered reports whether a renderer exists for name.
func (d *Dispatcher) Registered(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.renderers[name]
	return ok
}

// Views returns the registered view names, sorted.
func (d *Dispatcher) Views() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.renderers))
	for name := range d.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every view in views has a renderer and that a
// NotFound renderer exists. It is meant to run once at startup.
func (d *Dispatcher) Validate(views []string) error {
	var errs []error
	for _, v := range views {
		if !d.Registered(v) {
			errs = append(errs, oherrors.New("V001").WithDetailf("view %q", v))
		}
	}
	if !d.Registered(router.NotFound) {
		errs = append(errs, oherrors.New("V003"))
	}
	return oherrors.Join(errs...)
}

// Current returns the most recently requested render target.
func (d *Dispatcher) Current() (Target, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current, d.hasCurrent
}

// Generation returns the latest render generation.
func (d *Dispatcher) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// Render starts rendering target and returns immediately.
//
// Unknown views and router.NotFound render the NotFound view. The previous
// render, if still running, has its context cancelled and will not commit.
func (d *Dispatcher) Render(target Target) *Pending {
	d.mu.Lock()

	if d.closed {
		d.mu.Unlock()
		p := &Pending{done: make(chan struct{}), outcome: OutcomeStale}
		close(p.done)
		return p
	}

	d.generation++
	gen := d.generation
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(d.base)
	d.cancel = cancel
	d.current = target
	d.hasCurrent = true
	resumed := d.resume
	d.resume = false

	viewName := target.View
	renderer, ok := d.renderers[viewName]
	if !ok || viewName == router.NotFound {
		viewName = router.NotFound
		renderer = d.renderers[router.NotFound]
	}
	d.wg.Add(1)
	d.mu.Unlock()

	req := Request{
		View:       viewName,
		Params:     target.Params,
		Query:      target.Query,
		Generation: gen,
		Resumed:    resumed,
	}
	if d.lang != nil {
		req.Lang = d.lang()
	}
	if viewName != target.View {
		d.logger.Debug("view not registered, rendering NotFound", "view", target.View)
	}

	p := &Pending{generation: gen, done: make(chan struct{})}
	go d.run(ctx, cancel, renderer, req, p)
	return p
}

// ResumeNext marks the next render as resumed. Its Request has Resumed
// set; later renders do not.
func (d *Dispatcher) ResumeNext() {
	d.mu.Lock()
	d.resume = true
	d.mu.Unlock()
}

// RerenderCurrent renders the current target again without touching
// navigation history. It returns nil if nothing was rendered yet.
func (d *Dispatcher) RerenderCurrent() *Pending {
	target, ok := d.Current()
	if !ok {
		return nil
	}
	return d.Render(target)
}

// Close cancels the in-flight render, waits for render goroutines to
// finish and makes later Render calls no-ops.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.generation++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context, cancel context.CancelFunc, r Renderer, req Request, p *Pending) {
	defer d.wg.Done()
	defer close(p.done)
	defer cancel()

	content, err := d.invoke(ctx, r, req)

	if !d.isLatest(req.Generation) {
		d.discard(req, p)
		return
	}

	if err != nil {
		d.logger.Error("view render failed",
			"view", req.View,
			"generation", req.Generation,
			"error", err,
		)
		p.err = err
		p.outcome = OutcomeFailed
		content = d.errorContent(ctx, req, err)
	}

	committed, cerr := d.commit(ctx, req, content)
	if cerr != nil {
		d.logger.Error("surface rejected view", "view", req.View, "error", cerr)
		p.err = cerr
		p.outcome = OutcomeFailed
		return
	}
	if !committed {
		d.discard(req, p)
	}
}

func (d *Dispatcher) discard(req Request, p *Pending) {
	p.outcome = OutcomeStale
	p.err = nil
	d.logger.Debug("discarding stale render", "view", req.View, "generation", req.Generation)
	if d.onDiscard != nil {
		d.onDiscard(req)
	}
}

func (d *Dispatcher) isLatest(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation == gen
}

// invoke runs the middleware chain around the renderer, converting panics
// into errors.
func (d *Dispatcher) invoke(ctx context.Context, r Renderer, req Request) (content Immediate, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrRenderPanic, rec)
		}
	}()

	final := func(ctx context.Context, req Request) (Immediate, error) {
		if r == nil {
			return Immediate{}, fmt.Errorf("%w: %q", ErrUnknownView, req.View)
		}
		res, err := r.Render(ctx, req)
		if err != nil {
			return Immediate{}, err
		}
		switch deferred := res.(type) {
		case Deferred:
			return d.load(ctx, deferred)
		case *Deferred:
			if deferred != nil {
				return d.load(ctx, *deferred)
			}
		}
		return resolve(ctx, res)
	}

	return Compose(d.middleware, final)(ctx, req)
}

type loadResult struct {
	content Immediate
	err     error
}

// load runs a Deferred load under the render timeout. A load that ignores
// its context is abandoned once the context ends.
func (d *Dispatcher) load(ctx context.Context, deferred Deferred) (Immediate, error) {
	if deferred.Load == nil {
		return Immediate{}, nil
	}
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	ch := make(chan loadResult, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				ch <- loadResult{err: fmt.Errorf("%w: %v", ErrRenderPanic, rec)}
			}
		}()
		content, err := deferred.Load(ctx)
		ch <- loadResult{content: content, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Immediate{}, fmt.Errorf("%w after %s", ErrRenderTimeout, d.timeout)
		}
		return res.content, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Immediate{}, fmt.Errorf("%w after %s", ErrRenderTimeout, d.timeout)
		}
		return Immediate{}, ctx.Err()
	}
}

// errorContent renders the Error view for a failed request, falling back
// to built-in markup if it is missing or fails too.
func (d *Dispatcher) errorContent(ctx context.Context, failed Request, cause error) Immediate {
	d.mu.Lock()
	r, ok := d.renderers[ErrorView]
	d.mu.Unlock()
	if !ok {
		return Immediate{Markup: genericErrorMarkup}
	}

	req := failed
	req.View = ErrorView
	req.Err = cause

	content, err := d.invoke(ctx, r, req)
	if err != nil {
		d.logger.Error("error view failed", "error", err)
		return Immediate{Markup: genericErrorMarkup}
	}
	return content
}

// commit places content on the surface if req is still the latest render.
func (d *Dispatcher) commit(ctx context.Context, req Request, content Immediate) (bool, error) {
	d.commitMu.Lock()
	defer d.commitMu.Unlock()

	if !d.isLatest(req.Generation) {
		return false, nil
	}
	if err := d.surface.Replace(content.Markup); err != nil {
		return false, err
	}
	if content.OnMount != nil {
		d.mount(ctx, req, content.OnMount)
	}
	return true, nil
}

func (d *Dispatcher) mount(ctx context.Context, req Request, fn MountFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error("view mount panicked", "view", req.View, "panic", rec)
		}
	}()
	fn(ctx, d.surface)
}

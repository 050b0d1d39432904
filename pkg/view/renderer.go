package view

import (
	"context"
	"errors"
	"html/template"

	"github.com/renatoruis/oh-institutional/pkg/router"
)

// ErrorView is the name under which the generic failure view is registered.
const ErrorView = "Error"

var (
	// ErrUnknownView is the cause reported when no renderer exists for a view
	// and no NotFound renderer is registered either.
	ErrUnknownView = errors.New("view: no renderer registered")

	// ErrRenderPanic wraps a recovered renderer panic.
	ErrRenderPanic = errors.New("view: renderer panicked")

	errUnknownResult = errors.New("view: unknown result type")
)

// Request is the input to a renderer.
type Request struct {
	// View is the name of the view being rendered.
	View string

	// Params are the route parameters.
	Params router.Params

	// Query is the raw query string of the current location.
	Query string

	// Lang is the active display language.
	Lang string

	// Generation identifies the render.
	Generation uint64

	// Err is the failure being reported when View is ErrorView.
	Err error

	// Resumed is set when the render takes over content the server already
	// rendered for the same location. One-time side effects have run.
	Resumed bool
}

// Renderer produces a view's content.
//
// Render should return quickly: work that blocks, such as fetching data,
// belongs in a Deferred result so it observes cancellation.
type Renderer interface {
	Render(ctx context.Context, req Request) (Result, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, req Request) (Result, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Static returns a renderer that always produces markup.
func Static(markup string) Renderer {
	return RendererFunc(func(context.Context, Request) (Result, error) {
		return HTML(template.HTML(markup)), nil
	})
}

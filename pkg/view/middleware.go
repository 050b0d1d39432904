package view

import "context"

// Next invokes the rest of the render chain and returns the resolved content.
type Next func(ctx context.Context, req Request) (Immediate, error)

// Middleware wraps renderer invocation. It sees every render, including the
// Deferred load, and may observe or replace the result.
type Middleware interface {
	Handle(ctx context.Context, req Request, next Next) (Immediate, error)
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ctx context.Context, req Request, next Next) (Immediate, error)

// Handle implements Middleware.
func (f MiddlewareFunc) Handle(ctx context.Context, req Request, next Next) (Immediate, error) {
	return f(ctx, req, next)
}

// Compose builds a chain from middleware and a final handler.
// Middleware runs in order (first to last), with final at the end.
func Compose(mw []Middleware, final Next) Next {
	chain := final
	for i := len(mw) - 1; i >= 0; i-- {
		m := mw[i]
		next := chain
		chain = func(ctx context.Context, req Request) (Immediate, error) {
			return m.Handle(ctx, req, next)
		}
	}
	return chain
}

// Chain combines several middleware into one.
func Chain(middleware ...Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req Request, next Next) (Immediate, error) {
		return Compose(middleware, next)(ctx, req)
	})
}

// Skip bypasses mw for requests matching condition.
func Skip(condition func(Request) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req Request, next Next) (Immediate, error) {
		if condition(req) {
			return next(ctx, req)
		}
		return mw.Handle(ctx, req, next)
	})
}

// Only runs mw just for requests matching condition.
func Only(condition func(Request) bool, mw Middleware) Middleware {
	return MiddlewareFunc(func(ctx context.Context, req Request, next Next) (Immediate, error) {
		if !condition(req) {
			return next(ctx, req)
		}
		return mw.Handle(ctx, req, next)
	})
}

// ForViews is a condition matching the named views.
func ForViews(views ...string) func(Request) bool {
	set := make(map[string]bool, len(views))
	for _, v := range views {
		set[v] = true
	}
	return func(req Request) bool {
		return set[req.View]
	}
}

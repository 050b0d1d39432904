package view

import (
	"context"
	"html/template"
)

// Result is the value a renderer produces: Immediate or Deferred.
type Result interface {
	isResult()
}

// MountFunc runs after markup has been placed on the surface.
type MountFunc func(ctx context.Context, surface Surface)

// Immediate is rendered markup ready to be committed.
type Immediate struct {
	Markup template.HTML

	// OnMount, if set, is invoked once the markup is on the surface.
	OnMount MountFunc
}

// Deferred produces an Immediate after doing work such as fetching data.
// Load receives the render's context, which is cancelled when a newer
// render starts or the render timeout expires.
type Deferred struct {
	Load func(ctx context.Context) (Immediate, error)
}

func (Immediate) isResult() {}
func (Deferred) isResult()  {}

// HTML returns an Immediate result with no mount callback.
func HTML(markup template.HTML) Result {
	return Immediate{Markup: markup}
}

// Mount returns an Immediate result with a mount callback.
func Mount(markup template.HTML, fn MountFunc) Result {
	return Immediate{Markup: markup, OnMount: fn}
}

// Defer returns a Deferred result.
func Defer(load func(ctx context.Context) (Immediate, error)) Result {
	return Deferred{Load: load}
}

// resolve turns any Result into an Immediate.
func resolve(ctx context.Context, res Result) (Immediate, error) {
	switch r := res.(type) {
	case Immediate:
		return r, nil
	case *Immediate:
		if r == nil {
			return Immediate{}, nil
		}
		return *r, nil
	case Deferred:
		if r.Load == nil {
			return Immediate{}, nil
		}
		return r.Load(ctx)
	case *Deferred:
		if r == nil || r.Load == nil {
			return Immediate{}, nil
		}
		return r.Load(ctx)
	case nil:
		return Immediate{}, nil
	default:
		return Immediate{}, errUnknownResult
	}
}

// Package view maps resolved routes to renderers and commits their output
// to a display surface.
//
// A Renderer returns a Result, which is either Immediate markup (with an
// optional mount callback) or a Deferred load that fetches data first. The
// Dispatcher runs every render on its own goroutine and tags it with a
// generation number. Starting a render cancels the previous render's context,
// and a render whose generation is no longer the latest when it finishes is
// discarded instead of overwriting newer content.
//
// Renderer errors and panics never reach the caller. The dispatcher logs
// them and commits the registered Error view for the same generation, so a
// failed view leaves a visible error state and later navigations proceed
// normally.
//
//	d := view.NewDispatcher(surface)
//	d.Register(router.NotFound, notFoundRenderer)
//	d.Register("Sermao", view.RendererFunc(func(ctx context.Context, req view.Request) (view.Result, error) {
//	    id := req.Params.Get("id")
//	    return view.Defer(func(ctx context.Context) (view.Immediate, error) {
//	        s, err := api.Sermon(ctx, id)
//	        ...
//	    }), nil
//	}))
//	d.Render(view.Target{View: "Sermao", Params: params}).Wait()
package view

// Package nav implements the navigation controller.
//
// A Controller owns the current location of one browsing context. It resolves
// paths against a router.Table, pushes history entries for programmatic
// navigation, reacts to back/forward notifications and fans the resulting
// route change out to its subscribers.
//
// The browser history is abstracted behind History so the same controller
// drives a live websocket session, a server-side first render and tests:
//
//	h := nav.NewMemoryHistory("/")
//	c := nav.New(router.NewSiteTable(), h)
//	c.OnRouteChange(func(ch nav.Change) {
//	    dispatcher.Render(ch.View, ch.Params)
//	})
//	if err := c.Start(); err != nil {
//	    return err
//	}
//	c.NavigateTo("/sermoes/42")
//
// Route-change handlers run synchronously on the goroutine that navigated.
// Handlers that do slow work (rendering a view that fetches data) must hand
// it off; the view package's dispatcher does exactly that.
package nav

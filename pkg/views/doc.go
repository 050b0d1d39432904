// Package views holds the renderers for every page of the public site.
//
// Pages that need content from the API return a view.Deferred so the
// fetch runs off the navigation path and is abandoned when the visitor
// moves on. Pages without data render immediately. Markup comes from the
// html/template set embedded under templates/.
//
// A missing record never fails the render: the page shows an empty state
// that links back to the corresponding list, as the site always has.
package views

// Package router implements the site's path-pattern routing.
//
// The router provides:
//   - An ordered, append-only route table (first match wins)
//   - Pattern compilation with named ":param" segments
//   - Parameter extraction with percent-decoding
//   - The static view → active navigation tag table
//   - Typed parameter binding and link markup helpers
//
// # Patterns
//
// A pattern is a "/"-separated list of literal and parameter segments:
//
//	/                 → Home
//	/sermoes          → Sermoes
//	/sermoes/:id      → Sermao   (params: id)
//	/blog/:slug       → Post     (params: slug)
//
// A parameter matches exactly one non-empty segment. There are no
// catch-alls, optional segments or specificity rules: registration order
// decides between patterns that could both match.
//
// # Usage
//
//	t := router.NewTable()
//	t.MustRoute("/sermoes/:id", "Sermao")
//
//	res := t.Resolve("/sermoes/123/")
//	// res.View == "Sermao", res.Params.Get("id") == "123"
//
//	res = t.Resolve("/unknown/path")
//	// res.View == router.NotFound
package router
